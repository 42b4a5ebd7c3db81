package highlight

import (
	"fmt"
	"strings"

	"github.com/marchallab/netview/pkg/graph"
	"github.com/marchallab/netview/pkg/network"
	"github.com/marchallab/netview/pkg/paths"
)

// nodeInfo describes node n: where each gene of interest is present, its
// product, its gene sets and, in component mode, the conditions seen on the
// component's links.
func nodeInfo(m *network.Model, n *network.Node, mode Mode) graph.Info {
	var lines []string
	for g, goi := range m.GenesOfInterest {
		conds := m.ConditionsPresent(n, g)
		if len(conds) == 0 {
			lines = append(lines, fmt.Sprintf("No %s.", goi))
			continue
		}
		lines = append(lines, fmt.Sprintf("%s in: %s.", goi, strings.Join(conds, ", ")))
	}
	if n.Product != "" {
		lines = append(lines, "Product: "+n.Product)
	}

	if m.HasGeneSets() {
		sets := n.GeneSetIDs()
		switch len(sets) {
		case 0:
			lines = append(lines, fmt.Sprintf("%s is not present in any gene sets.", n.ID))
		case 1:
			lines = append(lines, fmt.Sprintf("%s is present in gene set %s.", n.ID, sets[0]))
		default:
			lines = append(lines, fmt.Sprintf("%s is present in gene sets %s.", n.ID, strings.Join(sets, ", ")))
		}
	} else {
		lines = append(lines, "No gene sets were provided to netview.")
	}

	if mode == Component {
		if conds := componentConditions(m, n.Group); len(conds) > 0 {
			lines = append(lines, "Conditions with links in the component: "+strings.Join(conds, ", ")+".")
		}
	}
	return graph.Info{Title: "Selected node: " + n.ID, Lines: lines}
}

// componentConditions returns the distinct source samples of paths on links
// touching group g, in first-seen order.
func componentConditions(m *network.Model, g int) []string {
	seen := make(map[string]bool)
	var out []string
	for _, l := range m.Links {
		if l.Source.Group != g && l.Target.Group != g {
			continue
		}
		for _, p := range l.Paths {
			if !seen[p.FromSample] {
				seen[p.FromSample] = true
				out = append(out, p.FromSample)
			}
		}
	}
	return out
}

// pathsInfo lists ps grouped by source sample, then by path type, both in
// first-seen order. Every sample group opens with a blank line and the
// sample name.
func pathsInfo(id string, ps []*paths.Path) graph.Info {
	type group struct {
		sample string
		types  []string
		byType map[string][]string
	}
	var groups []*group
	bySample := make(map[string]*group)

	for _, p := range ps {
		g, ok := bySample[p.FromSample]
		if !ok {
			g = &group{sample: p.FromSample, byType: make(map[string][]string)}
			bySample[p.FromSample] = g
			groups = append(groups, g)
		}
		if _, ok := g.byType[p.Type]; !ok {
			g.types = append(g.types, p.Type)
		}
		g.byType[p.Type] = append(g.byType[p.Type], p.String())
	}

	var lines []string
	for _, g := range groups {
		lines = append(lines, "", g.sample)
		for _, t := range g.types {
			lines = append(lines, g.byType[t]...)
		}
	}
	return graph.Info{Title: fmt.Sprintf("Highlighted entity %s has paths:", id), Lines: lines}
}
