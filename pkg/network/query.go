package network

import (
	"maps"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/marchallab/netview/pkg/paths"
)

// NodeByID returns the node with the given id.
func (m *Model) NodeByID(id string) (*Node, bool) {
	n, ok := m.byID[id]
	return n, ok
}

// LinkByKey resolves an edge key to its link. Directed links answer only to
// their declared key; undirected links answer to both orientations.
func (m *Model) LinkByKey(key string) (*Link, bool) {
	l, ok := m.byKey[key]
	return l, ok
}

// Paths returns the path index the model was built from.
func (m *Model) Paths() *paths.Index { return m.paths }

// Neighbors returns the indices of nodes joined to node i by any link, in
// either direction. Parallel links produce repeated entries.
func (m *Model) Neighbors(i int) []int { return m.neighbors[i] }

// Adjacent reports whether a and b are the same node or joined by a link.
func (m *Model) Adjacent(a, b int) bool {
	return a == b || m.adjacent[[2]int{a, b}]
}

// InDegree returns the number of links ending at node i.
func (m *Model) InDegree(i int) int { return m.inDegree[i] }

// OutDegree returns the number of links starting at node i.
func (m *Model) OutDegree(i int) int { return m.outDegree[i] }

// GroupCount returns the number of connected components.
func (m *Model) GroupCount() int { return m.groupCount }

// GroupMembers returns the nodes of group g in input order.
func (m *Model) GroupMembers(g int) []*Node {
	var out []*Node
	for _, n := range m.Nodes {
		if n.Group == g {
			out = append(out, n)
		}
	}
	return out
}

// MaxWeight returns the largest link weight.
func (m *Model) MaxWeight() float64 { return m.maxWeight }

// DrawsPies reports whether per-condition pie charts fit on the nodes.
// When they don't, node radii grow with the number of set bits instead.
func (m *Model) DrawsPies() bool { return m.drawPies }

// HasGeneSets reports whether gene sets were supplied with the input.
func (m *Model) HasGeneSets() bool { return m.hasGeneSets }

// GeneSets returns the ids of all gene sets, sorted.
func (m *Model) GeneSets() []string {
	return slices.Sorted(maps.Keys(m.geneSets))
}

// GeneSetMembers returns the node ids listed in gene set id.
func (m *Model) GeneSetMembers(id string) ([]string, bool) {
	members, ok := m.geneSets[id]
	return members, ok
}

// NodeHasSample reports whether any link touching node n carries a path
// from or to sample.
func (m *Model) NodeHasSample(n *Node, sample string) bool {
	for _, l := range m.Links {
		if (l.Source == n || l.Target == n) && l.HasSample(sample) {
			return true
		}
	}
	return false
}

// ConditionsPresent returns the conditions in which gene of interest g is
// set for node n, in condition order.
func (m *Model) ConditionsPresent(n *Node, g int) []string {
	var out []string
	for i, set := range n.Samples[g] {
		if set && i < len(m.Conditions) {
			out = append(out, m.Conditions[i])
		}
	}
	return out
}

// =============================================================================
// Layout Support
// =============================================================================

// CanvasSize returns the default drawing area for the model,
// 300·√n by 200·√n for n nodes.
func (m *Model) CanvasSize() (width, height float64) {
	s := math.Sqrt(float64(len(m.Nodes)))
	return 300 * s, 200 * s
}

// Point is a 2D position.
type Point struct{ X, Y float64 }

// SeedPositions places every node inside the diagonal band of its group so
// that components start apart:
//
//	x = width/G · (group + 0.5 + U[0,1))
//	y = height/G · (group + 0.5 + U[0,1))
//
// The jitter keeps nodes of one group from starting on the same point.
func (m *Model) SeedPositions(width, height float64, rng *rand.Rand) []Point {
	out := make([]Point, len(m.Nodes))
	if m.groupCount == 0 {
		return out
	}
	g := float64(m.groupCount)
	for i, n := range m.Nodes {
		out[i] = Point{
			X: width / g * (float64(n.Group) + 0.5 + rng.Float64()),
			Y: height / g * (float64(n.Group) + 0.5 + rng.Float64()),
		}
	}
	return out
}

// LinkStrength is the out-degree heuristic that scales link springs.
// Leaves pointed at by a single link pull hardest; links between two hubs
// pull the least.
func (m *Model) LinkStrength(l *Link) float64 {
	src, tgt := m.outDegree[l.Source.Index], m.outDegree[l.Target.Index]
	switch {
	case tgt == 1:
		return 0.9
	case src > 5 && tgt < 3:
		return 0.7
	case src < 4 || tgt < 4:
		return 0.3
	case src > 10 || tgt > 10:
		return 0.3
	}
	return 0.4
}
