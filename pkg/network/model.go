// Package network builds the in-memory model of an interaction network.
//
// [Build] turns a [graph.Document] and a [paths.Index] into a [Model]: nodes
// with decoded presence vectors, opacities, radii and connected-component
// groups; links with their paths, weights and opacities; degree tables and an
// undirected adjacency relation. The model is immutable after Build apart from
// node positions, which belong to the layout engine.
package network

import (
	"math"
	"slices"

	"github.com/marchallab/netview/pkg/bitvec"
	"github.com/marchallab/netview/pkg/errors"
	"github.com/marchallab/netview/pkg/graph"
	"github.com/marchallab/netview/pkg/paths"
)

// Visual sizing constants.
const (
	DefaultBaseRadius = 7.5
	ScalingFactor     = 1.6
	PieSize           = ScalingFactor
	BasePieSize       = 0.375 * PieSize
	PieLimit          = 24
)

// Opacities assigned by Build.
const (
	OpacityActive   = 1.0
	OpacityInactive = 0.3
	OpacityDimmed   = 0.1
)

// Options configures Build.
type Options struct {
	// BaseRadius is the unscaled node radius. Zero means DefaultBaseRadius.
	BaseRadius float64
}

// Node is a gene or protein in the model.
type Node struct {
	Index   int
	ID      string
	Product string
	Group   int

	// Samples holds one presence vector per gene of interest, aligned with
	// Model.GenesOfInterest and each of length len(Model.Conditions).
	Samples      [][]bool
	CountPerGene []int
	Count        int

	Opacity       float64
	Radius        float64
	RadiusPerGene []float64

	geneSets []string
}

// GeneSetIDs returns the gene sets containing the node, sorted.
func (n *Node) GeneSetIDs() []string { return n.geneSets }

// InGeneSet reports whether the node belongs to gene set id.
func (n *Node) InGeneSet(id string) bool {
	_, ok := slices.BinarySearch(n.geneSets, id)
	return ok
}

// Link is an interaction between two nodes.
type Link struct {
	Index    int
	Source   *Node
	Target   *Node
	Type     string
	Directed bool
	Paths    []*paths.Path
	Weight   float64
	Opacity  float64
}

// Key returns the declared edge key "source;target".
func (l *Link) Key() string { return paths.EdgeKey(l.Source.ID, l.Target.ID) }

// Label returns the display form "source->target".
func (l *Link) Label() string { return l.Source.ID + "->" + l.Target.ID }

// HasSample reports whether any path on the link starts or ends in sample.
func (l *Link) HasSample(sample string) bool {
	for _, p := range l.Paths {
		if p.FromSample == sample || p.ToSample == sample {
			return true
		}
	}
	return false
}

// Model is the built network.
type Model struct {
	Nodes           []*Node
	Links           []*Link
	Conditions      []string
	GenesOfInterest []string
	BaseRadius      float64

	paths       *paths.Index
	byID        map[string]*Node
	byKey       map[string]*Link
	neighbors   [][]int
	adjacent    map[[2]int]bool
	inDegree    []int
	outDegree   []int
	groupCount  int
	geneSets    map[string][]string
	hasGeneSets bool
	maxWeight   float64
	drawPies    bool
}

// Build constructs the model. idx may be nil when no paths were supplied.
func Build(doc graph.Document, idx *paths.Index, opts Options) (*Model, error) {
	if opts.BaseRadius <= 0 {
		opts.BaseRadius = DefaultBaseRadius
	}
	if idx == nil {
		idx = paths.NewIndex()
	}
	net := doc.Graph

	m := &Model{
		Conditions:  slices.Clone(net.Conditions),
		BaseRadius:  opts.BaseRadius,
		paths:       idx,
		byID:        make(map[string]*Node, len(net.Nodes)),
		byKey:       make(map[string]*Link, len(net.Links)),
		adjacent:    make(map[[2]int]bool),
		hasGeneSets: doc.HasGeneSets(),
	}
	m.GenesOfInterest = genesOfInterest(net)
	m.drawPies = len(m.GenesOfInterest) == 0 || len(m.Conditions) <= PieLimit

	if err := m.buildNodes(net); err != nil {
		return nil, err
	}
	if err := m.buildLinks(net); err != nil {
		return nil, err
	}
	m.buildGroups()
	m.attachGeneSets(doc.GeneSets)
	return m, nil
}

// genesOfInterest returns the declared genes of interest extended by any
// further sample keys in first-seen order.
func genesOfInterest(net graph.Network) []string {
	out := slices.Clone(net.GenesOfInterest)
	seen := make(map[string]bool, len(out))
	for _, g := range out {
		seen[g] = true
	}
	for _, n := range net.Nodes {
		for _, s := range n.Samples {
			name := s.GeneName(net.GenesOfInterest)
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	return out
}

func (m *Model) buildNodes(net graph.Network) error {
	nodeSize := m.BaseRadius * ScalingFactor
	goiIndex := make(map[string]int, len(m.GenesOfInterest))
	for i, g := range m.GenesOfInterest {
		goiIndex[g] = i
	}

	m.Nodes = make([]*Node, len(net.Nodes))
	for i, in := range net.Nodes {
		if in.ID == "" {
			return errors.New(errors.ErrCodeInvalidInput, "node %d has an empty id", i)
		}
		if _, dup := m.byID[in.ID]; dup {
			return errors.New(errors.ErrCodeInvalidInput, "duplicate node id %q", in.ID)
		}

		n := &Node{
			Index:        i,
			ID:           in.ID,
			Product:      in.Product,
			Samples:      make([][]bool, len(m.GenesOfInterest)),
			CountPerGene: make([]int, len(m.GenesOfInterest)),
			Opacity:      OpacityInactive,
		}
		for g := range n.Samples {
			n.Samples[g] = make([]bool, len(m.Conditions))
		}
		for _, s := range in.Samples {
			g := goiIndex[s.GeneName(net.GenesOfInterest)]
			n.Samples[g] = bitvec.Decode(s.Bits, len(m.Conditions))
		}
		for g, bits := range n.Samples {
			c := bitvec.Count(bits)
			n.CountPerGene[g] = c
			n.Count += c
			if c > 0 {
				n.Opacity = OpacityActive
			}
		}

		n.Radius = nodeSize
		if !m.drawPies {
			n.Radius += float64(n.Count) * PieSize
		}
		n.RadiusPerGene = make([]float64, len(n.CountPerGene))
		for g, c := range n.CountPerGene {
			n.RadiusPerGene[g] = nodeSize + math.Sqrt(float64(c))*PieSize
		}

		m.Nodes[i] = n
		m.byID[n.ID] = n
	}
	m.neighbors = make([][]int, len(m.Nodes))
	m.inDegree = make([]int, len(m.Nodes))
	m.outDegree = make([]int, len(m.Nodes))
	return nil
}

func (m *Model) buildLinks(net graph.Network) error {
	m.Links = make([]*Link, len(net.Links))
	for i, in := range net.Links {
		src, ok := m.byID[in.Source]
		if !ok {
			return errors.New(errors.ErrCodeInvalidInput, "link %d references unknown source %q", i, in.Source)
		}
		tgt, ok := m.byID[in.Target]
		if !ok {
			return errors.New(errors.ErrCodeInvalidInput, "link %d references unknown target %q", i, in.Target)
		}

		l := &Link{
			Index:    i,
			Source:   src,
			Target:   tgt,
			Type:     in.Type,
			Directed: !in.IsUndirected(),
		}
		key := l.Key()
		m.byKey[key] = l
		if !l.Directed {
			rev := paths.EdgeKey(tgt.ID, src.ID)
			if _, taken := m.byKey[rev]; !taken {
				m.byKey[rev] = l
			}
		}

		m.outDegree[src.Index]++
		m.inDegree[tgt.Index]++
		m.neighbors[src.Index] = append(m.neighbors[src.Index], tgt.Index)
		m.neighbors[tgt.Index] = append(m.neighbors[tgt.Index], src.Index)
		m.adjacent[[2]int{src.Index, tgt.Index}] = true
		m.adjacent[[2]int{tgt.Index, src.Index}] = true
		m.Links[i] = l
	}

	for _, l := range m.Links {
		l.Paths = m.linkPaths(l)
		for _, p := range l.Paths {
			l.Weight += p.Score
		}
		m.maxWeight = math.Max(m.maxWeight, l.Weight)
	}
	for _, l := range m.Links {
		l.Opacity = LinkOpacity(l.Weight, m.maxWeight)
	}
	return nil
}

// linkPaths returns the paths crossing l. An undirected link also collects
// the paths walking it backwards, unless another link owns the reverse key.
// Like [paths.Index.ByEdge], a path crossing the link twice is listed twice.
func (m *Model) linkPaths(l *Link) []*paths.Path {
	ps := m.paths.ByEdge(l.Key())
	if l.Directed {
		return ps
	}
	rev := paths.EdgeKey(l.Target.ID, l.Source.ID)
	if m.byKey[rev] != l {
		return ps
	}
	back := m.paths.ByEdge(rev)
	if len(back) == 0 {
		return ps
	}
	out := make([]*paths.Path, 0, len(ps)+len(back))
	return append(append(out, ps...), back...)
}

// LinkOpacity maps a weight onto [1/8, 1] relative to the heaviest link.
// With no weighted links every link gets the minimum 1/8.
func LinkOpacity(weight, maxWeight float64) float64 {
	if maxWeight <= 0 {
		return 1.0 / 8
	}
	return (weight/maxWeight*7 + 1) / 8
}

func (m *Model) buildGroups() {
	edges := make([][2]int, len(m.Links))
	for i, l := range m.Links {
		edges[i] = [2]int{l.Source.Index, l.Target.Index}
	}
	groups, count := assignGroups(len(m.Nodes), edges)
	for i, n := range m.Nodes {
		n.Group = groups[i]
	}
	m.groupCount = count
}

func (m *Model) attachGeneSets(sets map[string][]string) {
	m.geneSets = make(map[string][]string, len(sets))
	for id, members := range sets {
		m.geneSets[id] = slices.Clone(members)
		for _, nodeID := range members {
			if n, ok := m.byID[nodeID]; ok && !n.InGeneSet(id) {
				n.geneSets = append(n.geneSets, id)
				slices.Sort(n.geneSets)
			}
		}
	}
}
