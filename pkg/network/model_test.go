package network

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marchallab/netview/pkg/bitvec"
	"github.com/marchallab/netview/pkg/errors"
	"github.com/marchallab/netview/pkg/graph"
	"github.com/marchallab/netview/pkg/paths"
)

func testDocument() graph.Document {
	return graph.Document{
		Graph: graph.Network{
			Nodes: []graph.Node{
				{ID: "A", Samples: graph.Samples{{Gene: "mutation", Bits: bitvec.Encode([]bool{true, false})}}},
				{ID: "B", Samples: graph.Samples{{Gene: "mutation", Bits: ""}}},
				{ID: "C"},
				{ID: "D", Samples: graph.Samples{{Gene: "expression", Bits: bitvec.Encode([]bool{true, true})}}},
				{ID: "E"},
			},
			Links: []graph.Link{
				{Source: "A", Target: "B", Type: "pp", Direction: graph.DirectionUndirected},
				{Source: "C", Target: "B", Type: "pd"},
				{Source: "D", Target: "E", Type: "met"},
			},
			Conditions:      []string{"s1", "s2"},
			GenesOfInterest: []string{"mutation"},
		},
		Paths: map[string][]string{
			"expression": {
				"s1\ts1\t2.0\tA->B<-C",
				"s2\ts1\t1.0\tA->B",
			},
		},
		GeneSets: map[string][]string{
			"setY": {"A", "C"},
			"setX": {"A", "missing"},
		},
	}
}

func buildTestModel(t *testing.T) *Model {
	t.Helper()
	doc := testDocument()
	idx, err := paths.Parse(doc.Paths)
	require.NoError(t, err)
	m, err := Build(doc, idx, Options{})
	require.NoError(t, err)
	return m
}

func TestBuildNodes(t *testing.T) {
	m := buildTestModel(t)

	assert.Equal(t, []string{"mutation", "expression"}, m.GenesOfInterest)
	require.Len(t, m.Nodes, 5)

	a, ok := m.NodeByID("A")
	require.True(t, ok)
	assert.Equal(t, [][]bool{{true, false}, {false, false}}, a.Samples)
	assert.Equal(t, []int{1, 0}, a.CountPerGene)
	assert.Equal(t, 1, a.Count)
	assert.Equal(t, OpacityActive, a.Opacity)

	b, _ := m.NodeByID("B")
	assert.Equal(t, OpacityInactive, b.Opacity)
	assert.Equal(t, 0, b.Count)

	d, _ := m.NodeByID("D")
	assert.Equal(t, []int{0, 2}, d.CountPerGene)

	_, ok = m.NodeByID("Z")
	assert.False(t, ok)
}

func TestBuildRadius(t *testing.T) {
	m := buildTestModel(t)
	require.True(t, m.DrawsPies())

	nodeSize := DefaultBaseRadius * ScalingFactor
	d, _ := m.NodeByID("D")
	assert.InDelta(t, nodeSize, d.Radius, 1e-9)
	assert.InDelta(t, nodeSize, d.RadiusPerGene[0], 1e-9)
	assert.InDelta(t, nodeSize+math.Sqrt(2)*PieSize, d.RadiusPerGene[1], 1e-9)
}

func TestBuildRadiusWithoutPies(t *testing.T) {
	doc := testDocument()
	doc.Graph.Conditions = make([]string, PieLimit+1)
	for i := range doc.Graph.Conditions {
		doc.Graph.Conditions[i] = "s"
	}
	doc.Paths = nil

	m, err := Build(doc, nil, Options{BaseRadius: 10})
	require.NoError(t, err)
	require.False(t, m.DrawsPies())

	d, _ := m.NodeByID("D")
	assert.Equal(t, 2, d.Count)
	assert.InDelta(t, 10*ScalingFactor+2*PieSize, d.Radius, 1e-9)
}

func TestBuildLinks(t *testing.T) {
	m := buildTestModel(t)

	ab, ok := m.LinkByKey("A;B")
	require.True(t, ok)
	assert.False(t, ab.Directed)
	assert.Len(t, ab.Paths, 2)
	assert.InDelta(t, 3.0, ab.Weight, 1e-9)
	assert.InDelta(t, 1.0, ab.Opacity, 1e-9)

	ba, ok := m.LinkByKey("B;A")
	require.True(t, ok, "undirected link resolves in both orientations")
	assert.Same(t, ab, ba)

	cb, ok := m.LinkByKey("C;B")
	require.True(t, ok)
	assert.InDelta(t, 2.0, cb.Weight, 1e-9)
	assert.InDelta(t, (2.0/3*7+1)/8, cb.Opacity, 1e-9)

	_, ok = m.LinkByKey("B;C")
	assert.False(t, ok, "directed link answers only to its declared key")

	de, _ := m.LinkByKey("D;E")
	assert.Empty(t, de.Paths)
	assert.Zero(t, de.Weight)
	assert.InDelta(t, 1.0/8, de.Opacity, 1e-9)

	assert.Equal(t, "A->B", ab.Label())
	assert.True(t, ab.HasSample("s2"))
	assert.False(t, de.HasSample("s1"))
}

func TestLinkOpacityNoWeights(t *testing.T) {
	assert.InDelta(t, 1.0/8, LinkOpacity(0, 0), 1e-12)
	assert.False(t, math.IsNaN(LinkOpacity(0, 0)))
	assert.InDelta(t, 1.0, LinkOpacity(4, 4), 1e-12)
	assert.InDelta(t, 0.5625, LinkOpacity(2, 4), 1e-12)
}

func TestUndirectedLinkCollectsReversedPaths(t *testing.T) {
	build := func(t *testing.T, links []graph.Link, records ...string) *Model {
		t.Helper()
		doc := graph.Document{
			Graph: graph.Network{
				Nodes: []graph.Node{{ID: "A"}, {ID: "B"}},
				Links: links,
			},
			Paths: map[string][]string{"expression": records},
		}
		idx, err := paths.Parse(doc.Paths)
		require.NoError(t, err)
		m, err := Build(doc, idx, Options{})
		require.NoError(t, err)
		return m
	}

	t.Run("reversed walk", func(t *testing.T) {
		m := build(t, []graph.Link{{Source: "A", Target: "B", Type: "pp", Direction: graph.DirectionUndirected}},
			"s1\ts1\t2.0\tB->A")
		ab, ok := m.LinkByKey("A;B")
		require.True(t, ok)
		require.Len(t, ab.Paths, 1)
		assert.Equal(t, []string{"B;A"}, ab.Paths[0].Edges)
		assert.InDelta(t, 2.0, ab.Weight, 1e-9)
		assert.InDelta(t, 1.0, ab.Opacity, 1e-9)
	})

	t.Run("both directions", func(t *testing.T) {
		m := build(t, []graph.Link{{Source: "A", Target: "B", Type: "pp", Direction: graph.DirectionUndirected}},
			"s1\ts1\t2.0\tA->B", "s2\ts1\t1.0\tB->A")
		ab, _ := m.LinkByKey("B;A")
		assert.Len(t, ab.Paths, 2)
		assert.InDelta(t, 3.0, ab.Weight, 1e-9)
	})

	t.Run("reverse key owned by a directed link", func(t *testing.T) {
		m := build(t, []graph.Link{
			{Source: "B", Target: "A", Type: "pd"},
			{Source: "A", Target: "B", Type: "pp", Direction: graph.DirectionUndirected},
		}, "s1\ts1\t2.0\tB->A")
		ba, _ := m.LinkByKey("B;A")
		ab, _ := m.LinkByKey("A;B")
		assert.NotSame(t, ab, ba)
		assert.Len(t, ba.Paths, 1)
		assert.Empty(t, ab.Paths)
		assert.Zero(t, ab.Weight)
	})
}

func TestAdjacency(t *testing.T) {
	m := buildTestModel(t)
	a, _ := m.NodeByID("A")
	b, _ := m.NodeByID("B")
	c, _ := m.NodeByID("C")
	d, _ := m.NodeByID("D")

	assert.True(t, m.Adjacent(a.Index, a.Index))
	assert.True(t, m.Adjacent(a.Index, b.Index))
	assert.True(t, m.Adjacent(b.Index, a.Index))
	assert.True(t, m.Adjacent(b.Index, c.Index))
	assert.False(t, m.Adjacent(a.Index, c.Index))
	assert.False(t, m.Adjacent(a.Index, d.Index))

	assert.ElementsMatch(t, []int{a.Index, c.Index}, m.Neighbors(b.Index))
	assert.Equal(t, 2, m.InDegree(b.Index))
	assert.Equal(t, 1, m.OutDegree(a.Index))
	assert.Equal(t, 0, m.OutDegree(b.Index))
}

func TestGroups(t *testing.T) {
	m := buildTestModel(t)
	assert.Equal(t, 2, m.GroupCount())

	want := map[string]int{"A": 0, "B": 0, "C": 0, "D": 1, "E": 1}
	for id, g := range want {
		n, _ := m.NodeByID(id)
		assert.Equal(t, g, n.Group, "group of %s", id)
	}
	assert.Len(t, m.GroupMembers(0), 3)
	assert.Len(t, m.GroupMembers(1), 2)
}

func TestGeneSets(t *testing.T) {
	m := buildTestModel(t)
	assert.True(t, m.HasGeneSets())
	assert.Equal(t, []string{"setX", "setY"}, m.GeneSets())

	a, _ := m.NodeByID("A")
	assert.Equal(t, []string{"setX", "setY"}, a.GeneSetIDs())
	assert.True(t, a.InGeneSet("setY"))

	b, _ := m.NodeByID("B")
	assert.Empty(t, b.GeneSetIDs())
	assert.False(t, b.InGeneSet("setX"))

	members, ok := m.GeneSetMembers("setX")
	assert.True(t, ok)
	assert.Equal(t, []string{"A", "missing"}, members)
}

func TestSamplesQueries(t *testing.T) {
	m := buildTestModel(t)
	a, _ := m.NodeByID("A")
	c, _ := m.NodeByID("C")
	e, _ := m.NodeByID("E")

	assert.Equal(t, []string{"s1"}, m.ConditionsPresent(a, 0))
	assert.Empty(t, m.ConditionsPresent(a, 1))

	assert.True(t, m.NodeHasSample(a, "s2"))
	assert.True(t, m.NodeHasSample(c, "s1"))
	assert.False(t, m.NodeHasSample(c, "s2"))
	assert.False(t, m.NodeHasSample(e, "s1"))
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d *graph.Document)
	}{
		{"duplicate id", func(d *graph.Document) { d.Graph.Nodes[1].ID = "A" }},
		{"unknown source", func(d *graph.Document) { d.Graph.Links[0].Source = "Q" }},
		{"unknown target", func(d *graph.Document) { d.Graph.Links[2].Target = "Q" }},
		{"empty id", func(d *graph.Document) { d.Graph.Nodes[4].ID = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := testDocument()
			tt.mutate(&doc)
			_, err := Build(doc, nil, Options{})
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
		})
	}
}

func TestSeedPositions(t *testing.T) {
	m := buildTestModel(t)
	w, h := m.CanvasSize()
	assert.InDelta(t, 300*math.Sqrt(5), w, 1e-9)
	assert.InDelta(t, 200*math.Sqrt(5), h, 1e-9)

	pos := m.SeedPositions(w, h, rand.New(rand.NewPCG(1, 1)))
	require.Len(t, pos, 5)

	g := float64(m.GroupCount())
	for i, n := range m.Nodes {
		lo := w / g * (float64(n.Group) + 0.5)
		assert.GreaterOrEqual(t, pos[i].X, lo)
		assert.Less(t, pos[i].X, lo+w/g)
		loY := h / g * (float64(n.Group) + 0.5)
		assert.GreaterOrEqual(t, pos[i].Y, loY)
		assert.Less(t, pos[i].Y, loY+h/g)
	}

	again := m.SeedPositions(w, h, rand.New(rand.NewPCG(1, 1)))
	assert.Equal(t, pos, again, "seeding is deterministic for a fixed source")
}

func TestLinkStrength(t *testing.T) {
	// hub has out-degree 7; leaf0 has out-degree 1 (points back at hub).
	doc := graph.Document{Graph: graph.Network{}}
	add := func(id string) { doc.Graph.Nodes = append(doc.Graph.Nodes, graph.Node{ID: id}) }
	link := func(s, t string) {
		doc.Graph.Links = append(doc.Graph.Links, graph.Link{Source: s, Target: t, Type: "pp"})
	}
	add("hub")
	for _, id := range []string{"l0", "l1", "l2", "l3", "l4", "l5", "l6"} {
		add(id)
		link("hub", id)
	}
	link("l0", "hub")
	link("l1", "l2")
	link("l1", "l3")

	m, err := Build(doc, nil, Options{})
	require.NoError(t, err)

	byKey := func(k string) *Link {
		l, ok := m.LinkByKey(k)
		require.True(t, ok, k)
		return l
	}

	// target l0 has out-degree 1
	assert.Equal(t, 0.9, m.LinkStrength(byKey("hub;l0")))
	// source hub out 7 > 5, target l4 out 0 < 3
	assert.Equal(t, 0.7, m.LinkStrength(byKey("hub;l4")))
	// target l1 out 2 < 3 with hub > 5
	assert.Equal(t, 0.7, m.LinkStrength(byKey("hub;l1")))
	// l1 out 2 < 4
	assert.Equal(t, 0.3, m.LinkStrength(byKey("l1;l2")))
	// l0 -> hub: target hub out 7, source l0 out 1 < 4
	assert.Equal(t, 0.3, m.LinkStrength(byKey("l0;hub")))
}

func TestLinkStrengthHubs(t *testing.T) {
	doc := graph.Document{}
	for _, id := range []string{"a", "b"} {
		doc.Graph.Nodes = append(doc.Graph.Nodes, graph.Node{ID: id})
	}
	for i := 0; i < 12; i++ {
		id := string(rune('c' + i))
		doc.Graph.Nodes = append(doc.Graph.Nodes, graph.Node{ID: id})
		doc.Graph.Links = append(doc.Graph.Links,
			graph.Link{Source: "a", Target: id}, graph.Link{Source: "b", Target: id})
	}
	doc.Graph.Links = append(doc.Graph.Links, graph.Link{Source: "a", Target: "b"})

	m, err := Build(doc, nil, Options{})
	require.NoError(t, err)
	l, ok := m.LinkByKey("a;b")
	require.True(t, ok)
	// a out 13, b out 12: neither leaf rule applies, both above 10
	assert.Equal(t, 0.3, m.LinkStrength(l))

	doc2 := graph.Document{}
	for _, id := range []string{"a", "b"} {
		doc2.Graph.Nodes = append(doc2.Graph.Nodes, graph.Node{ID: id})
	}
	for i := 0; i < 5; i++ {
		id := string(rune('c' + i))
		doc2.Graph.Nodes = append(doc2.Graph.Nodes, graph.Node{ID: id})
		doc2.Graph.Links = append(doc2.Graph.Links,
			graph.Link{Source: "a", Target: id}, graph.Link{Source: "b", Target: id})
	}
	doc2.Graph.Links = append(doc2.Graph.Links, graph.Link{Source: "a", Target: "b"})
	m2, err := Build(doc2, nil, Options{})
	require.NoError(t, err)
	l2, _ := m2.LinkByKey("a;b")
	// a out 6, b out 5: mid-range hubs
	assert.Equal(t, 0.4, m2.LinkStrength(l2))
}
