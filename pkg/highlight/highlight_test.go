package highlight

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marchallab/netview/pkg/bitvec"
	"github.com/marchallab/netview/pkg/errors"
	"github.com/marchallab/netview/pkg/graph"
	"github.com/marchallab/netview/pkg/network"
	"github.com/marchallab/netview/pkg/paths"
)

func testModel(t *testing.T) *network.Model {
	t.Helper()
	doc := graph.Document{
		Graph: graph.Network{
			Nodes: []graph.Node{
				{ID: "A", Product: "kinase", Samples: graph.Samples{{Gene: "mutation", Bits: bitvec.Encode([]bool{true, false, false})}}},
				{ID: "B"},
				{ID: "C"},
				{ID: "D"},
				{ID: "E"},
			},
			Links: []graph.Link{
				{Source: "A", Target: "B", Type: "pp"},
				{Source: "B", Target: "C", Type: "pd"},
				{Source: "D", Target: "E", Type: "met", Direction: graph.DirectionUndirected},
			},
			Conditions:      []string{"s1", "s2", "s3"},
			GenesOfInterest: []string{"mutation"},
		},
		Paths: map[string][]string{
			"expression": {"s1\ts1\t1.0\tA->B->C"},
			"mutation":   {"s2\ts3\t0.5\tB->C"},
		},
		GeneSets: map[string][]string{
			"set1": {"A", "B"},
			"set2": {"A"},
		},
	}
	idx, err := paths.Parse(doc.Paths)
	require.NoError(t, err)
	m, err := network.Build(doc, idx, network.Options{})
	require.NoError(t, err)
	return m
}

// included returns the ids of nodes with visible labels.
func included(m *network.Model, r Result) []string {
	var out []string
	for i, n := range m.Nodes {
		if r.LabelVisible[i] {
			out = append(out, n.ID)
		}
	}
	return out
}

// includedLinks returns the keys of links kept at their base opacity.
func includedLinks(m *network.Model, r Result) []string {
	var out []string
	for i, l := range m.Links {
		if r.LinkOpacity[i] != network.OpacityDimmed {
			out = append(out, l.Key())
		}
	}
	return out
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
		err  bool
	}{
		{"paths", Paths, false},
		{" Component ", Component, false},
		{"neighbors", Neighbors, false},
		{"neighbours", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.err {
				assert.True(t, errors.Is(err, errors.ErrCodeInvalidMode))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTarget(t *testing.T) {
	assert.Equal(t, Target{}, ParseTarget(""))
	assert.Equal(t, NodeTarget("A"), ParseTarget("A"))
	assert.Equal(t, EdgeTarget("A;B"), ParseTarget("A;B"))
	assert.Equal(t, "edge A;B", ParseTarget("A;B").String())
}

func TestComputeNeighbors(t *testing.T) {
	m := testModel(t)
	r := Compute(m, State{Mode: Neighbors, Focus: NodeTarget("B")})

	assert.Equal(t, []string{"A", "B", "C"}, included(m, r))
	assert.Equal(t, []string{"A;B", "B;C"}, includedLinks(m, r))

	a, _ := m.NodeByID("A")
	b, _ := m.NodeByID("B")
	d, _ := m.NodeByID("D")
	assert.Equal(t, a.Opacity, r.NodeOpacity[a.Index])
	assert.Equal(t, b.Opacity, r.NodeOpacity[b.Index])
	assert.Equal(t, network.OpacityDimmed, r.NodeOpacity[d.Index])
	assert.Equal(t, "Selected node: B", r.Info.Title)
}

func TestComputeComponent(t *testing.T) {
	m := testModel(t)

	r := Compute(m, State{Mode: Component, Focus: NodeTarget("D")})
	assert.Equal(t, []string{"D", "E"}, included(m, r))
	assert.Equal(t, []string{"D;E"}, includedLinks(m, r))
	assert.Equal(t, []string{
		"No mutation.",
		"D is not present in any gene sets.",
	}, r.Info.Lines)

	r = Compute(m, State{Mode: Component, Focus: NodeTarget("A")})
	assert.Equal(t, []string{"A", "B", "C"}, included(m, r))
	assert.Equal(t, []string{
		"mutation in: s1.",
		"Product: kinase",
		"A is present in gene sets set1, set2.",
		"Conditions with links in the component: s1, s2.",
	}, r.Info.Lines)
}

func TestComputePathsByNode(t *testing.T) {
	m := testModel(t)
	r := Compute(m, State{Mode: Paths, Focus: NodeTarget("B")})

	assert.Equal(t, []string{"A", "B", "C"}, included(m, r))
	assert.Equal(t, []string{"A;B", "B;C"}, includedLinks(m, r))
	assert.Equal(t, "Highlighted entity B has paths:", r.Info.Title)
	assert.Equal(t, []string{
		"", "s1",
		"[expression] A->B->C (1)",
		"", "s2",
		"[mutation] B->C (0.5) (-> s3)",
	}, r.Info.Lines)
}

func TestComputePathsByEdge(t *testing.T) {
	m := testModel(t)
	r := Compute(m, State{Mode: Paths, Focus: EdgeTarget("A;B")})

	assert.Equal(t, []string{"A", "B", "C"}, included(m, r))
	assert.Equal(t, []string{"A;B", "B;C"}, includedLinks(m, r))
	assert.Equal(t, "Highlighted entity A->B has paths:", r.Info.Title)

	// no paths touch D;E: everything is dimmed
	r = Compute(m, State{Mode: Paths, Focus: EdgeTarget("E;D")})
	assert.Empty(t, included(m, r))
	assert.Empty(t, r.Info.Lines)
}

func TestComputeUndirectedEdgeReversedPath(t *testing.T) {
	doc := graph.Document{
		Graph: graph.Network{
			Nodes: []graph.Node{{ID: "A"}, {ID: "B"}},
			Links: []graph.Link{{Source: "A", Target: "B", Type: "pp", Direction: graph.DirectionUndirected}},
		},
		Paths: map[string][]string{"expression": {"s1\ts1\t2.0\tB->A"}},
	}
	idx, err := paths.Parse(doc.Paths)
	require.NoError(t, err)
	m, err := network.Build(doc, idx, network.Options{})
	require.NoError(t, err)

	for _, key := range []string{"A;B", "B;A"} {
		t.Run(key, func(t *testing.T) {
			r := Compute(m, State{Mode: Paths, Focus: EdgeTarget(key)})
			assert.Equal(t, []string{"A", "B"}, included(m, r))
			assert.Equal(t, []string{"A;B"}, includedLinks(m, r))
			assert.Equal(t, "Highlighted entity A->B has paths:", r.Info.Title)
			assert.Contains(t, r.Info.Lines, "[expression] B->A (2)")
		})
	}
}

func TestComputeUnknownFocusIsBaseline(t *testing.T) {
	m := testModel(t)
	assert.Equal(t, Baseline(m), Compute(m, State{Mode: Neighbors, Focus: NodeTarget("nope")}))
	assert.Equal(t, Baseline(m), Compute(m, State{Mode: Paths, Focus: EdgeTarget("A;C")}))
}

func TestBaselineRestoresExactly(t *testing.T) {
	m := testModel(t)
	base := Baseline(m)
	for i, n := range m.Nodes {
		assert.Equal(t, n.Opacity, base.NodeOpacity[i])
		assert.True(t, base.LabelVisible[i])
	}
	for i, l := range m.Links {
		assert.Equal(t, l.Opacity, base.LinkOpacity[i])
	}
	assert.Equal(t, DefaultInfoTitle, base.Info.Title)

	c := NewController(m, WithScheduler(NewManualScheduler()))
	before := c.Clear()
	for _, mode := range Modes {
		c.SetMode(mode)
		_, err := c.Hover(NodeTarget("B"))
		require.NoError(t, err)
		assert.Equal(t, before, c.Clear(), "mode %s", mode)
	}
}

func TestGeneSetAndSample(t *testing.T) {
	m := testModel(t)

	r, err := GeneSet(m, "set1")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, included(m, r))
	assert.Equal(t, []string{"A;B"}, includedLinks(m, r))
	assert.Equal(t, "Highlighting gene set set1", r.Info.Title)

	_, err = GeneSet(m, "nope")
	assert.True(t, errors.IsNotFound(err))

	r, err = Sample(m, "s3")
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "C"}, included(m, r))
	assert.Equal(t, []string{"B;C"}, includedLinks(m, r))

	_, err = Sample(m, "s9")
	assert.True(t, errors.IsNotFound(err))
}

func TestNodeInfoWithoutGeneSets(t *testing.T) {
	doc := graph.Document{Graph: graph.Network{
		Nodes:      []graph.Node{{ID: "X"}},
		Conditions: []string{"s1"},
	}}
	m, err := network.Build(doc, paths.NewIndex(), network.Options{})
	require.NoError(t, err)

	r := Compute(m, State{Mode: Neighbors, Focus: NodeTarget("X")})
	assert.Equal(t, []string{"No gene sets were provided to netview."}, r.Info.Lines)
}

func TestControllerCooldown(t *testing.T) {
	m := testModel(t)
	sched := NewManualScheduler()
	c := NewController(m, WithScheduler(sched), WithMode(Neighbors))

	changed, err := c.Click(NodeTarget("D"))
	require.NoError(t, err)
	assert.True(t, changed)
	assert.False(t, c.State().MouseoverEnabled)

	// hover during the cooldown is ignored
	changed, err = c.Hover(NodeTarget("A"))
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, NodeTarget("D"), c.State().Focus)

	// a second click restarts the cooldown
	sched.Advance(time.Second)
	_, err = c.Click(NodeTarget("E"))
	require.NoError(t, err)
	assert.Equal(t, 1, sched.Pending())

	sched.Advance(time.Second)
	assert.False(t, c.State().MouseoverEnabled)
	sched.Advance(DefaultCooldown)
	assert.True(t, c.State().MouseoverEnabled)
	assert.Zero(t, sched.Pending())

	changed, err = c.Hover(NodeTarget("A"))
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []string{"A", "B"}, included(m, c.Current()))
}

func TestControllerEdges(t *testing.T) {
	m := testModel(t)
	c := NewController(m, WithScheduler(NewManualScheduler()), WithMode(Neighbors))

	// edge hover outside paths mode changes nothing
	changed, err := c.Hover(EdgeTarget("A;B"))
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, Baseline(m), c.Current())

	_, err = c.Hover(EdgeTarget("A;C"))
	assert.True(t, errors.Is(err, errors.ErrCodeEdgeNotFound))
	_, err = c.Hover(NodeTarget("Q"))
	assert.True(t, errors.Is(err, errors.ErrCodeNodeNotFound))

	// selecting an edge switches to paths mode
	changed, err = c.Select(EdgeTarget("A;B"))
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, Paths, c.State().Mode)
	assert.Equal(t, "Highlighted entity A->B has paths:", c.Current().Info.Title)
}

func TestControllerModeAndFilters(t *testing.T) {
	m := testModel(t)
	var seen []string
	c := NewController(m,
		WithScheduler(NewManualScheduler()),
		WithOnChange(func(r Result) { seen = append(seen, r.Info.Title) }),
	)
	defer c.Close()

	_, err := c.Hover(NodeTarget("D"))
	require.NoError(t, err)
	assert.Equal(t, "Highlighted entity D has paths:", c.Current().Info.Title)

	r := c.SetMode(Component)
	assert.Equal(t, []string{"D", "E"}, included(m, r))

	_, err = c.GeneSet("set2")
	require.NoError(t, err)
	assert.True(t, c.State().Focus.IsZero())

	_, err = c.Sample("s1")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Highlighted entity D has paths:",
		"Selected node: D",
		"Highlighting gene set set2",
		"Highlighting sample s1",
	}, seen)
}

func TestManualSchedulerStop(t *testing.T) {
	s := NewManualScheduler()
	ran := 0
	tm := s.AfterFunc(time.Second, func() { ran++ })
	assert.True(t, tm.Stop())
	assert.False(t, tm.Stop())
	s.Advance(2 * time.Second)
	assert.Zero(t, ran)

	s.AfterFunc(time.Second, func() { ran++ })
	s.Advance(time.Second)
	assert.Equal(t, 1, ran)
}
