package view

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marchallab/netview/pkg/errors"
	"github.com/marchallab/netview/pkg/graph"
	"github.com/marchallab/netview/pkg/highlight"
	"github.com/marchallab/netview/pkg/network"
	"github.com/marchallab/netview/pkg/paths"
	"github.com/marchallab/netview/pkg/spatial"
)

func testModel(t *testing.T) *network.Model {
	t.Helper()
	doc := graph.Document{
		Graph: graph.Network{
			Nodes: []graph.Node{{ID: "A"}, {ID: "B"}, {ID: "C"}, {ID: "D"}, {ID: "E"}, {ID: "F"}},
			Links: []graph.Link{
				{Source: "A", Target: "B", Type: "pp"},
				{Source: "B", Target: "C", Type: "pd"},
				{Source: "A", Target: "C", Type: "pd"},
				{Source: "D", Target: "E", Type: "met", Direction: graph.DirectionUndirected},
			},
			Conditions: []string{"s1"},
		},
		Paths: map[string][]string{"expression": {"s1\ts1\t1.0\tA->B->C"}},
	}
	idx, err := paths.Parse(doc.Paths)
	require.NoError(t, err)
	m, err := network.Build(doc, idx, network.Options{})
	require.NoError(t, err)
	return m
}

func newViewer(t *testing.T, opts Options) *Viewer {
	t.Helper()
	if opts.Scheduler == nil {
		opts.Scheduler = highlight.NewManualScheduler()
	}
	v := New(testModel(t), opts)
	t.Cleanup(v.Close)
	return v
}

func TestSettleKeepsNodesApart(t *testing.T) {
	for _, idx := range []spatial.Index{nil, spatial.NewNaive()} {
		v := newViewer(t, Options{Seed: 42, Index: idx})
		ticks := v.Settle(1000)
		assert.True(t, v.Settled())
		assert.InDelta(t, 300, ticks, 2)
		assert.False(t, v.Tick(), "settled layout does not move")

		m := v.Model()
		f := v.Frame()
		const tolerance = 1.0
		for i, a := range m.Nodes {
			for j := i + 1; j < len(m.Nodes); j++ {
				b := m.Nodes[j]
				// 3 radii within a group, 6 across groups
				minDist := 6 * m.BaseRadius
				if a.Group == b.Group {
					minDist = 3 * m.BaseRadius
				}
				d := math.Hypot(f.Nodes[i].X-f.Nodes[j].X, f.Nodes[i].Y-f.Nodes[j].Y)
				assert.GreaterOrEqual(t, d, minDist-tolerance, "%s-%s", a.ID, b.ID)
			}
		}
	}
}

func TestFramesAreDeterministic(t *testing.T) {
	a := newViewer(t, Options{Seed: 7})
	b := newViewer(t, Options{Seed: 7})
	for range 25 {
		a.Tick()
		b.Tick()
	}
	assert.Equal(t, a.Frame(), b.Frame())

	c := newViewer(t, Options{Seed: 8})
	for range 25 {
		c.Tick()
	}
	assert.NotEqual(t, a.Frame().Nodes, c.Frame().Nodes)
}

func TestFrameContents(t *testing.T) {
	v := newViewer(t, Options{Seed: 1, Width: 600, Height: 400})
	v.Tick()
	f := v.Frame()

	assert.Equal(t, 600.0, f.Width)
	assert.Equal(t, 400.0, f.Height)
	assert.Equal(t, 1, f.Ticks)
	assert.Equal(t, "paths", f.Mode)
	require.NotNil(t, f.Info)
	assert.Equal(t, highlight.DefaultInfoTitle, f.Info.Title)
	require.Len(t, f.Nodes, 6)
	require.Len(t, f.Links, 4)

	for _, n := range f.Nodes {
		assert.False(t, math.IsNaN(n.X) || math.IsNaN(n.Y) || math.IsNaN(n.LabelX) || math.IsNaN(n.LabelY))
		assert.True(t, n.Label)
	}
	ab := f.Links[0]
	assert.Equal(t, "A", ab.Source)
	assert.Equal(t, f.Nodes[0].X, ab.X1)
	assert.Equal(t, f.Nodes[1].Y, ab.Y2)
	assert.True(t, ab.Directed)
	assert.False(t, f.Links[3].Directed)
}

func TestDragAndUnfreeze(t *testing.T) {
	v := newViewer(t, Options{Seed: 3})
	v.Settle(1000)
	require.True(t, v.Settled())

	require.NoError(t, v.DragStart("D"))
	require.NoError(t, v.DragMove("D", 10, 20))
	assert.False(t, v.Settled())
	require.True(t, v.Tick())

	f := v.Frame()
	d := f.Nodes[3]
	assert.Equal(t, 10.0, d.X)
	assert.Equal(t, 20.0, d.Y)
	assert.True(t, d.Pinned)

	require.NoError(t, v.DragEnd("D"))
	assert.Zero(t, v.Simulation().AlphaTarget())
	v.Tick()
	assert.True(t, v.Frame().Nodes[3].Pinned)

	v.Unfreeze()
	for _, n := range v.Frame().Nodes {
		assert.False(t, n.Pinned)
	}

	err := v.DragStart("nope")
	assert.True(t, errors.Is(err, errors.ErrCodeNodeNotFound))
	err = v.DragMove("D", math.Inf(1), 0)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

func TestHighlightInFrames(t *testing.T) {
	sched := highlight.NewManualScheduler()
	v := newViewer(t, Options{Seed: 5, Mode: highlight.Neighbors, Scheduler: sched})

	changed, err := v.Click(highlight.NodeTarget("D"))
	require.NoError(t, err)
	assert.True(t, changed)

	f := v.Frame()
	assert.Equal(t, "D", f.Focus)
	assert.Equal(t, "neighbors", f.Mode)
	assert.Equal(t, "Selected node: D", f.Info.Title)
	for i, n := range f.Nodes {
		want := n.ID == "D" || n.ID == "E"
		assert.Equal(t, want, n.Label, n.ID)
		if !want {
			assert.Equal(t, network.OpacityDimmed, f.Nodes[i].Opacity)
		}
	}

	// hover is gated until the cooldown passes
	changed, err = v.Focus(highlight.NodeTarget("A"))
	require.NoError(t, err)
	assert.False(t, changed)
	sched.Advance(highlight.DefaultCooldown)
	changed, err = v.Focus(highlight.NodeTarget("A"))
	require.NoError(t, err)
	assert.True(t, changed)

	v.SetMode(highlight.Paths)
	assert.Equal(t, "Highlighted entity A has paths:", v.Frame().Info.Title)

	v.ClearHighlight()
	f = v.Frame()
	assert.Empty(t, f.Focus)
	for _, n := range f.Nodes {
		assert.True(t, n.Label)
	}

	require.NoError(t, v.HighlightSample("s1"))
	assert.Equal(t, "Highlighting sample s1", v.Frame().Info.Title)
	assert.Error(t, v.HighlightGeneSet("none"))
}

func TestRun(t *testing.T) {
	v := newViewer(t, Options{Seed: 9, NoLabels: true})
	frames := make(chan time.Time, 3)
	for range 3 {
		frames <- time.Time{}
	}
	close(frames)

	var got []Frame
	err := v.Run(context.Background(), frames, func(f Frame) { got = append(got, f) })
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 3, got[2].Ticks)
	// without labels the label anchor is the node itself
	assert.Equal(t, got[2].Nodes[0].X, got[2].Nodes[0].LabelX)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = v.Run(ctx, make(chan time.Time), func(Frame) {})
	assert.ErrorIs(t, err, context.Canceled)
}
