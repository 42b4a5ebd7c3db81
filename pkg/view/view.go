// Package view composes the model, the layout simulations and the highlight
// controller into an interactive viewer.
//
// A [Viewer] is what a rendering surface drives: it calls [Viewer.Tick] once
// per animation frame, draws the [Frame] returned by [Viewer.Frame], and
// forwards pointer and menu events to the focus and drag methods. Frames are
// copies; renderers never see live simulation state.
//
// A Viewer is owned by a single goroutine. Only the highlight cooldown runs
// elsewhere, and the controller guards it.
package view

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/marchallab/netview/pkg/errors"
	"github.com/marchallab/netview/pkg/force"
	"github.com/marchallab/netview/pkg/graph"
	"github.com/marchallab/netview/pkg/highlight"
	"github.com/marchallab/netview/pkg/network"
	"github.com/marchallab/netview/pkg/spatial"
)

// Force parameters of the main simulation.
const (
	Charge            = -3000
	XStrength         = 0.2
	YStrength         = 0.3
	LinkDistance      = 50
	LinkStrengthScale = 3

	// DefaultCharWidth estimates label text width per character.
	DefaultCharWidth = 7
)

// Frame is a snapshot of the viewer for one animation frame.
type Frame = graph.Layout

// Options configures a Viewer.
type Options struct {
	// Width and Height of the canvas. Zero uses the model's default size.
	Width, Height float64

	// Seed drives initial placement and jiggle. Equal seeds give equal runs.
	Seed uint64

	// Index is the spatial index used by the collision force; nil uses a
	// quadtree.
	Index spatial.Index

	// NoLabels disables the label simulation.
	NoLabels bool

	// CharWidth estimates label width from the node id length.
	CharWidth float64

	Mode      highlight.Mode
	Scheduler highlight.Scheduler
	Cooldown  time.Duration
}

// Viewer is an interactive network view.
type Viewer struct {
	model  *network.Model
	width  float64
	height float64
	seed   uint64

	charWidth float64

	sim       *force.Simulation
	particles []*force.Particle
	labels    *force.Labels
	drag      *force.Drag
	highlight *highlight.Controller
}

// New creates a viewer with nodes seeded in their group bands.
func New(m *network.Model, opts Options) *Viewer {
	w, h := opts.Width, opts.Height
	if w <= 0 || h <= 0 {
		w, h = m.CanvasSize()
	}
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))

	seeds := m.SeedPositions(w, h, rng)
	particles := make([]*force.Particle, len(m.Nodes))
	groups := make([]int, len(m.Nodes))
	// Collision spacing uses the base radius for every node, so pies and
	// sample counts do not push neighbours further apart.
	radii := make([]float64, len(m.Nodes))
	for i, n := range m.Nodes {
		particles[i] = &force.Particle{X: seeds[i].X, Y: seeds[i].Y}
		groups[i] = n.Group
		radii[i] = m.BaseRadius
	}

	springs := make([]force.Spring, len(m.Links))
	for i, l := range m.Links {
		springs[i] = force.Spring{
			Source:   l.Source.Index,
			Target:   l.Target.Index,
			Distance: LinkDistance,
			Strength: LinkStrengthScale * m.LinkStrength(l),
		}
	}

	collide := force.NewCollide(groups, radii, m.BaseRadius)
	collide.Index = opts.Index

	sim := force.New(particles, force.WithRand(rng))
	sim.AddForce("charge", force.NewManyBody(Charge)).
		AddForce("center", force.NewCenter(w/2, h/2)).
		AddForce("x", force.NewPositionX(w, XStrength)).
		AddForce("y", force.NewPositionY(h, YStrength)).
		AddForce("cluster", force.NewCluster(groups, radii)).
		AddForce("collide", collide).
		AddForce("link", force.NewLink(springs))

	v := &Viewer{
		model:     m,
		width:     w,
		height:    h,
		seed:      opts.Seed,
		charWidth: opts.CharWidth,
		sim:       sim,
		particles: particles,
		drag:      force.NewDrag(sim),
	}
	if v.charWidth <= 0 {
		v.charWidth = DefaultCharWidth
	}
	if !opts.NoLabels {
		v.labels = force.NewLabels(len(m.Nodes), rand.New(rand.NewPCG(opts.Seed+1, 0)))
	}

	var hopts []highlight.ControllerOption
	if opts.Mode != "" {
		hopts = append(hopts, highlight.WithMode(opts.Mode))
	}
	if opts.Scheduler != nil {
		hopts = append(hopts, highlight.WithScheduler(opts.Scheduler))
	}
	if opts.Cooldown > 0 {
		hopts = append(hopts, highlight.WithCooldown(opts.Cooldown))
	}
	v.highlight = highlight.NewController(m, hopts...)
	return v
}

// Model returns the viewed model.
func (v *Viewer) Model() *network.Model { return v.model }

// Simulation returns the main layout simulation.
func (v *Viewer) Simulation() *force.Simulation { return v.sim }

// Highlight returns the highlight controller.
func (v *Viewer) Highlight() *highlight.Controller { return v.highlight }

// Size returns the canvas size.
func (v *Viewer) Size() (width, height float64) { return v.width, v.height }

// Close releases the highlight cooldown timer.
func (v *Viewer) Close() { v.highlight.Close() }

// =============================================================================
// Simulation
// =============================================================================

// Tick advances the layout by one step and moves the labels along. It
// reports whether anything moved; a settled layout stays still until it is
// reheated by a drag.
func (v *Viewer) Tick() bool {
	if !v.sim.Step() {
		return false
	}
	if v.labels != nil {
		v.labels.Follow(v.particles)
	}
	return true
}

// Settle ticks until the layout settles or maxTicks ticks have run, and
// returns the number of ticks taken.
func (v *Viewer) Settle(maxTicks int) int {
	n := 0
	for n < maxTicks && v.Tick() {
		n++
	}
	return n
}

// Settled reports whether the layout has cooled down.
func (v *Viewer) Settled() bool { return v.sim.State() == force.Settled }

// Run ticks once per value received from frames and passes every new frame to
// emit. It returns when ctx is done or frames is closed.
func (v *Viewer) Run(ctx context.Context, frames <-chan time.Time, emit func(Frame)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-frames:
			if !ok {
				return nil
			}
			if v.Tick() {
				emit(v.Frame())
			}
		}
	}
}

// =============================================================================
// Drag
// =============================================================================

// DragStart pins node id where it is and reheats the layout.
func (v *Viewer) DragStart(id string) error {
	n, err := v.node(id)
	if err != nil {
		return err
	}
	v.drag.Start(n.Index)
	return nil
}

// DragMove moves the pin of node id to (x, y).
func (v *Viewer) DragMove(id string, x, y float64) error {
	n, err := v.node(id)
	if err != nil {
		return err
	}
	if !v.drag.Move(n.Index, x, y) {
		return errors.New(errors.ErrCodeInvalidInput, "invalid drag position (%v, %v)", x, y)
	}
	return nil
}

// DragEnd finishes dragging node id. The node stays pinned.
func (v *Viewer) DragEnd(id string) error {
	n, err := v.node(id)
	if err != nil {
		return err
	}
	v.drag.End(n.Index)
	return nil
}

// Unfreeze releases every pinned node.
func (v *Viewer) Unfreeze() { v.drag.Unfreeze() }

func (v *Viewer) node(id string) (*network.Node, error) {
	n, ok := v.model.NodeByID(id)
	if !ok {
		return nil, errors.New(errors.ErrCodeNodeNotFound, "node %q not found", id)
	}
	return n, nil
}

// =============================================================================
// Highlighting
// =============================================================================

// Focus applies a hover on t.
func (v *Viewer) Focus(t highlight.Target) (bool, error) { return v.highlight.Hover(t) }

// Click applies a click on t.
func (v *Viewer) Click(t highlight.Target) (bool, error) { return v.highlight.Click(t) }

// Select applies a menu selection of t.
func (v *Viewer) Select(t highlight.Target) (bool, error) { return v.highlight.Select(t) }

// ClearHighlight restores the unfocused view.
func (v *Viewer) ClearHighlight() { v.highlight.Clear() }

// SetMode changes the highlight mode.
func (v *Viewer) SetMode(m highlight.Mode) { v.highlight.SetMode(m) }

// HighlightGeneSet highlights the members of a gene set.
func (v *Viewer) HighlightGeneSet(id string) error {
	_, err := v.highlight.GeneSet(id)
	return err
}

// HighlightSample highlights the links of one condition.
func (v *Viewer) HighlightSample(sample string) error {
	_, err := v.highlight.Sample(sample)
	return err
}

// =============================================================================
// Frames
// =============================================================================

// Frame returns a snapshot of positions and highlight state. Non-finite
// coordinates are reported as 0.
func (v *Viewer) Frame() Frame {
	hl := v.highlight.Current()
	st := v.highlight.State()
	info := hl.Info

	f := Frame{
		Width:  v.width,
		Height: v.height,
		Nodes:  make([]graph.PlacedNode, len(v.model.Nodes)),
		Links:  make([]graph.PlacedLink, len(v.model.Links)),
		Ticks:  v.sim.Ticks(),
		Alpha:  v.sim.Alpha(),
		Seed:   v.seed,
		Mode:   st.Mode.String(),
		Info:   &info,
	}
	if !st.Focus.IsZero() {
		f.Focus = st.Focus.ID
	}

	for i, n := range v.model.Nodes {
		p := v.particles[i]
		pn := graph.PlacedNode{
			ID:            n.ID,
			X:             force.Finite(p.X),
			Y:             force.Finite(p.Y),
			Radius:        n.Radius,
			Group:         n.Group,
			Opacity:       hl.NodeOpacity[i],
			Pinned:        p.Pinned,
			Label:         hl.LabelVisible[i],
			CountPerGene:  n.CountPerGene,
			RadiusPerGene: n.RadiusPerGene,
		}
		pn.LabelX, pn.LabelY = pn.X, pn.Y
		if v.labels != nil {
			lx, ly := v.labels.Position(i)
			dx, dy := v.labels.Offset(i, v.charWidth*float64(len(n.ID)))
			pn.LabelX, pn.LabelY = lx+dx, ly+dy
		}
		f.Nodes[i] = pn
	}

	for i, l := range v.model.Links {
		src, tgt := f.Nodes[l.Source.Index], f.Nodes[l.Target.Index]
		f.Links[i] = graph.PlacedLink{
			Source:   l.Source.ID,
			Target:   l.Target.ID,
			Type:     l.Type,
			Directed: l.Directed,
			Weight:   l.Weight,
			Opacity:  hl.LinkOpacity[i],
			X1:       src.X,
			Y1:       src.Y,
			X2:       tgt.X,
			Y2:       tgt.Y,
		}
	}
	return f
}
