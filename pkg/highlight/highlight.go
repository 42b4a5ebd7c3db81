// Package highlight computes which parts of a network are emphasised for a
// focused node or edge.
//
// [Compute] is a pure function of a [network.Model] and a [State]. It returns
// a [Result] with one opacity per node and link, one label visibility flag
// per node and an info panel. Included elements keep their base opacity;
// everything else is dimmed to [network.OpacityDimmed] so the layout stays
// readable around the focus.
//
// Three modes decide what "included" means for a focused node:
//
//   - [Neighbors]: the node and everything adjacent to it
//   - [Component]: every node in the node's connected component
//   - [Paths]: every node and link on a recorded path through the node
//
// Edge focus is only meaningful in [Paths] mode, where it shows the paths
// running over the edge.
//
// [Controller] wraps Compute with the interactive rules: hover is ignored for
// a cooldown after a click, and the cooldown is a cancellable scheduled
// callback so tests can drive it with a [ManualScheduler].
package highlight

import (
	"strings"

	"github.com/marchallab/netview/pkg/errors"
	"github.com/marchallab/netview/pkg/graph"
	"github.com/marchallab/netview/pkg/network"
	"github.com/marchallab/netview/pkg/paths"
)

// DefaultInfoTitle is shown when nothing is focused.
const DefaultInfoTitle = "Hover over a node to display available information."

// =============================================================================
// Modes
// =============================================================================

// Mode selects how a focused node is expanded into a highlighted set.
type Mode string

const (
	Neighbors Mode = "neighbors"
	Component Mode = "component"
	Paths     Mode = "paths"
)

// DefaultMode is the mode a fresh State starts in.
const DefaultMode = Paths

// Modes lists every mode in menu order.
var Modes = []Mode{Paths, Component, Neighbors}

// ParseMode returns the mode named s.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case Neighbors, Component, Paths:
		return m, nil
	}
	return "", errors.New(errors.ErrCodeInvalidMode, "unknown highlight mode %q (want paths, component or neighbors)", s)
}

func (m Mode) String() string { return string(m) }

// =============================================================================
// Targets
// =============================================================================

// Kind is the kind of element a Target points at.
type Kind int

const (
	None Kind = iota
	Node
	Edge
)

// Target is the focused element: a node id, an edge key "source;target" or
// nothing.
type Target struct {
	Kind Kind
	ID   string
}

// NodeTarget focuses node id.
func NodeTarget(id string) Target { return Target{Kind: Node, ID: id} }

// EdgeTarget focuses the edge with key "source;target".
func EdgeTarget(key string) Target { return Target{Kind: Edge, ID: key} }

// ParseTarget reads a target from its text form: empty for none, an edge key
// when the text contains ';' and a node id otherwise.
func ParseTarget(s string) Target {
	switch {
	case s == "":
		return Target{}
	case strings.Contains(s, ";"):
		return EdgeTarget(s)
	}
	return NodeTarget(s)
}

func (t Target) String() string {
	switch t.Kind {
	case Node:
		return "node " + t.ID
	case Edge:
		return "edge " + t.ID
	}
	return "none"
}

// IsZero reports whether the target is empty.
func (t Target) IsZero() bool { return t.Kind == None }

// =============================================================================
// State and Result
// =============================================================================

// State is the user-controlled highlight state.
type State struct {
	Mode             Mode
	MouseoverEnabled bool
	Focus            Target
}

// NewState returns the initial state: paths mode, hover enabled, no focus.
func NewState() State {
	return State{Mode: DefaultMode, MouseoverEnabled: true}
}

// Result is the visibility partition for one state.
type Result struct {
	NodeOpacity  []float64
	LinkOpacity  []float64
	LabelVisible []bool
	Info         graph.Info
}

// NodeIncluded reports whether node i is shown at more than the dimmed level
// or has its label visible.
func (r Result) NodeIncluded(i int) bool { return r.LabelVisible[i] }

// =============================================================================
// Compute
// =============================================================================

// Compute returns the highlight for st. Unknown focus targets produce the
// baseline.
func Compute(m *network.Model, st State) Result {
	switch st.Focus.Kind {
	case Node:
		n, ok := m.NodeByID(st.Focus.ID)
		if !ok {
			return Baseline(m)
		}
		return focusNode(m, n, st.Mode)
	case Edge:
		l, ok := m.LinkByKey(st.Focus.ID)
		if !ok {
			return Baseline(m)
		}
		return highlightPaths(m, l.Label(), l.Paths)
	}
	return Baseline(m)
}

// Baseline is the unfocused view: base opacities and every label visible.
func Baseline(m *network.Model) Result {
	r := newResult(m)
	for i, n := range m.Nodes {
		r.NodeOpacity[i] = n.Opacity
		r.LabelVisible[i] = true
	}
	for i, l := range m.Links {
		r.LinkOpacity[i] = l.Opacity
	}
	r.Info = graph.Info{Title: DefaultInfoTitle}
	return r
}

// GeneSet highlights the members of gene set id.
func GeneSet(m *network.Model, id string) (Result, error) {
	if _, ok := m.GeneSetMembers(id); !ok {
		return Result{}, errors.New(errors.ErrCodeNotFound, "gene set %q not found", id)
	}
	r := partition(m, func(n *network.Node) bool { return n.InGeneSet(id) })
	r.Info = graph.Info{Title: "Highlighting gene set " + id}
	return r, nil
}

// Sample highlights links carrying a path from or to condition sample and the
// nodes touching them.
func Sample(m *network.Model, sample string) (Result, error) {
	known := false
	for _, c := range m.Conditions {
		if c == sample {
			known = true
			break
		}
	}
	if !known {
		return Result{}, errors.New(errors.ErrCodeNotFound, "sample %q not found", sample)
	}

	r := newResult(m)
	for i, n := range m.Nodes {
		in := m.NodeHasSample(n, sample)
		r.NodeOpacity[i] = nodeOpacity(n, in)
		r.LabelVisible[i] = in
	}
	for i, l := range m.Links {
		r.LinkOpacity[i] = linkOpacity(l, l.HasSample(sample))
	}
	r.Info = graph.Info{Title: "Highlighting sample " + sample}
	return r, nil
}

func focusNode(m *network.Model, n *network.Node, mode Mode) Result {
	var r Result
	switch mode {
	case Paths:
		return highlightPaths(m, n.ID, m.Paths().ByNode(n.ID))
	case Component:
		r = partition(m, func(o *network.Node) bool { return o.Group == n.Group })
	default:
		r = partition(m, func(o *network.Node) bool { return m.Adjacent(n.Index, o.Index) })
	}
	r.Info = nodeInfo(m, n, mode)
	return r
}

// partition includes the nodes matching in and every link whose endpoints
// are both included.
func partition(m *network.Model, in func(*network.Node) bool) Result {
	r := newResult(m)
	for i, n := range m.Nodes {
		ok := in(n)
		r.NodeOpacity[i] = nodeOpacity(n, ok)
		r.LabelVisible[i] = ok
	}
	for i, l := range m.Links {
		ok := r.LabelVisible[l.Source.Index] && r.LabelVisible[l.Target.Index]
		r.LinkOpacity[i] = linkOpacity(l, ok)
	}
	return r
}

func highlightPaths(m *network.Model, id string, ps []*paths.Path) Result {
	nodes := make(map[string]bool)
	links := make(map[int]bool)
	for _, p := range ps {
		for _, key := range p.Edges {
			if l, ok := m.LinkByKey(key); ok {
				links[l.Index] = true
			}
		}
		for _, n := range p.Nodes {
			nodes[n] = true
		}
	}

	r := newResult(m)
	for i, n := range m.Nodes {
		ok := nodes[n.ID]
		r.NodeOpacity[i] = nodeOpacity(n, ok)
		r.LabelVisible[i] = ok
	}
	for i, l := range m.Links {
		r.LinkOpacity[i] = linkOpacity(l, links[l.Index])
	}
	r.Info = pathsInfo(id, ps)
	return r
}

func newResult(m *network.Model) Result {
	return Result{
		NodeOpacity:  make([]float64, len(m.Nodes)),
		LinkOpacity:  make([]float64, len(m.Links)),
		LabelVisible: make([]bool, len(m.Nodes)),
	}
}

func nodeOpacity(n *network.Node, included bool) float64 {
	if !included {
		return network.OpacityDimmed
	}
	return max(network.OpacityDimmed, n.Opacity)
}

func linkOpacity(l *network.Link, included bool) float64 {
	if !included {
		return network.OpacityDimmed
	}
	return l.Opacity
}
