package graph

import (
	"encoding/json"
	"fmt"
	"os"
)

// =============================================================================
// Layout - Serialized Frame
// =============================================================================

// Layout is a serialized snapshot of a laid-out network: positions, sizes and
// styling of every node and link, plus the simulation state it was taken at.
// Layouts are what the pipeline caches and what renderers consume.
type Layout struct {
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`

	Nodes []PlacedNode `json:"nodes" bson:"nodes"`
	Links []PlacedLink `json:"links" bson:"links"`

	// Simulation state
	Ticks int     `json:"ticks" bson:"ticks"`
	Alpha float64 `json:"alpha" bson:"alpha"`
	Seed  uint64  `json:"seed,omitempty" bson:"seed,omitempty"`

	// Highlight state the opacities were computed under
	Mode  string `json:"mode,omitempty" bson:"mode,omitempty"`
	Focus string `json:"focus,omitempty" bson:"focus,omitempty"`
	Info  *Info  `json:"info,omitempty" bson:"info,omitempty"`
}

// PlacedNode is a node with its position and visual attributes.
type PlacedNode struct {
	ID            string    `json:"id" bson:"id"`
	X             float64   `json:"x" bson:"x"`
	Y             float64   `json:"y" bson:"y"`
	Radius        float64   `json:"radius" bson:"radius"`
	Group         int       `json:"group" bson:"group"`
	Opacity       float64   `json:"opacity" bson:"opacity"`
	Pinned        bool      `json:"pinned,omitempty" bson:"pinned,omitempty"`
	Label         bool      `json:"label" bson:"label"`
	LabelX        float64   `json:"label_x" bson:"label_x"`
	LabelY        float64   `json:"label_y" bson:"label_y"`
	CountPerGene  []int     `json:"count_per_gene,omitempty" bson:"count_per_gene,omitempty"`
	RadiusPerGene []float64 `json:"radius_per_gene,omitempty" bson:"radius_per_gene,omitempty"`
}

// PlacedLink is a link with its endpoint coordinates and visual attributes.
type PlacedLink struct {
	Source   string  `json:"source" bson:"source"`
	Target   string  `json:"target" bson:"target"`
	Type     string  `json:"type" bson:"type"`
	Directed bool    `json:"directed" bson:"directed"`
	Weight   float64 `json:"weight" bson:"weight"`
	Opacity  float64 `json:"opacity" bson:"opacity"`
	X1       float64 `json:"x1" bson:"x1"`
	Y1       float64 `json:"y1" bson:"y1"`
	X2       float64 `json:"x2" bson:"x2"`
	Y2       float64 `json:"y2" bson:"y2"`
}

// Info is the text shown in the viewer's information panel.
type Info struct {
	Title string   `json:"title" bson:"title"`
	Lines []string `json:"lines,omitempty" bson:"lines,omitempty"`
}

// NodeByID returns the placed node with the given id.
func (l *Layout) NodeByID(id string) (PlacedNode, bool) {
	for _, n := range l.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return PlacedNode{}, false
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout.
// Links must reference nodes present in the layout.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}

	ids := make(map[string]bool, len(l.Nodes))
	for _, n := range l.Nodes {
		ids[n.ID] = true
	}
	for _, e := range l.Links {
		if !ids[e.Source] || !ids[e.Target] {
			return Layout{}, fmt.Errorf("layout link %s->%s references unknown node", e.Source, e.Target)
		}
	}
	return l, nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
