package nodelink

import (
	"fmt"
	"math"
)

// Default colours.
const (
	NodeColor    = "#555555"
	NeutralColor = "#aaaaaa"

	// NodeFillOpacity and LinkStrokeOpacity scale every element's own opacity.
	NodeFillOpacity   = 0.8
	LinkStrokeOpacity = 0.7
)

// linkColors maps interaction types to stroke colours. Types not listed are
// drawn in NeutralColor.
var linkColors = map[string]string{
	"pp":                "#008000",
	"pp_red":            "#ff0000",
	"pp_blue":           "#0000ff",
	"pd":                "#ff0000",
	"PDRepressor":       "#ff0000",
	"PDActivator":       "#0000ff",
	"PDUnknown":         "#d3d3d3",
	"phosphorylation":   "#800080",
	"dephosphorylation": "#a52a2a",
	"met":               "#ffa500",
	"metabolic":         "#ffa500",
	"srna":              "#000000",
	"sigma":             "#4682b4",
}

// LinkColor returns the stroke colour of an interaction type as "#rrggbb".
func LinkColor(linkType string) string {
	if c, ok := linkColors[linkType]; ok {
		return c
	}
	return NeutralColor
}

// withAlpha appends an alpha byte to a "#rrggbb" colour.
func withAlpha(color string, alpha float64) string {
	if math.IsNaN(alpha) {
		alpha = 0
	}
	alpha = math.Max(0, math.Min(1, alpha))
	return fmt.Sprintf("%s%02x", color, int(math.Round(alpha*255)))
}
