package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/marchallab/netview/pkg/graph"
)

// pointsPerInch converts layout pixels to Graphviz inches.
const pointsPerInch = 72.0

// Options configures DOT generation.
type Options struct {
	// Labels draws node ids next to nodes whose label is visible.
	Labels bool

	// Title is shown above the drawing when set.
	Title string
}

// ToDOT converts a laid-out frame to Graphviz DOT. Node positions are pinned,
// so neato reproduces the force layout instead of computing its own.
//
// Undirected links are drawn without arrowheads. Opacities are encoded in
// the alpha channel of each colour.
func ToDOT(l graph.Layout, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  notranslate=true;\n")
	buf.WriteString("  splines=curved;\n")
	buf.WriteString("  outputorder=edgesfirst;\n")
	if opts.Title != "" {
		fmt.Fprintf(&buf, "  label=%q;\n  labelloc=t;\n", opts.Title)
	}
	buf.WriteString("  node [shape=circle, style=filled, fixedsize=true, penwidth=0, fontname=\"Helvetica\", fontsize=12];\n")
	buf.WriteString("  edge [arrowsize=0.6];\n")
	buf.WriteString("\n")

	for _, n := range l.Nodes {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(nodeAttrs(n, l.Height, opts), ", "))
	}

	buf.WriteString("\n")
	for _, e := range l.Links {
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.Source, e.Target, strings.Join(linkAttrs(e), ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(n graph.PlacedNode, height float64, opts Options) []string {
	// Graphviz y grows upwards.
	attrs := []string{
		fmt.Sprintf("pos=\"%s,%s!\"", fmtFloat(n.X), fmtFloat(height-n.Y)),
		fmt.Sprintf("width=%s", fmtFloat(2*n.Radius/pointsPerInch)),
		fmt.Sprintf("fillcolor=%q", withAlpha(NodeColor, NodeFillOpacity*n.Opacity)),
	}
	if opts.Labels && n.Label {
		attrs = append(attrs, `label=""`, fmt.Sprintf("xlabel=%q", n.ID))
	} else {
		attrs = append(attrs, `label=""`)
	}
	attrs = append(attrs, fmt.Sprintf("tooltip=%q", n.ID))
	return attrs
}

func linkAttrs(e graph.PlacedLink) []string {
	color := withAlpha(LinkColor(e.Type), LinkStrokeOpacity*e.Opacity)
	attrs := []string{
		fmt.Sprintf("color=%q", color),
		"penwidth=3",
		fmt.Sprintf("class=%q", e.Type),
	}
	if !e.Directed {
		attrs = append(attrs, "dir=none")
	}
	return attrs
}

func fmtFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// =============================================================================
// Rendering
// =============================================================================

// RenderSVG renders DOT to SVG with the neato engine.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	data, err := render(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(data), nil
}

// RenderPNG renders DOT to PNG with the neato engine.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.PNG)
}

func render(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's fixed-size svg tag with one that
// scales to its container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
