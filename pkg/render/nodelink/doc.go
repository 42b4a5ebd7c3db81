// Package nodelink renders laid-out networks as static node-link diagrams.
//
// A frame from the force layout is converted to Graphviz DOT with every node
// pinned at its computed position, then drawn by the neato engine:
//
//	dot := nodelink.ToDOT(frame, nodelink.Options{Labels: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot)
//
// Links are coloured by interaction type ([LinkColor]); node and link
// opacities from the highlight state are carried in the colours' alpha
// channel, so a rendered frame shows the same emphasis as the live viewer.
//
// This package uses [github.com/goccy/go-graphviz], which runs Graphviz
// in-process.
package nodelink
