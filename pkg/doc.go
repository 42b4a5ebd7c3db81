// Package pkg provides the core libraries of netview, an interactive viewer
// for biological interaction networks.
//
// # Overview
//
// netview lays out gene and protein interaction networks with a force
// simulation and highlights what surrounds a focused element: its neighbours,
// its connected component, or the recorded signalling paths running through
// it. The pkg directory is organized into four areas:
//
//  1. Data: [graph], [bitvec], [paths] and [network]
//  2. Layout: [spatial], [force] and [view]
//  3. Interaction: [highlight]
//  4. Output and orchestration: [render], [artifact], [cache] and [pipeline]
//
// # Architecture
//
// The typical data flow:
//
//	network.json (+ paths, gene sets)
//	         ↓
//	    [graph] package (decode and validate the document)
//	         ↓
//	    [network] package (nodes, links, components, sample vectors)
//	         ↓
//	    [view] package (force layout + highlight controller)
//	         ↓
//	    frames: streamed by the server or rendered to JSON/DOT/SVG/PNG
//
// # Quick Start
//
// Run the whole pipeline on a file:
//
//	import "github.com/marchallab/netview/pkg/pipeline"
//
//	runner := pipeline.NewRunner(nil, nil, nil)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Network: "network.json",
//	    Focus:   "TP53",
//	    Formats: []string{"svg"},
//	})
//	svg := result.Artifacts["svg"]
//
// Drive a viewer interactively:
//
//	v := view.New(model, view.Options{Seed: 42})
//	defer v.Close()
//	v.Settle(300)
//	v.Click(highlight.NodeTarget("TP53"))
//	frame := v.Frame()
//
// # Main Packages
//
// [bitvec] - Base64 presence vectors of genes across conditions.
//
// [paths] - Parsing of tab-separated path records and lookup of the paths
// through a node or over an edge.
//
// [network] - The immutable model built from a document: node sizes,
// link opacities, connected components and gene set membership.
//
// [spatial] - Quadtree and naive range indexes used by the collision force.
//
// [force] - A velocity Verlet simulation with many-body, link, collision,
// cluster and positioning forces, plus label placement and drag pinning.
//
// [highlight] - Pure highlight computation and the interactive controller
// with its click cooldown.
//
// [view] - A network viewer combining one simulation with one highlight
// controller, producing frames.
//
// [render/nodelink] - Graphviz DOT, SVG and PNG output of a frame.
//
// [pipeline] - Load → build → layout → render, with caching, used by the CLI
// and the server.
//
// [graph]: https://pkg.go.dev/github.com/marchallab/netview/pkg/graph
// [bitvec]: https://pkg.go.dev/github.com/marchallab/netview/pkg/bitvec
// [paths]: https://pkg.go.dev/github.com/marchallab/netview/pkg/paths
// [network]: https://pkg.go.dev/github.com/marchallab/netview/pkg/network
// [spatial]: https://pkg.go.dev/github.com/marchallab/netview/pkg/spatial
// [force]: https://pkg.go.dev/github.com/marchallab/netview/pkg/force
// [view]: https://pkg.go.dev/github.com/marchallab/netview/pkg/view
// [highlight]: https://pkg.go.dev/github.com/marchallab/netview/pkg/highlight
// [render]: https://pkg.go.dev/github.com/marchallab/netview/pkg/render
// [render/nodelink]: https://pkg.go.dev/github.com/marchallab/netview/pkg/render/nodelink
// [artifact]: https://pkg.go.dev/github.com/marchallab/netview/pkg/artifact
// [cache]: https://pkg.go.dev/github.com/marchallab/netview/pkg/cache
// [pipeline]: https://pkg.go.dev/github.com/marchallab/netview/pkg/pipeline
package pkg
