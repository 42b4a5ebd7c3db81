// Package render groups the static renderers for network frames.
//
// The interactive viewer streams frames to a browser, which draws them
// itself. Everything that must produce a file instead lives under this
// package:
//
//   - [nodelink]: Graphviz DOT, SVG and PNG
//
// [nodelink]: github.com/marchallab/netview/pkg/render/nodelink
package render
