// Package nodelink exports laid-out forests as Graphviz node-link diagrams.
//
// # Overview
//
// This package turns a [graph.Layout] into DOT source and renders it with
// Graphviz. By default every node is pinned at its computed position, so
// Graphviz only draws; with [Options.Free] Graphviz lays the forest out
// itself with its hierarchical engine, which is handy for comparison.
//
// # Usage
//
//	dot := nodelink.ToDOT(layout, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot, nodelink.Options{})
//
// The pipeline exposes the rendered diagram as the "gv.svg" output format.
//
// # Options
//
//   - Detailed: node labels include the node path and abstract coordinates
//   - Free: let Graphviz choose positions instead of pinning them
//
// # DOT Format
//
// Page coordinates are converted to inches for the pos attribute and the
// y axis is flipped, since Graphviz measures upward. Edges run from parent
// to child without arrowheads. The DOT output can also be saved and
// processed with external Graphviz tools.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering; Graphviz runs as WebAssembly, so no system install is needed.
//
// [graph.Layout]: github.com/matzehuels/tidytree/pkg/graph
package nodelink
