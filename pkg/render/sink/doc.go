// Package sink provides output format renderers for laid-out forests.
//
// # Overview
//
// A "sink" transforms a fitted [graph.Layout] into a final output format.
// This package provides renderers for:
//
//   - SVG: vector drawing with circle or open nodes
//   - PDF and PNG: converted from SVG (requires rsvg-convert)
//   - Text: a character raster for terminals, and a debug dump
//   - JSON and YAML: the layout document itself
//
// # SVG Output
//
//	svg, err := sink.RenderSVG(layout,
//	    sink.WithBackground("#fdf6e3"),
//	    sink.WithClass("tree-diagram"),
//	)
//
// Drawing follows the layout: node fonts and shapes come from the node
// overrides resolved from the document's node styles, else from the layout
// defaults. Edges are drawn before nodes and labels.
//
// # Text Output
//
// [RenderText] rasterizes the page onto a cols by rows character grid; the
// derivation stepper uses it to show each step. [Dump] prints one line per
// node with its page coordinates, indented by depth.
//
//	fmt.Print(sink.RenderText(layout, 72, 16))
//
// [graph.Layout]: github.com/matzehuels/tidytree/pkg/graph
package sink
