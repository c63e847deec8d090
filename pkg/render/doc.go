// Package render provides output rendering for laid-out forests.
//
// # Overview
//
// This package contains the drawing side of tidytree. The layout engine
// produces abstract coordinates; everything here turns a positioned
// [graph.Layout] into pictures:
//
//   - Generic format conversion (SVG to PDF/PNG)
//   - Node and edge drawing styles (in [styles] subpackage)
//   - SVG and terminal text output (in [sink] subpackage)
//   - Graphviz export with pinned positions (in [nodelink] subpackage)
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg).
//
//	svg, err := sink.RenderSVG(layout)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// # Drawing Policy
//
// Nodes are circles whose radius is the width of an "M" in the label font
// times a scale factor. An "open" node strokes its circle in the background color, so only
// the label is visible and edges stop short of it; a "circle" node is
// outlined. Edges run from every node to its parent and are drawn before
// nodes and labels so labels stay legible.
//
// [graph.Layout]: github.com/matzehuels/tidytree/pkg/graph
// [styles]: github.com/matzehuels/tidytree/pkg/render/styles
// [sink]: github.com/matzehuels/tidytree/pkg/render/sink
// [nodelink]: github.com/matzehuels/tidytree/pkg/render/nodelink
package render
