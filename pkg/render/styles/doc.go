// Package styles defines how tree nodes, edges, and labels are drawn.
//
// A [Style] receives fully positioned [Node] and [Edge] values and writes
// SVG fragments to a buffer. [Classic] is the default: edges are thin
// lines, every node is a circle filled with the background, and open
// nodes stroke that circle in the background color so only the label
// shows.
//
// Fonts are given in CSS shorthand ("12pt serif", "italic 10pt serif")
// and parsed with [ParseFont]. A node's circle radius is the width of an
// "M" in its font times a scale factor, see [Font.Radius].
package styles
