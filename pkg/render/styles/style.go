package styles

import "bytes"

// Node shapes.
const (
	ShapeCircle = "circle" // outlined circle behind the label
	ShapeOpen   = "open"   // circle stroked in the background color, label only
)

// Style defines the visual appearance for tree rendering.
// Implementations control how edges, nodes, and labels are drawn.
type Style interface {
	// RenderDefs writes SVG <defs> content and any shared <style> rules.
	RenderDefs(buf *bytes.Buffer)
	// RenderEdge writes the SVG for a child-to-parent edge.
	RenderEdge(buf *bytes.Buffer, e Edge)
	// RenderNode writes the SVG for a node's circle.
	RenderNode(buf *bytes.Buffer, n Node)
	// RenderLabel writes the SVG for a node's label text.
	RenderLabel(buf *bytes.Buffer, n Node)
}

// Node contains all data needed to render a single tree node.
type Node struct {
	ID     string  // Dotted path of the node
	Label  string  // Display text
	X, Y   float64 // Center on the page
	R      float64 // Circle radius
	Shape  string  // ShapeCircle or ShapeOpen
	Font   Font    // Resolved label font
	Markup string  // Rule markup name (i, rm, b, tt, ...); empty means none
}

// Edge contains positioning data for rendering a child-to-parent edge.
type Edge struct {
	FromID, ToID   string  // Child and parent IDs
	X1, Y1, X2, Y2 float64 // Line coordinates
}
