package styles

import (
	"bytes"
	"fmt"
)

// Classic draws trees the way textbook syntax diagrams look: thin black
// edges, labels centered on their node, and circles filled with the
// background so edges end at the node boundary.
type Classic struct {
	Background  string // Page and node fill color (default white)
	Ink         string // Edge, outline, and label color (default black)
	StrokeWidth float64
}

func (c Classic) background() string {
	if c.Background == "" {
		return "white"
	}
	return c.Background
}

func (c Classic) ink() string {
	if c.Ink == "" {
		return "black"
	}
	return c.Ink
}

func (c Classic) strokeWidth() float64 {
	if c.StrokeWidth <= 0 {
		return 1
	}
	return c.StrokeWidth
}

func (c Classic) RenderDefs(buf *bytes.Buffer) {
	fmt.Fprintf(buf, "  <rect width=\"100%%\" height=\"100%%\" fill=\"%s\"/>\n", EscapeXML(c.background()))
}

func (c Classic) RenderEdge(buf *bytes.Buffer, e Edge) {
	fmt.Fprintf(buf, `  <line class="edge" x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="%.1f"/>`+"\n",
		e.X1, e.Y1, e.X2, e.Y2, EscapeXML(c.ink()), c.strokeWidth())
}

func (c Classic) RenderNode(buf *bytes.Buffer, n Node) {
	stroke := c.ink()
	if n.Shape == ShapeOpen {
		stroke = c.background()
	}
	fmt.Fprintf(buf, `  <circle class="node" id="node-%s" cx="%.2f" cy="%.2f" r="%.2f" fill="%s" stroke="%s" stroke-width="%.1f"/>`+"\n",
		EscapeXML(n.ID), n.X, n.Y, n.R, EscapeXML(c.background()), EscapeXML(stroke), c.strokeWidth())
}

func (c Classic) RenderLabel(buf *bytes.Buffer, n Node) {
	if n.Label == "" {
		return
	}
	f := n.Font.WithMarkup(n.Markup)
	fmt.Fprintf(buf, `  <text class="label" x="%.2f" y="%.2f" text-anchor="middle" dominant-baseline="central" fill="%s" %s>%s</text>`+"\n",
		n.X, n.Y, EscapeXML(c.ink()), f.SVGAttrs(), EscapeXML(n.Label))
}
