package sink

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/tidytree/pkg/errors"
	"github.com/matzehuels/tidytree/pkg/graph"
	"github.com/matzehuels/tidytree/pkg/render/styles"
)

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	style      styles.Style
	background string
	class      string
}

// WithStyle replaces the default [styles.Classic] style.
func WithStyle(s styles.Style) SVGOption { return func(r *svgRenderer) { r.style = s } }

// WithBackground sets the page color of the default style. Open nodes are
// stroked in this color.
func WithBackground(color string) SVGOption { return func(r *svgRenderer) { r.background = color } }

// WithClass sets the class attribute of the root <svg> element, overriding
// the class stored in the layout.
func WithClass(class string) SVGOption { return func(r *svgRenderer) { r.class = class } }

// RenderSVG draws the layout as a standalone SVG document.
//
// Edges are drawn first, then node circles, then labels. A node's font and
// shape come from its own overrides, else from the layout defaults.
func RenderSVG(l graph.Layout, opts ...SVGOption) ([]byte, error) {
	r := newSVGRenderer(l, opts...)

	nodes, err := buildNodes(l)
	if err != nil {
		return nil, err
	}
	edges := buildEdges(l)

	w, h := frameSize(l)
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f"`, w, h, w, h)
	if r.class != "" {
		fmt.Fprintf(&buf, ` class="%s"`, styles.EscapeXML(r.class))
	}
	buf.WriteString(">\n")

	r.style.RenderDefs(&buf)
	for _, e := range edges {
		r.style.RenderEdge(&buf, e)
	}
	for _, n := range nodes {
		r.style.RenderNode(&buf, n)
	}
	for _, n := range nodes {
		r.style.RenderLabel(&buf, n)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes(), nil
}

func newSVGRenderer(l graph.Layout, opts ...SVGOption) svgRenderer {
	r := svgRenderer{class: l.Class}
	for _, opt := range opts {
		opt(&r)
	}
	if r.style == nil {
		r.style = styles.Classic{Background: r.background}
	}
	return r
}

// frameSize returns the page size, falling back to the fitted bounds plus
// margin for layouts without a frame.
func frameSize(l graph.Layout) (float64, float64) {
	if l.Width > 0 && l.Height > 0 {
		return l.Width, l.Height
	}
	b := l.Transform.ApplyRect(l.Bounds)
	return b.MaxX + l.Margin, b.MaxY + l.Margin
}

func buildNodes(l graph.Layout) ([]styles.Node, error) {
	fonts := map[string]styles.Font{}
	fontFor := func(css string) (styles.Font, error) {
		if css == "" {
			css = l.Font
		}
		if css == "" {
			css = styles.DefaultFont
		}
		if f, ok := fonts[css]; ok {
			return f, nil
		}
		f, err := styles.ParseFont(css)
		if err != nil {
			return styles.Font{}, errors.WithContext(err, "render")
		}
		fonts[css] = f
		return f, nil
	}

	out := make([]styles.Node, 0, len(l.Nodes))
	for _, n := range l.Nodes {
		f, err := fontFor(n.Font)
		if err != nil {
			return nil, err
		}
		out = append(out, styles.Node{
			ID:     n.ID,
			Label:  n.Label,
			X:      n.X,
			Y:      n.Y,
			R:      f.Radius(l.Scale),
			Shape:  shapeOf(l, n),
			Font:   f,
			Markup: n.Markup,
		})
	}
	return out, nil
}

func shapeOf(l graph.Layout, n graph.Node) string {
	switch {
	case n.Style != "":
		return n.Style
	case l.Style != "":
		return l.Style
	default:
		return styles.ShapeCircle
	}
}

func buildEdges(l graph.Layout) []styles.Edge {
	pos := make(map[string]*graph.Node, len(l.Nodes))
	for i := range l.Nodes {
		pos[l.Nodes[i].ID] = &l.Nodes[i]
	}
	edges := make([]styles.Edge, 0, len(l.Edges))
	for _, e := range l.Edges {
		src, okS := pos[e.From]
		dst, okD := pos[e.To]
		if !okS || !okD {
			continue
		}
		edges = append(edges, styles.Edge{
			FromID: e.From, ToID: e.To,
			X1: src.X, Y1: src.Y,
			X2: dst.X, Y2: dst.Y,
		})
	}
	return edges
}
