package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/tidytree/pkg/errors"
	"github.com/matzehuels/tidytree/pkg/graph"
)

const pointsPerInch = 72.0

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed includes the node path and abstract coordinates in labels.
	// When false, only the node label is shown.
	Detailed bool
	// Free lets Graphviz place the nodes itself with its hierarchical "dot"
	// engine instead of pinning them at the computed positions. Useful for
	// comparing the two layouts.
	Free bool
}

func (o Options) engine() graphviz.Layout {
	if o.Free {
		return graphviz.DOT
	}
	return graphviz.NEATO
}

// ToDOT converts a layout to Graphviz DOT format.
// The resulting DOT string can be rendered with [RenderSVG].
//
// Unless opts.Free is set, every node carries a pinned pos attribute so the
// neato engine keeps the computed coordinates. Graphviz measures y upward,
// so page coordinates are flipped within the frame.
func ToDOT(l graph.Layout, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	shape := "circle"
	if l.Style == "open" {
		shape = "plaintext"
	}
	fmt.Fprintf(&buf, "  node [shape=%s, fontname=%q, fontsize=12, margin=\"0.02,0.02\"];\n", shape, fontFamily(l.Font))
	buf.WriteString("  edge [dir=none];\n")
	if !opts.Free {
		buf.WriteString("  splines=false;\n")
		buf.WriteString("  notranslate=true;\n")
	}
	buf.WriteString("\n")

	height := l.Height
	if height <= 0 {
		height = l.Transform.ApplyRect(l.Bounds).MaxY + l.Margin
	}

	for _, n := range l.Nodes {
		attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, opts.Detailed))}
		if !opts.Free {
			attrs = append(attrs, fmt.Sprintf("pos=\"%s,%s!\"",
				inches(n.X), inches(height-n.Y)))
		}
		if n.Style == "circle" && shape != "circle" {
			attrs = append(attrs, "shape=circle")
		} else if n.Style == "open" && shape != "plaintext" {
			attrs = append(attrs, "shape=plaintext")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range l.Edges {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.To, e.From)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func inches(points float64) string {
	return strconv.FormatFloat(points/pointsPerInch, 'f', 4, 64)
}

func fmtLabel(n graph.Node, detailed bool) string {
	if !detailed {
		return n.Label
	}
	return fmt.Sprintf("%s\n%s\n(%g, %g)", n.Label, n.ID, n.RawX, n.RawY)
}

// fontFamily extracts the family from a CSS font shorthand.
func fontFamily(css string) string {
	fields := strings.Fields(css)
	if len(fields) < 2 {
		return "serif"
	}
	return fields[len(fields)-1]
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string, opts Options) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()
	gv.SetLayout(opts.engine())

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
