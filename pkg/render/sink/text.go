package sink

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/matzehuels/tidytree/pkg/graph"
)

// RenderText draws the layout on a character grid of cols by rows cells,
// for terminals. Page coordinates are mapped onto the grid through the
// layout frame; edges are traced with line characters and labels are
// written centered on their node.
func RenderText(l graph.Layout, cols, rows int) string {
	if cols <= 0 || rows <= 0 {
		return ""
	}
	w, h := frameSize(l)
	g := newGrid(cols, rows)

	cell := func(n *graph.Node) (int, int) {
		return scaleTo(n.X, w, cols), scaleTo(n.Y, h, rows)
	}

	pos := make(map[string]*graph.Node, len(l.Nodes))
	for i := range l.Nodes {
		pos[l.Nodes[i].ID] = &l.Nodes[i]
	}
	for _, e := range l.Edges {
		src, okS := pos[e.From]
		dst, okD := pos[e.To]
		if !okS || !okD {
			continue
		}
		x1, y1 := cell(src)
		x2, y2 := cell(dst)
		g.line(x1, y1, x2, y2)
	}
	for i := range l.Nodes {
		x, y := cell(&l.Nodes[i])
		g.label(x, y, l.Nodes[i].Label)
	}
	return g.String()
}

func scaleTo(v, extent float64, cells int) int {
	if extent <= 0 || cells == 1 {
		return 0
	}
	c := int(math.Round(v / extent * float64(cells-1)))
	return max(0, min(cells-1, c))
}

type grid struct {
	cols, rows int
	cells      [][]rune
}

func newGrid(cols, rows int) *grid {
	g := &grid{cols: cols, rows: rows, cells: make([][]rune, rows)}
	for i := range g.cells {
		g.cells[i] = []rune(strings.Repeat(" ", cols))
	}
	return g
}

func (g *grid) set(x, y int, r rune) {
	if x >= 0 && x < g.cols && y >= 0 && y < g.rows {
		g.cells[y][x] = r
	}
}

// line traces the cells strictly between both endpoints.
func (g *grid) line(x1, y1, x2, y2 int) {
	dx, dy := x2-x1, y2-y1
	steps := max(abs(dx), abs(dy))
	if steps < 2 {
		return
	}
	ch := lineRune(dx, dy)
	for i := 1; i < steps; i++ {
		x := x1 + int(math.Round(float64(dx*i)/float64(steps)))
		y := y1 + int(math.Round(float64(dy*i)/float64(steps)))
		g.set(x, y, ch)
	}
}

func lineRune(dx, dy int) rune {
	switch {
	case dx == 0:
		return '|'
	case dy == 0 || abs(dx) > 3*abs(dy):
		return '-'
	case (dx > 0) == (dy > 0):
		return '\\'
	default:
		return '/'
	}
}

func (g *grid) label(x, y int, s string) {
	rs := []rune(s)
	start := x - len(rs)/2
	start = max(0, min(g.cols-len(rs), start))
	for i, r := range rs {
		g.set(start+i, y, r)
	}
}

func (g *grid) String() string {
	var b strings.Builder
	for _, row := range g.cells {
		b.WriteString(strings.TrimRight(string(row), " "))
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Dump writes one "label x y" line per node in pre-order, indented by depth,
// using page coordinates.
func Dump(w io.Writer, l graph.Layout) error {
	for _, n := range l.Nodes {
		if _, err := fmt.Fprintf(w, "%s%s %g %g\n", strings.Repeat("    ", n.Depth), n.Label, round2(n.X), round2(n.Y)); err != nil {
			return err
		}
	}
	return nil
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
