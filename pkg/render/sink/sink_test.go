package sink

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matzehuels/tidytree/pkg/errors"
	"github.com/matzehuels/tidytree/pkg/geom"
	"github.com/matzehuels/tidytree/pkg/graph"
	"github.com/matzehuels/tidytree/pkg/tidy"
	"github.com/matzehuels/tidytree/pkg/tree"
)

// fitted lays out lit into a width by height frame without margin.
func fitted(t *testing.T, lit tree.Literal, width, height float64) graph.Layout {
	t.Helper()
	tr, err := tree.Build(lit)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	res := tidy.Layout(tr, tidy.Options{})
	bounds, _ := res.Bounds(tr)
	tf := geom.Fit(bounds, geom.Rect{MaxX: width, MaxY: height}, geom.Hints{})
	l := graph.FromResult(tr, res, tf)
	l.Width, l.Height = width, height
	return l
}

func abcde() tree.Literal {
	return tree.Node("A", tree.Leaf("B"), tree.Node("C", tree.Leaf("D"), tree.Leaf("E")))
}

func TestRenderSVGDrawOrder(t *testing.T) {
	l := fitted(t, abcde(), 300, 200)
	svg, err := RenderSVG(l)
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	out := string(svg)

	if got := strings.Count(out, "<line "); got != 4 {
		t.Errorf("edges = %d, want 4", got)
	}
	if got := strings.Count(out, "<circle "); got != 5 {
		t.Errorf("nodes = %d, want 5", got)
	}
	if got := strings.Count(out, "<text "); got != 5 {
		t.Errorf("labels = %d, want 5", got)
	}
	lastLine := strings.LastIndex(out, "<line ")
	firstCircle := strings.Index(out, "<circle ")
	lastCircle := strings.LastIndex(out, "<circle ")
	firstText := strings.Index(out, "<text ")
	if lastLine > firstCircle || lastCircle > firstText {
		t.Error("want edges, then nodes, then labels")
	}
	if !strings.Contains(out, `width="300" height="200"`) {
		t.Errorf("frame size missing:\n%s", out)
	}
}

func TestRenderSVGOptions(t *testing.T) {
	l := fitted(t, tree.Node("S", tree.Leaf("a")), 100, 100)
	l.Style = "open"
	l.Class = "from-layout"
	l.Nodes[1].Style = "circle"

	svg, err := RenderSVG(l, WithBackground("#eee"), WithClass("diagram"))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	out := string(svg)
	if !strings.Contains(out, `class="diagram"`) || strings.Contains(out, "from-layout") {
		t.Errorf("WithClass should override the layout class:\n%s", out)
	}
	if !strings.Contains(out, `stroke="#eee"`) {
		t.Errorf("open root should be stroked with the background:\n%s", out)
	}
	if !strings.Contains(out, `id="node-0.0" cx="50.00" cy="100.00" r="13.28" fill="#eee" stroke="black"`) {
		t.Errorf("circle override not applied:\n%s", out)
	}
}

func TestRenderSVGFontError(t *testing.T) {
	l := fitted(t, tree.Leaf("A"), 10, 10)
	l.Font = "serif"
	_, err := RenderSVG(l)
	if !errors.Is(err, errors.ErrCodeInvalidStyle) {
		t.Errorf("RenderSVG with bad font = %v, want INVALID_STYLE", err)
	}
}

func TestRenderText(t *testing.T) {
	// Page: A(10,0) B(0,2) C(20,2) D(10,4) E(30,4).
	l := fitted(t, abcde(), 30, 4)
	rows := strings.Split(strings.TrimSuffix(RenderText(l, 31, 5), "\n"), "\n")
	if len(rows) != 5 {
		t.Fatalf("rows = %d, want 5:\n%s", len(rows), strings.Join(rows, "\n"))
	}

	at := func(row, col int) byte {
		if col >= len(rows[row]) {
			return ' '
		}
		return rows[row][col]
	}
	for _, p := range []struct {
		label    byte
		row, col int
	}{{'A', 0, 10}, {'B', 2, 0}, {'C', 2, 20}, {'D', 4, 10}, {'E', 4, 30}} {
		if got := at(p.row, p.col); got != p.label {
			t.Errorf("cell (%d,%d) = %q, want %q", p.row, p.col, got, p.label)
		}
	}
	if strings.TrimSpace(rows[1]) == "" || strings.TrimSpace(rows[3]) == "" {
		t.Errorf("edges missing between levels:\n%s", strings.Join(rows, "\n"))
	}
}

func TestRenderTextVertical(t *testing.T) {
	l := fitted(t, tree.Node("A", tree.Leaf("B")), 10, 4)
	got := RenderText(l, 1, 5)
	if want := "A\n|\n|\n|\nB\n"; got != want {
		t.Errorf("RenderText() = %q, want %q", got, want)
	}
	if RenderText(l, 0, 5) != "" {
		t.Error("RenderText with no columns should be empty")
	}
}

func TestDump(t *testing.T) {
	l := fitted(t, abcde(), 30, 4)
	var buf bytes.Buffer
	if err := Dump(&buf, l); err != nil {
		t.Fatalf("Dump: %v", err)
	}
	want := "A 10 0\n    B 0 2\n    C 20 2\n        D 10 4\n        E 30 4\n"
	if buf.String() != want {
		t.Errorf("Dump() =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestRenderJSONRoundTrip(t *testing.T) {
	l := fitted(t, abcde(), 30, 4)
	data, err := RenderJSON(l)
	if err != nil {
		t.Fatalf("RenderJSON: %v", err)
	}
	back, err := graph.UnmarshalLayout(data)
	if err != nil {
		t.Fatalf("UnmarshalLayout: %v", err)
	}
	a, _ := RenderSVG(l)
	b, _ := RenderSVG(back)
	if !bytes.Equal(a, b) {
		t.Error("re-imported layout renders differently")
	}
}
