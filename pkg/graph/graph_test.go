package graph

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/matzehuels/tidytree/pkg/errors"
	"github.com/matzehuels/tidytree/pkg/geom"
	"github.com/matzehuels/tidytree/pkg/tidy"
	"github.com/matzehuels/tidytree/pkg/tree"
)

func sampleLayout(t *testing.T) (Layout, *tree.Tree) {
	t.Helper()
	tr, err := tree.Forest([]tree.Literal{
		tree.Node("A", tree.Leaf("B"), tree.Node("C", tree.Leaf("D"), tree.Leaf("E"))),
		tree.Leaf("F"),
	})
	if err != nil {
		t.Fatalf("Forest: %v", err)
	}
	res := tidy.Layout(tr, tidy.Options{})
	tf := geom.Transform{ScaleX: 10, ScaleY: 20, OffsetX: 100, OffsetY: -20}
	return FromResult(tr, res, tf), tr
}

func TestFromResult(t *testing.T) {
	l, tr := sampleLayout(t)

	if l.VizType != VizTypeTidy {
		t.Errorf("VizType = %q, want %q", l.VizType, VizTypeTidy)
	}
	if got, want := len(l.Nodes), tr.Len()-1; got != want {
		t.Fatalf("len(Nodes) = %d, want %d (synthetic root excluded)", got, want)
	}
	if got := len(l.Edges); got != 4 {
		t.Errorf("len(Edges) = %d, want 4", got)
	}
	if l.Stats.Nodes != tr.Len() {
		t.Errorf("Stats.Nodes = %d, want %d", l.Stats.Nodes, tr.Len())
	}

	wantIDs := []string{"0", "0.0", "0.1", "0.1.0", "0.1.1", "1"}
	for i, id := range wantIDs {
		if l.Nodes[i].ID != id {
			t.Errorf("Nodes[%d].ID = %q, want %q", i, l.Nodes[i].ID, id)
		}
	}

	for _, n := range l.Nodes {
		if n.X != n.RawX*10+100 || n.Y != n.RawY*20-20 {
			t.Errorf("node %s page (%v, %v) does not match raw (%v, %v)", n.ID, n.X, n.Y, n.RawX, n.RawY)
		}
	}

	a, _ := l.Node("0")
	f, _ := l.Node("1")
	if !a.IsRoot() || !f.IsRoot() || a.Depth != 0 || a.RawY != 1 {
		t.Errorf("roots: A=%+v F=%+v", a, f)
	}
	d, ok := l.Node("0.1.0")
	if !ok || d.Parent != "0.1" || d.Depth != 2 {
		t.Errorf("D = %+v", d)
	}
	if l.Bounds.MinY != 1 || l.Bounds.MaxY != 3 {
		t.Errorf("Bounds y = [%v, %v], want [1, 3]", l.Bounds.MinY, l.Bounds.MaxY)
	}
}

func TestLevels(t *testing.T) {
	l, _ := sampleLayout(t)
	levels := l.Levels()
	if len(levels) != 3 {
		t.Fatalf("len(Levels()) = %d, want 3", len(levels))
	}
	var labels [][]string
	for _, lvl := range levels {
		var row []string
		for _, n := range lvl {
			row = append(row, n.Label)
		}
		labels = append(labels, row)
	}
	want := [][]string{{"A", "F"}, {"B", "C"}, {"D", "E"}}
	if !reflect.DeepEqual(labels, want) {
		t.Errorf("Levels() = %v, want %v", labels, want)
	}
	if roots := l.Roots(); len(roots) != 2 {
		t.Errorf("len(Roots()) = %d, want 2", len(roots))
	}
}

func TestLiteralsRoundTrip(t *testing.T) {
	l, tr := sampleLayout(t)

	// Shuffle node order; reconstruction must not depend on it.
	l.Nodes[0], l.Nodes[4] = l.Nodes[4], l.Nodes[0]

	got, err := l.Literals()
	if err != nil {
		t.Fatalf("Literals: %v", err)
	}
	var want []tree.Literal
	for _, r := range tr.Roots() {
		want = append(want, tr.Literal(r))
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Literals() = %+v, want %+v", got, want)
	}
}

func TestComparePaths(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"0", "0", 0},
		{"0", "0.0", -1},
		{"0.1", "0.0", 1},
		{"0.2", "0.10", -1},
		{"0.9.9", "1", -1},
	}
	for _, tt := range tests {
		got := ComparePaths(tt.a, tt.b)
		if (got < 0) != (tt.want < 0) || (got > 0) != (tt.want > 0) {
			t.Errorf("ComparePaths(%q, %q) = %d, want sign of %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		layout Layout
		ok     bool
	}{
		{"empty", Layout{}, false},
		{"single", Layout{Nodes: []Node{{ID: "0", Label: "A"}}}, true},
		{"missing id", Layout{Nodes: []Node{{Label: "A"}}}, false},
		{"duplicate", Layout{Nodes: []Node{{ID: "0"}, {ID: "0"}}}, false},
		{"unknown parent", Layout{Nodes: []Node{{ID: "0"}, {ID: "0.0", Parent: "9"}}}, false},
		{"dangling edge", Layout{Nodes: []Node{{ID: "0"}}, Edges: []Edge{{From: "0.0", To: "0"}}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.layout.Validate()
			if tt.ok && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if !tt.ok && !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("Validate() = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestLayoutFileRoundTrip(t *testing.T) {
	l, _ := sampleLayout(t)
	l.Width, l.Height, l.Margin = 700, 600, 20
	l.Hints = geom.Hints{MinSpan: 8}
	dir := t.TempDir()

	for _, name := range []string{"tree.layout.json", "tree.layout.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := WriteLayoutFile(l, path); err != nil {
				t.Fatalf("WriteLayoutFile: %v", err)
			}
			if !IsLayoutFile(path) {
				t.Errorf("IsLayoutFile(%s) = false", path)
			}
			got, err := ReadLayoutFile(path)
			if err != nil {
				t.Fatalf("ReadLayoutFile: %v", err)
			}
			if !reflect.DeepEqual(got, l) {
				t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, l)
			}
		})
	}
}

func TestUnmarshalLayoutErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		code errors.Code
	}{
		{"malformed", `{"nodes": [`, errors.ErrCodeInvalidInput},
		{"no nodes", `{"viz_type": "tidy"}`, errors.ErrCodeInvalidInput},
		{"other type", `{"viz_type": "tower", "nodes": [{"id": "0"}]}`, errors.ErrCodeUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalLayout([]byte(tt.data))
			if !errors.Is(err, tt.code) {
				t.Errorf("UnmarshalLayout() = %v, want %s", err, tt.code)
			}
		})
	}

	l, err := UnmarshalLayout([]byte(`{"nodes": [{"id": "0", "label": "A"}]}`))
	if err != nil {
		t.Fatalf("UnmarshalLayout: %v", err)
	}
	if l.VizType != VizTypeTidy {
		t.Errorf("VizType default = %q, want %q", l.VizType, VizTypeTidy)
	}

	_, err = ReadLayoutFile(filepath.Join(t.TempDir(), "missing.layout.json"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("ReadLayoutFile(missing) = %v, want FILE_NOT_FOUND", err)
	}
	if IsLayoutFile("tree.json") {
		t.Error("IsLayoutFile(tree.json) = true")
	}
}
