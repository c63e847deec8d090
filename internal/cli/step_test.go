package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/tidytree/pkg/graph"
	"github.com/matzehuels/tidytree/pkg/literal"
)

func stepLayouts() []graph.Layout {
	node := func(id, label, parent string, depth int, x, y float64) graph.Node {
		return graph.Node{ID: id, Label: label, Parent: parent, Depth: depth, X: x, Y: y, RawX: x, RawY: y}
	}
	return []graph.Layout{
		{VizType: graph.VizTypeTidy, Width: 10, Height: 10, Nodes: []graph.Node{node("0", "S", "", 0, 5, 0)}},
		{VizType: graph.VizTypeTidy, Width: 10, Height: 10, Rule: "S ::= NP VP", Nodes: []graph.Node{
			node("0", "S", "", 0, 5, 0), node("0.0", "NP", "0", 1, 0, 10), node("0.1", "VP", "0", 1, 10, 10),
		}},
		{VizType: graph.VizTypeTidy, Width: 10, Height: 10, Rule: "NP ::= they", Nodes: []graph.Node{
			node("0", "S", "", 0, 5, 0), node("0.0", "NP", "0", 1, 0, 10), node("0.1", "VP", "0", 1, 10, 10),
		}},
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "home":
		return tea.KeyMsg{Type: tea.KeyHome}
	case "end":
		return tea.KeyMsg{Type: tea.KeyEnd}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestStepModelNavigation(t *testing.T) {
	tests := []struct {
		keys []string
		want int
	}{
		{nil, 0},
		{[]string{"right"}, 1},
		{[]string{"right", "right", "right"}, 2},
		{[]string{"left"}, 0},
		{[]string{"end"}, 2},
		{[]string{"end", "left"}, 1},
		{[]string{"end", "home"}, 0},
		{[]string{"l", "n", "h"}, 1},
		{[]string{">", "<"}, 0},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.keys, ","), func(t *testing.T) {
			var m tea.Model = newStepModel("t", stepLayouts(), nil)
			for _, k := range tt.keys {
				m, _ = m.Update(key(k))
			}
			if got := m.(stepModel).index; got != tt.want {
				t.Errorf("index = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestStepModelQuit(t *testing.T) {
	m := newStepModel("t", stepLayouts(), nil)
	for _, k := range []string{"q", "esc"} {
		msg := key(k)
		if k == "esc" {
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		}
		_, cmd := m.Update(msg)
		if cmd == nil {
			t.Fatalf("%s: no command", k)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s should quit", k)
		}
	}
}

func TestStepModelWindowSize(t *testing.T) {
	var m tea.Model = newStepModel("t", stepLayouts(), nil)
	m, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	sm := m.(stepModel)
	if sm.cols != 120 || sm.rows != 36 {
		t.Errorf("size = %dx%d, want 120x36", sm.cols, sm.rows)
	}
	m, _ = m.Update(tea.WindowSizeMsg{Width: 5, Height: 3})
	sm = m.(stepModel)
	if sm.cols != 20 || sm.rows != 5 {
		t.Errorf("size = %dx%d, want minimum 20x5", sm.cols, sm.rows)
	}
}

func TestStepModelView(t *testing.T) {
	var m tea.Model = newStepModel("grammar.yaml", stepLayouts(), nil)
	m, _ = m.Update(key("right"))
	view := m.View()
	for _, want := range []string{"grammar.yaml", "step 2/3", "NP", "VP", "←"} {
		if !strings.Contains(view, want) {
			t.Errorf("view misses %q:\n%s", want, view)
		}
	}
}

func TestFormatRule(t *testing.T) {
	styles := []literal.NodeStyle{}
	tests := []struct {
		rule string
		want []string
	}{
		{"", nil},
		{"S ::= NP VP", []string{"S", "←", "NP", "VP"}},
		{"A ::== B", []string{"A", "⇐", "B"}},
		{"X ::= a | b", []string{"X", "←", "a", "|", "b"}},
	}
	for _, tt := range tests {
		got := formatRule(tt.rule, styles)
		if tt.want == nil && got != "" {
			t.Errorf("formatRule(%q) = %q, want empty", tt.rule, got)
		}
		for _, w := range tt.want {
			if !strings.Contains(got, w) {
				t.Errorf("formatRule(%q) = %q, misses %q", tt.rule, got, w)
			}
		}
	}
}
