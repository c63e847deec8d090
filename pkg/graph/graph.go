package graph

import (
	"slices"

	"github.com/matzehuels/tidytree/pkg/errors"
	"github.com/matzehuels/tidytree/pkg/geom"
	"github.com/matzehuels/tidytree/pkg/tidy"
	"github.com/matzehuels/tidytree/pkg/tree"
)

// =============================================================================
// Tree ↔ Layout Conversion
// =============================================================================

// FromResult converts a computed layout into its serialization format.
//
// Nodes are emitted in pre-order and placed on the page with transform.
// The synthetic root of a forest is skipped, together with its edges, so
// that the visible roots appear as independent trees at depth 0.
func FromResult(t *tree.Tree, res *tidy.Result, transform geom.Transform) Layout {
	out := Layout{
		VizType:   VizTypeTidy,
		Transform: transform,
		Stats:     Stats{Nodes: res.Stats.Nodes, ContourSteps: res.Stats.ContourSteps},
	}
	if b, ok := res.Bounds(t); ok {
		out.Bounds = b
	}

	offset := 0
	if t.Synthetic() {
		offset = 1
	}

	t.Walk(func(id tree.ID, depth int) bool {
		if !t.Visible(id) {
			return true
		}
		raw := res.Points[id]
		page := transform.Apply(raw)
		n := Node{
			ID:    t.Path(id),
			Label: t.Label(id),
			Depth: depth - offset,
			X:     page.X,
			Y:     page.Y,
			RawX:  raw.X,
			RawY:  raw.Y,
		}
		if p := t.Parent(id); p != tree.None && t.Visible(p) {
			n.Parent = t.Path(p)
			out.Edges = append(out.Edges, Edge{From: n.ID, To: n.Parent})
		}
		out.Nodes = append(out.Nodes, n)
		return true
	})
	return out
}

// Literals rebuilds the forest structure from the parent links of the
// nodes. Children are ordered by their path.
func (l *Layout) Literals() ([]tree.Literal, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}

	nodes := slices.Clone(l.Nodes)
	slices.SortFunc(nodes, func(a, b Node) int { return ComparePaths(a.ID, b.ID) })

	children := make(map[string][]int, len(nodes))
	var roots []int
	for i, n := range nodes {
		if n.IsRoot() {
			roots = append(roots, i)
			continue
		}
		children[n.Parent] = append(children[n.Parent], i)
	}

	var build func(i int) tree.Literal
	build = func(i int) tree.Literal {
		lit := tree.Leaf(nodes[i].Label)
		for _, c := range children[nodes[i].ID] {
			lit.Children = append(lit.Children, build(c))
		}
		return lit
	}

	out := make([]tree.Literal, len(roots))
	for i, r := range roots {
		out[i] = build(r)
	}
	return out, nil
}

// Validate checks that the layout describes a forest: at least one node,
// unique IDs, and parents and edge endpoints that refer to known nodes.
func (l *Layout) Validate() error {
	if len(l.Nodes) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "layout must contain nodes")
	}
	seen := make(map[string]bool, len(l.Nodes))
	for _, n := range l.Nodes {
		if n.ID == "" {
			return errors.New(errors.ErrCodeInvalidInput, "layout node %q has no id", n.Label)
		}
		if seen[n.ID] {
			return errors.New(errors.ErrCodeInvalidInput, "duplicate layout node %s", n.ID)
		}
		seen[n.ID] = true
	}
	for _, n := range l.Nodes {
		if !n.IsRoot() && !seen[n.Parent] {
			return errors.New(errors.ErrCodeInvalidInput, "node %s has unknown parent %s", n.ID, n.Parent)
		}
	}
	for _, e := range l.Edges {
		if !seen[e.From] || !seen[e.To] {
			return errors.New(errors.ErrCodeInvalidInput, "edge %s→%s references an unknown node", e.From, e.To)
		}
	}
	return nil
}
