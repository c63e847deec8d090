package tree

import (
	"strconv"
	"strings"
)

// ID addresses a node inside its Tree. IDs are dense indices into the
// tree's arena and are only meaningful for the Tree that issued them.
type ID int

// None marks an absent node reference (the root's parent, a missing sibling).
const None ID = -1

type node struct {
	label    string
	parent   ID
	index    int
	children []ID
}

// Tree is an ordered rooted tree stored as an arena of nodes.
//
// Parent links are non-owning indices; children are owned in order. The shape
// of a tree only grows through AddChild and is never rearranged, so sibling
// indices stay stable for the tree's lifetime. A Tree is not safe for
// concurrent mutation.
type Tree struct {
	nodes     []node
	synthetic bool
}

// New creates a tree holding a single root node.
func New(label string) *Tree {
	return &Tree{nodes: []node{{label: label, parent: None}}}
}

// AddChild appends a new last child to parent and returns its ID.
// It panics if parent does not belong to t.
func (t *Tree) AddChild(parent ID, label string) ID {
	p := &t.nodes[parent]
	id := ID(len(t.nodes))
	idx := len(p.children)
	p.children = append(p.children, id)
	t.nodes = append(t.nodes, node{label: label, parent: parent, index: idx})
	return id
}

// Len returns the number of nodes, including a synthetic forest root.
func (t *Tree) Len() int { return len(t.nodes) }

// Root returns the root node ID (always 0).
func (t *Tree) Root() ID { return 0 }

// Synthetic reports whether the root is the invisible root of a forest.
func (t *Tree) Synthetic() bool { return t.synthetic }

// Visible reports whether id is a real input node rather than the
// synthetic forest root.
func (t *Tree) Visible(id ID) bool { return !(t.synthetic && id == t.Root()) }

// Roots returns the roots of the input trees: the children of the synthetic
// root for a forest, or the root itself otherwise.
func (t *Tree) Roots() []ID {
	if t.synthetic {
		return t.nodes[t.Root()].children
	}
	return []ID{t.Root()}
}

// Label returns the node's label.
func (t *Tree) Label(id ID) string { return t.nodes[id].label }

// Parent returns the node's parent, or None for the root.
func (t *Tree) Parent(id ID) ID { return t.nodes[id].parent }

// Index returns the node's 0-based position among its siblings.
func (t *Tree) Index(id ID) int { return t.nodes[id].index }

// Children returns the ordered children of a node. The slice must not be modified.
func (t *Tree) Children(id ID) []ID { return t.nodes[id].children }

// IsLeaf reports whether the node has no children.
func (t *Tree) IsLeaf(id ID) bool { return len(t.nodes[id].children) == 0 }

// FirstChild returns the leftmost child or None.
func (t *Tree) FirstChild(id ID) ID {
	if c := t.nodes[id].children; len(c) > 0 {
		return c[0]
	}
	return None
}

// LastChild returns the rightmost child or None.
func (t *Tree) LastChild(id ID) ID {
	if c := t.nodes[id].children; len(c) > 0 {
		return c[len(c)-1]
	}
	return None
}

// LeftSibling returns the sibling immediately to the left, or None.
func (t *Tree) LeftSibling(id ID) ID {
	n := t.nodes[id]
	if n.parent == None || n.index == 0 {
		return None
	}
	return t.nodes[n.parent].children[n.index-1]
}

// LeftmostSibling returns the first child of the node's parent, or None
// when the node is itself the leftmost (or the root).
func (t *Tree) LeftmostSibling(id ID) ID {
	n := t.nodes[id]
	if n.parent == None || n.index == 0 {
		return None
	}
	return t.nodes[n.parent].children[0]
}

// Walk visits nodes in pre-order (parent before children, children left to
// right) together with their depth below the root. Returning false from fn
// skips the node's subtree.
func (t *Tree) Walk(fn func(id ID, depth int) bool) {
	type frame struct {
		id    ID
		depth int
	}
	stack := []frame{{t.Root(), 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(f.id, f.depth) {
			continue
		}
		children := t.nodes[f.id].children
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, frame{children[i], f.depth + 1})
		}
	}
}

// Height returns the number of levels in the tree (1 for a lone root).
func (t *Tree) Height() int {
	h := 0
	t.Walk(func(_ ID, depth int) bool {
		if depth+1 > h {
			h = depth + 1
		}
		return true
	})
	return h
}

// Path returns the dotted sibling-index path of a node, which identifies it
// in the original literal structure ("0" is the first tree of a forest,
// "0.1" its second child). The root of a single tree is "0"; the synthetic
// forest root has the empty path.
func (t *Tree) Path(id ID) string {
	if !t.Visible(id) {
		return ""
	}
	var parts []string
	for cur := id; cur != None && t.Visible(cur); cur = t.nodes[cur].parent {
		parts = append(parts, strconv.Itoa(t.nodes[cur].index))
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, ".")
}

// Subtree copies the subtree rooted at id into a new standalone tree.
func (t *Tree) Subtree(id ID) *Tree {
	out := New(t.nodes[id].label)
	type pair struct{ src, dst ID }
	stack := []pair{{id, out.Root()}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		children := t.nodes[p.src].children
		dsts := make([]ID, len(children))
		for i, c := range children {
			dsts[i] = out.AddChild(p.dst, t.nodes[c].label)
		}
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, pair{children[i], dsts[i]})
		}
	}
	return out
}

// Literal converts the subtree rooted at id back into its literal form.
func (t *Tree) Literal(id ID) Literal {
	n := t.nodes[id]
	lit := Literal{Label: n.label}
	if len(n.children) > 0 {
		lit.Children = make([]Literal, len(n.children))
		for i, c := range n.children {
			lit.Children[i] = t.Literal(c)
		}
	}
	return lit
}
