package tidy

import (
	"github.com/matzehuels/tidytree/pkg/geom"
	"github.com/matzehuels/tidytree/pkg/tree"
)

// DefaultDistance is the minimum horizontal separation between adjacent
// nodes on the same level when Options.Distance is unset.
const DefaultDistance = 1.0

// Options configures a layout.
type Options struct {
	// Distance is the minimum horizontal gap between neighboring contours.
	// Values of zero or less select DefaultDistance.
	Distance float64
}

func (o Options) distance() float64 {
	if o.Distance <= 0 {
		return DefaultDistance
	}
	return o.Distance
}

// Stats reports the amount of work a layout performed.
type Stats struct {
	// Nodes is the number of nodes laid out, a synthetic forest root included.
	Nodes int
	// ContourSteps counts the lockstep contour advances made while separating
	// subtrees. It grows linearly with Nodes.
	ContourSteps int
}

// Result holds the coordinates of every node, indexed by tree.ID.
type Result struct {
	Points []geom.Point
	Stats  Stats
}

// Point returns the coordinates of a node.
func (r *Result) Point(id tree.ID) geom.Point { return r.Points[id] }

// Bounds returns the bounding box of the visible nodes of t, skipping a
// synthetic forest root.
func (r *Result) Bounds(t *tree.Tree) (geom.Rect, bool) {
	return geom.BoundsOf(r.Points, func(i int) bool { return t.Visible(tree.ID(i)) })
}

// Layout computes the tidy drawing of t. It cannot fail: every tree built by
// package tree is a valid input, and forests are laid out through their
// synthetic root.
func Layout(t *tree.Tree, opts Options) *Result {
	l := newLayout(t, opts.distance())
	l.firstWalk()
	points := l.secondWalk()
	return &Result{
		Points: points,
		Stats:  Stats{Nodes: t.Len(), ContourSteps: l.steps},
	}
}

// state is the per-node working set of the layout.
type state struct {
	prelim   float64
	mod      float64
	shift    float64
	change   float64
	thread   tree.ID
	ancestor tree.ID
}

type layout struct {
	t        *tree.Tree
	distance float64
	nodes    []state
	steps    int
}

func newLayout(t *tree.Tree, distance float64) *layout {
	nodes := make([]state, t.Len())
	for i := range nodes {
		nodes[i].thread = tree.None
		nodes[i].ancestor = tree.ID(i)
	}
	return &layout{t: t, distance: distance, nodes: nodes}
}

// firstWalk assigns preliminary x coordinates and modifiers bottom-up.
//
// Each frame tracks the next child to visit and the default ancestor for
// its apportioning. A child is apportioned as soon as its own subtree is
// complete, before its right sibling is visited, since a leaf's preliminary
// x depends on the already shifted position of its left sibling.
func (l *layout) firstWalk() {
	type frame struct {
		v  tree.ID
		i  int
		da tree.ID
	}

	root := l.t.Root()
	if l.t.IsLeaf(root) {
		l.placeLeaf(root)
		return
	}

	stack := []frame{{v: root, da: l.t.FirstChild(root)}}
	for len(stack) > 0 {
		top := len(stack) - 1
		f := stack[top]
		children := l.t.Children(f.v)

		if f.i < len(children) {
			c := children[f.i]
			if l.t.IsLeaf(c) {
				l.placeLeaf(c)
				stack[top].da = l.apportion(c, f.da)
				stack[top].i++
				continue
			}
			stack = append(stack, frame{v: c, da: l.t.FirstChild(c)})
			continue
		}

		l.placeInternal(f.v)
		stack = stack[:top]
		if top > 0 {
			parent := &stack[top-1]
			parent.da = l.apportion(f.v, parent.da)
			parent.i++
		}
	}
}

func (l *layout) placeLeaf(v tree.ID) {
	if w := l.t.LeftSibling(v); w != tree.None {
		l.nodes[v].prelim = l.nodes[w].prelim + l.distance
		return
	}
	l.nodes[v].prelim = 0
}

// placeInternal centers v over its children once they are all placed.
func (l *layout) placeInternal(v tree.ID) {
	l.executeShifts(v)
	first, last := l.t.FirstChild(v), l.t.LastChild(v)
	midpoint := (l.nodes[first].prelim + l.nodes[last].prelim) / 2

	n := &l.nodes[v]
	if w := l.t.LeftSibling(v); w != tree.None {
		n.prelim = l.nodes[w].prelim + l.distance
		n.mod = n.prelim - midpoint
		return
	}
	n.prelim = midpoint
}

// apportion pushes the subtree of v clear of the subtrees to its left and
// returns the updated default ancestor.
func (l *layout) apportion(v, da tree.ID) tree.ID {
	w := l.t.LeftSibling(v)
	if w == tree.None {
		return da
	}

	// i/o: inside/outside; l/r: left forest/right subtree.
	vir, vor := v, v
	vil, vol := w, l.t.LeftmostSibling(v)
	sir, sor := l.nodes[vir].mod, l.nodes[vor].mod
	sil, sol := l.nodes[vil].mod, l.nodes[vol].mod

	for l.nextRight(vil) != tree.None && l.nextLeft(vir) != tree.None {
		l.steps++
		vil = l.nextRight(vil)
		vir = l.nextLeft(vir)
		vol = l.nextLeft(vol)
		vor = l.nextRight(vor)
		l.nodes[vor].ancestor = v

		shift := (l.nodes[vil].prelim + sil) - (l.nodes[vir].prelim + sir) + l.distance
		if shift > 0 {
			l.moveSubtree(l.ancestorOf(vil, v, da), v, shift)
			sir += shift
			sor += shift
		}
		sil += l.nodes[vil].mod
		sir += l.nodes[vir].mod
		sol += l.nodes[vol].mod
		sor += l.nodes[vor].mod
	}

	if next := l.nextRight(vil); next != tree.None && l.nextRight(vor) == tree.None {
		l.nodes[vor].thread = next
		l.nodes[vor].mod += sil - sor
	}
	if next := l.nextLeft(vir); next != tree.None && l.nextLeft(vol) == tree.None {
		l.nodes[vol].thread = next
		l.nodes[vol].mod += sir - sol
		da = v
	}
	return da
}

// moveSubtree shifts wr right by shift and records the change so that the
// subtrees between wl and wr are spread evenly by executeShifts.
func (l *layout) moveSubtree(wl, wr tree.ID, shift float64) {
	subtrees := float64(l.t.Index(wr) - l.t.Index(wl))
	l.nodes[wr].change -= shift / subtrees
	l.nodes[wr].shift += shift
	l.nodes[wl].change += shift / subtrees
	l.nodes[wr].prelim += shift
	l.nodes[wr].mod += shift
}

// executeShifts applies the pending shifts of v's children right to left.
func (l *layout) executeShifts(v tree.ID) {
	var shift, change float64
	children := l.t.Children(v)
	for i := len(children) - 1; i >= 0; i-- {
		w := &l.nodes[children[i]]
		w.prelim += shift
		w.mod += shift
		change += w.change
		shift += w.shift + change
	}
}

// ancestorOf returns the greatest uncommon ancestor of vil and v: the
// recorded ancestor of vil when it is a sibling of v, else da.
func (l *layout) ancestorOf(vil, v, da tree.ID) tree.ID {
	if a := l.nodes[vil].ancestor; l.t.Parent(a) == l.t.Parent(v) {
		return a
	}
	return da
}

// nextLeft follows the left contour: the leftmost child, else the thread.
func (l *layout) nextLeft(v tree.ID) tree.ID {
	if c := l.t.FirstChild(v); c != tree.None {
		return c
	}
	return l.nodes[v].thread
}

// nextRight follows the right contour: the rightmost child, else the thread.
func (l *layout) nextRight(v tree.ID) tree.ID {
	if c := l.t.LastChild(v); c != tree.None {
		return c
	}
	return l.nodes[v].thread
}

// secondWalk sums modifiers top-down into absolute coordinates, starting
// with the root at x = 0 and depth 0.
func (l *layout) secondWalk() []geom.Point {
	type frame struct {
		v     tree.ID
		m     float64
		depth int
	}

	points := make([]geom.Point, l.t.Len())
	root := l.t.Root()
	stack := []frame{{v: root, m: -l.nodes[root].prelim}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := l.nodes[f.v]
		points[f.v] = geom.Point{X: n.prelim + f.m, Y: float64(f.depth)}
		for _, c := range l.t.Children(f.v) {
			stack = append(stack, frame{v: c, m: f.m + n.mod, depth: f.depth + 1})
		}
	}
	return points
}
