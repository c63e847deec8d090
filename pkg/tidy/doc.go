// Package tidy computes tidy drawings of ordered rooted trees in linear time.
//
// # Overview
//
// The layout is the Walker algorithm as corrected by Buchheim, Jünger and
// Leipert. It places every node of a tree so that:
//
//   - a parent is centered over its leftmost and rightmost children
//   - sibling subtrees never overlap; adjacent contours keep at least the
//     configured distance on every level
//   - isomorphic subtrees are drawn identically, up to translation
//   - a mirrored tree produces the mirrored drawing
//
// The work is proportional to the number of nodes: contours are followed
// through threads instead of being re-scanned, and the shifts of the
// subtrees between two conflicting ones are spread lazily and applied in one
// right-to-left sweep per node.
//
// # Passes
//
// The first walk runs bottom-up and assigns every node a preliminary x
// relative to its siblings, resolving conflicts with the subtrees to its left
// as each child completes. The second walk runs top-down and turns the
// accumulated modifiers into absolute coordinates: x is in units of the sibling
// distance and y is the node's depth below the root. The root lands on x = 0.
//
// Both walks use explicit stacks, so arbitrarily deep trees cannot exhaust the
// goroutine stack.
//
// # Usage
//
//	t, _ := tree.Build(tree.Node("A", tree.Leaf("B"), tree.Leaf("C")))
//	res := tidy.Layout(t, tidy.Options{})
//	fmt.Println(res.Points[t.Root()]) // {0 0}
//
// Coordinates are abstract. Use [Result.Bounds] together with package geom
// to map them onto a page.
package tidy
