// Package tree provides the ordered rooted tree model used by the layout.
//
// Trees are arenas: every node lives in one slice and is addressed by a
// stable [ID]. Parent references are non-owning indices, so a node pointing
// back up its own tree never creates an ownership cycle.
//
// # Construction
//
// Trees are built from nested literals:
//
//	lit := tree.Node("A", tree.Leaf("B"), tree.Node("C", tree.Leaf("D"), tree.Leaf("E")))
//	t, err := tree.Build(lit)
//
// Decoded JSON/YAML values in the tuple form ["A", ["B"], ["C", ["D"], ["E"]]]
// are converted with [FromValue]. Malformed shapes and literals nesting deeper
// than [MaxDepth] are rejected with a STRUCTURAL_INPUT error before any layout
// is attempted.
//
// # Forests
//
// [Forest] wraps several trees under one synthetic root so the single-tree
// layout handles forests uniformly. The synthetic root is invisible: use
// [Tree.Visible] and [Tree.Roots] to skip it. An empty forest is an
// EMPTY_FOREST error.
package tree
