package graph

import (
	"sort"
	"strconv"
	"strings"

	"github.com/matzehuels/tidytree/pkg/geom"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// VizTypeTidy is the visualization type of tidy tree layouts.
const VizTypeTidy = "tidy"

// =============================================================================
// Layout - Positioned Forest
// =============================================================================

// Layout is the serialization format of a laid-out forest.
//
// Nodes carry both their abstract coordinates (RawX, RawY; x in units of the
// sibling distance, y the depth) and their coordinates on the page (X, Y)
// after fitting Bounds into the frame with Transform. The synthetic root
// that joins the trees of a forest is never serialized.
type Layout struct {
	ID      string `json:"id,omitempty" bson:"id,omitempty" yaml:"id,omitempty"`
	VizType string `json:"viz_type" bson:"viz_type" yaml:"viz_type"`

	// Frame and drawing options
	Width    float64    `json:"width" bson:"width" yaml:"width"`
	Height   float64    `json:"height" bson:"height" yaml:"height"`
	Margin   float64    `json:"margin" bson:"margin" yaml:"margin"`
	Distance float64    `json:"distance" bson:"distance" yaml:"distance"`
	Style    string     `json:"style,omitempty" bson:"style,omitempty" yaml:"style,omitempty"`
	Font     string     `json:"font,omitempty" bson:"font,omitempty" yaml:"font,omitempty"`
	Scale    float64    `json:"scale,omitempty" bson:"scale,omitempty" yaml:"scale,omitempty"`
	Class    string     `json:"class,omitempty" bson:"class,omitempty" yaml:"class,omitempty"`
	Hints    geom.Hints `json:"hints,omitzero" bson:"hints,omitempty" yaml:"hints,omitempty"`

	// Geometry
	Bounds    geom.Rect      `json:"bounds" bson:"bounds" yaml:"bounds"`
	Transform geom.Transform `json:"transform" bson:"transform" yaml:"transform"`

	// Derivation step this layout shows, if any
	Rule string `json:"rule,omitempty" bson:"rule,omitempty" yaml:"rule,omitempty"`

	Nodes []Node `json:"nodes" bson:"nodes" yaml:"nodes"`
	Edges []Edge `json:"edges,omitempty" bson:"edges,omitempty" yaml:"edges,omitempty"`
	Stats Stats  `json:"stats" bson:"stats" yaml:"stats"`
}

// Stats records the work of the layout that produced the document.
type Stats struct {
	Nodes        int `json:"nodes" bson:"nodes" yaml:"nodes"`
	ContourSteps int `json:"contour_steps" bson:"contour_steps" yaml:"contour_steps"`
}

// =============================================================================
// Node, Edge - Forest Structure
// =============================================================================

// Node is one positioned tree node.
//
// ID is the dotted sibling-index path of the node within the forest ("0" is
// the first tree, "0.1" its second child). Parent is empty for tree roots.
type Node struct {
	ID     string  `json:"id" bson:"id" yaml:"id"`
	Label  string  `json:"label" bson:"label" yaml:"label"`
	Parent string  `json:"parent,omitempty" bson:"parent,omitempty" yaml:"parent,omitempty"`
	Depth  int     `json:"depth" bson:"depth" yaml:"depth"`
	X      float64 `json:"x" bson:"x" yaml:"x"`
	Y      float64 `json:"y" bson:"y" yaml:"y"`
	RawX   float64 `json:"raw_x" bson:"raw_x" yaml:"raw_x"`
	RawY   float64 `json:"raw_y" bson:"raw_y" yaml:"raw_y"`

	// Resolved node style overrides; empty means the layout default.
	Style  string `json:"style,omitempty" bson:"style,omitempty" yaml:"style,omitempty"`
	Font   string `json:"font,omitempty" bson:"font,omitempty" yaml:"font,omitempty"`
	Markup string `json:"markup,omitempty" bson:"markup,omitempty" yaml:"markup,omitempty"`
}

// IsRoot reports whether the node is the root of one of the trees.
func (n *Node) IsRoot() bool { return n.Parent == "" }

// Point returns the page coordinates of the node.
func (n *Node) Point() geom.Point { return geom.Point{X: n.X, Y: n.Y} }

// Edge connects a node to its parent.
type Edge struct {
	From string `json:"from" bson:"from" yaml:"from"`
	To   string `json:"to" bson:"to" yaml:"to"`
}

// =============================================================================
// Queries
// =============================================================================

// Node returns the node with the given ID.
func (l *Layout) Node(id string) (*Node, bool) {
	for i := range l.Nodes {
		if l.Nodes[i].ID == id {
			return &l.Nodes[i], true
		}
	}
	return nil, false
}

// Roots returns the roots of the trees in forest order.
func (l *Layout) Roots() []*Node {
	var out []*Node
	for i := range l.Nodes {
		if l.Nodes[i].IsRoot() {
			out = append(out, &l.Nodes[i])
		}
	}
	return out
}

// Levels groups nodes by depth, each level ordered left to right.
func (l *Layout) Levels() [][]*Node {
	var levels [][]*Node
	for i := range l.Nodes {
		n := &l.Nodes[i]
		for len(levels) <= n.Depth {
			levels = append(levels, nil)
		}
		levels[n.Depth] = append(levels[n.Depth], n)
	}
	for _, lvl := range levels {
		sort.SliceStable(lvl, func(i, j int) bool { return lvl[i].RawX < lvl[j].RawX })
	}
	return levels
}

// ComparePaths orders dotted node paths in pre-order: "0" < "0.0" < "0.1" <
// "0.10" < "1".
func ComparePaths(a, b string) int {
	as, bs := strings.Split(a, "."), strings.Split(b, ".")
	for i := 0; i < len(as) && i < len(bs); i++ {
		x, _ := strconv.Atoi(as[i])
		y, _ := strconv.Atoi(bs[i])
		if x != y {
			if x < y {
				return -1
			}
			return 1
		}
	}
	return len(as) - len(bs)
}
