// Package geom computes bounding boxes of laid-out trees and maps them
// affinely into a caller-supplied target rectangle.
//
// The transform is independent per axis, never changes relative order, and
// treats degenerate geometry (a zero-width or zero-height layout) as a
// neutral scale of 1.0 rather than an error.
package geom

import "math"

// Point is a 2-D coordinate.
type Point struct {
	X float64 `json:"x" bson:"x" yaml:"x"`
	Y float64 `json:"y" bson:"y" yaml:"y"`
}

// Rect is an axis-aligned rectangle given by its extremal coordinates.
type Rect struct {
	MinX float64 `json:"min_x" bson:"min_x" yaml:"min_x"`
	MinY float64 `json:"min_y" bson:"min_y" yaml:"min_y"`
	MaxX float64 `json:"max_x" bson:"max_x" yaml:"max_x"`
	MaxY float64 `json:"max_y" bson:"max_y" yaml:"max_y"`
}

// Width returns the horizontal extent.
func (r Rect) Width() float64 { return r.MaxX - r.MinX }

// Height returns the vertical extent.
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// CenterX returns the horizontal midpoint.
func (r Rect) CenterX() float64 { return (r.MinX + r.MaxX) / 2 }

// CenterY returns the vertical midpoint.
func (r Rect) CenterY() float64 { return (r.MinY + r.MaxY) / 2 }

// Contains reports whether p lies inside r, edges included, allowing for
// eps of floating-point slack.
func (r Rect) Contains(p Point, eps float64) bool {
	return p.X >= r.MinX-eps && p.X <= r.MaxX+eps &&
		p.Y >= r.MinY-eps && p.Y <= r.MaxY+eps
}

// Inset shrinks r by margin on every side.
func (r Rect) Inset(margin float64) Rect {
	return Rect{MinX: r.MinX + margin, MinY: r.MinY + margin, MaxX: r.MaxX - margin, MaxY: r.MaxY - margin}
}

// BoundsOf returns the extremal coordinates of the points for which include
// returns true (all points when include is nil). The boolean is false when no
// point was included.
func BoundsOf(points []Point, include func(i int) bool) (Rect, bool) {
	r := Rect{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
	found := false
	for i, p := range points {
		if include != nil && !include(i) {
			continue
		}
		found = true
		r.MinX = math.Min(r.MinX, p.X)
		r.MinY = math.Min(r.MinY, p.Y)
		r.MaxX = math.Max(r.MaxX, p.X)
		r.MaxY = math.Max(r.MaxY, p.Y)
	}
	if !found {
		return Rect{}, false
	}
	return r, true
}

// Hints are optional lower bounds on the extents used for scaling. A value
// of zero or less means unset. They keep the scale stable across a sequence
// of drawings whose layouts grow, such as the steps of a derivation.
type Hints struct {
	MinSpan  float64 `json:"min_span,omitempty" bson:"min_span,omitempty" toml:"min_span" yaml:"min_span,omitempty"`
	MinDepth float64 `json:"min_depth,omitempty" bson:"min_depth,omitempty" toml:"min_depth" yaml:"min_depth,omitempty"`
}

// Transform is the per-axis affine map x' = x*ScaleX + OffsetX, y' = y*ScaleY + OffsetY.
type Transform struct {
	ScaleX  float64 `json:"scale_x" bson:"scale_x" yaml:"scale_x"`
	ScaleY  float64 `json:"scale_y" bson:"scale_y" yaml:"scale_y"`
	OffsetX float64 `json:"offset_x" bson:"offset_x" yaml:"offset_x"`
	OffsetY float64 `json:"offset_y" bson:"offset_y" yaml:"offset_y"`
}

// Identity is the transform that leaves points unchanged.
var Identity = Transform{ScaleX: 1, ScaleY: 1}

// Fit computes the transform placing bounds inside target.
//
// The horizontal scale is target width over max(bounds width, MinSpan), the
// vertical one target height over max(bounds height, MinDepth); an axis with
// zero computed extent gets scale 1.0. The result is centered horizontally
// and aligned to the top of target vertically.
func Fit(bounds, target Rect, hints Hints) Transform {
	sx := axisScale(bounds.Width(), target.Width(), hints.MinSpan)
	sy := axisScale(bounds.Height(), target.Height(), hints.MinDepth)
	return Transform{
		ScaleX:  sx,
		ScaleY:  sy,
		OffsetX: target.CenterX() - bounds.CenterX()*sx,
		OffsetY: target.MinY - bounds.MinY*sy,
	}
}

func axisScale(extent, target, hint float64) float64 {
	if extent == 0 {
		return 1.0
	}
	return target / math.Max(extent, hint)
}

// Apply maps a single point.
func (t Transform) Apply(p Point) Point {
	return Point{X: p.X*t.ScaleX + t.OffsetX, Y: p.Y*t.ScaleY + t.OffsetY}
}

// ApplyAll maps every point, returning a new slice.
func (t Transform) ApplyAll(points []Point) []Point {
	out := make([]Point, len(points))
	for i, p := range points {
		out[i] = t.Apply(p)
	}
	return out
}

// ApplyRect maps the corners of a rectangle.
func (t Transform) ApplyRect(r Rect) Rect {
	lo := t.Apply(Point{X: r.MinX, Y: r.MinY})
	hi := t.Apply(Point{X: r.MaxX, Y: r.MaxY})
	return Rect{
		MinX: math.Min(lo.X, hi.X), MinY: math.Min(lo.Y, hi.Y),
		MaxX: math.Max(lo.X, hi.X), MaxY: math.Max(lo.Y, hi.Y),
	}
}
