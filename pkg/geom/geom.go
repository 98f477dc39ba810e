// Package geom provides the small set of 2-D value types shared by the
// layout engine and the diagram model.
//
// All coordinates use a screen convention: x grows to the right and y grows
// downward. A [Rect] is described by its top-left corner and its size.
package geom

import (
	"fmt"
	"math"
)

// Point is a location in diagram space.
type Point struct {
	X float64 `json:"x" bson:"x" yaml:"x"`
	Y float64 `json:"y" bson:"y" yaml:"y"`
}

// Pt is shorthand for Point{x, y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Add returns p translated by q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns the vector from q to p.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// String implements fmt.Stringer.
func (p Point) String() string { return fmt.Sprintf("(%g,%g)", p.X, p.Y) }

// Size is a width/height pair.
type Size struct {
	Width  float64 `json:"width" bson:"width" yaml:"width"`
	Height float64 `json:"height" bson:"height" yaml:"height"`
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	X      float64 `json:"x" bson:"x" yaml:"x"`
	Y      float64 `json:"y" bson:"y" yaml:"y"`
	Width  float64 `json:"width" bson:"width" yaml:"width"`
	Height float64 `json:"height" bson:"height" yaml:"height"`
}

// RectAt returns the rectangle of size s whose top-left corner is p.
func RectAt(p Point, s Size) Rect {
	return Rect{X: p.X, Y: p.Y, Width: s.Width, Height: s.Height}
}

func (r Rect) Left() float64   { return r.X }
func (r Rect) Right() float64  { return r.X + r.Width }
func (r Rect) Top() float64    { return r.Y }
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Center returns the midpoint of r.
func (r Rect) Center() Point { return Point{r.X + r.Width/2, r.Y + r.Height/2} }

// Location returns the top-left corner of r.
func (r Rect) Location() Point { return Point{r.X, r.Y} }

// Size returns the dimensions of r.
func (r Rect) Size() Size { return Size{r.Width, r.Height} }

// IsEmpty reports whether r has no area.
func (r Rect) IsEmpty() bool { return r.Width <= 0 || r.Height <= 0 }

// Contains reports whether p lies inside r or on its border.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left() && p.X <= r.Right() && p.Y >= r.Top() && p.Y <= r.Bottom()
}

// Translate returns r moved by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	r.X += dx
	r.Y += dy
	return r
}

// Union returns the smallest rectangle containing both r and o.
func (r Rect) Union(o Rect) Rect {
	left := math.Min(r.Left(), o.Left())
	top := math.Min(r.Top(), o.Top())
	right := math.Max(r.Right(), o.Right())
	bottom := math.Max(r.Bottom(), o.Bottom())
	return Rect{X: left, Y: top, Width: right - left, Height: bottom - top}
}

// UnionPoint returns the smallest rectangle containing r and p.
func (r Rect) UnionPoint(p Point) Rect {
	return r.Union(Rect{X: p.X, Y: p.Y})
}

// String implements fmt.Stringer.
func (r Rect) String() string {
	return fmt.Sprintf("[%g,%g %gx%g]", r.X, r.Y, r.Width, r.Height)
}

// Overlap returns the shared interval of [a0,a1] and [b0,b1]. ok is false
// when the intervals are disjoint.
func Overlap(a0, a1, b0, b1 float64) (lo, hi float64, ok bool) {
	lo = math.Max(math.Min(a0, a1), math.Min(b0, b1))
	hi = math.Min(math.Max(a0, a1), math.Max(b0, b1))
	return lo, hi, lo <= hi
}

// Chopbox returns the point where the segment from the center of r toward
// target leaves r. If target is the center itself the center is returned.
func Chopbox(r Rect, target Point) Point {
	c := r.Center()
	dx, dy := target.X-c.X, target.Y-c.Y
	if dx == 0 && dy == 0 {
		return c
	}
	hw, hh := r.Width/2, r.Height/2
	t := math.Inf(1)
	if dx != 0 {
		t = math.Min(t, hw/math.Abs(dx))
	}
	if dy != 0 {
		t = math.Min(t, hh/math.Abs(dy))
	}
	return Point{c.X + dx*t, c.Y + dy*t}
}
