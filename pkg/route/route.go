// Package route turns dummy chains into bend points and hands them to the
// diagram edges that own the final polyline.
package route

import (
	"math"

	"github.com/matzehuels/erdlayout/pkg/dag"
	"github.com/matzehuels/erdlayout/pkg/geom"
)

// Epsilon is the tolerance used to decide that a route is axis-aligned.
const Epsilon = 1e-9

// Link is the caller-side edge a route is written to.
type Link interface {
	// SetPoints replaces the stored point list.
	SetPoints(points []geom.Point)
	// ComputeRoute finalizes the visual path from the stored points and the
	// current endpoint positions and returns it.
	ComputeRoute() []geom.Point
}

// Route writes a route for every original edge of g that has a link. It
// returns the number of links routed.
//
// For each edge the dummy chain is walked from the head outward and every
// dummy center is prepended as a bend, which leaves the bends ordered from
// tail to head. The link receives the bends, computes its route, and the
// result is straightened with [Straighten] against the bounds of the two
// endpoint nodes before being stored back.
func Route(g *dag.Graph, links map[dag.EdgeID]Link) int {
	routed := 0
	for _, e := range g.Edges() {
		if e.Kind != dag.EdgeKindOriginal {
			continue
		}
		link, ok := links[e.ID]
		if !ok {
			continue
		}

		e.Bends = e.Bends[:0]
		chain := g.Chain(e.ID)
		for i := len(chain) - 1; i >= 0; i-- {
			e.PrependBend(g.Node(chain[i]).Center())
		}

		link.SetPoints(append([]geom.Point(nil), e.Bends...))
		points := link.ComputeRoute()
		if !e.IsSelfLoop() {
			points = Straighten(points, g.Node(e.Tail).Bounds(), g.Node(e.Head).Bounds())
		}
		link.SetPoints(points)
		routed++
	}
	return routed
}

// Straighten centres an axis-aligned route between two boxes.
//
// If the first and last point share x, every point on that vertical line is
// moved to the middle of the horizontal overlap of tail and head. Likewise
// for a shared y and the vertical overlap. Routes whose boxes do not overlap
// on the relevant axis are returned unchanged. points is modified in place.
func Straighten(points []geom.Point, tail, head geom.Rect) []geom.Point {
	if len(points) < 2 {
		return points
	}
	first, last := points[0], points[len(points)-1]

	switch {
	case math.Abs(first.X-last.X) <= Epsilon:
		lo, hi, ok := geom.Overlap(tail.Left(), tail.Right(), head.Left(), head.Right())
		if !ok {
			return points
		}
		mid := (lo + hi) / 2
		for i := range points {
			if math.Abs(points[i].X-first.X) <= Epsilon {
				points[i].X = mid
			}
		}
	case math.Abs(first.Y-last.Y) <= Epsilon:
		lo, hi, ok := geom.Overlap(tail.Top(), tail.Bottom(), head.Top(), head.Bottom())
		if !ok {
			return points
		}
		mid := (lo + hi) / 2
		for i := range points {
			if math.Abs(points[i].Y-first.Y) <= Epsilon {
				points[i].Y = mid
			}
		}
	}
	return points
}
