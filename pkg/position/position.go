package position

import (
	"math"
	"slices"

	"github.com/matzehuels/erdlayout/pkg/dag"
	"github.com/matzehuels/erdlayout/pkg/geom"
)

// Default gaps between layout units.
const (
	DefaultHorizontalGap = 100.0
	DefaultVerticalGap   = 100.0
)

// Options controls node spacing.
type Options struct {
	HorizontalGap float64
	VerticalGap   float64
}

// DefaultOptions returns the default spacing.
func DefaultOptions() Options {
	return Options{HorizontalGap: DefaultHorizontalGap, VerticalGap: DefaultVerticalGap}
}

// Assign writes X and Y (centers) for every node of g and returns the
// bounding box of all nodes, dummies included. The layout is translated so
// the box starts at the origin.
//
// g must be proper (see transform.Normalize) and ordered.
func Assign(g *dag.Graph, opts Options) geom.Rect {
	if g.NodeCount() == 0 {
		return geom.Rect{}
	}

	p := newPlacer(g, opts.HorizontalGap)
	p.horizontal()
	assignY(p.layers, g, opts.VerticalGap)

	return normalize(g)
}

// placer holds the per-run state of horizontal placement.
type placer struct {
	g      *dag.Graph
	gap    float64
	layers [][]dag.NodeID // top level first, each ordered left to right

	conflicts map[[2]dag.NodeID]bool
}

func newPlacer(g *dag.Graph, gap float64) *placer {
	byLevel := g.Layers()
	layers := make([][]dag.NodeID, len(byLevel))
	for i, layer := range byLevel {
		layers[len(byLevel)-1-i] = layer
	}
	return &placer{g: g, gap: gap, layers: layers, conflicts: make(map[[2]dag.NodeID]bool)}
}

func (p *placer) horizontal() {
	p.markConflicts()

	for _, d := range directions {
		xs := newView(p, d).place()
		for _, n := range p.g.Nodes() {
			*d.field(n) = xs[n.ID]
		}
	}

	p.balance()
	p.separate()
}

// separation is the minimum center distance between left and right when
// they are neighbours on a level.
func (p *placer) separation(left, right dag.NodeID) float64 {
	l, r := p.g.Node(left), p.g.Node(right)
	return (l.Width+r.Width)/2 + p.gap
}

func conflictKey(a, b dag.NodeID) [2]dag.NodeID {
	if a > b {
		a, b = b, a
	}
	return [2]dag.NodeID{a, b}
}

// innerNeighbor returns the dummy on level that v shares an edge with when v
// is a dummy itself, or NoNode.
func (p *placer) innerNeighbor(v dag.NodeID, level int) dag.NodeID {
	if !p.g.Node(v).IsDummy() {
		return dag.NoNode
	}
	for _, u := range p.g.Neighbors(v, level) {
		if p.g.Node(u).IsDummy() {
			return u
		}
	}
	return dag.NoNode
}

// markConflicts marks type-1 conflicts: segments between a real node and
// any node that cross an inner segment (dummy to dummy). Inner segments win
// during alignment so dummy chains stay straight.
func (p *placer) markConflicts() {
	for i := 0; i+1 < len(p.layers); i++ {
		upper, lower := p.layers[i], p.layers[i+1]
		if len(upper) == 0 || len(lower) == 0 {
			continue
		}
		upperLevel := p.g.Node(upper[0]).Level
		upos := dag.PosMap(upper)

		k0, l := 0, 0
		for l1, v := range lower {
			inner := p.innerNeighbor(v, upperLevel)
			if l1 != len(lower)-1 && inner == dag.NoNode {
				continue
			}
			k1 := len(upper) - 1
			if inner != dag.NoNode {
				k1 = upos[inner]
			}
			for ; l <= l1; l++ {
				w := lower[l]
				for _, u := range p.g.Neighbors(w, upperLevel) {
					if k := upos[u]; k < k0 || k > k1 {
						p.conflicts[conflictKey(u, w)] = true
					}
				}
			}
			k0 = k1
		}
	}
}

// balance aligns the four candidates to the narrowest one and stores the
// average of the two medians in X.
func (p *placer) balance() {
	nodes := p.g.Nodes()

	type extent struct{ min, max float64 }
	ext := make([]extent, len(directions))
	best := 0
	for i, d := range directions {
		e := extent{math.Inf(1), math.Inf(-1)}
		for _, n := range nodes {
			x := *d.field(n)
			e.min = math.Min(e.min, x-n.Width/2)
			e.max = math.Max(e.max, x+n.Width/2)
		}
		ext[i] = e
		if e.max-e.min < ext[best].max-ext[best].min {
			best = i
		}
	}

	for i, d := range directions {
		shift := ext[best].min - ext[i].min
		if d.right {
			shift = ext[best].max - ext[i].max
		}
		for _, n := range nodes {
			*d.field(n) += shift
		}
	}

	for _, n := range nodes {
		xs := []float64{n.XUpLeft, n.XUpRight, n.XDownLeft, n.XDownRight}
		slices.Sort(xs)
		n.X = (xs[1] + xs[2]) / 2
	}
}

// separate pushes nodes right where the combined coordinates violate the
// minimum separation.
func (p *placer) separate() {
	for _, layer := range p.layers {
		for i := 1; i < len(layer); i++ {
			left, right := p.g.Node(layer[i-1]), p.g.Node(layer[i])
			if minX := left.X + p.separation(left.ID, right.ID); right.X < minX {
				right.X = minX
			}
		}
	}
}

func assignY(layers [][]dag.NodeID, g *dag.Graph, vgap float64) {
	top := 0.0
	for _, layer := range layers {
		height := 0.0
		for _, id := range layer {
			height = math.Max(height, g.Node(id).Height)
		}
		for _, id := range layer {
			g.Node(id).Y = top + height/2
		}
		top += height + vgap
	}
}

// normalize moves the layout so its bounding box starts at the origin.
func normalize(g *dag.Graph) geom.Rect {
	nodes := g.Nodes()
	box := nodes[0].Bounds()
	for _, n := range nodes[1:] {
		box = box.Union(n.Bounds())
	}
	for _, n := range nodes {
		n.X -= box.X
		n.Y -= box.Y
	}
	return box.Translate(-box.X, -box.Y)
}
