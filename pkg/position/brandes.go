package position

import (
	"math"
	"slices"

	"github.com/matzehuels/erdlayout/pkg/dag"
)

// direction is one of the four Brandes–Köpf passes.
type direction struct {
	up    bool // align with the level below, sweeping bottom to top
	right bool // compact right to left
	field func(n *dag.Node) *float64
}

var directions = []direction{
	{up: false, right: false, field: func(n *dag.Node) *float64 { return &n.XDownLeft }},
	{up: false, right: true, field: func(n *dag.Node) *float64 { return &n.XDownRight }},
	{up: true, right: false, field: func(n *dag.Node) *float64 { return &n.XUpLeft }},
	{up: true, right: true, field: func(n *dag.Node) *float64 { return &n.XUpRight }},
}

// view is the layering as seen by one direction: layers flipped so that
// alignment always looks at the previous layer and compaction always runs
// left to right.
type view struct {
	p      *placer
	right  bool
	layers [][]dag.NodeID
	levels []int

	pos      []int // index of each node within its view layer
	layerIdx []int // view layer of each node
	x        []float64

	constraints []classConstraint
}

// classConstraint records that block root u sits directly left of block
// root v in different classes and must stay sep apart.
type classConstraint struct {
	u, v dag.NodeID
	sep  float64
}

func newView(p *placer, d direction) *view {
	n := p.g.NodeCount()
	h := len(p.layers)
	v := &view{
		p:        p,
		right:    d.right,
		layers:   make([][]dag.NodeID, h),
		levels:   make([]int, h),
		pos:      make([]int, n),
		layerIdx: make([]int, n),
		x:        make([]float64, n),
	}

	depth := h - 1
	for i := range v.layers {
		src, level := i, depth-i
		if d.up {
			src, level = h-1-i, i
		}
		layer := slices.Clone(p.layers[src])
		if d.right {
			slices.Reverse(layer)
		}
		v.layers[i] = layer
		v.levels[i] = level
		for k, id := range layer {
			v.pos[id] = k
			v.layerIdx[id] = i
		}
	}
	return v
}

// place runs alignment and compaction and returns an x per node handle.
func (v *view) place() []float64 {
	g := v.p.g
	for _, n := range g.Nodes() {
		n.Root, n.Align, n.Sink = n.ID, n.ID, n.ID
		n.Shift = math.Inf(1)
		n.Marked = false
	}

	v.align()
	v.compact()

	xs := make([]float64, g.NodeCount())
	for _, n := range g.Nodes() {
		root := g.Node(n.Root)
		x := v.x[root.ID] + g.Node(root.Sink).Shift
		if v.right {
			x = -x
		}
		xs[n.ID] = x
		n.Marked = false
	}
	return xs
}

// align builds blocks by linking each node to a median neighbour on the
// previous layer, skipping conflicted segments and keeping alignments
// non-crossing.
func (v *view) align() {
	g := v.p.g
	for i := 1; i < len(v.layers); i++ {
		r := -1
		for _, id := range v.layers[i] {
			nbrs := g.Neighbors(id, v.levels[i-1])
			if len(nbrs) == 0 {
				continue
			}
			slices.SortFunc(nbrs, func(a, b dag.NodeID) int { return v.pos[a] - v.pos[b] })
			nbrs = slices.Compact(nbrs)

			d := len(nbrs)
			for m := (d - 1) / 2; m <= d/2; m++ {
				n := g.Node(id)
				if n.Align != id {
					break
				}
				u := nbrs[m]
				if v.p.conflicts[conflictKey(u, id)] || r >= v.pos[u] {
					continue
				}
				g.Node(u).Align = id
				n.Root = g.Node(u).Root
				n.Align = n.Root
				r = v.pos[u]
			}
		}
	}
}

// compact places every block as far left as its left neighbours allow and
// then resolves the shifts between classes.
func (v *view) compact() {
	g := v.p.g
	for _, layer := range v.layers {
		for _, id := range layer {
			if g.Node(id).Root == id {
				v.placeBlock(id)
			}
		}
	}
	v.resolveShifts()
}

// placeBlock computes the x of block root relative to its class sink.
// Marked flags blocks that are already placed.
func (v *view) placeBlock(root dag.NodeID) {
	g := v.p.g
	rn := g.Node(root)
	if rn.Marked {
		return
	}
	rn.Marked = true
	v.x[root] = 0

	w := root
	for {
		if k := v.pos[w]; k > 0 {
			pred := v.layers[v.layerIdx[w]][k-1]
			u := g.Node(pred).Root
			v.placeBlock(u)

			un := g.Node(u)
			if rn.Sink == root {
				rn.Sink = un.Sink
			}
			sep := v.p.separation(pred, w)
			if rn.Sink != un.Sink {
				v.constraints = append(v.constraints, classConstraint{u: u, v: root, sep: sep})
			} else {
				v.x[root] = math.Max(v.x[root], v.x[u]+sep)
			}
		}
		w = g.Node(w).Align
		if w == root {
			break
		}
	}
}

// resolveShifts stores on each class sink the offset of its class. A class
// is moved as far right as the classes to its right allow; a class with no
// right neighbour keeps offset zero.
func (v *view) resolveShifts() {
	g := v.p.g
	bySink := make(map[dag.NodeID][]classConstraint)
	for _, c := range v.constraints {
		s := g.Node(c.u).Sink
		bySink[s] = append(bySink[s], c)
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make([]int, g.NodeCount())

	var resolve func(sink dag.NodeID) float64
	resolve = func(sink dag.NodeID) float64 {
		n := g.Node(sink)
		switch state[sink] {
		case done:
			return n.Shift
		case visiting:
			return 0
		}
		state[sink] = visiting

		shift := math.Inf(1)
		for _, c := range bySink[sink] {
			target := resolve(g.Node(c.v).Sink)
			shift = math.Min(shift, target+v.x[c.v]-v.x[c.u]-c.sep)
		}
		if math.IsInf(shift, 1) {
			shift = 0
		}
		n.Shift = shift
		state[sink] = done
		return shift
	}

	for _, n := range g.Nodes() {
		if n.Root == n.ID && n.Sink == n.ID {
			resolve(n.ID)
		}
	}
}
