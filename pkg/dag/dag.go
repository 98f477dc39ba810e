package dag

import (
	"errors"
	"slices"

	"github.com/matzehuels/erdlayout/pkg/geom"
)

var (
	// ErrUnknownTailNode is returned by [Graph.AddEdge] when the tail handle
	// does not refer to a node in the arena.
	ErrUnknownTailNode = errors.New("unknown tail node")

	// ErrUnknownHeadNode is returned by [Graph.AddEdge] when the head handle
	// does not refer to a node in the arena.
	ErrUnknownHeadNode = errors.New("unknown head node")

	// ErrNonAdjacentLevels is returned by [Graph.Validate] when an active edge
	// does not connect nodes on neighbouring levels.
	ErrNonAdjacentLevels = errors.New("edge must connect adjacent levels")

	// ErrInvalidOrder is returned by [Graph.Validate] when the order values of
	// a level are not a permutation of 0..k-1.
	ErrInvalidOrder = errors.New("level order is not a permutation")

	// ErrGraphHasCycle is returned when the non-marked edges still contain a
	// cycle.
	ErrGraphHasCycle = errors.New("graph contains a cycle")
)

// NodeID is a handle into the node arena of a [Graph].
type NodeID int

// EdgeID is a handle into the edge arena of a [Graph].
type EdgeID int

const (
	// NoNode marks an unset node handle.
	NoNode NodeID = -1
	// NoEdge marks an unset edge handle.
	NoEdge EdgeID = -1
)

// DummySize is the width and height given to dummy nodes.
const DummySize = 1.0

// NodeKind distinguishes real diagram nodes from dummies inserted by
// normalization.
type NodeKind int

const (
	// NodeKindReal wraps a caller-owned diagram node.
	NodeKindReal NodeKind = iota
	// NodeKindDummy subdivides a long edge. Its Origin is the edge it belongs to.
	NodeKindDummy
)

func (k NodeKind) String() string {
	switch k {
	case NodeKindReal:
		return "real"
	case NodeKindDummy:
		return "dummy"
	default:
		return "unknown"
	}
}

// EdgeKind distinguishes caller edges from the unit segments of a dummy chain.
type EdgeKind int

const (
	// EdgeKindOriginal is an edge added by the caller.
	EdgeKindOriginal EdgeKind = iota
	// EdgeKindSegment is one link of a dummy chain. Its Origin is the
	// original edge it replaces.
	EdgeKindSegment
)

// Node is a vertex of the layout arena.
//
// Level, Order, X and Y are written by the pipeline stages. The alignment
// fields are scratch space for coordinate assignment and refer to other
// nodes by handle only.
type Node struct {
	ID     NodeID
	Kind   NodeKind
	Origin EdgeID // Edge subdivided by a dummy; NoEdge for real nodes
	Label  string

	Level  int
	Order  int
	Width  float64
	Height float64
	X      float64 // Center
	Y      float64 // Center
	Marked bool

	Root  NodeID
	Align NodeID
	Sink  NodeID
	Shift float64

	XUpLeft    float64
	XUpRight   float64
	XDownLeft  float64
	XDownRight float64
}

// IsDummy reports whether the node was inserted by normalization.
func (n *Node) IsDummy() bool { return n.Kind == NodeKindDummy }

// Bounds returns the node rectangle around its center.
func (n *Node) Bounds() geom.Rect {
	return geom.Rect{X: n.X - n.Width/2, Y: n.Y - n.Height/2, Width: n.Width, Height: n.Height}
}

// Center returns the node position.
func (n *Node) Center() geom.Point { return geom.Point{X: n.X, Y: n.Y} }

// Edge is a directed link of the layout arena.
type Edge struct {
	ID     EdgeID
	Kind   EdgeKind
	Origin EdgeID // Original edge of a segment; NoEdge otherwise
	Tail   NodeID
	Head   NodeID
	Marked bool // Member of the feedback arc set
	Split  bool // Replaced by a dummy chain
	Bends  []geom.Point
}

// IsSelfLoop reports whether the edge starts and ends at the same node.
func (e *Edge) IsSelfLoop() bool { return e.Tail == e.Head }

// Active reports whether the edge is part of the layered topology, i.e. it
// has not been split into a chain and is not a self-loop.
func (e *Edge) Active() bool { return !e.Split && !e.IsSelfLoop() }

// PrependBend inserts p before all existing bend points.
func (e *Edge) PrependBend(p geom.Point) {
	e.Bends = slices.Insert(e.Bends, 0, p)
}

// Graph is a per-run arena of nodes and edges. Handles are dense indices in
// insertion order, so iterating [Graph.Nodes] or [Graph.Edges] is
// deterministic.
//
// The zero value is not usable; use [New].
type Graph struct {
	nodes  []*Node
	edges  []*Edge
	out    [][]EdgeID
	in     [][]EdgeID
	chains map[EdgeID][]NodeID
}

// New creates an empty arena.
func New() *Graph {
	return &Graph{chains: make(map[EdgeID][]NodeID)}
}

// AddNode adds a real node with the given label and size.
func (g *Graph) AddNode(label string, width, height float64) NodeID {
	return g.add(&Node{Kind: NodeKindReal, Origin: NoEdge, Label: label, Width: width, Height: height})
}

// AddDummy adds a dummy node that subdivides the edge origin.
func (g *Graph) AddDummy(origin EdgeID, level int) NodeID {
	return g.add(&Node{Kind: NodeKindDummy, Origin: origin, Level: level, Width: DummySize, Height: DummySize})
}

func (g *Graph) add(n *Node) NodeID {
	id := NodeID(len(g.nodes))
	n.ID = id
	n.Root, n.Align, n.Sink = id, id, id
	g.nodes = append(g.nodes, n)
	g.out = append(g.out, nil)
	g.in = append(g.in, nil)
	return id
}

// AddEdge adds an original edge from tail to head.
func (g *Graph) AddEdge(tail, head NodeID) (EdgeID, error) {
	if !g.valid(tail) {
		return NoEdge, ErrUnknownTailNode
	}
	if !g.valid(head) {
		return NoEdge, ErrUnknownHeadNode
	}
	return g.link(&Edge{Kind: EdgeKindOriginal, Origin: NoEdge, Tail: tail, Head: head}), nil
}

// AddSegment adds one link of the dummy chain replacing origin.
func (g *Graph) AddSegment(origin EdgeID, tail, head NodeID) EdgeID {
	return g.link(&Edge{Kind: EdgeKindSegment, Origin: origin, Tail: tail, Head: head, Marked: g.edges[origin].Marked})
}

func (g *Graph) link(e *Edge) EdgeID {
	id := EdgeID(len(g.edges))
	e.ID = id
	g.edges = append(g.edges, e)
	g.out[e.Tail] = append(g.out[e.Tail], id)
	g.in[e.Head] = append(g.in[e.Head], id)
	return id
}

func (g *Graph) valid(id NodeID) bool { return id >= 0 && int(id) < len(g.nodes) }

// Node returns the node for a handle. It panics on handles not issued by g.
func (g *Graph) Node(id NodeID) *Node { return g.nodes[id] }

// Edge returns the edge for a handle. It panics on handles not issued by g.
func (g *Graph) Edge(id EdgeID) *Edge { return g.edges[id] }

// Nodes returns all nodes in insertion order. The slice must not be modified.
func (g *Graph) Nodes() []*Node { return g.nodes }

// Edges returns all edges in insertion order. The slice must not be modified.
func (g *Graph) Edges() []*Edge { return g.edges }

// NodeCount returns the number of nodes, dummies included.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges, segments included.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// DummyCount returns the number of dummy nodes.
func (g *Graph) DummyCount() int {
	n := 0
	for _, v := range g.nodes {
		if v.IsDummy() {
			n++
		}
	}
	return n
}

// Out returns the handles of edges leaving id.
func (g *Graph) Out(id NodeID) []EdgeID { return g.out[id] }

// In returns the handles of edges entering id.
func (g *Graph) In(id NodeID) []EdgeID { return g.in[id] }

// Neighbors returns the nodes on the given level that share an active edge
// with id, in either direction. Parallel edges yield repeated entries.
func (g *Graph) Neighbors(id NodeID, level int) []NodeID {
	var result []NodeID
	for _, eid := range g.out[id] {
		if e := g.edges[eid]; e.Active() && g.nodes[e.Head].Level == level {
			result = append(result, e.Head)
		}
	}
	for _, eid := range g.in[id] {
		if e := g.edges[eid]; e.Active() && g.nodes[e.Tail].Level == level {
			result = append(result, e.Tail)
		}
	}
	return result
}

// SetChain records the dummies that replace edge id, ordered tail to head.
func (g *Graph) SetChain(id EdgeID, dummies []NodeID) { g.chains[id] = dummies }

// Chain returns the dummies that replace edge id, ordered tail to head, or
// nil if the edge was not split.
func (g *Graph) Chain(id EdgeID) []NodeID { return g.chains[id] }

// Depth returns the highest level in use.
func (g *Graph) Depth() int {
	depth := 0
	for _, n := range g.nodes {
		depth = max(depth, n.Level)
	}
	return depth
}

// Layers returns node handles bucketed by level (index = level), each bucket
// sorted by Order with insertion order breaking ties.
func (g *Graph) Layers() [][]NodeID {
	if len(g.nodes) == 0 {
		return nil
	}
	layers := make([][]NodeID, g.Depth()+1)
	for _, n := range g.nodes {
		layers[n.Level] = append(layers[n.Level], n.ID)
	}
	for _, layer := range layers {
		slices.SortStableFunc(layer, func(a, b NodeID) int {
			return g.nodes[a].Order - g.nodes[b].Order
		})
	}
	return layers
}

// SetOrder assigns Order from the position of each node in its layer.
func (g *Graph) SetOrder(layers [][]NodeID) {
	for _, layer := range layers {
		for i, id := range layer {
			g.nodes[id].Order = i
		}
	}
}

// Validate checks that every active edge connects adjacent levels and that
// each level's order values form a permutation.
func (g *Graph) Validate() error {
	for _, e := range g.edges {
		if !e.Active() {
			continue
		}
		d := g.nodes[e.Tail].Level - g.nodes[e.Head].Level
		if d != 1 && d != -1 {
			return ErrNonAdjacentLevels
		}
	}
	for _, layer := range g.Layers() {
		seen := make([]bool, len(layer))
		for _, id := range layer {
			o := g.nodes[id].Order
			if o < 0 || o >= len(layer) || seen[o] {
				return ErrInvalidOrder
			}
			seen[o] = true
		}
	}
	return nil
}

// PosMap builds a lookup from node handle to its index in order.
func PosMap(order []NodeID) map[NodeID]int {
	pos := make(map[NodeID]int, len(order))
	for i, id := range order {
		pos[id] = i
	}
	return pos
}
