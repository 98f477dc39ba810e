package dag

import (
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Acyclic reports whether the edges that are neither marked nor self-loops
// form a directed acyclic graph.
func (g *Graph) Acyclic() bool {
	_, err := topo.Sort(g.directed(false))
	return err == nil
}

// CheckAcyclic returns [ErrGraphHasCycle] if the layering orientation of g
// (marked edges reversed, self-loops ignored) contains a cycle.
func (g *Graph) CheckAcyclic() error {
	if _, err := topo.Sort(g.directed(true)); err != nil {
		return ErrGraphHasCycle
	}
	return nil
}

func (g *Graph) directed(reverseMarked bool) *simple.DirectedGraph {
	dg := simple.NewDirectedGraph()
	for _, n := range g.nodes {
		dg.AddNode(simple.Node(n.ID))
	}
	for _, e := range g.edges {
		if e.IsSelfLoop() {
			continue
		}
		tail, head := e.Tail, e.Head
		if e.Marked {
			if !reverseMarked {
				continue
			}
			tail, head = head, tail
		}
		if dg.HasEdgeFromTo(int64(tail), int64(head)) {
			continue
		}
		dg.SetEdge(dg.NewEdge(simple.Node(tail), simple.Node(head)))
	}
	return dg
}
