package transform

import "github.com/matzehuels/erdlayout/pkg/dag"

// AssignLevels gives every node a level using the longest-path heuristic and
// returns the depth (highest level used).
//
// Sinks are placed on level 0 and every other node one level above its
// highest successor, so for every unmarked edge tail.Level > head.Level.
// Marked edges (the feedback arc set from [RemoveCycles]) are followed in
// reverse, which keeps them off a single level as well: for a marked edge
// head.Level > tail.Level. Self-loops and split edges are ignored.
//
// # Algorithm
//
// AssignLevels runs Kahn's algorithm from the sinks upward:
//  1. Count the successors of each node; nodes without any start at level 0
//  2. Pop a node and lift each predecessor to at least its level + 1
//  3. Decrement successor counters; enqueue predecessors that reach zero
//  4. Repeat until the queue is empty
//
// # Cycles
//
// If the oriented graph still contains a cycle, the nodes on it never reach
// zero and AssignLevels returns [dag.ErrGraphHasCycle]. Run [RemoveCycles]
// first.
//
// # Performance
//
// Time complexity is O(V + E).
func AssignLevels(g *dag.Graph) (int, error) {
	nodes := g.Nodes()
	remaining := make([]int, len(nodes))
	queue := make([]dag.NodeID, 0, len(nodes))

	for _, e := range g.Edges() {
		if !e.Active() {
			continue
		}
		remaining[upper(e)]++
	}
	for _, v := range nodes {
		v.Level = 0
		if remaining[v.ID] == 0 {
			queue = append(queue, v.ID)
		}
	}

	visited := 0
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		visited++

		level := nodes[curr].Level
		for _, pred := range predecessors(g, curr) {
			if level+1 > nodes[pred].Level {
				nodes[pred].Level = level + 1
			}
			remaining[pred]--
			if remaining[pred] == 0 {
				queue = append(queue, pred)
			}
		}
	}

	if visited < len(nodes) {
		return 0, dag.ErrGraphHasCycle
	}
	return g.Depth(), nil
}

// upper returns the endpoint that must end up on the higher level.
func upper(e *dag.Edge) dag.NodeID {
	if e.Marked {
		return e.Head
	}
	return e.Tail
}

// predecessors lists the nodes that must sit above id, one entry per edge.
func predecessors(g *dag.Graph, id dag.NodeID) []dag.NodeID {
	var result []dag.NodeID
	for _, eid := range g.In(id) {
		if e := g.Edge(eid); e.Active() && !e.Marked {
			result = append(result, e.Tail)
		}
	}
	for _, eid := range g.Out(id) {
		if e := g.Edge(eid); e.Active() && e.Marked {
			result = append(result, e.Head)
		}
	}
	return result
}
