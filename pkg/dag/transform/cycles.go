package transform

import "github.com/matzehuels/erdlayout/pkg/dag"

// RemoveCycles marks a feedback arc set so that the unmarked edges of g form
// a DAG. It returns the number of marked edges.
//
// RemoveCycles implements the greedy heuristic of Eades, Lin and Smyth. Nodes
// are peeled off into a sequence: sinks are prepended to its tail part,
// sources appended to its head part, and when neither exists the unplaced
// node with the largest out-degree minus in-degree is appended. Every edge
// whose tail comes after its head in the final sequence is marked. Ties are
// broken by insertion order, so the result is deterministic.
//
// Self-loops are always marked and never count toward degrees. Edges are not
// removed or reordered; only [dag.Edge.Marked] changes. [dag.Node.Marked] is
// used as the "placed" flag and is cleared again before returning.
//
// # Performance
//
// Sinks and sources are found with work lists in O(V + E). Picking the
// maximum-delta node is a linear scan, so the worst case is O(V² + E).
func RemoveCycles(g *dag.Graph) int {
	nodes := g.Nodes()
	n := len(nodes)
	if n == 0 {
		return 0
	}

	outDeg := make([]int, n)
	inDeg := make([]int, n)
	for _, e := range g.Edges() {
		e.Marked = false
		if e.Kind != dag.EdgeKindOriginal || e.IsSelfLoop() {
			continue
		}
		outDeg[e.Tail]++
		inDeg[e.Head]++
	}

	var (
		head    []dag.NodeID // s1: sources and max-delta picks
		tail    []dag.NodeID // s2 reversed: sinks, later ones prepended
		placed  int
		sinks   []dag.NodeID
		sources []dag.NodeID
	)
	for _, v := range nodes {
		switch {
		case outDeg[v.ID] == 0:
			sinks = append(sinks, v.ID)
		case inDeg[v.ID] == 0:
			sources = append(sources, v.ID)
		}
	}

	place := func(id dag.NodeID) {
		nodes[id].Marked = true
		placed++
		for _, eid := range g.Out(id) {
			e := g.Edge(eid)
			if e.Kind != dag.EdgeKindOriginal || e.IsSelfLoop() || nodes[e.Head].Marked {
				continue
			}
			inDeg[e.Head]--
			if inDeg[e.Head] == 0 && outDeg[e.Head] > 0 {
				sources = append(sources, e.Head)
			}
		}
		for _, eid := range g.In(id) {
			e := g.Edge(eid)
			if e.Kind != dag.EdgeKindOriginal || e.IsSelfLoop() || nodes[e.Tail].Marked {
				continue
			}
			outDeg[e.Tail]--
			if outDeg[e.Tail] == 0 {
				sinks = append(sinks, e.Tail)
			}
		}
	}

	for placed < n {
		if len(sinks) > 0 {
			id := sinks[0]
			sinks = sinks[1:]
			if !nodes[id].Marked {
				tail = append(tail, id)
				place(id)
			}
			continue
		}
		if len(sources) > 0 {
			id := sources[0]
			sources = sources[1:]
			if !nodes[id].Marked {
				head = append(head, id)
				place(id)
			}
			continue
		}

		best, bestDelta := dag.NoNode, 0
		for _, v := range nodes {
			if v.Marked {
				continue
			}
			if d := outDeg[v.ID] - inDeg[v.ID]; best == dag.NoNode || d > bestDelta {
				best, bestDelta = v.ID, d
			}
		}
		head = append(head, best)
		place(best)
	}

	pos := make([]int, n)
	for i, id := range head {
		pos[id] = i
	}
	for i, id := range tail {
		pos[id] = n - 1 - i
	}

	marked := 0
	for _, e := range g.Edges() {
		if e.Kind != dag.EdgeKindOriginal {
			continue
		}
		if e.IsSelfLoop() || pos[e.Tail] > pos[e.Head] {
			e.Marked = true
			marked++
		}
	}

	for _, v := range nodes {
		v.Marked = false
	}
	return marked
}
