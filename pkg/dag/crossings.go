package dag

import "slices"

// CountCrossings returns the total number of edge crossings of the current
// Order values, summed over every pair of adjacent levels.
//
// It runs in O(L × E log V) time where L is the number of levels, E the
// number of edges between two levels and V the width of a level.
func CountCrossings(g *Graph) int {
	layers := g.Layers()
	crossings := 0
	for level := 0; level < len(layers)-1; level++ {
		crossings += CountLayerCrossings(g, layers[level+1], layers[level])
	}
	return crossings
}

// CountLayerCrossings counts edge crossings between two adjacent levels using
// a Fenwick tree (binary indexed tree). upper holds the nodes of level L+1
// and lower those of level L, each in left-to-right order.
//
// Two edges (u1,v1) and (u2,v2) cross if and only if:
//
//	pos(u1) < pos(u2) AND pos(v1) > pos(v2)
//
// This is equivalent to counting inversions in the sequence of lower
// positions when edges are sorted by upper position.
//
// Returns 0 if either level is empty.
func CountLayerCrossings(g *Graph, upper, lower []NodeID) int {
	if len(upper) == 0 || len(lower) == 0 {
		return 0
	}

	lowerLevel := g.nodes[lower[0]].Level
	lowerPos := PosMap(lower)

	type edge struct{ upper, lower int }
	edges := make([]edge, 0, len(upper)*2)
	for i, id := range upper {
		for _, nb := range g.Neighbors(id, lowerLevel) {
			if pos, ok := lowerPos[nb]; ok {
				edges = append(edges, edge{i, pos})
			}
		}
	}
	if len(edges) < 2 {
		return 0
	}

	slices.SortFunc(edges, func(a, b edge) int {
		if a.upper != b.upper {
			return a.upper - b.upper
		}
		return a.lower - b.lower
	})

	fenwick := make([]int, len(lower)+1)
	crossings, total := 0, 0
	for _, e := range edges {
		// Edges seen so far with lower position <= e.lower
		lessOrEqual := 0
		for q := e.lower + 1; q > 0; q -= q & (-q) {
			lessOrEqual += fenwick[q]
		}
		crossings += total - lessOrEqual

		total++
		for idx := e.lower + 1; idx < len(fenwick); idx += idx & (-idx) {
			fenwick[idx]++
		}
	}
	return crossings
}

// CountPairCrossings counts the crossings between the edges of left and the
// edges of right toward one adjacent level when left is placed before right.
// adjPos maps the nodes of that level to their positions; nodes missing from
// the map are ignored.
//
// Comparing CountPairCrossings(g, v, w, ...) with CountPairCrossings(g, w, v, ...)
// tells whether swapping two neighbours reduces crossings.
func CountPairCrossings(g *Graph, left, right NodeID, adjLevel int, adjPos map[NodeID]int) int {
	lnbr := g.Neighbors(left, adjLevel)
	rnbr := g.Neighbors(right, adjLevel)

	crossings := 0
	for _, ln := range lnbr {
		lp, ok := adjPos[ln]
		if !ok {
			continue
		}
		for _, rn := range rnbr {
			if rp, ok := adjPos[rn]; ok && lp > rp {
				crossings++
			}
		}
	}
	return crossings
}
