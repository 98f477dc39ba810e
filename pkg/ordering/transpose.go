package ordering

import "github.com/matzehuels/erdlayout/pkg/dag"

// transpose swaps adjacent nodes of every level while a swap strictly
// reduces the crossings with both neighbouring levels. A swap of two
// adjacent nodes only changes crossings between their own edges, so each
// accepted swap lowers the total and the loop terminates.
func transpose(g *dag.Graph, layers [][]dag.NodeID) {
	pos := make([]map[dag.NodeID]int, len(layers))
	for level, layer := range layers {
		pos[level] = dag.PosMap(layer)
	}

	pair := func(level int, left, right dag.NodeID) int {
		c := 0
		if level+1 < len(layers) {
			c += dag.CountPairCrossings(g, left, right, level+1, pos[level+1])
		}
		if level > 0 {
			c += dag.CountPairCrossings(g, left, right, level-1, pos[level-1])
		}
		return c
	}

	for improved := true; improved; {
		improved = false
		for level, layer := range layers {
			for i := 0; i+1 < len(layer); i++ {
				v, w := layer[i], layer[i+1]
				if pair(level, w, v) >= pair(level, v, w) {
					continue
				}
				layer[i], layer[i+1] = w, v
				pos[level][w], pos[level][v] = i, i+1
				g.Node(w).Order, g.Node(v).Order = i, i+1
				improved = true
			}
		}
	}
}
