package ordering

import (
	"slices"
	"sort"

	"github.com/matzehuels/erdlayout/pkg/dag"
)

// Sweep is the layer-by-layer sweep orderer.
//
// The zero value uses the barycenter heuristic without transposition and the
// default iteration cap.
type Sweep struct {
	Heuristic Heuristic
	// MaxIterations caps the number of down/up iteration pairs. Zero means
	// 4 × (depth + 1).
	MaxIterations int
	// Transpose enables adjacent-pair swapping after each iteration.
	Transpose bool
	// Progress, if set, is called after every iteration with the crossing
	// count it produced.
	Progress func(iteration, crossings int)
}

var _ Orderer = Sweep{}

// Order implements [Orderer].
//
// Iteration stops at the cap, when the graph is crossing-free, or after the
// first iteration that does not improve on the best arrangement so far. The
// best arrangement is then restored.
func (s Sweep) Order(g *dag.Graph) Result {
	layers := initialLayers(g)
	g.SetOrder(layers)

	initial := dag.CountCrossings(g)
	res := Result{Initial: initial, Final: initial}
	if len(layers) < 2 {
		return res
	}

	limit := s.MaxIterations
	if limit <= 0 {
		limit = 4 * len(layers)
	}

	best := snapshot(layers)
	for res.Iterations < limit && res.Final > 0 {
		res.Iterations++

		for level := len(layers) - 2; level >= 0; level-- {
			s.reorder(g, layers[level], level+1)
		}
		for level := 1; level < len(layers); level++ {
			s.reorder(g, layers[level], level-1)
		}
		if s.Transpose {
			transpose(g, layers)
		}

		c := dag.CountCrossings(g)
		if s.Progress != nil {
			s.Progress(res.Iterations, c)
		}
		if c >= res.Final {
			break
		}
		res.Final = c
		best = snapshot(layers)
	}

	g.SetOrder(best)
	return res
}

// initialLayers buckets nodes by level in insertion order.
func initialLayers(g *dag.Graph) [][]dag.NodeID {
	if g.NodeCount() == 0 {
		return nil
	}
	layers := make([][]dag.NodeID, g.Depth()+1)
	for _, n := range g.Nodes() {
		layers[n.Level] = append(layers[n.Level], n.ID)
	}
	return layers
}

func snapshot(layers [][]dag.NodeID) [][]dag.NodeID {
	out := make([][]dag.NodeID, len(layers))
	for i, l := range layers {
		out[i] = slices.Clone(l)
	}
	return out
}

// reorder stable-sorts layer by the key of each node's neighbours on
// adjLevel and rewrites the Order values of the layer. Nodes without
// neighbours keep their current index as key.
func (s Sweep) reorder(g *dag.Graph, layer []dag.NodeID, adjLevel int) {
	keys := make(map[dag.NodeID]float64, len(layer))
	for i, id := range layer {
		nbrs := g.Neighbors(id, adjLevel)
		if len(nbrs) == 0 {
			keys[id] = float64(i)
			continue
		}
		pos := make([]int, len(nbrs))
		for j, nb := range nbrs {
			pos[j] = g.Node(nb).Order
		}
		if s.Heuristic == Median {
			keys[id] = median(pos)
		} else {
			keys[id] = barycenter(pos)
		}
	}

	sort.SliceStable(layer, func(a, b int) bool {
		return keys[layer[a]] < keys[layer[b]]
	})
	for i, id := range layer {
		g.Node(id).Order = i
	}
}

func barycenter(pos []int) float64 {
	sum := 0
	for _, p := range pos {
		sum += p
	}
	return float64(sum) / float64(len(pos))
}

// median returns the weighted median of pos: the middle value for odd
// counts, and for even counts an interpolation of the two middle values
// biased toward the side where neighbours are packed more tightly.
func median(pos []int) float64 {
	slices.Sort(pos)
	n := len(pos)
	m := n / 2
	switch {
	case n%2 == 1:
		return float64(pos[m])
	case n == 2:
		return float64(pos[0]+pos[1]) / 2
	}
	left := float64(pos[m-1] - pos[0])
	right := float64(pos[n-1] - pos[m])
	if left+right == 0 {
		return float64(pos[m-1]+pos[m]) / 2
	}
	return (float64(pos[m-1])*right + float64(pos[m])*left) / (left + right)
}
