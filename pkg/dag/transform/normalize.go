package transform

import (
	"github.com/matzehuels/erdlayout/pkg/dag"
	errs "github.com/matzehuels/erdlayout/pkg/errors"
)

// Normalize makes g proper: every original edge spanning more than one level
// is split into a chain of dummy nodes, one per intermediate level, linked by
// unit-span segment edges. It returns the number of dummies inserted.
//
// The original edge stays in the arena with [dag.Edge.Split] set and its
// chain recorded via [dag.Graph.SetChain] so the router can later turn the
// dummies into bend points. Segments inherit the Marked flag of their
// original edge.
//
// Edges that already span one level, self-loops, and edges split by an
// earlier call are left untouched, so Normalize is idempotent.
//
// # Errors
//
// An edge whose endpoints share a level cannot be made proper. Normalize
// checks all edges before changing anything and returns an
// [errs.ErrCodeInvalidTopology] error wrapping an [errs.TopologyError] for
// the first offending edge; g is left unmodified in that case.
func Normalize(g *dag.Graph) (int, error) {
	var long []*dag.Edge
	for _, e := range g.Edges() {
		if e.Kind != dag.EdgeKindOriginal || !e.Active() {
			continue
		}
		tail, head := g.Node(e.Tail), g.Node(e.Head)
		switch span := abs(tail.Level - head.Level); {
		case span == 0:
			return 0, errs.Wrap(errs.ErrCodeInvalidTopology,
				&errs.TopologyError{Tail: tail.Label, Head: head.Label, Level: tail.Level},
				"cannot auto-arrange: malformed diagram")
		case span > 1:
			long = append(long, e)
		}
	}

	inserted := 0
	for _, e := range long {
		inserted += subdivide(g, e)
	}
	return inserted, nil
}

// subdivide replaces e by a dummy chain from its tail toward its head.
func subdivide(g *dag.Graph, e *dag.Edge) int {
	from, to := g.Node(e.Tail).Level, g.Node(e.Head).Level
	step := 1
	if to < from {
		step = -1
	}

	chain := make([]dag.NodeID, 0, abs(to-from)-1)
	prev := e.Tail
	for level := from + step; level != to; level += step {
		d := g.AddDummy(e.ID, level)
		g.AddSegment(e.ID, prev, d)
		chain = append(chain, d)
		prev = d
	}
	g.AddSegment(e.ID, prev, e.Head)

	e.Split = true
	g.SetChain(e.ID, chain)
	return len(chain)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
