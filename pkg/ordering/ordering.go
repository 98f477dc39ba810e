// Package ordering reduces edge crossings by reordering nodes within the
// levels of a proper [dag.Graph].
//
// The default [Sweep] orderer alternates top-down and bottom-up passes. Each
// pass sorts one level at a time by the barycenter or median of the
// neighbours' positions on the level just fixed, then an optional transpose
// step swaps adjacent nodes while that strictly reduces crossings. The best
// arrangement seen is kept, so the final crossing count never exceeds the
// initial insertion-order count.
//
// [dag.Graph]: github.com/matzehuels/erdlayout/pkg/dag.Graph
package ordering

import (
	"fmt"
	"strings"

	"github.com/matzehuels/erdlayout/pkg/dag"
)

// Orderer assigns [dag.Node.Order] for every node of a proper graph without
// touching levels. After Order returns, the orders of each level are a
// permutation of 0..k-1.
type Orderer interface {
	Order(g *dag.Graph) Result
}

// Result reports crossing counts before and after ordering.
type Result struct {
	Initial    int // Crossings of the insertion-order arrangement
	Final      int // Crossings of the arrangement left in the graph
	Iterations int // Sweep iterations performed
}

// Heuristic selects the sort key used during a sweep.
type Heuristic int

const (
	// Barycenter sorts by the mean position of a node's neighbours.
	Barycenter Heuristic = iota
	// Median sorts by the weighted median position of a node's neighbours.
	Median
)

func (h Heuristic) String() string {
	switch h {
	case Barycenter:
		return "barycenter"
	case Median:
		return "median"
	default:
		return fmt.Sprintf("heuristic(%d)", int(h))
	}
}

// ParseHeuristic converts a name ("barycenter" or "median") to a Heuristic.
// An empty name selects [Barycenter].
func ParseHeuristic(name string) (Heuristic, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "barycenter":
		return Barycenter, nil
	case "median":
		return Median, nil
	default:
		return 0, fmt.Errorf("unknown heuristic %q (want barycenter or median)", name)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (h Heuristic) MarshalText() ([]byte, error) { return []byte(h.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Heuristic) UnmarshalText(text []byte) error {
	v, err := ParseHeuristic(string(text))
	if err != nil {
		return err
	}
	*h = v
	return nil
}
