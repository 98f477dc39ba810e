// Package layout arranges diagram nodes and edges with a layered
// (Sugiyama-style) layout.
//
// # Overview
//
// A [Layouter] is populated with caller-owned [Node] and [Edge] values and
// then runs the full pipeline in one call to [Layouter.Layout]:
//
//  1. Cycle removal (greedy feedback arc set)
//  2. Level assignment (longest path, sinks at the bottom)
//  3. Normalization (dummy nodes for edges spanning several levels)
//  4. Crossing reduction (barycenter or median sweeps with transposition)
//  5. Coordinate assignment (Brandes–Köpf alignment)
//  6. Edge routing (dummy chains become bend points)
//
// Every run builds a fresh [dag.Graph] arena and drops it afterwards. Node
// locations and edge points are written back only after every stage that
// can fail has succeeded, so a failed run leaves the caller's diagram
// untouched.
//
// # Usage
//
//	l := layout.New(layout.DefaultConfig())
//	for _, n := range nodes {
//	    _ = l.Add(n)
//	}
//	for _, e := range edges {
//	    _ = l.Add(e)
//	}
//	if err := l.Layout(); err != nil {
//	    return err
//	}
//	bounds, _ := l.Bounds()
//
// # Concurrency
//
// A Layouter is not safe for concurrent use. Independent layouts should use
// separate instances; configuration is per instance.
//
// [dag.Graph]: github.com/matzehuels/erdlayout/pkg/dag.Graph
package layout
