// Package dag provides the per-run graph model of the layered layout engine.
//
// # Overview
//
// A [Graph] is an arena: nodes and edges live in slices and refer to each
// other through integer handles ([NodeID], [EdgeID]). The arena is built
// fresh for every layout run and dropped afterwards, so no handle outlives
// the run that issued it.
//
// # Node Kinds
//
// Nodes are a tagged variant:
//
//   - [NodeKindReal]: wraps a caller-owned diagram entity
//   - [NodeKindDummy]: subdivides a long edge; [Node.Origin] names that edge
//
// Dummy nodes are 1×1 so they take almost no room during coordinate
// assignment.
//
// # Edges and Chains
//
// Caller edges are [EdgeKindOriginal]. When an original edge spans more than
// one level, normalization marks it [Edge.Split] and adds [EdgeKindSegment]
// links through a chain of dummies, recorded with [Graph.SetChain]. The
// layered topology seen by ordering and positioning is the set of
// [Edge.Active] edges: segments plus unsplit originals, without self-loops.
//
// # Levels
//
// Level 0 holds sinks; sources sit on the highest level, which is drawn at
// the top. [Graph.Layers] returns the nodes bucketed by level and sorted by
// [Node.Order].
//
// # Edge Crossings
//
// [CountCrossings] and [CountLayerCrossings] count inversions with a Fenwick
// tree in O(E log V) per level pair. [CountPairCrossings] evaluates a single
// adjacent swap.
//
// # Concurrency
//
// Graph instances are not safe for concurrent use.
//
// The [transform] subpackage implements the structural pipeline stages:
// cycle removal, level assignment and normalization.
//
// [transform]: github.com/matzehuels/erdlayout/pkg/dag/transform
package dag
