// Package transform implements the structural stages of the layered layout
// pipeline on a [dag.Graph].
//
// # Overview
//
// ER diagrams arrive as arbitrary directed multigraphs: relationships may
// form cycles, point from a table to itself, or skip several levels. The
// stages in this package turn such a graph into a proper layering:
//
//   - [RemoveCycles] marks a feedback arc set so the rest is acyclic
//   - [AssignLevels] places sinks on level 0 and lifts every node above its successors
//   - [Normalize] splits edges that span several levels into dummy chains
//
// # Cycle Removal
//
// [RemoveCycles] uses the greedy Eades–Lin–Smyth heuristic. Edges are never
// deleted; members of the feedback arc set get [dag.Edge.Marked] and are
// treated as reversed by the later stages. Self-loops are always marked.
//
// # Level Assignment
//
// [AssignLevels] is a longest-path layering computed bottom-up with Kahn's
// algorithm:
//
//	Before: customers -> orders -> items   (no levels)
//	After:  customers=2, orders=1, items=0
//
// # Normalization
//
// [Normalize] inserts one dummy per intermediate level:
//
//	Before: customers (2) -> items (0)
//	After:  customers -> d1 (1) -> items
//
// An edge between two nodes of the same level is rejected with an
// INVALID_TOPOLOGY error instead of being subdivided.
//
// # Usage
//
//	transform.RemoveCycles(g)
//	if _, err := transform.AssignLevels(g); err != nil {
//	    return err
//	}
//	if _, err := transform.Normalize(g); err != nil {
//	    return err
//	}
//
// [dag.Graph]: github.com/matzehuels/erdlayout/pkg/dag.Graph
package transform
