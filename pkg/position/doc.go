// Package position assigns concrete coordinates to the nodes of a proper,
// ordered [dag.Graph].
//
// # Horizontal Placement
//
// x coordinates follow Brandes and Köpf: nodes are aligned with a median
// neighbour on the adjacent level to form blocks, blocks are compacted
// against their left neighbours, and the procedure runs in four directions
// (up/down × left/right). The four candidates are stored on each node as
// XUpLeft, XUpRight, XDownLeft and XDownRight, aligned to the narrowest one
// and combined as the average of the two median values. Long dummy chains
// therefore tend to end up straight.
//
// Neighbours on a level are kept at least
//
//	(w1 + w2)/2 + gap
//
// apart, dummies included. A final left-to-right pass enforces this
// separation on the combined result.
//
// # Vertical Placement
//
// The highest level is drawn at the top. Each level is as tall as its
// tallest node, levels are separated by the vertical gap, and nodes are
// centred vertically within their level.
//
// [dag.Graph]: github.com/matzehuels/erdlayout/pkg/dag.Graph
package position
