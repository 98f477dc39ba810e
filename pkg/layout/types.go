package layout

import "github.com/matzehuels/erdlayout/pkg/geom"

// Node is a caller-owned diagram node. Implementations must be comparable
// (typically pointers) because the Layouter tracks them by identity; Add
// rejects the others.
type Node interface {
	// Size returns the rendered width and height.
	Size() geom.Size
	// Location returns the top-left corner.
	Location() geom.Point
	// SetLocation moves the node so its top-left corner is p.
	SetLocation(p geom.Point)
}

// Edge is a caller-owned diagram edge. Implementations must be comparable.
type Edge interface {
	Source() Node
	Target() Node
	// Points returns the stored route.
	Points() []geom.Point
	// SetPoints replaces the stored route.
	SetPoints(points []geom.Point)
	// ComputeRoute finalizes the route from the stored points (the bends
	// supplied by the layouter) and the current endpoint locations, and
	// returns it.
	ComputeRoute() []geom.Point
}

// State is the position of a Layouter in its run cycle.
type State int

const (
	StateIdle State = iota
	StatePopulated
	StateCycleFree
	StateLayered
	StateProper
	StateCrossingReduced
	StatePositioned
	StateRouted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePopulated:
		return "populated"
	case StateCycleFree:
		return "cycle-free"
	case StateLayered:
		return "layered"
	case StateProper:
		return "proper"
	case StateCrossingReduced:
		return "crossing-reduced"
	case StatePositioned:
		return "positioned"
	case StateRouted:
		return "routed"
	default:
		return "unknown"
	}
}

// Running reports whether s is an intermediate state of a layout run.
func (s State) Running() bool { return s > StatePopulated }
