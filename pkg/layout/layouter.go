package layout

import (
	"fmt"
	"io"
	"reflect"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/erdlayout/pkg/dag"
	"github.com/matzehuels/erdlayout/pkg/dag/transform"
	errs "github.com/matzehuels/erdlayout/pkg/errors"
	"github.com/matzehuels/erdlayout/pkg/geom"
	"github.com/matzehuels/erdlayout/pkg/ordering"
	"github.com/matzehuels/erdlayout/pkg/position"
	"github.com/matzehuels/erdlayout/pkg/route"
)

// Layouter is the layout facade. It tracks a population of caller-owned
// nodes and edges and lays them out on demand.
//
// The population survives a run: calling Layout again on an unchanged
// population yields identical positions, and re-adding a contained value is
// a no-op. Use Clear to start over.
type Layouter struct {
	cfg     Config
	logger  *log.Logger
	orderer ordering.Orderer

	nodes   []Node
	edges   []Edge
	nodeSet map[Node]struct{}
	edgeSet map[Edge]struct{}

	state  State
	stats  Stats
	placed bool
}

// Option configures a Layouter.
type Option func(*Layouter)

// WithLogger sets the logger used for per-stage debug output.
func WithLogger(logger *log.Logger) Option {
	return func(l *Layouter) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithOrderer replaces the crossing reducer built from the config.
func WithOrderer(o ordering.Orderer) Option {
	return func(l *Layouter) { l.orderer = o }
}

// New creates an empty Layouter using cfg.
func New(cfg Config, opts ...Option) *Layouter {
	l := &Layouter{
		cfg:     cfg,
		logger:  log.New(io.Discard),
		nodeSet: make(map[Node]struct{}),
		edgeSet: make(map[Edge]struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Config returns the configuration of l.
func (l *Layouter) Config() Config { return l.cfg }

// State returns the current state.
func (l *Layouter) State() State { return l.state }

// Stats returns statistics of the last successful run.
func (l *Layouter) Stats() Stats { return l.stats }

// Nodes returns the contained nodes in insertion order.
func (l *Layouter) Nodes() []Node { return slices.Clone(l.nodes) }

// Edges returns the contained edges in insertion order.
func (l *Layouter) Edges() []Edge { return slices.Clone(l.edges) }

// Add adds a [Node] or [Edge]. Adding a contained value again is a no-op.
// An edge's endpoints must already be contained.
//
// Anything else yields an UNSUPPORTED_CONTAINER error, as does a node or
// edge whose dynamic type is not comparable. Calling Add while a run is in
// progress yields INVALID_STATE.
func (l *Layouter) Add(item any) error {
	if l.state.Running() {
		return errs.New(errs.ErrCodeInvalidState, "cannot add while layout is %s", l.state)
	}
	if item != nil && !hashable(item) {
		return errs.New(errs.ErrCodeUnsupportedContainer, "cannot lay out %T: type is not comparable", item)
	}

	switch v := item.(type) {
	case Edge:
		if _, ok := l.edgeSet[v]; ok {
			return nil
		}
		if !l.hasNode(v.Source()) || !l.hasNode(v.Target()) {
			return errs.New(errs.ErrCodeInvalidInput, "edge endpoints must be added before the edge")
		}
		l.edgeSet[v] = struct{}{}
		l.edges = append(l.edges, v)
	case Node:
		if _, ok := l.nodeSet[v]; ok {
			return nil
		}
		l.nodeSet[v] = struct{}{}
		l.nodes = append(l.nodes, v)
	default:
		return errs.New(errs.ErrCodeUnsupportedContainer, "cannot lay out %T: not a node or edge", item)
	}

	if l.state == StateIdle {
		l.state = StatePopulated
	}
	return nil
}

// Remove removes a contained [Node] or [Edge]. Removing a node also removes
// every edge attached to it.
func (l *Layouter) Remove(item any) error {
	if l.state.Running() {
		return errs.New(errs.ErrCodeInvalidState, "cannot remove while layout is %s", l.state)
	}
	if item != nil && !hashable(item) {
		return errs.New(errs.ErrCodeUnsupportedContainer, "cannot remove %T: type is not comparable", item)
	}

	switch v := item.(type) {
	case Edge:
		if _, ok := l.edgeSet[v]; !ok {
			return errs.New(errs.ErrCodeNotFound, "edge is not part of the layout")
		}
		l.removeEdges(func(e Edge) bool { return e == v })
	case Node:
		if _, ok := l.nodeSet[v]; !ok {
			return errs.New(errs.ErrCodeNotFound, "node is not part of the layout")
		}
		l.removeEdges(func(e Edge) bool { return e.Source() == v || e.Target() == v })
		delete(l.nodeSet, v)
		l.nodes = slices.DeleteFunc(l.nodes, func(n Node) bool { return n == v })
	default:
		return errs.New(errs.ErrCodeUnsupportedContainer, "cannot remove %T: not a node or edge", item)
	}

	if len(l.nodes) == 0 {
		l.state = StateIdle
		l.placed = false
	}
	return nil
}

func (l *Layouter) removeEdges(match func(Edge) bool) {
	l.edges = slices.DeleteFunc(l.edges, func(e Edge) bool {
		if match(e) {
			delete(l.edgeSet, e)
			return true
		}
		return false
	})
}

// Contains reports whether item is a contained node or edge.
func (l *Layouter) Contains(item any) bool {
	if item == nil || !hashable(item) {
		return false
	}
	switch v := item.(type) {
	case Edge:
		_, ok := l.edgeSet[v]
		return ok
	case Node:
		return l.hasNode(v)
	default:
		return false
	}
}

func (l *Layouter) hasNode(n Node) bool {
	if n == nil || !hashable(n) {
		return false
	}
	_, ok := l.nodeSet[n]
	return ok
}

// hashable reports whether item can key the population maps.
func hashable(item any) bool {
	return reflect.TypeOf(item).Comparable()
}

// Clear drops the whole population and returns to the idle state.
func (l *Layouter) Clear() {
	l.nodes, l.edges = nil, nil
	l.nodeSet = make(map[Node]struct{})
	l.edgeSet = make(map[Edge]struct{})
	l.state = StateIdle
	l.stats = Stats{}
	l.placed = false
}

// Layout runs the full pipeline and writes node locations and edge routes
// back to the population.
//
// Errors abort the run before anything is written back:
//   - INVALID_CONFIG or INVALID_HEURISTIC for a bad Config
//   - INVALID_INPUT for negative or non-finite node sizes
//   - INVALID_TOPOLOGY when an edge joins two nodes of the same level
//
// The per-run graph is discarded and the state returns to idle whether the
// run succeeds or not.
func (l *Layouter) Layout() error {
	if l.state.Running() {
		return errs.New(errs.ErrCodeInvalidState, "layout already %s", l.state)
	}
	if err := l.cfg.Validate(); err != nil {
		return err
	}
	if len(l.nodes) == 0 {
		return nil
	}

	defer func() { l.state = StateIdle }()
	start := time.Now()

	g, ids, links, err := l.build()
	if err != nil {
		return err
	}
	stats := Stats{Nodes: len(l.nodes), Edges: len(l.edges)}

	t := time.Now()
	stats.FeedbackEdges = transform.RemoveCycles(g)
	if err := g.CheckAcyclic(); err != nil {
		return errs.Wrap(errs.ErrCodeInternal, err, "cycle removal left a cycle")
	}
	l.state = StateCycleFree
	l.logger.Debug("removed cycles", "feedback_edges", stats.FeedbackEdges, "duration", time.Since(t))

	t = time.Now()
	if stats.Depth, err = transform.AssignLevels(g); err != nil {
		return errs.Wrap(errs.ErrCodeInternal, err, "level assignment failed")
	}
	l.state = StateLayered
	l.logger.Debug("assigned levels", "depth", stats.Depth, "duration", time.Since(t))

	t = time.Now()
	if stats.Dummies, err = transform.Normalize(g); err != nil {
		return err
	}
	l.state = StateProper
	l.logger.Debug("normalized", "dummies", stats.Dummies, "duration", time.Since(t))

	t = time.Now()
	res := l.ordererFor().Order(g)
	stats.InitialCrossings, stats.Crossings, stats.Iterations = res.Initial, res.Final, res.Iterations
	l.state = StateCrossingReduced
	l.logger.Debug("reduced crossings",
		"initial", res.Initial,
		"final", res.Final,
		"iterations", res.Iterations,
		"duration", time.Since(t))

	t = time.Now()
	box := position.Assign(g, l.cfg.positionOptions())
	l.state = StatePositioned
	l.logger.Debug("assigned coordinates", "width", box.Width, "height", box.Height, "duration", time.Since(t))

	for _, n := range l.nodes {
		n.SetLocation(g.Node(ids[n]).Bounds().Location())
	}

	t = time.Now()
	routed := route.Route(g, links)
	l.state = StateRouted
	l.logger.Debug("routed edges", "edges", routed, "duration", time.Since(t))

	stats.Duration = time.Since(start)
	l.stats = stats
	l.placed = true
	return nil
}

// build creates the per-run arena from the population.
func (l *Layouter) build() (*dag.Graph, map[Node]dag.NodeID, map[dag.EdgeID]route.Link, error) {
	g := dag.New()
	ids := make(map[Node]dag.NodeID, len(l.nodes))
	for i, n := range l.nodes {
		s := n.Size()
		if err := errs.ValidateDimension("node width", s.Width); err != nil {
			return nil, nil, nil, err
		}
		if err := errs.ValidateDimension("node height", s.Height); err != nil {
			return nil, nil, nil, err
		}
		ids[n] = g.AddNode(label(n, i), s.Width, s.Height)
	}

	links := make(map[dag.EdgeID]route.Link, len(l.edges))
	for _, e := range l.edges {
		tail, ok := ids[e.Source()]
		head, ok2 := ids[e.Target()]
		if !ok || !ok2 {
			return nil, nil, nil, errs.New(errs.ErrCodeInvalidInput, "edge endpoint is not part of the layout")
		}
		id, err := g.AddEdge(tail, head)
		if err != nil {
			return nil, nil, nil, errs.Wrap(errs.ErrCodeInternal, err, "building layout graph")
		}
		links[id] = e
	}
	return g, ids, links, nil
}

func (l *Layouter) ordererFor() ordering.Orderer {
	if l.orderer != nil {
		return l.orderer
	}
	sweep := l.cfg.orderer().(ordering.Sweep)
	sweep.Progress = func(iteration, crossings int) {
		l.logger.Debug("sweep", "iteration", iteration, "crossings", crossings)
	}
	return sweep
}

func label(n Node, i int) string {
	if s, ok := n.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("node#%d", i)
}

// Bounds returns the smallest rectangle containing every node and every
// edge point. ok is false until a layout has positioned the population.
func (l *Layouter) Bounds() (box geom.Rect, ok bool) {
	if !l.placed || len(l.nodes) == 0 {
		return geom.Rect{}, false
	}
	box = geom.RectAt(l.nodes[0].Location(), l.nodes[0].Size())
	for _, n := range l.nodes[1:] {
		box = box.Union(geom.RectAt(n.Location(), n.Size()))
	}
	for _, e := range l.edges {
		for _, p := range e.Points() {
			box = box.UnionPoint(p)
		}
	}
	return box, true
}

// Translate moves every node and edge point by (dx, dy).
func (l *Layouter) Translate(dx, dy float64) {
	d := geom.Pt(dx, dy)
	for _, n := range l.nodes {
		n.SetLocation(n.Location().Add(d))
	}
	for _, e := range l.edges {
		pts := e.Points()
		moved := make([]geom.Point, len(pts))
		for i, p := range pts {
			moved[i] = p.Add(d)
		}
		e.SetPoints(moved)
	}
}

// Location returns the top-left corner of [Layouter.Bounds].
func (l *Layouter) Location() (geom.Point, bool) {
	box, ok := l.Bounds()
	return box.Location(), ok
}

// SetLocation translates the whole layout so its bounds start at p. It does
// nothing before the first successful layout.
func (l *Layouter) SetLocation(p geom.Point) {
	if loc, ok := l.Location(); ok {
		l.Translate(p.X-loc.X, p.Y-loc.Y)
	}
}
