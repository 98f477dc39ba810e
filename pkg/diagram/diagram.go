package diagram

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	errs "github.com/matzehuels/erdlayout/pkg/errors"
	"github.com/matzehuels/erdlayout/pkg/geom"
	"github.com/matzehuels/erdlayout/pkg/layout"
)

// Default entity size used when a document omits width or height.
const (
	DefaultWidth  = 160
	DefaultHeight = 80
)

// Loop geometry for self-referencing relationships.
const (
	loopReach  = 40
	loopSpread = 0.25
)

var (
	// ErrDuplicateID is returned when an entity or relationship ID is reused.
	ErrDuplicateID = errors.New("duplicate id")
	// ErrUnknownEntity is returned when a relationship references an entity
	// that is not part of the diagram.
	ErrUnknownEntity = errors.New("unknown entity")
)

// Entity is a table box of an ER diagram.
type Entity struct {
	ID     string
	Label  string
	Bounds geom.Rect
}

func (e *Entity) Size() geom.Size          { return e.Bounds.Size() }
func (e *Entity) Location() geom.Point     { return e.Bounds.Location() }
func (e *Entity) SetLocation(p geom.Point) { e.Bounds.X, e.Bounds.Y = p.X, p.Y }

// String returns the label, or the ID when the label is empty.
func (e *Entity) String() string {
	if e.Label != "" {
		return e.Label
	}
	return e.ID
}

// Relationship is a directed connection from one entity to another.
type Relationship struct {
	ID    string
	Label string
	From  *Entity
	To    *Entity
	Route []geom.Point
}

func (r *Relationship) Source() layout.Node           { return r.From }
func (r *Relationship) Target() layout.Node           { return r.To }
func (r *Relationship) Points() []geom.Point          { return r.Route }
func (r *Relationship) SetPoints(points []geom.Point) { r.Route = points }

// IsSelfLoop reports whether r starts and ends at the same entity.
func (r *Relationship) IsSelfLoop() bool { return r.From == r.To }

// ComputeRoute anchors the stored bend points on the borders of both
// entities and returns the full polyline.
//
// The start point is where the segment from the source center toward the
// first bend (or the target center) leaves the source box; the end point is
// computed the same way on the target. Self-loops get a fixed rectangular
// loop off the right side of the entity.
func (r *Relationship) ComputeRoute() []geom.Point {
	if r.IsSelfLoop() {
		return loop(r.From.Bounds)
	}

	first, last := r.To.Bounds.Center(), r.From.Bounds.Center()
	if len(r.Route) > 0 {
		first, last = r.Route[0], r.Route[len(r.Route)-1]
	}

	pts := make([]geom.Point, 0, len(r.Route)+2)
	pts = append(pts, geom.Chopbox(r.From.Bounds, first))
	pts = append(pts, r.Route...)
	return append(pts, geom.Chopbox(r.To.Bounds, last))
}

func loop(b geom.Rect) []geom.Point {
	c := b.Center()
	dy := b.Height * loopSpread
	x := b.Right() + loopReach
	return []geom.Point{
		{X: b.Right(), Y: c.Y - dy},
		{X: x, Y: c.Y - dy},
		{X: x, Y: c.Y + dy},
		{X: b.Right(), Y: c.Y + dy},
	}
}

// Diagram is a named collection of entities and relationships.
type Diagram struct {
	Name string

	entities      []*Entity
	relationships []*Relationship
	byID          map[string]*Entity
	relIDs        map[string]struct{}
}

// New creates an empty diagram.
func New(name string) *Diagram {
	return &Diagram{
		Name:   name,
		byID:   make(map[string]*Entity),
		relIDs: make(map[string]struct{}),
	}
}

// AddEntity adds e. An empty ID is replaced by a random UUID and a zero
// width or height by the default size.
func (d *Diagram) AddEntity(e *Entity) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if err := errs.ValidateID(e.ID); err != nil {
		return err
	}
	if _, ok := d.byID[e.ID]; ok {
		return fmt.Errorf("entity %s: %w", e.ID, ErrDuplicateID)
	}
	if e.Bounds.Width == 0 {
		e.Bounds.Width = DefaultWidth
	}
	if e.Bounds.Height == 0 {
		e.Bounds.Height = DefaultHeight
	}
	if err := errs.ValidateDimension("entity width", e.Bounds.Width); err != nil {
		return err
	}
	if err := errs.ValidateDimension("entity height", e.Bounds.Height); err != nil {
		return err
	}
	d.byID[e.ID] = e
	d.entities = append(d.entities, e)
	return nil
}

// AddRelationship adds r. Both ends must already be entities of d.
func (d *Diagram) AddRelationship(r *Relationship) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if _, ok := d.relIDs[r.ID]; ok {
		return fmt.Errorf("relationship %s: %w", r.ID, ErrDuplicateID)
	}
	for _, end := range []*Entity{r.From, r.To} {
		if end == nil || d.byID[end.ID] != end {
			return fmt.Errorf("relationship %s: %w", r.ID, ErrUnknownEntity)
		}
	}
	d.relIDs[r.ID] = struct{}{}
	d.relationships = append(d.relationships, r)
	return nil
}

// Connect adds a relationship between the entities with the given IDs.
func (d *Diagram) Connect(from, to string) (*Relationship, error) {
	src, ok := d.byID[from]
	if !ok {
		return nil, fmt.Errorf("%s: %w", from, ErrUnknownEntity)
	}
	dst, ok := d.byID[to]
	if !ok {
		return nil, fmt.Errorf("%s: %w", to, ErrUnknownEntity)
	}
	r := &Relationship{From: src, To: dst}
	if err := d.AddRelationship(r); err != nil {
		return nil, err
	}
	return r, nil
}

// Entity returns the entity with the given ID.
func (d *Diagram) Entity(id string) (*Entity, bool) {
	e, ok := d.byID[id]
	return e, ok
}

// Entities returns the entities in insertion order.
func (d *Diagram) Entities() []*Entity { return d.entities }

// Relationships returns the relationships in insertion order.
func (d *Diagram) Relationships() []*Relationship { return d.relationships }

// Populate adds every entity and relationship of d to l.
func (d *Diagram) Populate(l *layout.Layouter) error {
	for _, e := range d.entities {
		if err := l.Add(e); err != nil {
			return fmt.Errorf("entity %s: %w", e.ID, err)
		}
	}
	for _, r := range d.relationships {
		if err := l.Add(r); err != nil {
			return fmt.Errorf("relationship %s: %w", r.ID, err)
		}
	}
	return nil
}

// Bounds returns the union of all entity bounds and relationship points.
func (d *Diagram) Bounds() geom.Rect {
	if len(d.entities) == 0 {
		return geom.Rect{}
	}
	box := d.entities[0].Bounds
	for _, e := range d.entities[1:] {
		box = box.Union(e.Bounds)
	}
	for _, r := range d.relationships {
		for _, p := range r.Route {
			box = box.UnionPoint(p)
		}
	}
	return box
}
