// Package diagram is an in-memory ER diagram model that can be laid out by
// [layout.Layouter].
//
// An [Entity] is a box with an ID, a label and bounds. A [Relationship]
// connects two entities and stores its route as a polyline whose end points
// are anchored on the entity borders (chopbox anchoring). A [Diagram] owns
// both and hands them to a layouter via [Diagram.Populate]:
//
//	d := diagram.New("shop")
//	customer := &diagram.Entity{ID: "customer"}
//	order := &diagram.Entity{ID: "order"}
//	_ = d.AddEntity(customer)
//	_ = d.AddEntity(order)
//	_ = d.AddRelationship(&diagram.Relationship{From: order, To: customer})
//
//	l := layout.New(layout.DefaultConfig())
//	if err := d.Populate(l); err != nil { ... }
//	if err := l.Layout(); err != nil { ... }
//
// # Serialization
//
// [Read] and [Write] use JSON, [ReadYAML] and [WriteYAML] use YAML; both
// share one document shape:
//
//	{
//	  "name": "shop",
//	  "entities": [{"id": "customer", "label": "Customer", "width": 160, "height": 80}],
//	  "relationships": [{"source": "order", "target": "customer"}]
//	}
//
// Missing IDs are filled with name-based UUIDs derived from the diagram name
// and element position, so repeated reads agree. Missing sizes default to
// [DefaultWidth] × [DefaultHeight]. Written documents carry entity positions
// and relationship points.
package diagram
