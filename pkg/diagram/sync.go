package diagram

import (
	"encoding/json"
	"fmt"
	"slices"
)

type fingerprint struct {
	Entities      [][3]any `json:"e"`
	Relationships [][2]int `json:"r"`
}

// Fingerprint returns a canonical encoding of everything that influences a
// layout: entity order and sizes, and relationship endpoints by entity
// index. Positions, labels and generated IDs are left out, so a diagram read
// twice from the same file has the same fingerprint.
func Fingerprint(d *Diagram) []byte {
	index := make(map[*Entity]int, len(d.entities))
	fp := fingerprint{
		Entities:      make([][3]any, len(d.entities)),
		Relationships: make([][2]int, len(d.relationships)),
	}
	for i, e := range d.entities {
		index[e] = i
		fp.Entities[i] = [3]any{i, e.Bounds.Width, e.Bounds.Height}
	}
	for i, r := range d.relationships {
		fp.Relationships[i] = [2]int{index[r.From], index[r.To]}
	}
	data, _ := json.Marshal(fp)
	return data
}

// Apply copies entity positions and relationship routes from src, matching
// elements by insertion order. Both diagrams must have the same shape.
func (d *Diagram) Apply(src *Diagram) error {
	if len(src.entities) != len(d.entities) || len(src.relationships) != len(d.relationships) {
		return fmt.Errorf("apply layout: shape mismatch (%d/%d entities, %d/%d relationships)",
			len(src.entities), len(d.entities), len(src.relationships), len(d.relationships))
	}
	for i, e := range d.entities {
		e.SetLocation(src.entities[i].Location())
	}
	for i, r := range d.relationships {
		r.Route = slices.Clone(src.relationships[i].Route)
	}
	return nil
}
