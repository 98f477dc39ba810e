package diagram

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	errs "github.com/matzehuels/erdlayout/pkg/errors"
	"github.com/matzehuels/erdlayout/pkg/geom"
)

type document struct {
	Name          string         `json:"name,omitempty" yaml:"name,omitempty"`
	Entities      []entity       `json:"entities" yaml:"entities"`
	Relationships []relationship `json:"relationships" yaml:"relationships"`
}

type entity struct {
	ID     string   `json:"id,omitempty" yaml:"id,omitempty"`
	Label  string   `json:"label,omitempty" yaml:"label,omitempty"`
	Width  float64  `json:"width,omitempty" yaml:"width,omitempty"`
	Height float64  `json:"height,omitempty" yaml:"height,omitempty"`
	X      *float64 `json:"x,omitempty" yaml:"x,omitempty"`
	Y      *float64 `json:"y,omitempty" yaml:"y,omitempty"`
}

type relationship struct {
	ID     string       `json:"id,omitempty" yaml:"id,omitempty"`
	Label  string       `json:"label,omitempty" yaml:"label,omitempty"`
	Source string       `json:"source" yaml:"source"`
	Target string       `json:"target" yaml:"target"`
	Points []geom.Point `json:"points,omitempty" yaml:"points,omitempty"`
}

// Read decodes a JSON diagram from r.
func Read(r io.Reader) (*Diagram, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode diagram")
	}
	return doc.build()
}

// ReadYAML decodes a YAML diagram from r.
func ReadYAML(r io.Reader) (*Diagram, error) {
	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode diagram")
	}
	return doc.build()
}

// Write encodes d as indented JSON.
func Write(d *Diagram, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(newDocument(d)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteYAML encodes d as YAML.
func WriteYAML(d *Diagram, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(newDocument(d)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return enc.Close()
}

// ReadFile reads the diagram at path, choosing YAML for .yaml and .yml
// files and JSON otherwise.
func ReadFile(path string) (*Diagram, error) {
	path, err := cleanPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "diagram %s not found", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var d *Diagram
	if isYAML(path) {
		d, err = ReadYAML(f)
	} else {
		d, err = Read(f)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if d.Name == "" {
		d.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return d, nil
}

// WriteFile writes d to path using the codec matching the extension.
func WriteFile(d *Diagram, path string) error {
	path, err := cleanPath(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if isYAML(path) {
		return WriteYAML(d, f)
	}
	return Write(d, f)
}

func cleanPath(path string) (string, error) {
	if path == "" {
		return "", errs.New(errs.ErrCodeInvalidPath, "path cannot be empty")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errs.Wrap(errs.ErrCodeInvalidPath, err, "resolve %s", path)
	}
	return abs, errs.ValidatePath(abs)
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func (doc document) build() (*Diagram, error) {
	d := New(doc.Name)
	for i, e := range doc.Entities {
		if e.ID == "" {
			e.ID = stableID(doc.Name, "entity", i)
		}
		ent := &Entity{
			ID:     e.ID,
			Label:  e.Label,
			Bounds: geom.Rect{Width: e.Width, Height: e.Height},
		}
		if e.X != nil {
			ent.Bounds.X = *e.X
		}
		if e.Y != nil {
			ent.Bounds.Y = *e.Y
		}
		if err := d.AddEntity(ent); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "entity %q", e.ID)
		}
	}
	for i, r := range doc.Relationships {
		if r.ID == "" {
			r.ID = stableID(doc.Name, "relationship", i)
		}
		from, ok := d.byID[r.Source]
		if !ok {
			return nil, errs.Wrap(errs.ErrCodeInvalidInput, ErrUnknownEntity, "relationship source %q", r.Source)
		}
		to, ok := d.byID[r.Target]
		if !ok {
			return nil, errs.Wrap(errs.ErrCodeInvalidInput, ErrUnknownEntity, "relationship target %q", r.Target)
		}
		rel := &Relationship{ID: r.ID, Label: r.Label, From: from, To: to, Route: r.Points}
		if err := d.AddRelationship(rel); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "relationship %s -> %s", r.Source, r.Target)
		}
	}
	return d, nil
}

// stableID derives a name-based UUID for an element without an ID, so that
// reading the same document twice yields the same IDs.
func stableID(diagram, kind string, index int) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("erdlayout/%s/%s/%d", diagram, kind, index))).String()
}

func newDocument(d *Diagram) document {
	doc := document{
		Name:          d.Name,
		Entities:      make([]entity, len(d.entities)),
		Relationships: make([]relationship, len(d.relationships)),
	}
	for i, e := range d.entities {
		x, y := e.Bounds.X, e.Bounds.Y
		doc.Entities[i] = entity{
			ID:     e.ID,
			Label:  e.Label,
			Width:  e.Bounds.Width,
			Height: e.Bounds.Height,
			X:      &x,
			Y:      &y,
		}
	}
	for i, r := range d.relationships {
		doc.Relationships[i] = relationship{
			ID:     r.ID,
			Label:  r.Label,
			Source: r.From.ID,
			Target: r.To.ID,
			Points: r.Route,
		}
	}
	return doc
}
