// Package store persists computed layouts for the HTTP API.
//
// A [Record] holds the laid-out diagram document together with run
// statistics. Backends implement [Store]:
//
//   - [MemoryStore] keeps records in process memory (tests, ephemeral servers).
//   - [BoltStore] keeps records in a single bbolt file.
//   - [MongoStore] keeps records in a MongoDB collection.
package store

import (
	"context"
	"time"

	errs "github.com/matzehuels/erdlayout/pkg/errors"
	"github.com/matzehuels/erdlayout/pkg/layout"
)

// DefaultListLimit caps List when the caller passes zero.
const DefaultListLimit = 50

// Record is one stored layout.
type Record struct {
	ID        string       `json:"id" bson:"_id"`
	Name      string       `json:"name" bson:"name"`
	CreatedAt time.Time    `json:"created_at" bson:"created_at"`
	Stats     layout.Stats `json:"stats" bson:"stats"`
	// Document is the laid-out diagram encoded as JSON.
	Document []byte `json:"-" bson:"document"`
}

// Store persists layout records.
type Store interface {
	// Save inserts or replaces r.
	Save(ctx context.Context, r *Record) error
	// Get returns the record with id or a NOT_FOUND error.
	Get(ctx context.Context, id string) (*Record, error)
	// Delete removes the record with id or returns a NOT_FOUND error.
	Delete(ctx context.Context, id string) error
	// List returns up to limit records, newest first, without documents.
	List(ctx context.Context, limit int) ([]Record, error)
	// Close releases backend resources.
	Close() error
}

func notFound(id string) error {
	return errs.New(errs.ErrCodeNotFound, "layout %s not found", id)
}

func validate(r *Record) error {
	if r == nil {
		return errs.New(errs.ErrCodeInvalidInput, "record cannot be nil")
	}
	return errs.ValidateID(r.ID)
}

func listLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
