package store

import (
	"context"
	"encoding/json"
	"time"

	"go.etcd.io/bbolt"

	errs "github.com/matzehuels/erdlayout/pkg/errors"
)

var layoutsBucket = []byte("layouts")

// BoltStore is a [Store] backed by a single bbolt database file.
type BoltStore struct {
	db *bbolt.DB
}

// OpenBolt opens (or creates) the database at path.
func OpenBolt(path string) (*BoltStore, error) {
	if err := errs.ValidatePath(path); err != nil {
		return nil, err
	}
	db, err := bbolt.Open(path, 0o644, &bbolt.Options{
		Timeout:      5 * time.Second,
		NoGrowSync:   bbolt.DefaultOptions.NoGrowSync,
		FreelistType: bbolt.DefaultOptions.FreelistType,
	})
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeStorage, err, "open %s", path)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(layoutsBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errs.Wrap(errs.ErrCodeStorage, err, "init %s", path)
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Save(ctx context.Context, r *Record) error {
	if err := validate(r); err != nil {
		return err
	}
	data, err := json.Marshal(boltRecord{Record: *r, Document: r.Document})
	if err != nil {
		return err
	}
	err = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(layoutsBucket).Put([]byte(r.ID), data)
	})
	if err != nil {
		return errs.Wrap(errs.ErrCodeStorage, err, "save layout %s", r.ID)
	}
	return nil
}

func (s *BoltStore) Get(ctx context.Context, id string) (*Record, error) {
	var rec *Record
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(layoutsBucket).Get([]byte(id))
		if data == nil {
			return notFound(id)
		}
		var br boltRecord
		if err := json.Unmarshal(data, &br); err != nil {
			return errs.Wrap(errs.ErrCodeStorage, err, "decode layout %s", id)
		}
		br.Record.Document = br.Document
		rec = &br.Record
		return nil
	})
	return rec, err
}

func (s *BoltStore) Delete(ctx context.Context, id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(layoutsBucket)
		if b.Get([]byte(id)) == nil {
			return notFound(id)
		}
		return b.Delete([]byte(id))
	})
}

func (s *BoltStore) List(ctx context.Context, limit int) ([]Record, error) {
	var out []Record
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(layoutsBucket).ForEach(func(k, v []byte) error {
			var br boltRecord
			if err := json.Unmarshal(v, &br); err != nil {
				return errs.Wrap(errs.ErrCodeStorage, err, "decode layout %s", k)
			}
			out = append(out, br.Record)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sortNewestFirst(out)
	if n := listLimit(limit); len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (s *BoltStore) Close() error { return s.db.Close() }

// boltRecord also serializes the document, which Record hides from JSON.
type boltRecord struct {
	Record
	Document []byte `json:"document"`
}

var _ Store = (*BoltStore)(nil)
