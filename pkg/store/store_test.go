package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	errs "github.com/matzehuels/erdlayout/pkg/errors"
	"github.com/matzehuels/erdlayout/pkg/layout"
)

func testStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	for i, id := range []string{"old", "mid", "new"} {
		r := &Record{
			ID:        id,
			Name:      "diagram-" + id,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
			Stats:     layout.Stats{Nodes: i + 1, Duration: time.Millisecond},
			Document:  []byte(`{"entities":[]}`),
		}
		if err := s.Save(ctx, r); err != nil {
			t.Fatalf("Save(%s): %v", id, err)
		}
	}

	got, err := s.Get(ctx, "mid")
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "diagram-mid" || got.Stats.Nodes != 2 || string(got.Document) != `{"entities":[]}` {
		t.Errorf("Get(mid) = %+v", got)
	}
	if !got.CreatedAt.Equal(base.Add(time.Hour)) {
		t.Errorf("CreatedAt = %v", got.CreatedAt)
	}

	list, err := s.List(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].ID != "new" || list[1].ID != "mid" {
		t.Errorf("List(2) = %+v", list)
	}
	if list[0].Document != nil {
		t.Error("List should omit documents")
	}

	if err := s.Save(ctx, &Record{ID: "mid", Name: "renamed", CreatedAt: base}); err != nil {
		t.Fatal(err)
	}
	if got, _ := s.Get(ctx, "mid"); got.Name != "renamed" {
		t.Errorf("Save did not replace: %+v", got)
	}

	if err := s.Delete(ctx, "old"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(ctx, "old"); !errs.Is(err, errs.ErrCodeNotFound) {
		t.Errorf("Get after Delete = %v, want NOT_FOUND", err)
	}
	if err := s.Delete(ctx, "old"); !errs.Is(err, errs.ErrCodeNotFound) {
		t.Errorf("second Delete = %v, want NOT_FOUND", err)
	}
	if err := s.Save(ctx, &Record{ID: "bad id"}); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("Save(bad id) = %v, want INVALID_INPUT", err)
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	testStore(t, s)
}

func TestMemoryStore_CopiesDocument(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	doc := []byte("abc")
	_ = s.Save(ctx, &Record{ID: "x", Document: doc})
	doc[0] = 'z'
	got, _ := s.Get(ctx, "x")
	if string(got.Document) != "abc" {
		t.Errorf("stored document aliased caller buffer: %q", got.Document)
	}
}

func TestBoltStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layouts.db")
	s, err := OpenBolt(path)
	if err != nil {
		t.Fatal(err)
	}
	testStore(t, s)
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := OpenBolt(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()
	if _, err := reopened.Get(context.Background(), "new"); err != nil {
		t.Errorf("record lost across reopen: %v", err)
	}
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("ERDLAYOUT_TEST_MONGO")
	if uri == "" {
		t.Skip("ERDLAYOUT_TEST_MONGO not set")
	}
	ctx := context.Background()
	s, err := OpenMongo(ctx, uri, "erdlayout_test_"+time.Now().Format("150405"))
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		_ = s.coll.Database().Drop(ctx)
		_ = s.Close()
	}()
	testStore(t, s)
}
