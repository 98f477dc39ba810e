// Package cache stores computed layouts so that unchanged diagrams are not
// laid out twice.
//
// Backends implement [Cache]:
//
//   - [FileCache] keeps one JSON file per key under a directory (CLI default).
//   - [RedisCache] shares entries between server instances.
//   - [NullCache] disables caching.
//
// Keys are produced by a [Keyer] from a content hash of the input diagram
// and the options that influence the result:
//
//	k := cache.NewDefaultKeyer()
//	key := k.LayoutKey(cache.Hash(doc), cache.LayoutKeyOpts{Heuristic: "median"})
package cache

import (
	"context"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default lifetimes of cache entries.
const (
	LayoutTTL = 7 * 24 * time.Hour
	RenderTTL = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns the value for key. ok is false on a miss or an expired entry.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// Clearer is implemented by caches that can drop all of their entries.
type Clearer interface {
	Clear(ctx context.Context) error
}

// DefaultDir returns the per-user cache directory for the file cache.
func DefaultDir() string {
	return filepath.Join(xdg.CacheHome, "erdlayout")
}
