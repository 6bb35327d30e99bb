// Package cache provides the content-addressed build cache used by the
// pipeline. Two independent namespaces share one store: the
// dependency-registry cache keyed by the lockfile digest, and the
// build-output cache keyed by the build-manifest digest.
//
// Cache access is best-effort by contract: callers treat any error from Get
// or Restore as a miss, and a failed Put is logged, never fatal.
package cache

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no entry matches a key or prefix.
var ErrNotFound = errors.New("cache entry not found")

// Entry is a restored cache entry. Key may differ from the requested key when
// the entry was matched through a restore-key prefix fallback.
type Entry struct {
	Key  string
	Blob []byte
}

// Store is a key/value store for build caches. Implementations must tolerate
// concurrent readers and concurrent writers to different keys;
// last-writer-wins per key is acceptable.
type Store interface {
	// Get returns the blob stored under exactly key.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores blob under key, replacing any previous value.
	Put(ctx context.Context, key string, blob []byte) error

	// Restore returns the most recently written entry whose key starts with
	// prefix. Used as the fallback when the exact key misses.
	Restore(ctx context.Context, prefix string) (*Entry, error)

	// Close releases the store's resources.
	Close() error
}
