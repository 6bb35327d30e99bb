package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

type memoryEntry struct {
	blob    []byte
	written time.Time
	seq     int64
}

// InMemoryStore is a thread-safe in-memory Store.
// Used for local mode and tests.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	seq     int64
}

// NewInMemoryStore creates a new in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		entries: make(map[string]memoryEntry),
	}
}

// Get returns the blob stored under exactly key.
func (s *InMemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[key]
	if !ok {
		return nil, ErrNotFound
	}
	blob := make([]byte, len(entry.blob))
	copy(blob, entry.blob)
	return blob, nil
}

// Put stores blob under key, replacing any previous value.
func (s *InMemoryStore) Put(ctx context.Context, key string, blob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(blob))
	copy(stored, blob)
	s.seq++
	s.entries[key] = memoryEntry{blob: stored, written: time.Now(), seq: s.seq}
	return nil
}

// Restore returns the most recently written entry whose key starts with
// prefix.
func (s *InMemoryStore) Restore(ctx context.Context, prefix string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var bestKey string
	var best memoryEntry
	found := false
	for key, entry := range s.entries {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		if !found || entry.seq > best.seq {
			bestKey, best, found = key, entry, true
		}
	}
	if !found {
		return nil, ErrNotFound
	}

	blob := make([]byte, len(best.blob))
	copy(blob, best.blob)
	return &Entry{Key: bestKey, Blob: blob}, nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error {
	return nil
}
