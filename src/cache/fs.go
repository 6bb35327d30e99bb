package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileStore persists cache entries as files under a root directory, one file
// per key. Writes go through a temp file and rename so a cancelled run never
// leaves a partial entry visible.
type FileStore struct {
	root string
}

// NewFileStore creates a FileStore rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir %s: %w", dir, err)
	}
	return &FileStore{root: dir}, nil
}

// Get returns the blob stored under exactly key.
func (s *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	blob, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading cache entry %s: %w", key, err)
	}
	return blob, nil
}

// Put stores blob under key, replacing any previous value. The write is
// atomic: concurrent writers to the same key leave the last complete write.
func (s *FileStore) Put(ctx context.Context, key string, blob []byte) error {
	tmp, err := os.CreateTemp(s.root, ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp cache file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(blob); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing cache entry %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing cache entry %s: %w", key, err)
	}

	if err := os.Rename(tmpName, s.path(key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("committing cache entry %s: %w", key, err)
	}
	return nil
}

// Restore returns the most recently written entry whose key starts with
// prefix, by file modification time.
func (s *FileStore) Restore(ctx context.Context, prefix string) (*Entry, error) {
	dirEntries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("scanning cache dir: %w", err)
	}

	var bestKey string
	var bestMod int64 = -1
	for _, de := range dirEntries {
		name := de.Name()
		if de.IsDir() || strings.HasPrefix(name, ".tmp-") {
			continue
		}
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		if mod := info.ModTime().UnixNano(); mod > bestMod {
			bestKey, bestMod = name, mod
		}
	}
	if bestMod < 0 {
		return nil, ErrNotFound
	}

	blob, err := s.Get(ctx, bestKey)
	if err != nil {
		return nil, err
	}
	return &Entry{Key: bestKey, Blob: blob}, nil
}

// Close is a no-op for the filesystem store.
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.root, key)
}
