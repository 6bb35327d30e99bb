package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileStore_GetPut(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	defer store.Close()
	ctx := context.Background()

	key := DependencyKey([]byte("lockfile"))
	blob := []byte("cached registry")

	if err := store.Put(ctx, key, blob); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != string(blob) {
		t.Errorf("Get = %q, want %q", got, blob)
	}
}

func TestFileStore_GetMiss(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	defer store.Close()

	if _, err := store.Get(context.Background(), "duckci-deps-missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFileStore_RestoreMostRecent(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	defer store.Close()
	ctx := context.Background()

	oldKey := DependencyKey([]byte("lockfile v1"))
	newKey := DependencyKey([]byte("lockfile v2"))

	if err := store.Put(ctx, oldKey, []byte("old")); err != nil {
		t.Fatal(err)
	}
	if err := store.Put(ctx, newKey, []byte("new")); err != nil {
		t.Fatal(err)
	}
	// Make recency unambiguous regardless of filesystem timestamp granularity.
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(filepath.Join(dir, oldKey), past, past); err != nil {
		t.Fatal(err)
	}

	entry, err := store.Restore(ctx, DependencyPrefix)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if entry.Key != newKey {
		t.Errorf("Restore key = %s, want %s", entry.Key, newKey)
	}
	if string(entry.Blob) != "new" {
		t.Errorf("Restore blob = %q, want %q", entry.Blob, "new")
	}
}

func TestFileStore_RestoreIgnoresTempFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	defer store.Close()

	// Simulate a write interrupted by cancellation: only the temp file exists.
	if err := os.WriteFile(filepath.Join(dir, ".tmp-12345"), []byte("partial"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := store.Restore(context.Background(), ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("partial write must not be restorable, got %v", err)
	}
}
