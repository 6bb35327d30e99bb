package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"duckci-agent/src/cache"
	"duckci-agent/src/logger"
	"duckci-agent/src/shell"
)

func cacheWorkdir(t *testing.T, lockfile string) string {
	t.Helper()
	dir := t.TempDir()

	if err := os.WriteFile(filepath.Join(dir, "Cargo.lock"), []byte(lockfile), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "Cargo.toml"), []byte("[package]\nname = \"ducksync\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, sub := range []string{".cargo/registry", "target/debug"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, sub, "cached-file"), []byte("cache payload"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestCaches_SaveThenRestoreRoundTrip(t *testing.T) {
	workdir := cacheWorkdir(t, "lockfile v1")
	store := cache.NewInMemoryStore()
	cfg := testConfig(t)
	caches := NewCaches(store, shell.NewExecRunner(), cfg, workdir)
	ctx := context.Background()
	log := logger.NewSilentLogger()

	caches.Save(ctx, log)

	// Exact keys for both namespaces must now exist.
	depKey := cache.DependencyKey([]byte("lockfile v1"))
	if _, err := store.Get(ctx, depKey); err != nil {
		t.Fatalf("dependency cache not populated: %v", err)
	}

	// Wipe the cached directories and restore them from the store.
	if err := os.RemoveAll(filepath.Join(workdir, ".cargo")); err != nil {
		t.Fatal(err)
	}
	if err := os.RemoveAll(filepath.Join(workdir, "target")); err != nil {
		t.Fatal(err)
	}

	caches.Restore(ctx, log)

	for _, sub := range []string{".cargo/registry", "target/debug"} {
		content, err := os.ReadFile(filepath.Join(workdir, sub, "cached-file"))
		if err != nil {
			t.Fatalf("%s not restored: %v", sub, err)
		}
		if string(content) != "cache payload" {
			t.Errorf("%s content = %q", sub, content)
		}
	}
}

func TestCaches_PrefixFallbackAfterLockfileChange(t *testing.T) {
	workdir := cacheWorkdir(t, "lockfile v1")
	store := cache.NewInMemoryStore()
	cfg := testConfig(t)
	caches := NewCaches(store, shell.NewExecRunner(), cfg, workdir)
	ctx := context.Background()
	log := logger.NewSilentLogger()

	caches.Save(ctx, log)

	// A lockfile change invalidates the exact key; the restore key must
	// still match the previous entry in the same namespace.
	if err := os.WriteFile(filepath.Join(workdir, "Cargo.lock"), []byte("lockfile v2"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.RemoveAll(filepath.Join(workdir, ".cargo")); err != nil {
		t.Fatal(err)
	}

	caches.Restore(ctx, log)

	if _, err := os.Stat(filepath.Join(workdir, ".cargo", "registry", "cached-file")); err != nil {
		t.Errorf("prefix fallback did not restore the dependency cache: %v", err)
	}
}

// failingStore errors on every operation to prove cache trouble is never
// fatal.
type failingStore struct{}

func (failingStore) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, fmt.Errorf("backend unavailable")
}
func (failingStore) Put(ctx context.Context, key string, blob []byte) error {
	return fmt.Errorf("backend unavailable")
}
func (failingStore) Restore(ctx context.Context, prefix string) (*cache.Entry, error) {
	return nil, fmt.Errorf("backend unavailable")
}
func (failingStore) Close() error { return nil }

func TestCaches_BackendFailureDegradesToMiss(t *testing.T) {
	workdir := cacheWorkdir(t, "lockfile v1")
	cfg := testConfig(t)
	caches := NewCaches(failingStore{}, shell.NewExecRunner(), cfg, workdir)
	log := logger.NewSilentLogger()

	// Neither call may panic or propagate an error.
	caches.Restore(context.Background(), log)
	caches.Save(context.Background(), log)
}

func TestCaches_MissingManifestSkipsNamespace(t *testing.T) {
	workdir := t.TempDir() // no Cargo.lock / Cargo.toml at all
	store := cache.NewInMemoryStore()
	caches := NewCaches(store, shell.NewExecRunner(), testConfig(t), workdir)

	caches.Restore(context.Background(), logger.NewSilentLogger())
	caches.Save(context.Background(), logger.NewSilentLogger())

	if _, err := store.Restore(context.Background(), ""); err == nil {
		t.Error("store should remain empty when manifests are missing")
	}
}
