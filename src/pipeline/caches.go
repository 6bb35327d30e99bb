package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"duckci-agent/src/cache"
	"duckci-agent/src/config"
	"duckci-agent/src/logger"
	"duckci-agent/src/shell"
)

// Caches restores and populates the two cache namespaces around a run: the
// dependency registry (keyed by the lockfile digest, archived from .cargo)
// and the build output (keyed by the build-manifest digest, archived from
// target). Every operation here is best-effort.
type Caches struct {
	store   cache.Store
	runner  shell.Runner
	cfg     *config.PipelineConfig
	workdir string
}

// NewCaches creates the cache steps for a repository checkout at workdir.
func NewCaches(store cache.Store, runner shell.Runner, cfg *config.PipelineConfig, workdir string) *Caches {
	return &Caches{store: store, runner: runner, cfg: cfg, workdir: workdir}
}

type namespace struct {
	label    string
	manifest string
	prefix   string
	keyFn    func([]byte) string
	dir      string
}

func (c *Caches) namespaces() []namespace {
	return []namespace{
		{
			label:    "dependency",
			manifest: c.cfg.Cache.DependencyManifest,
			prefix:   cache.DependencyPrefix,
			keyFn:    cache.DependencyKey,
			dir:      ".cargo",
		},
		{
			label:    "build",
			manifest: c.cfg.Cache.BuildManifest,
			prefix:   cache.BuildPrefix,
			keyFn:    cache.BuildKey,
			dir:      "target",
		},
	}
}

// Restore tries the exact manifest key first, then falls back to the most
// recent entry in the same namespace. Misses and corrupted entries degrade
// to a full rebuild.
func (c *Caches) Restore(ctx context.Context, log logger.Logger) {
	for _, ns := range c.namespaces() {
		key, err := c.key(ns)
		if err != nil {
			log.Info("[Cache] %s cache skipped: %v", ns.label, err)
			continue
		}

		blob, err := c.store.Get(ctx, key)
		if errors.Is(err, cache.ErrNotFound) {
			entry, restoreErr := c.store.Restore(ctx, ns.prefix)
			if restoreErr != nil {
				log.Info("[Cache] %s cache miss (key %s)", ns.label, key)
				continue
			}
			log.Info("[Cache] %s cache partial hit via restore key %s", ns.label, entry.Key)
			blob = entry.Blob
		} else if err != nil {
			log.Error("[Cache] %s cache read failed, rebuilding: %v", ns.label, err)
			continue
		} else {
			log.Info("[Cache] %s cache hit (key %s)", ns.label, key)
		}

		if err := c.unpack(ctx, ns.dir, blob); err != nil {
			log.Error("[Cache] %s cache unpack failed, rebuilding: %v", ns.label, err)
		}
	}
}

// Save archives both namespaces after a successful run. Failures are logged,
// never fatal, and never block artifact publication (publication has already
// happened by the time Save runs).
func (c *Caches) Save(ctx context.Context, log logger.Logger) {
	for _, ns := range c.namespaces() {
		key, err := c.key(ns)
		if err != nil {
			continue
		}

		blob, err := c.pack(ctx, ns.dir)
		if err != nil {
			log.Error("[Cache] %s cache population failed: %v", ns.label, err)
			continue
		}
		if err := c.store.Put(ctx, key, blob); err != nil {
			log.Error("[Cache] %s cache population failed: %v", ns.label, err)
			continue
		}
		log.Info("[Cache] %s cache saved (key %s)", ns.label, key)
	}
}

func (c *Caches) key(ns namespace) (string, error) {
	content, err := os.ReadFile(filepath.Join(c.workdir, ns.manifest))
	if err != nil {
		return "", err
	}
	return ns.keyFn(content), nil
}

func (c *Caches) unpack(ctx context.Context, dir string, blob []byte) error {
	tmp, err := os.CreateTemp("", "duckci-cache-*.tgz")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(blob); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	_, err = c.runner.Run(ctx, shell.Command{
		Dir:  c.workdir,
		Name: "tar",
		Args: []string{"-xzf", tmp.Name(), dir},
	})
	return err
}

func (c *Caches) pack(ctx context.Context, dir string) ([]byte, error) {
	tmp, err := os.CreateTemp("", "duckci-cache-*.tgz")
	if err != nil {
		return nil, err
	}
	tmpName := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpName)

	if _, err := c.runner.Run(ctx, shell.Command{
		Dir:  c.workdir,
		Name: "tar",
		Args: []string{"-czf", tmpName, dir},
	}); err != nil {
		return nil, err
	}
	return os.ReadFile(tmpName)
}
