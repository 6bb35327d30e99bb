package artifact

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalPublisher publishes collections into a directory tree:
// <root>/<runID>/<collection>/<artifact files>. The collection is staged in a
// temp directory and moved into place in one rename, so a cancelled or failed
// publish never leaves a partially-uploaded collection visible, and
// re-publishing the same (runID, collection) replaces it wholesale.
type LocalPublisher struct {
	root string
}

// NewLocalPublisher creates a publisher rooted at dir.
func NewLocalPublisher(dir string) (*LocalPublisher, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating artifact dir %s: %w", dir, err)
	}
	return &LocalPublisher{root: dir}, nil
}

// Publish copies the artifacts into the named collection for the run.
func (p *LocalPublisher) Publish(ctx context.Context, runID string, collection string, artifacts []Artifact) error {
	runDir := filepath.Join(p.root, runID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return &PublishError{Collection: collection, Err: err}
	}

	staging, err := os.MkdirTemp(runDir, ".staging-*")
	if err != nil {
		return &PublishError{Collection: collection, Err: err}
	}
	defer os.RemoveAll(staging)

	for _, a := range artifacts {
		if err := ctx.Err(); err != nil {
			return &PublishError{Collection: collection, Err: err}
		}
		if err := copyFile(a.Path, filepath.Join(staging, a.FileName())); err != nil {
			return &PublishError{Collection: collection, Err: err}
		}
	}

	final := filepath.Join(runDir, collection)

	// Upsert: drop the previous collection for this run, if any, then move
	// the staged one into place.
	if err := os.RemoveAll(final); err != nil {
		return &PublishError{Collection: collection, Err: err}
	}
	if err := os.Rename(staging, final); err != nil {
		return &PublishError{Collection: collection, Err: err}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening artifact %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o755)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying %s: %w", src, err)
	}
	return out.Close()
}
