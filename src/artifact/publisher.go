package artifact

import (
	"context"
	"fmt"
)

// PublishError means a collection could not be published. It is fatal to the
// publish step but never rolls back artifacts already produced.
type PublishError struct {
	Collection string
	Err        error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publishing collection %s: %v", e.Collection, e.Err)
}

func (e *PublishError) Unwrap() error {
	return e.Err
}

// Publisher uploads a named artifact set tied to a pipeline run.
// Publish must be idempotent per (runID, collection): re-invocation replaces
// the collection, it never creates a duplicate.
type Publisher interface {
	Publish(ctx context.Context, runID string, collection string, artifacts []Artifact) error
}
