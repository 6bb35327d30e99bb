// Package store defines the interface for persisting pipeline runs.
package store

import (
	"context"
	"errors"

	"duckci-agent/src/contracts"
)

// ErrNotFound is returned when a run id is unknown.
var ErrNotFound = errors.New("run not found")

// RunStore persists pipeline runs and their stage results. Read by the CLI
// status command, the TUI dashboard, and the MCP server.
type RunStore interface {
	// SaveRun inserts or updates a run record.
	SaveRun(ctx context.Context, run *contracts.PipelineRun) error

	// GetRun returns the run with the given id.
	GetRun(ctx context.Context, runID string) (*contracts.PipelineRun, error)

	// ListRuns returns the most recent runs, newest first, up to limit.
	ListRuns(ctx context.Context, limit int) ([]*contracts.PipelineRun, error)

	// Close releases the store's resources.
	Close() error
}
