package store

import (
	"context"
	"sort"
	"sync"

	"duckci-agent/src/contracts"
)

// InMemoryStore is a thread-safe in-memory implementation of RunStore.
// Used for local mode and tests.
type InMemoryStore struct {
	mu   sync.RWMutex
	runs map[string]contracts.PipelineRun
}

// NewInMemoryStore creates a new in-memory run store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		runs: make(map[string]contracts.PipelineRun),
	}
}

// SaveRun inserts or updates a run record.
func (s *InMemoryStore) SaveRun(ctx context.Context, run *contracts.PipelineRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *run
	copied.Stages = append([]contracts.StageResult(nil), run.Stages...)
	s.runs[run.ID] = copied
	return nil
}

// GetRun returns the run with the given id.
func (s *InMemoryStore) GetRun(ctx context.Context, runID string) (*contracts.PipelineRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[runID]
	if !ok {
		return nil, ErrNotFound
	}
	copied := run
	copied.Stages = append([]contracts.StageResult(nil), run.Stages...)
	return &copied, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *InMemoryStore) ListRuns(ctx context.Context, limit int) ([]*contracts.PipelineRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]*contracts.PipelineRun, 0, len(s.runs))
	for _, run := range s.runs {
		copied := run
		copied.Stages = append([]contracts.StageResult(nil), run.Stages...)
		runs = append(runs, &copied)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})

	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error {
	return nil
}
