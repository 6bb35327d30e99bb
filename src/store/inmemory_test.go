package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"duckci-agent/src/contracts"
)

func TestInMemoryStore_SaveGet(t *testing.T) {
	s := NewInMemoryStore()
	defer s.Close()
	ctx := context.Background()

	run := &contracts.PipelineRun{
		ID:        "run-1",
		Ref:       "refs/heads/main",
		HeadSHA:   "abc123",
		Status:    contracts.RunRunning,
		CreatedAt: time.Now(),
	}
	if err := s.SaveRun(ctx, run); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	got, err := s.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if got.Ref != "refs/heads/main" || got.Status != contracts.RunRunning {
		t.Errorf("got run %+v", got)
	}

	// Mutating the returned run must not affect the stored copy.
	got.Status = contracts.RunFailed
	again, _ := s.GetRun(ctx, "run-1")
	if again.Status != contracts.RunRunning {
		t.Error("store returned a shared reference")
	}
}

func TestInMemoryStore_GetMiss(t *testing.T) {
	s := NewInMemoryStore()
	defer s.Close()

	if _, err := s.GetRun(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestInMemoryStore_SaveUpdatesExisting(t *testing.T) {
	s := NewInMemoryStore()
	defer s.Close()
	ctx := context.Background()

	run := &contracts.PipelineRun{ID: "run-1", Status: contracts.RunRunning, CreatedAt: time.Now()}
	if err := s.SaveRun(ctx, run); err != nil {
		t.Fatal(err)
	}

	run.Status = contracts.RunSucceeded
	run.Stages = append(run.Stages, contracts.StageResult{Name: "test-gate", State: contracts.StageSuccess})
	if err := s.SaveRun(ctx, run); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != contracts.RunSucceeded || len(got.Stages) != 1 {
		t.Errorf("got run %+v", got)
	}
}

func TestInMemoryStore_ListRunsNewestFirst(t *testing.T) {
	s := NewInMemoryStore()
	defer s.Close()
	ctx := context.Background()

	base := time.Now()
	for i, id := range []string{"run-old", "run-mid", "run-new"} {
		err := s.SaveRun(ctx, &contracts.PipelineRun{
			ID:        id,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	runs, err := s.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != "run-new" || runs[1].ID != "run-mid" {
		t.Errorf("order = [%s %s]", runs[0].ID, runs[1].ID)
	}
}
