package contracts

import "time"

// RunStatus is the overall status of a pipeline run.
type RunStatus string

const (
	RunPending   RunStatus = "pending"
	RunRunning   RunStatus = "running"
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
	RunAborted   RunStatus = "aborted"
)

// StageState is the recorded outcome of one stage.
type StageState string

const (
	StageSuccess StageState = "success"
	StageFailure StageState = "failure"
	// StageSkipped marks a stage whose upstream dependency failed. A skipped
	// stage was never executed.
	StageSkipped StageState = "skipped"
)

// StageResult records the outcome of a named stage within a run.
type StageResult struct {
	Name       string     `json:"name"`
	State      StageState `json:"state"`
	Reason     string     `json:"reason,omitempty"`
	StartedAt  time.Time  `json:"started_at,omitempty"`
	FinishedAt time.Time  `json:"finished_at,omitempty"`
}

// PipelineRun identifies one pipeline execution. Created on a push event,
// mutated by each stage as it completes, terminal once the last scheduled
// stage finishes or one fails with abort semantics.
type PipelineRun struct {
	ID        string        `json:"id"`
	Ref       string        `json:"ref"`
	HeadSHA   string        `json:"head_sha"`
	Status    RunStatus     `json:"status"`
	Stages    []StageResult `json:"stages"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Stage returns the recorded result for a stage name, if present.
func (r *PipelineRun) Stage(name string) (StageResult, bool) {
	for _, s := range r.Stages {
		if s.Name == name {
			return s, true
		}
	}
	return StageResult{}, false
}
