package mcp

import (
	"time"

	"duckci-agent/src/contracts"
)

// runSummary is the compact run representation returned by list_runs.
type runSummary struct {
	ID        string    `json:"id"`
	Ref       string    `json:"ref"`
	HeadSHA   string    `json:"head_sha"`
	Status    string    `json:"status"`
	Stages    int       `json:"stages"`
	Failed    []string  `json:"failed_stages,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func summarizeRun(run *contracts.PipelineRun) runSummary {
	summary := runSummary{
		ID:        run.ID,
		Ref:       run.Ref,
		HeadSHA:   run.HeadSHA,
		Status:    string(run.Status),
		Stages:    len(run.Stages),
		CreatedAt: run.CreatedAt,
	}
	for _, stage := range run.Stages {
		if stage.State == contracts.StageFailure {
			summary.Failed = append(summary.Failed, stage.Name)
		}
	}
	return summary
}
