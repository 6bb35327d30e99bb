package tui

import (
	"fmt"

	"duckci-agent/src/contracts"
)

// Item represents a pipeline run in the dashboard list. It wraps the domain
// PipelineRun and implements bubbles/list.Item.
type Item struct {
	Run *contracts.PipelineRun
}

// FilterValue is the value used for fuzzy filtering.
func (i Item) FilterValue() string { return i.Run.Ref + " " + i.Run.HeadSHA }

// Title returns the primary text for the item (required by list.Item).
func (i Item) Title() string {
	return shortID(i.Run.ID) + "  " + i.Run.Ref + " @ " + shortSHA(i.Run.HeadSHA)
}

// Description returns the secondary text for the item (required by list.Item).
func (i Item) Description() string {
	return string(i.Run.Status) + "  " + stageSummary(i.Run)
}

// stageSummary renders "6/8 stages" style progress for a run.
func stageSummary(run *contracts.PipelineRun) string {
	succeeded := 0
	for _, stage := range run.Stages {
		if stage.State == contracts.StageSuccess {
			succeeded++
		}
	}
	return fmt.Sprintf("%d/%d stages", succeeded, len(run.Stages))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func shortSHA(sha string) string {
	if len(sha) > 8 {
		return sha[:8]
	}
	return sha
}
