// Package pipeline sequences toolchain provisioning, builds, the test gate,
// and artifact publication into one run, and hosts the agent that executes a
// run per push event.
package pipeline

import (
	"context"
	"fmt"

	"duckci-agent/src/contracts"
)

// ResultSet holds the recorded results of the stages that have finished so
// far, by stage name.
type ResultSet map[string]contracts.StageResult

// Predicate decides whether a stage may execute given its upstream results.
// A stage whose predicate returns false is recorded as Skipped and never
// executed.
type Predicate func(ResultSet) bool

// Stage is a named unit of work with declared upstream dependencies. The
// orchestrator evaluates the graph explicitly; nothing is inferred from
// declaration order beyond the dependencies listed here.
type Stage struct {
	Name string
	// Needs lists upstream stage names. A stage only becomes ready once all
	// of them have a recorded result.
	Needs []string
	// When overrides the default predicate (all Needs succeeded).
	When Predicate
	Exec func(ctx context.Context) error
}

// ready reports whether every upstream stage has a recorded result.
func (s Stage) ready(results ResultSet) bool {
	for _, need := range s.Needs {
		if _, ok := results[need]; !ok {
			return false
		}
	}
	return true
}

// shouldRun evaluates the stage's predicate. The default requires every
// upstream stage to have succeeded.
func (s Stage) shouldRun(results ResultSet) (bool, string) {
	if s.When != nil {
		if !s.When(results) {
			return false, "predicate not satisfied"
		}
		return true, ""
	}
	for _, need := range s.Needs {
		if results[need].State != contracts.StageSuccess {
			return false, fmt.Sprintf("upstream %s did not succeed", need)
		}
	}
	return true, ""
}
