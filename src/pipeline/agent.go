package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"duckci-agent/src/broker"
	"duckci-agent/src/contracts"
	"duckci-agent/src/github"
	"duckci-agent/src/logger"
)

// CommitStatusReporter posts run outcomes against the head commit on the
// hosting platform. Nil disables reporting (local mode without a token).
type CommitStatusReporter interface {
	SetCommitStatus(ctx context.Context, repo, sha string, status github.CommitStatus) error
}

// Agent consumes push events and executes one pipeline run per event.
// Failures never cross run boundaries: a failed run is logged and the agent
// keeps consuming.
type Agent struct {
	broker       broker.Broker
	orchestrator *Orchestrator
	statuses     CommitStatusReporter
	logger       logger.Logger
}

// NewAgent creates a new pipeline agent. statuses may be nil when no hosting
// platform credential is configured.
func NewAgent(brk broker.Broker, orch *Orchestrator, statuses CommitStatusReporter, log logger.Logger) *Agent {
	return &Agent{broker: brk, orchestrator: orch, statuses: statuses, logger: log}
}

// Run starts the agent's main loop. It subscribes to the push topic and
// executes a run for every incoming event.
func (a *Agent) Run(ctx context.Context) error {
	msgChan, err := a.broker.Subscribe(ctx, contracts.TopicPush, "duckci-pipeline")
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", contracts.TopicPush, err)
	}

	a.logger.Info("[PipelineAgent] Listening for push events on '%s'...", contracts.TopicPush)

	for {
		select {
		case msg, ok := <-msgChan:
			if !ok {
				a.logger.Info("[PipelineAgent] Message channel closed, shutting down")
				return nil
			}
			if err := a.processPush(ctx, msg); err != nil {
				a.logger.Error("[PipelineAgent] Run failed: %v", err)
			}

		case <-ctx.Done():
			a.logger.Info("[PipelineAgent] Context cancelled, shutting down")
			return ctx.Err()
		}
	}
}

// processPush handles one push event.
func (a *Agent) processPush(ctx context.Context, msg broker.Message) error {
	var event contracts.PushEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal push event: %w", err)
	}

	a.logger.Info("[PipelineAgent] Push on %s (%s)", event.Ref, shortSHA(event.HeadSHA))

	a.reportStatus(ctx, event, "pending", "pipeline run started")

	run, runErr := a.orchestrator.Execute(ctx, Trigger{Ref: event.Ref, HeadSHA: event.HeadSHA})

	// The terminal status must land even when the run was aborted by a
	// cancelled context.
	a.reportStatus(context.WithoutCancel(ctx), event, stateForRun(run.Status),
		fmt.Sprintf("run %s %s", run.ID, run.Status))

	if runErr != nil {
		return fmt.Errorf("run %s: %w", run.ID, runErr)
	}

	a.logger.Info("[PipelineAgent] Run %s finished: %s", run.ID, run.Status)
	return nil
}

// reportStatus posts a commit status for the pushed head. Best-effort: a
// rejected status never affects the run.
func (a *Agent) reportStatus(ctx context.Context, event contracts.PushEvent, state, description string) {
	if a.statuses == nil || event.Repository == "" {
		return
	}
	status := github.CommitStatus{
		State:       state,
		Context:     "duckci",
		Description: description,
	}
	if err := a.statuses.SetCommitStatus(ctx, event.Repository, event.HeadSHA, status); err != nil {
		a.logger.Error("[PipelineAgent] failed to report commit status for %s: %v", shortSHA(event.HeadSHA), err)
	}
}

// stateForRun maps a run status onto the platform's commit status states.
func stateForRun(status contracts.RunStatus) string {
	switch status {
	case contracts.RunSucceeded:
		return "success"
	case contracts.RunFailed:
		return "failure"
	case contracts.RunAborted:
		return "error"
	default:
		return "pending"
	}
}

func shortSHA(sha string) string {
	if len(sha) > 8 {
		return sha[:8]
	}
	return sha
}
