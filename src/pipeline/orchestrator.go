package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"duckci-agent/src/artifact"
	"duckci-agent/src/broker"
	"duckci-agent/src/build"
	"duckci-agent/src/config"
	"duckci-agent/src/contracts"
	"duckci-agent/src/logger"
	"duckci-agent/src/store"
	"duckci-agent/src/testgate"
	"duckci-agent/src/toolchain"
)

// Trigger identifies the push that starts a run.
type Trigger struct {
	Ref     string
	HeadSHA string
}

// Orchestrator executes one pipeline run at a time. Separate runs share no
// mutable state other than the cache store, so multiple Orchestrators may
// execute concurrently.
type Orchestrator struct {
	cfg         *config.PipelineConfig
	provisioner *toolchain.Provisioner
	builder     *build.Builder
	gate        *testgate.Gate
	publisher   artifact.Publisher
	caches      *Caches
	runs        store.RunStore
	events      broker.Broker // optional; nil disables status updates
	logger      logger.Logger
}

// NewOrchestrator wires the pipeline components together. events may be nil
// when no status stream is available (one-shot CLI runs).
func NewOrchestrator(
	cfg *config.PipelineConfig,
	prov *toolchain.Provisioner,
	builder *build.Builder,
	gate *testgate.Gate,
	publisher artifact.Publisher,
	caches *Caches,
	runs store.RunStore,
	events broker.Broker,
	log logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		cfg:         cfg,
		provisioner: prov,
		builder:     builder,
		gate:        gate,
		publisher:   publisher,
		caches:      caches,
		runs:        runs,
		events:      events,
		logger:      log,
	}
}

// Execute runs the full stage graph for one trigger and returns the terminal
// run record. The returned error summarizes the failing stages; a non-nil
// error always corresponds to run status Failed or Aborted.
func (o *Orchestrator) Execute(ctx context.Context, trigger Trigger) (*contracts.PipelineRun, error) {
	run := &contracts.PipelineRun{
		ID:        uuid.NewString(),
		Ref:       trigger.Ref,
		HeadSHA:   trigger.HeadSHA,
		Status:    contracts.RunRunning,
		CreatedAt: time.Now(),
	}
	o.saveRun(ctx, run)

	// Cache restore is best-effort and happens before any stage: a miss or a
	// corrupted entry degrades to a full rebuild, never a failure.
	if o.caches != nil {
		o.caches.Restore(ctx, o.logger)
	}

	// Per-profile artifacts, filled in by build stages and consumed by the
	// publish stage of the same profile.
	var artifactsMu sync.Mutex
	artifacts := map[config.Profile][]artifact.Artifact{}

	stages := o.buildGraph(run, &artifactsMu, artifacts)
	results := ResultSet{}

	var runErr *multierror.Error
	for len(results) < len(stages) {
		batch := nextBatch(stages, results)
		if len(batch) == 0 {
			// A cycle would loop forever; the static graph below has none.
			return run, fmt.Errorf("pipeline graph stalled with %d stages pending", len(stages)-len(results))
		}

		if err := ctx.Err(); err != nil {
			run.Status = contracts.RunAborted
			run.UpdatedAt = time.Now()
			o.saveRun(context.WithoutCancel(ctx), run)
			return run, err
		}

		var mu sync.Mutex
		g := new(errgroup.Group)
		for _, stage := range batch {
			g.Go(func() error {
				result := o.runStage(ctx, stage, results)

				mu.Lock()
				results[stage.Name] = result
				run.Stages = append(run.Stages, result)
				mu.Unlock()

				o.publishStatus(ctx, run, result.Name, string(result.State))
				if result.State == contracts.StageFailure {
					return fmt.Errorf("stage %s: %s", result.Name, result.Reason)
				}
				return nil
			})
		}
		// Join barrier: the next phase starts only once every stage in this
		// batch has completed or failed.
		if err := g.Wait(); err != nil {
			runErr = multierror.Append(runErr, err)
		}

		run.UpdatedAt = time.Now()
		o.saveRun(ctx, run)
	}

	if runErr.ErrorOrNil() != nil {
		run.Status = contracts.RunFailed
	} else {
		run.Status = contracts.RunSucceeded
	}
	run.UpdatedAt = time.Now()
	o.saveRun(ctx, run)
	o.publishStatus(ctx, run, "", "")

	// Cache population runs after the outcome is decided and never blocks or
	// fails the run.
	if o.caches != nil && run.Status == contracts.RunSucceeded {
		o.caches.Save(ctx, o.logger)
	}

	return run, runErr.ErrorOrNil()
}

// buildGraph declares the stage graph for one run:
//
//	provision -> build-debug-* -> publish-debug -> test-gate
//	          -> build-release-* -> publish-release
func (o *Orchestrator) buildGraph(run *contracts.PipelineRun, mu *sync.Mutex, artifacts map[config.Profile][]artifact.Artifact) []Stage {
	stages := []Stage{
		{
			Name: "provision",
			Exec: func(ctx context.Context) error {
				return o.provisioner.Ensure(ctx)
			},
		},
	}

	debugNames := make([]string, 0, len(o.cfg.Targets))
	releaseNames := make([]string, 0, len(o.cfg.Targets))

	for _, target := range o.cfg.Targets {
		triple := target.Triple

		debugName := "build-debug-" + triple
		debugNames = append(debugNames, debugName)
		stages = append(stages, Stage{
			Name:  debugName,
			Needs: []string{"provision"},
			Exec: func(ctx context.Context) error {
				art, err := o.builder.Build(ctx, build.Request{Profile: config.ProfileDebug, Triple: triple})
				if err != nil {
					return err
				}
				mu.Lock()
				artifacts[config.ProfileDebug] = append(artifacts[config.ProfileDebug], art)
				mu.Unlock()
				return nil
			},
		})

		releaseName := "build-release-" + triple
		releaseNames = append(releaseNames, releaseName)
		stages = append(stages, Stage{
			Name:  releaseName,
			Needs: []string{"test-gate"},
			Exec: func(ctx context.Context) error {
				art, err := o.builder.Build(ctx, build.Request{Profile: config.ProfileRelease, Triple: triple})
				if err != nil {
					return err
				}
				mu.Lock()
				artifacts[config.ProfileRelease] = append(artifacts[config.ProfileRelease], art)
				mu.Unlock()
				return nil
			},
		})
	}

	stages = append(stages,
		Stage{
			Name:  "publish-debug",
			Needs: debugNames,
			Exec: func(ctx context.Context) error {
				mu.Lock()
				set := artifacts[config.ProfileDebug]
				mu.Unlock()
				return o.publisher.Publish(ctx, run.ID, o.cfg.CollectionName(config.ProfileDebug), set)
			},
		},
		Stage{
			Name:  "test-gate",
			Needs: []string{"publish-debug"},
			Exec: func(ctx context.Context) error {
				_, err := o.gate.Run(ctx)
				return err
			},
		},
		Stage{
			Name:  "publish-release",
			Needs: releaseNames,
			Exec: func(ctx context.Context) error {
				mu.Lock()
				set := artifacts[config.ProfileRelease]
				mu.Unlock()
				return o.publisher.Publish(ctx, run.ID, o.cfg.CollectionName(config.ProfileRelease), set)
			},
		},
	)

	// Debug-only pipelines drop the gate and everything behind it.
	if len(o.cfg.Profiles) == 1 && o.cfg.Profiles[0] == config.ProfileDebug {
		trimmed := stages[:0]
		for _, s := range stages {
			switch s.Name {
			case "test-gate", "publish-release":
				continue
			}
			if strings.HasPrefix(s.Name, "build-release-") {
				continue
			}
			trimmed = append(trimmed, s)
		}
		stages = trimmed
	}

	return stages
}

// nextBatch returns every stage that is ready but has no result yet. All
// stages in a batch are independent of each other and run concurrently.
func nextBatch(stages []Stage, results ResultSet) []Stage {
	var batch []Stage
	for _, s := range stages {
		if _, done := results[s.Name]; done {
			continue
		}
		if s.ready(results) {
			batch = append(batch, s)
		}
	}
	return batch
}

// runStage executes or skips one stage and returns its result record.
func (o *Orchestrator) runStage(ctx context.Context, stage Stage, results ResultSet) contracts.StageResult {
	result := contracts.StageResult{Name: stage.Name, StartedAt: time.Now()}

	if ok, reason := stage.shouldRun(results); !ok {
		result.State = contracts.StageSkipped
		result.Reason = reason
		result.FinishedAt = time.Now()
		o.logger.Info("[Orchestrator] %s skipped: %s", stage.Name, reason)
		return result
	}

	o.logger.Info("[Orchestrator] %s running", stage.Name)
	if err := stage.Exec(ctx); err != nil {
		result.State = contracts.StageFailure
		result.Reason = err.Error()
		o.logger.Error("[Orchestrator] %s failed: %v", stage.Name, err)
	} else {
		result.State = contracts.StageSuccess
		o.logger.Info("[Orchestrator] %s succeeded", stage.Name)
	}
	result.FinishedAt = time.Now()
	return result
}

func (o *Orchestrator) saveRun(ctx context.Context, run *contracts.PipelineRun) {
	if o.runs == nil {
		return
	}
	if err := o.runs.SaveRun(ctx, run); err != nil {
		o.logger.Error("[Orchestrator] failed to persist run %s: %v", run.ID, err)
	}
}

// publishStatus emits a RunStatusUpdate on the status topic. Best-effort.
func (o *Orchestrator) publishStatus(ctx context.Context, run *contracts.PipelineRun, stage string, state string) {
	if o.events == nil {
		return
	}

	update := contracts.RunStatusUpdate{
		RunID:      run.ID,
		Ref:        run.Ref,
		HeadSHA:    run.HeadSHA,
		Status:     string(run.Status),
		Stage:      stage,
		StageState: state,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}
	value, err := json.Marshal(update)
	if err != nil {
		return
	}
	if err := o.events.Publish(ctx, contracts.TopicRunStatus, run.ID, value); err != nil {
		o.logger.Error("[Orchestrator] failed to publish status for run %s: %v", run.ID, err)
	}
}
