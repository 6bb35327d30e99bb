// Package dispatcher turns repository events into AI review requests. It has
// exactly two entry states: a pull request changed (opened or synchronized)
// and a reviewer comment arrived. Each event produces at most one review
// invocation; a failed invocation is terminal for that event.
package dispatcher

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"duckci-agent/src/broker"
	"duckci-agent/src/config"
	"duckci-agent/src/contracts"
	"duckci-agent/src/github"
	"duckci-agent/src/logger"
	"duckci-agent/src/reviewer"
)

// DispatchError wraps a failed review invocation. It is terminal for the
// event that caused it: the dispatcher logs it and moves on, never retries.
type DispatchError struct {
	Repository string
	Number     int
	Err        error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("review dispatch for %s#%d failed: %v", e.Repository, e.Number, e.Err)
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

// HostingClient is the subset of the GitHub API the dispatcher needs.
type HostingClient interface {
	ListPullRequestFiles(ctx context.Context, repo string, number int) ([]github.PullRequestFile, error)
	GetPullRequestDiff(ctx context.Context, repo string, number int) (string, error)
	PostReviewComment(ctx context.Context, repo string, number int, body string) error
}

// ReviewBackend produces a review for one request.
type ReviewBackend interface {
	Review(ctx context.Context, req reviewer.Request) (*reviewer.Review, error)
}

// Dispatcher consumes pull request and review comment events and invokes the
// review backend once per event.
type Dispatcher struct {
	broker  broker.Broker
	hosting HostingClient
	backend ReviewBackend
	cfg     config.ReviewBotConfig
	logger  logger.Logger
}

// NewDispatcher creates a new review-bot dispatcher.
func NewDispatcher(brk broker.Broker, hosting HostingClient, backend ReviewBackend, cfg config.ReviewBotConfig, log logger.Logger) *Dispatcher {
	return &Dispatcher{broker: brk, hosting: hosting, backend: backend, cfg: cfg, logger: log}
}

// Run starts the dispatcher's main loop. It subscribes to both event topics
// and processes events until the context is cancelled or both channels close.
func (d *Dispatcher) Run(ctx context.Context) error {
	prChan, err := d.broker.Subscribe(ctx, contracts.TopicPullRequest, "duckci-reviewbot")
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", contracts.TopicPullRequest, err)
	}
	commentChan, err := d.broker.Subscribe(ctx, contracts.TopicReviewComment, "duckci-reviewbot")
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", contracts.TopicReviewComment, err)
	}

	d.logger.Info("[ReviewBot] Listening on '%s' and '%s'...", contracts.TopicPullRequest, contracts.TopicReviewComment)

	for {
		select {
		case msg, ok := <-prChan:
			if !ok {
				prChan = nil
				break
			}
			if err := d.processPullRequest(ctx, msg); err != nil {
				d.logger.Error("[ReviewBot] %v", err)
			}

		case msg, ok := <-commentChan:
			if !ok {
				commentChan = nil
				break
			}
			if err := d.processComment(ctx, msg); err != nil {
				d.logger.Error("[ReviewBot] %v", err)
			}

		case <-ctx.Done():
			d.logger.Info("[ReviewBot] Context cancelled, shutting down")
			return ctx.Err()
		}

		if prChan == nil && commentChan == nil {
			d.logger.Info("[ReviewBot] Message channels closed, shutting down")
			return nil
		}
	}
}

// processPullRequest handles one opened/synchronize event: fetch the diff,
// drop excluded files, and request a review of what remains.
func (d *Dispatcher) processPullRequest(ctx context.Context, msg broker.Message) error {
	var event contracts.PullRequestEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal pull request event: %w", err)
	}
	if event.Action != "opened" && event.Action != "synchronize" {
		d.logger.Info("[ReviewBot] Ignoring pull request action %q", event.Action)
		return nil
	}

	d.logger.Info("[ReviewBot] %s of %s#%d", event.Action, event.Repository, event.Number)

	files, err := d.hosting.ListPullRequestFiles(ctx, event.Repository, event.Number)
	if err != nil {
		return &DispatchError{Repository: event.Repository, Number: event.Number, Err: err}
	}

	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Filename)
	}
	kept := filterFiles(d.cfg.Exclude, names)
	if len(kept) == 0 {
		d.logger.Info("[ReviewBot] %s#%d: all %d changed files excluded, nothing to review",
			event.Repository, event.Number, len(files))
		return nil
	}

	diff, err := d.hosting.GetPullRequestDiff(ctx, event.Repository, event.Number)
	if err != nil {
		return &DispatchError{Repository: event.Repository, Number: event.Number, Err: err}
	}

	req := reviewer.Request{
		Model:      d.cfg.Model,
		Repository: event.Repository,
		Number:     event.Number,
		Title:      event.Title,
		Diff:       sanitize(trimDiff(diff, kept)),
	}
	return d.dispatch(ctx, event.Repository, event.Number, req)
}

// processComment handles one reviewer comment event.
func (d *Dispatcher) processComment(ctx context.Context, msg broker.Message) error {
	var event contracts.ReviewCommentEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal review comment event: %w", err)
	}

	if event.Path != "" && excluded(d.cfg.Exclude, event.Path) {
		d.logger.Info("[ReviewBot] %s#%d: comment on excluded path %s, skipping",
			event.Repository, event.Number, event.Path)
		return nil
	}

	d.logger.Info("[ReviewBot] comment by %s on %s#%d", event.Author, event.Repository, event.Number)

	req := reviewer.Request{
		Model:      d.cfg.Model,
		Repository: event.Repository,
		Number:     event.Number,
		Comment:    sanitize(event.Body),
		DiffHunk:   sanitize(event.DiffHunk),
	}
	return d.dispatch(ctx, event.Repository, event.Number, req)
}

// dispatch performs the single review invocation for one event and posts the
// result back. Any failure is wrapped in a terminal DispatchError.
func (d *Dispatcher) dispatch(ctx context.Context, repo string, number int, req reviewer.Request) error {
	review, err := d.backend.Review(ctx, req)
	if err != nil {
		return &DispatchError{Repository: repo, Number: number, Err: err}
	}

	if err := d.hosting.PostReviewComment(ctx, repo, number, review.Body); err != nil {
		return &DispatchError{Repository: repo, Number: number, Err: err}
	}

	d.logger.Info("[ReviewBot] Posted review on %s#%d", repo, number)
	return nil
}

// trimDiff keeps only the sections of a unified diff that belong to the
// surviving files.
func trimDiff(diff string, kept []string) string {
	keep := make(map[string]bool, len(kept))
	for _, f := range kept {
		keep[f] = true
	}

	var out strings.Builder
	include := false
	for _, line := range strings.SplitAfter(diff, "\n") {
		if strings.HasPrefix(line, "diff --git ") {
			include = false
			// "diff --git a/path b/path" — match on the b/ side.
			fields := strings.Fields(strings.TrimSpace(line))
			if len(fields) == 4 {
				include = keep[strings.TrimPrefix(fields[3], "b/")]
			}
		}
		if include {
			out.WriteString(line)
		}
	}
	return out.String()
}
