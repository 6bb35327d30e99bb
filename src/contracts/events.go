// Package contracts defines the typed event stream shared by the pipeline
// agent and the review-bot dispatcher. The two consumers are decoupled: a
// failing pipeline run never blocks a review dispatch and vice versa.
package contracts

// PushEvent is emitted when commits are pushed to any branch.
// Published to: duckci.events.push
// Key: {ref}
type PushEvent struct {
	// Git ref that received the push (e.g. "refs/heads/main").
	Ref string `json:"ref"`
	// Head commit SHA after the push.
	HeadSHA string `json:"head_sha"`
	// Repository in "owner/name" form.
	Repository string `json:"repository"`
	// Time when the hosting platform recorded the push.
	Timestamp string `json:"timestamp"`
}

// PullRequestEvent is emitted when a pull request is opened or its head is
// synchronized (new commits pushed).
// Published to: duckci.events.pull_request
// Key: {repository}#{number}
type PullRequestEvent struct {
	// "opened" or "synchronize".
	Action     string `json:"action"`
	Repository string `json:"repository"`
	Number     int    `json:"number"`
	Title      string `json:"title"`
	HeadSHA    string `json:"head_sha"`
	BaseRef    string `json:"base_ref"`
	Timestamp  string `json:"timestamp"`
}

// ReviewCommentEvent is emitted when a reviewer posts a comment on a pull
// request.
// Published to: duckci.events.review_comment
// Key: {repository}#{number}
type ReviewCommentEvent struct {
	Repository string `json:"repository"`
	Number     int    `json:"number"`
	// Login of the comment author.
	Author string `json:"author"`
	// Comment body as posted.
	Body string `json:"body"`
	// File path the comment is anchored to, if any.
	Path string `json:"path,omitempty"`
	// Diff hunk the comment is anchored to, if any.
	DiffHunk  string `json:"diff_hunk,omitempty"`
	Timestamp string `json:"timestamp"`
}

// RunStatusUpdate reports pipeline run progress for dashboards and tooling.
// Published to: duckci.runs.status
// Key: {run_id}
type RunStatusUpdate struct {
	RunID      string `json:"run_id"`
	Ref        string `json:"ref"`
	HeadSHA    string `json:"head_sha"`
	Status     string `json:"status"`
	Stage      string `json:"stage,omitempty"`
	StageState string `json:"stage_state,omitempty"`
	Reason     string `json:"reason,omitempty"`
	Timestamp  string `json:"timestamp"`
}

// Topic names for the duckci event stream.
const (
	// TopicPush carries push events consumed by the pipeline agent.
	TopicPush = "duckci.events.push"

	// TopicPullRequest carries opened/synchronize events consumed by the
	// review-bot dispatcher.
	TopicPullRequest = "duckci.events.pull_request"

	// TopicReviewComment carries review-comment events consumed by the
	// review-bot dispatcher.
	TopicReviewComment = "duckci.events.review_comment"

	// TopicRunStatus carries run progress updates published by the
	// orchestrator.
	TopicRunStatus = "duckci.runs.status"
)
