package github

// PullRequestFile is one changed file in a pull request.
type PullRequestFile struct {
	Filename  string `json:"filename"`
	Status    string `json:"status"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
	Patch     string `json:"patch,omitempty"`
}

// CommitStatus reports a pipeline outcome against a commit.
type CommitStatus struct {
	// "pending", "success", "failure" or "error".
	State       string `json:"state"`
	Context     string `json:"context"`
	Description string `json:"description,omitempty"`
	TargetURL   string `json:"target_url,omitempty"`
}

// reviewComment is the request body for posting a comment on a pull request.
type reviewComment struct {
	Body string `json:"body"`
}
