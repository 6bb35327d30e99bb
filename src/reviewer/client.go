// Package reviewer calls the AI backend that produces code reviews. The
// dispatcher assembles the request; this package only handles transport.
package reviewer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var (
	ErrMissingAPIKey = errors.New("reviewer API key not configured")
	ErrEmptyContext  = errors.New("review request has no diff or comment context")
)

// Request is one review invocation. Exactly one event produces exactly one
// Request; retries are the caller's decision, never this client's.
type Request struct {
	// Model identifier understood by the backend.
	Model string `json:"model"`
	// Repository in "owner/name" form.
	Repository string `json:"repository"`
	// Pull request number the review refers to.
	Number int `json:"number"`
	// Pull request title.
	Title string `json:"title"`
	// Unified diff of the changes under review, already sanitized.
	Diff string `json:"diff,omitempty"`
	// Reviewer comment that triggered the request, if any.
	Comment string `json:"comment,omitempty"`
	// Diff hunk the comment is anchored to, if any.
	DiffHunk string `json:"diff_hunk,omitempty"`
}

// Review is the backend's answer.
type Review struct {
	// Body is the review text to post back to the pull request.
	Body string `json:"body"`
	// Model that produced the review (echoed by the backend).
	Model string `json:"model"`
	// Usage metadata, informational only.
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Client talks to the review backend over HTTP.
type Client struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

// NewClient creates a client for the backend at endpoint.
func NewClient(apiKey, endpoint string) *Client {
	return &Client{
		apiKey:   apiKey,
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// Review sends one request and returns the backend's review. A failed call
// returns an error without retrying; the caller decides what a failure means.
func (c *Client) Review(ctx context.Context, req Request) (*Review, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if req.Diff == "" && req.Comment == "" {
		return nil, ErrEmptyContext
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}

	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("review backend error %d: %s", resp.StatusCode, string(body))
	}

	var review Review
	if err := json.NewDecoder(resp.Body).Decode(&review); err != nil {
		return nil, err
	}
	if review.Body == "" {
		return nil, errors.New("review backend returned an empty review")
	}

	return &review, nil
}
