// Package github is a minimal GitHub REST client covering the calls the
// review bot and the pipeline need: changed files, unified diffs, review
// comments, and commit statuses.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"
)

var (
	ErrInvalidRepository = errors.New("invalid repository")
)

var repositoryPattern = regexp.MustCompile(`^[^/\s]+/[^/\s]+$`)

// Client is a GitHub API client.
type Client struct {
	token      string
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a new GitHub client authenticated with token.
func NewClient(token string) *Client {
	return &Client{
		token: token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: "https://api.github.com",
	}
}

// NewClientWithBaseURL creates a client against a non-default API endpoint
// (GitHub Enterprise, test servers).
func NewClientWithBaseURL(token, baseURL string) *Client {
	c := NewClient(token)
	c.baseURL = baseURL
	return c
}

func validateRepo(repo string) error {
	if !repositoryPattern.MatchString(repo) {
		return fmt.Errorf("%w: %q", ErrInvalidRepository, repo)
	}
	return nil
}

// ListPullRequestFiles fetches the changed files of a pull request (handles
// pagination). repo is "owner/name".
func (c *Client) ListPullRequestFiles(ctx context.Context, repo string, number int) ([]PullRequestFile, error) {
	if err := validateRepo(repo); err != nil {
		return nil, err
	}

	var allFiles []PullRequestFile
	page := 1
	perPage := 100 // GitHub's max per page

	for {
		url := fmt.Sprintf("%s/repos/%s/pulls/%d/files?per_page=%d&page=%d",
			c.baseURL, repo, number, perPage, page)

		req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
		if err != nil {
			return nil, err
		}

		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Accept", "application/vnd.github+json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return nil, fmt.Errorf("GitHub API error %d: %s", resp.StatusCode, string(body))
		}

		var files []PullRequestFile
		if err := json.NewDecoder(resp.Body).Decode(&files); err != nil {
			resp.Body.Close()
			return nil, err
		}
		resp.Body.Close()

		allFiles = append(allFiles, files...)

		if len(files) < perPage {
			break
		}
		page++
	}

	return allFiles, nil
}

// GetPullRequestDiff fetches the unified diff of a pull request.
func (c *Client) GetPullRequestDiff(ctx context.Context, repo string, number int) (string, error) {
	if err := validateRepo(repo); err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/repos/%s/pulls/%d", c.baseURL, repo, number)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return "", err
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/vnd.github.diff")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("GitHub API error %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	return string(body), nil
}

// PostReviewComment posts a comment on a pull request.
func (c *Client) PostReviewComment(ctx context.Context, repo string, number int, body string) error {
	if err := validateRepo(repo); err != nil {
		return err
	}

	url := fmt.Sprintf("%s/repos/%s/issues/%d/comments", c.baseURL, repo, number)

	payload, err := json.Marshal(reviewComment{Body: body})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(payload))
	if err != nil {
		return err
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("GitHub API error %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}

// SetCommitStatus reports a status against a commit SHA.
func (c *Client) SetCommitStatus(ctx context.Context, repo, sha string, status CommitStatus) error {
	if err := validateRepo(repo); err != nil {
		return err
	}

	url := fmt.Sprintf("%s/repos/%s/statuses/%s", c.baseURL, repo, sha)

	payload, err := json.Marshal(status)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(payload))
	if err != nil {
		return err
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("GitHub API error %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}
