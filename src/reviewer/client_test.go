package reviewer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestClient_Review_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret-key" {
			t.Errorf("Authorization = %q", got)
		}
		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		if req.Model != "claude-sonnet-4" || req.Repository != "duck/ducksync" {
			t.Errorf("request = %+v", req)
		}
		json.NewEncoder(w).Encode(Review{
			Body:  "Consider checking the error from resolve() before retrying.",
			Model: req.Model,
		})
	}))
	defer server.Close()

	client := NewClient("secret-key", server.URL)
	review, err := client.Review(context.Background(), Request{
		Model:      "claude-sonnet-4",
		Repository: "duck/ducksync",
		Number:     7,
		Title:      "Retry DNS updates with backoff",
		Diff:       "diff --git a/src/main.rs b/src/main.rs\n+retry();\n",
	})
	if err != nil {
		t.Fatalf("Review() error = %v", err)
	}
	if !strings.Contains(review.Body, "resolve()") {
		t.Errorf("review body = %q", review.Body)
	}
}

func TestClient_Review_RequiresContext(t *testing.T) {
	client := NewClient("secret-key", "http://unused")
	_, err := client.Review(context.Background(), Request{Model: "claude-sonnet-4", Repository: "duck/ducksync"})
	if !errors.Is(err, ErrEmptyContext) {
		t.Errorf("error = %v, want ErrEmptyContext", err)
	}
}

func TestClient_Review_RequiresAPIKey(t *testing.T) {
	client := NewClient("", "http://unused")
	_, err := client.Review(context.Background(), Request{Diff: "x"})
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("error = %v, want ErrMissingAPIKey", err)
	}
}

func TestClient_Review_BackendErrorIsNotRetried(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient("secret-key", server.URL)
	_, err := client.Review(context.Background(), Request{Diff: "x"})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("backend called %d times, want exactly 1", calls)
	}
}
