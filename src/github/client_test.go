package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestClient_NewClient(t *testing.T) {
	client := NewClient("fake-token")
	if client == nil {
		t.Fatal("NewClient() returned nil")
	}
}

func TestClient_ValidateRepository(t *testing.T) {
	tests := []struct {
		name    string
		repo    string
		wantErr bool
	}{
		{name: "valid", repo: "duck/ducksync", wantErr: false},
		{name: "missing owner", repo: "ducksync", wantErr: true},
		{name: "extra segment", repo: "a/b/c", wantErr: true},
		{name: "empty", repo: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateRepo(tt.repo)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateRepo(%q) error = %v, wantErr %v", tt.repo, err, tt.wantErr)
			}
		})
	}
}

func TestClient_ListPullRequestFiles_Paginated(t *testing.T) {
	// First page full (100 entries), second page short.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/duck/ducksync/pulls/7/files" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer fake-token" {
			t.Errorf("Authorization = %q", got)
		}

		page := r.URL.Query().Get("page")
		var files []PullRequestFile
		switch page {
		case "1":
			for i := 0; i < 100; i++ {
				files = append(files, PullRequestFile{Filename: fmt.Sprintf("src/file%d.rs", i), Status: "modified"})
			}
		case "2":
			files = []PullRequestFile{{Filename: "Cargo.toml", Status: "modified"}}
		default:
			t.Errorf("unexpected page %q", page)
		}
		json.NewEncoder(w).Encode(files)
	}))
	defer server.Close()

	client := NewClientWithBaseURL("fake-token", server.URL)
	files, err := client.ListPullRequestFiles(context.Background(), "duck/ducksync", 7)
	if err != nil {
		t.Fatalf("ListPullRequestFiles() error = %v", err)
	}
	if len(files) != 101 {
		t.Errorf("got %d files, want 101", len(files))
	}
	if files[100].Filename != "Cargo.toml" {
		t.Errorf("last file = %s", files[100].Filename)
	}
}

func TestClient_GetPullRequestDiff(t *testing.T) {
	const diff = "diff --git a/src/main.rs b/src/main.rs\n+fn main() {}\n"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/duck/ducksync/pulls/7" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Accept"); got != "application/vnd.github.diff" {
			t.Errorf("Accept = %q", got)
		}
		io.WriteString(w, diff)
	}))
	defer server.Close()

	client := NewClientWithBaseURL("fake-token", server.URL)
	got, err := client.GetPullRequestDiff(context.Background(), "duck/ducksync", 7)
	if err != nil {
		t.Fatalf("GetPullRequestDiff() error = %v", err)
	}
	if got != diff {
		t.Errorf("diff = %q", got)
	}
}

func TestClient_PostReviewComment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("method = %s", r.Method)
		}
		if r.URL.Path != "/repos/duck/ducksync/issues/7/comments" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var body reviewComment
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("bad body: %v", err)
		}
		if !strings.Contains(body.Body, "looks good") {
			t.Errorf("comment body = %q", body.Body)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := NewClientWithBaseURL("fake-token", server.URL)
	if err := client.PostReviewComment(context.Background(), "duck/ducksync", 7, "looks good to me"); err != nil {
		t.Fatalf("PostReviewComment() error = %v", err)
	}
}

func TestClient_SetCommitStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/duck/ducksync/statuses/abc123" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var status CommitStatus
		if err := json.NewDecoder(r.Body).Decode(&status); err != nil {
			t.Errorf("bad body: %v", err)
		}
		if status.State != "success" || status.Context != "duckci" {
			t.Errorf("status = %+v", status)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := NewClientWithBaseURL("fake-token", server.URL)
	err := client.SetCommitStatus(context.Background(), "duck/ducksync", "abc123", CommitStatus{
		State:   "success",
		Context: "duckci",
	})
	if err != nil {
		t.Fatalf("SetCommitStatus() error = %v", err)
	}
}

func TestClient_APIErrorSurfacesStatusCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"message":"Bad credentials"}`)
	}))
	defer server.Close()

	client := NewClientWithBaseURL("bad-token", server.URL)
	_, err := client.ListPullRequestFiles(context.Background(), "duck/ducksync", 7)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("error = %v, want status code in message", err)
	}
}
