package main

import (
	"context"
	"testing"

	"duckci-agent/src/shell"
)

func TestHeadSHA(t *testing.T) {
	runner := shell.NewStubRunner()
	runner.Respond("git rev-parse", shell.StubResponse{
		Result: shell.Result{Stdout: "abc123def456abc123def456abc123def456abcd\n"},
	})

	sha, err := headSHA(context.Background(), runner, "/repo")
	if err != nil {
		t.Fatalf("headSHA() error = %v", err)
	}
	if sha != "abc123def456abc123def456abc123def456abcd" {
		t.Errorf("sha = %q", sha)
	}

	calls := runner.Calls()
	if len(calls) != 1 || calls[0].Dir != "/repo" {
		t.Errorf("calls = %+v", calls)
	}
}

func TestHeadSHA_EmptyOutputIsAnError(t *testing.T) {
	runner := shell.NewStubRunner()
	runner.Respond("git rev-parse", shell.StubResponse{
		Result: shell.Result{Stdout: "\n"},
	})

	if _, err := headSHA(context.Background(), runner, "/repo"); err == nil {
		t.Error("expected error for empty rev-parse output")
	}
}

func TestShortSHA(t *testing.T) {
	if got := shortSHA("abc123def456"); got != "abc123de" {
		t.Errorf("shortSHA() = %q", got)
	}
	if got := shortSHA("abc"); got != "abc" {
		t.Errorf("shortSHA() = %q", got)
	}
}
