// Package main provides the standalone review-bot agent binary. It consumes
// pull request and review comment events and dispatches AI review requests.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"duckci-agent/src/broker"
	"duckci-agent/src/config"
	"duckci-agent/src/dispatcher"
	"duckci-agent/src/github"
	"duckci-agent/src/logger"
	"duckci-agent/src/reviewer"
)

func main() {
	// Load configuration
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	// Verify we're in distributed mode
	if len(cfg.RedpandaBrokers) == 0 {
		fmt.Fprintln(os.Stderr, "ERROR: REDPANDA_BROKERS environment variable is required for the review agent")
		fmt.Fprintln(os.Stderr, "Example: export REDPANDA_BROKERS=localhost:19092")
		os.Exit(1)
	}
	if cfg.GitHubToken == "" {
		fmt.Fprintln(os.Stderr, "ERROR: GITHUB_TOKEN environment variable is required for the review agent")
		os.Exit(1)
	}
	if cfg.ReviewerAPIKey == "" {
		fmt.Fprintln(os.Stderr, "ERROR: REVIEWER_API_KEY environment variable is required for the review agent")
		os.Exit(1)
	}

	workdir := os.Getenv("DUCKCI_WORKDIR")
	if workdir == "" {
		workdir = "."
	}

	pipelineCfg, err := config.LoadPipeline(filepath.Join(workdir, "duckci.yaml"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load pipeline manifest: %v\n", err)
		os.Exit(1)
	}

	// Long-running agent: structured JSON logs for scraping.
	log := logger.NewStructuredLogger("review-agent")

	log.Info("Starting duckci Review Agent")
	log.Info("Redpanda brokers: %v", cfg.RedpandaBrokers)
	log.Info("Review model: %s", pipelineCfg.ReviewBot.Model)

	// Create Redpanda broker
	brk, err := broker.NewRedpandaBroker(cfg.RedpandaBrokers)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create broker: %v\n", err)
		os.Exit(1)
	}
	defer brk.Close()

	hosting := github.NewClient(cfg.GitHubToken)
	backend := reviewer.NewClient(cfg.ReviewerAPIKey, pipelineCfg.ReviewBot.Endpoint)

	d := dispatcher.NewDispatcher(brk, hosting, backend, pipelineCfg.ReviewBot, log)

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info("Shutdown signal received, stopping agent...")
		cancel()
	}()

	// Run dispatcher
	log.Info("Review agent started, waiting for events...")
	if err := d.Run(ctx); err != nil && err != context.Canceled {
		fmt.Fprintf(os.Stderr, "Agent error: %v\n", err)
		os.Exit(1)
	}

	log.Info("Review agent stopped")
}
