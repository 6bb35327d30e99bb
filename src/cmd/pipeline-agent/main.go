// Package main provides the standalone pipeline agent binary. It consumes
// push events from Redpanda and executes one pipeline run per event.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"duckci-agent/src/artifact"
	"duckci-agent/src/broker"
	"duckci-agent/src/build"
	"duckci-agent/src/cache"
	"duckci-agent/src/config"
	"duckci-agent/src/github"
	"duckci-agent/src/logger"
	"duckci-agent/src/pipeline"
	"duckci-agent/src/shell"
	"duckci-agent/src/store"
	"duckci-agent/src/testgate"
	"duckci-agent/src/toolchain"
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
		fmt.Fprintln(os.Stderr, "ERROR: REDPANDA_BROKERS environment variable is required for the pipeline agent")
		fmt.Fprintln(os.Stderr, "Example: export REDPANDA_BROKERS=localhost:19092")
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
	log := logger.NewStructuredLogger("pipeline-agent")

	log.Info("Starting duckci Pipeline Agent")
	log.Info("Redpanda brokers: %v", cfg.RedpandaBrokers)
	log.Info("Working directory: %s", workdir)

	// Create Redpanda broker
	brk, err := broker.NewRedpandaBroker(cfg.RedpandaBrokers)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create broker: %v\n", err)
		os.Exit(1)
	}
	defer brk.Close()

	// Cache and run stores: Postgres when a DSN is configured, filesystem /
	// in-memory otherwise.
	var cacheStore cache.Store
	var runStore store.RunStore
	if cfg.PostgresDSN != "" {
		cacheStore, err = cache.NewPostgresStore(cfg.PostgresDSN)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create cache store: %v\n", err)
			os.Exit(1)
		}
		runStore, err = store.NewPostgresStore(cfg.PostgresDSN)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create run store: %v\n", err)
			os.Exit(1)
		}
	} else {
		cacheStore, err = cache.NewFileStore(cfg.CacheDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create cache store: %v\n", err)
			os.Exit(1)
		}
		runStore = store.NewInMemoryStore()
	}
	defer cacheStore.Close()
	defer runStore.Close()

	publisher, err := artifact.NewLocalPublisher(cfg.ArtifactDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create artifact publisher: %v\n", err)
		os.Exit(1)
	}

	runner := shell.NewExecRunner()
	prov := toolchain.NewProvisioner(runner, pipelineCfg, log)
	builder := build.NewBuilder(runner, pipelineCfg, prov, workdir, log)
	gate := testgate.NewGate(runner, pipelineCfg, prov, workdir, log)
	caches := pipeline.NewCaches(cacheStore, runner, pipelineCfg, workdir)

	orch := pipeline.NewOrchestrator(pipelineCfg, prov, builder, gate, publisher, caches, runStore, brk, log)

	// Commit statuses are reported when a platform token is configured.
	var statuses pipeline.CommitStatusReporter
	if cfg.GitHubToken != "" {
		statuses = github.NewClient(cfg.GitHubToken)
	} else {
		log.Info("GITHUB_TOKEN not set, commit status reporting disabled")
	}

	agent := pipeline.NewAgent(brk, orch, statuses, log)

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

	// Run agent
	log.Info("Pipeline agent started, waiting for push events...")
	if err := agent.Run(ctx); err != nil && err != context.Canceled {
		fmt.Fprintf(os.Stderr, "Agent error: %v\n", err)
		os.Exit(1)
	}

	log.Info("Pipeline agent stopped")
}
