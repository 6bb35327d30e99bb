package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"duckci-agent/src/artifact"
	"duckci-agent/src/build"
	"duckci-agent/src/cache"
	"duckci-agent/src/config"
	"duckci-agent/src/contracts"
	"duckci-agent/src/logger"
	"duckci-agent/src/pipeline"
	"duckci-agent/src/shell"
	"duckci-agent/src/store"
	"duckci-agent/src/testgate"
	"duckci-agent/src/toolchain"
	"duckci-agent/src/tui"
)

// newRunCmd creates the one-shot local run command.
func newRunCmd() *cobra.Command {
	var workdir string
	var ref string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute one pipeline run against the current checkout",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLocal(workdir, ref)
		},
	}

	cmd.Flags().StringVarP(&workdir, "workdir", "w", ".", "repository checkout to build")
	cmd.Flags().StringVar(&ref, "ref", "refs/heads/main", "git ref recorded on the run")
	return cmd
}

// runLocal wires the pipeline against local backends and executes one run.
func runLocal(workdir, ref string) error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	pipelineCfg, err := config.LoadPipeline(filepath.Join(workdir, "duckci.yaml"))
	if err != nil {
		return fmt.Errorf("failed to load pipeline manifest: %w", err)
	}

	log := logger.NewConsoleLogger()

	cacheStore, err := cache.NewFileStore(cfg.CacheDir)
	if err != nil {
		return fmt.Errorf("failed to create cache store: %w", err)
	}
	defer cacheStore.Close()

	publisher, err := artifact.NewLocalPublisher(cfg.ArtifactDir)
	if err != nil {
		return fmt.Errorf("failed to create artifact publisher: %w", err)
	}

	runner := shell.NewExecRunner()
	prov := toolchain.NewProvisioner(runner, pipelineCfg, log)
	builder := build.NewBuilder(runner, pipelineCfg, prov, workdir, log)
	gate := testgate.NewGate(runner, pipelineCfg, prov, workdir, log)
	caches := pipeline.NewCaches(cacheStore, runner, pipelineCfg, workdir)
	runStore := openRunStore(cfg)
	defer runStore.Close()

	orch := pipeline.NewOrchestrator(pipelineCfg, prov, builder, gate, publisher, caches, runStore, nil, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Shutdown signal received, aborting run...")
		cancel()
	}()

	sha, err := headSHA(ctx, runner, workdir)
	if err != nil {
		return fmt.Errorf("failed to resolve HEAD: %w", err)
	}

	run, runErr := orch.Execute(ctx, pipeline.Trigger{Ref: ref, HeadSHA: sha})
	printRun(run)
	return runErr
}

// newStatusCmd creates the status command.
func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <run-id>",
		Short: "Show the stage results of one pipeline run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFromEnv()
			if err != nil {
				return err
			}
			runs := openRunStore(cfg)
			defer runs.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			run, err := runs.GetRun(ctx, args[0])
			if err != nil {
				return err
			}
			printRun(run)
			return nil
		},
	}
}

// newRunsCmd creates the dashboard command.
func newRunsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "runs",
		Short: "Open the live runs dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFromEnv()
			if err != nil {
				return err
			}
			runs := openRunStore(cfg)
			defer runs.Close()

			p := tea.NewProgram(tui.NewDashboard(runs), tea.WithAltScreen())
			_, err = p.Run()
			return err
		},
	}
}

// openRunStore picks Postgres when configured, in-memory otherwise.
func openRunStore(cfg *config.Config) store.RunStore {
	if cfg.PostgresDSN != "" {
		s, err := store.NewPostgresStore(cfg.PostgresDSN)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to connect to Postgres, falling back to in-memory store: %v\n", err)
			return store.NewInMemoryStore()
		}
		return s
	}
	return store.NewInMemoryStore()
}

// headSHA resolves the current commit of the checkout.
func headSHA(ctx context.Context, runner shell.Runner, workdir string) (string, error) {
	result, err := runner.Run(ctx, shell.Command{
		Dir:  workdir,
		Name: "git",
		Args: []string{"rev-parse", "HEAD"},
	})
	if err != nil {
		return "", err
	}
	sha := strings.TrimSpace(result.Stdout)
	if sha == "" {
		return "", fmt.Errorf("git rev-parse produced no output")
	}
	return sha, nil
}

// printRun renders a run summary to stdout.
func printRun(run *contracts.PipelineRun) {
	fmt.Printf("Run %s (%s @ %s): %s\n", run.ID, run.Ref, shortSHA(run.HeadSHA), run.Status)
	for _, stage := range run.Stages {
		line := fmt.Sprintf("  %-45s %s", stage.Name, stage.State)
		if stage.Reason != "" {
			line += "  (" + stage.Reason + ")"
		}
		fmt.Println(line)
	}
}

func shortSHA(sha string) string {
	if len(sha) > 8 {
		return sha[:8]
	}
	return sha
}
