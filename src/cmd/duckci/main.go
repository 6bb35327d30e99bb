// Package main provides the main entry point for the duckci CLI.
// This orchestrates all subcommands: one-shot pipeline runs, run status
// inspection, and the live runs dashboard.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "duckci",
	Short: "duckci - CI pipelines for cross-compiled Rust binaries",
	Long: `duckci builds, tests and publishes static musl binaries for every
configured target triple, with manifest-keyed build caches and a test gate
in front of release artifacts.

This binary runs one-shot pipelines against the current checkout and
inspects their results. Event-driven processing against Redpanda + Postgres
lives in the pipeline-agent and review-agent binaries.`,
}

func main() {
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newRunsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
