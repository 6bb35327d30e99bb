// Package main provides the MCP server entry point for duckci. The server
// exposes pipeline runs and published artifacts over the Model Context
// Protocol so assistants can inspect CI state.
package main

import (
	"fmt"
	"log"
	"os"

	"duckci-agent/src/config"
	"duckci-agent/src/mcp"
	"duckci-agent/src/store"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	var runs store.RunStore
	if cfg.PostgresDSN != "" {
		runs, err = store.NewPostgresStore(cfg.PostgresDSN)
		if err != nil {
			log.Fatalf("Failed to create run store: %v", err)
		}
	} else {
		runs = store.NewInMemoryStore()
	}
	defer runs.Close()

	// Run server over stdin/stdout (stdio transport)
	server := mcp.NewServer(runs, cfg.ArtifactDir)
	if err := server.Run(); err != nil {
		log.Fatalf("MCP server error: %v", err)
	}
}
