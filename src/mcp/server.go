// Package mcp exposes pipeline state to MCP clients: run status, run
// history, and published artifact collections.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"duckci-agent/src/store"
)

// Server is the MCP server for duckci.
type Server struct {
	mcpServer   *server.MCPServer
	runs        store.RunStore
	artifactDir string
}

// NewServer creates a new MCP server backed by the given run store and the
// local artifact directory.
func NewServer(runs store.RunStore, artifactDir string) *Server {
	s := server.NewMCPServer(
		"duckci",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	srv := &Server{
		mcpServer:   s,
		runs:        runs,
		artifactDir: artifactDir,
	}
	srv.registerTools()

	return srv
}

// registerTools registers all available tools.
func (s *Server) registerTools() {
	statusTool := mcp.NewTool("get_run_status",
		mcp.WithDescription("Get the status of one pipeline run, including every stage result (success, failure or skipped) and the failure reasons."),
		mcp.WithString("run_id",
			mcp.Required(),
			mcp.Description("Pipeline run ID"),
		),
	)

	listTool := mcp.NewTool("list_runs",
		mcp.WithDescription("List recent pipeline runs, newest first."),
		mcp.WithNumber("limit",
			mcp.Description("Max runs to return (default: 20)"),
		),
	)

	artifactsTool := mcp.NewTool("list_artifacts",
		mcp.WithDescription("List the artifact collections published by one pipeline run and the binaries inside each collection."),
		mcp.WithString("run_id",
			mcp.Required(),
			mcp.Description("Pipeline run ID"),
		),
	)

	s.mcpServer.AddTool(statusTool, s.handleGetRunStatus)
	s.mcpServer.AddTool(listTool, s.handleListRuns)
	s.mcpServer.AddTool(artifactsTool, s.handleListArtifacts)
}

// Run starts the MCP server on stdio.
func (s *Server) Run() error {
	return server.ServeStdio(s.mcpServer)
}

// handleGetRunStatus handles the get_run_status tool call.
func (s *Server) handleGetRunStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	runID := request.GetString("run_id", "")
	if runID == "" {
		return mcp.NewToolResultError("run_id parameter is required"), nil
	}

	run, err := s.runs.GetRun(ctx, runID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("run not found: %s", runID)), nil
	}

	jsonBytes, err := json.Marshal(run)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal run: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonBytes)), nil
}

// handleListRuns handles the list_runs tool call.
func (s *Server) handleListRuns(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := request.GetInt("limit", 20)

	runs, err := s.runs.ListRuns(ctx, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list runs: %v", err)), nil
	}

	summaries := make([]runSummary, 0, len(runs))
	for _, run := range runs {
		summaries = append(summaries, summarizeRun(run))
	}

	jsonBytes, err := json.Marshal(summaries)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal runs: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonBytes)), nil
}

// handleListArtifacts handles the list_artifacts tool call. Collections are
// directories under <artifactDir>/<runID>/, one per profile.
func (s *Server) handleListArtifacts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	runID := request.GetString("run_id", "")
	if runID == "" {
		return mcp.NewToolResultError("run_id parameter is required"), nil
	}

	collections, err := listCollections(s.artifactDir, runID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list artifacts: %v", err)), nil
	}

	jsonBytes, err := json.Marshal(collections)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal artifacts: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonBytes)), nil
}

// collectionInfo describes one published artifact collection.
type collectionInfo struct {
	Name     string   `json:"name"`
	Binaries []string `json:"binaries"`
}

func listCollections(artifactDir, runID string) ([]collectionInfo, error) {
	runDir := filepath.Join(artifactDir, runID)
	entries, err := os.ReadDir(runDir)
	if os.IsNotExist(err) {
		return []collectionInfo{}, nil
	}
	if err != nil {
		return nil, err
	}

	var collections []collectionInfo
	for _, entry := range entries {
		// Leftover publisher staging dirs are dot-prefixed.
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		files, err := os.ReadDir(filepath.Join(runDir, entry.Name()))
		if err != nil {
			return nil, err
		}
		info := collectionInfo{Name: entry.Name(), Binaries: []string{}}
		for _, f := range files {
			if !f.IsDir() {
				info.Binaries = append(info.Binaries, f.Name())
			}
		}
		collections = append(collections, info)
	}
	return collections, nil
}
