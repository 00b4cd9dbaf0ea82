// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/devinsight/devinsight/core"
	"github.com/devinsight/devinsight/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the devinsight MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, deps *core.Deps) *server.MCPServer {
	s := server.NewMCPServer(
		"DevInsight Analysis Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		deps:    deps,
	}

	// --- 1. Tool: get_churn_metrics ---
	s.AddTool(mcp.NewTool("get_churn_metrics",
		mcp.WithDescription("Count commits, distinct authors and line changes per file across the whole git history."),
		mcp.WithString("repo_path", mcp.Description("Path to the Git repository (defaults to the configured repository).")),
		mcp.WithNumber("page", mcp.Description("1-based page number. Defaults to 1.")),
		mcp.WithNumber("limit", mcp.Description("Items per page, 1 to 1000. Defaults to 100.")),
		mcp.WithString("ext", mcp.Description("Comma-separated extensions to keep, such as 'py,go'.")),
	), h.handleGetChurnMetrics)

	// --- 2. Tool: get_complexity_metrics ---
	s.AddTool(mcp.NewTool("get_complexity_metrics",
		mcp.WithDescription("Compute mean cyclomatic complexity and code lines per file in the working tree."),
		mcp.WithString("repo_path", mcp.Description("Path to the Git repository.")),
		mcp.WithNumber("page", mcp.Description("1-based page number.")),
		mcp.WithNumber("limit", mcp.Description("Items per page. Defaults to 100.")),
		mcp.WithString("ext", mcp.Description("Comma-separated extensions to keep.")),
	), h.handleGetComplexityMetrics)

	// --- 3. Tool: get_hotspots ---
	s.AddTool(mcp.NewTool("get_hotspots",
		mcp.WithDescription("Rank files that change often and are complex, classified into High, Medium and Low risk."),
		mcp.WithString("repo_path", mcp.Description("Path to the Git repository.")),
		mcp.WithNumber("churn_threshold", mcp.Description("Minimum commits for a hotspot. Defaults to 5.")),
		mcp.WithNumber("complexity_threshold", mcp.Description("Minimum mean complexity for a hotspot. Defaults to 5.0.")),
		mcp.WithNumber("top_n", mcp.Description("Keep only the N highest ranked hotspots before paging.")),
		mcp.WithNumber("page", mcp.Description("1-based page number.")),
		mcp.WithNumber("limit", mcp.Description("Items per page. Defaults to 10.")),
		mcp.WithString("ext", mcp.Description("Comma-separated extensions to keep.")),
	), h.handleGetHotspots)

	return s
}

// StartMCPServer starts the devinsight MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config) error {
	deps, err := core.NewDeps(baseCfg, nil)
	if err != nil {
		return err
	}
	return server.ServeStdio(NewMCPServer(baseCfg, deps))
}
