package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/devinsight/devinsight/core"
	"github.com/devinsight/devinsight/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	deps    *core.Deps
}

// prepare clones the base config, applies the shared arguments and opens a
// session for the requested repository.
func (h *toolHandler) prepare(ctx context.Context, request mcp.CallToolRequest, defaultLimit int) (*contract.Config, *contract.Session, error) {
	cfg := h.baseCfg.Clone()
	if p := request.GetString("repo_path", ""); p != "" {
		cfg.RepoPath = p
	}
	cfg.Page = request.GetInt("page", contract.DefaultPage)
	cfg.Limit = request.GetInt("limit", defaultLimit)
	if ext := request.GetString("ext", ""); ext != "" {
		cfg.Extensions = contract.ParseExtensions(ext)
	}
	if err := contract.ValidatePagination(cfg.Page, cfg.Limit); err != nil {
		return nil, nil, err
	}

	sess, err := contract.OpenSession(ctx, h.deps.Git, cfg.RepoPath, "")
	if err != nil {
		return nil, nil, err
	}
	return cfg, sess, nil
}

func (h *toolHandler) handleGetChurnMetrics(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, sess, err := h.prepare(ctx, request, contract.DefaultResultLimit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	records, err := core.GetChurnResults(ctx, cfg, sess, h.deps)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("churn analysis failed: %v", err)), nil
	}
	return jsonResult(records)
}

func (h *toolHandler) handleGetComplexityMetrics(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, sess, err := h.prepare(ctx, request, contract.DefaultResultLimit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	records, err := core.GetComplexityResults(ctx, cfg, sess, h.deps)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("complexity analysis failed: %v", err)), nil
	}
	return jsonResult(records)
}

func (h *toolHandler) handleGetHotspots(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, sess, err := h.prepare(ctx, request, contract.DefaultHotspotLimit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	cfg.ChurnThreshold = request.GetInt("churn_threshold", cfg.ChurnThreshold)
	cfg.ComplexityThreshold = request.GetFloat("complexity_threshold", cfg.ComplexityThreshold)
	cfg.TopN = request.GetInt("top_n", cfg.TopN)

	hotspots, err := core.GetHotspotResults(ctx, cfg, sess, h.deps)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("hotspot analysis failed: %v", err)), nil
	}
	return jsonResult(hotspots)
}

// jsonResult encodes records as an indented JSON array; an empty result is [].
func jsonResult[T any](records []T) (*mcp.CallToolResult, error) {
	if records == nil {
		records = []T{}
	}
	jsonData, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
