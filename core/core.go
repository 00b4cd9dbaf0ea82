// Package core orchestrates churn, complexity and hotspot analysis for the CLI,
// the HTTP host and the MCP host.
package core

import (
	"context"
	"os"
	"time"

	"github.com/devinsight/devinsight/core/algo"
	"github.com/devinsight/devinsight/internal/contract"
	"github.com/devinsight/devinsight/internal/outwriter"
	"github.com/devinsight/devinsight/schema"
	"github.com/schollz/progressbar/v3"
)

// ExecutorFunc defines the function signature for executing different analysis modes.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config) error

// prepare creates the session and providers for a CLI run against cfg.RepoPath.
func prepare(cfg *contract.Config) (*contract.Session, *Deps, error) {
	sess, err := contract.NewSession(cfg.RepoPath, "")
	if err != nil {
		return nil, nil, err
	}
	deps, err := NewDeps(cfg, nil)
	if err != nil {
		return nil, nil, err
	}
	return sess, deps, nil
}

// ExecuteChurn runs churn extraction and prints the requested page.
func ExecuteChurn(ctx context.Context, cfg *contract.Config) error {
	start := time.Now()
	sess, deps, err := prepare(cfg)
	if err != nil {
		return err
	}
	records, err := GetChurnResults(ctx, cfg, sess, deps)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteChurn(records, cfg, time.Since(start))
}

// ExecuteComplexity runs the complexity scan and prints the requested page.
func ExecuteComplexity(ctx context.Context, cfg *contract.Config) error {
	start := time.Now()
	sess, deps, err := prepare(cfg)
	if err != nil {
		return err
	}
	ctx, done := startProgress(ctx, cfg)
	records, err := GetComplexityResults(ctx, cfg, sess, deps)
	done()
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteComplexity(records, cfg, time.Since(start))
}

// ExecuteHotspots runs the fusion and prints the requested page with global ranks.
func ExecuteHotspots(ctx context.Context, cfg *contract.Config) error {
	start := time.Now()
	sess, deps, err := prepare(cfg)
	if err != nil {
		return err
	}
	ctx, done := startProgress(ctx, cfg)
	hotspots, err := GetHotspotResults(ctx, cfg, sess, deps)
	done()
	if err != nil {
		return err
	}
	ranked := schema.RankHotspots(hotspots, algo.PageOffset(cfg.Page, cfg.Limit))
	return outwriter.NewOutWriter().WriteHotspots(ranked, cfg, time.Since(start))
}

// startProgress attaches a stderr spinner to ctx when progress is enabled.
// The returned function clears it and must always be called.
func startProgress(ctx context.Context, cfg *contract.Config) (context.Context, func()) {
	if !cfg.Progress {
		return ctx, func() {}
	}
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetDescription("[cyan]Scanning files[reset]"),
		progressbar.OptionShowCount(),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	ctx = withProgress(ctx, func(string) { _ = bar.Add(1) })
	return ctx, func() { _ = bar.Finish() }
}
