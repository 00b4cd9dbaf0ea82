package core

import (
	"context"
	"fmt"

	"github.com/devinsight/devinsight/core/agg"
	"github.com/devinsight/devinsight/core/algo"
	"github.com/devinsight/devinsight/core/eligible"
	"github.com/devinsight/devinsight/core/scan"
	"github.com/devinsight/devinsight/internal/complexity"
	"github.com/devinsight/devinsight/internal/contract"
	"github.com/devinsight/devinsight/internal/history"
	"github.com/devinsight/devinsight/schema"
	"golang.org/x/sync/errgroup"
)

// Deps holds the external providers used by the analysis.
type Deps struct {
	History contract.HistoryProvider
	Engine  contract.AnalysisEngine
	Git     contract.GitClient // Resolves work tree roots, may be nil
}

// NewDeps wires the history backend selected by cfg and the tree-sitter engine.
// A nil client selects the local git executable.
func NewDeps(cfg *contract.Config, client contract.GitClient) (*Deps, error) {
	if client == nil {
		client = contract.NewLocalGitClient()
	}
	provider, err := history.New(cfg.HistoryBackend, client)
	if err != nil {
		return nil, err
	}
	return &Deps{History: provider, Engine: complexity.NewAnalyzer(), Git: client}, nil
}

// GetChurnResults returns one page of churn records for the session repository.
func GetChurnResults(ctx context.Context, cfg *contract.Config, sess *contract.Session, deps *Deps) ([]schema.ChurnRecord, error) {
	if err := contract.ValidatePagination(cfg.Page, cfg.Limit); err != nil {
		return nil, err
	}
	if err := sess.Validate(); err != nil {
		return nil, err
	}
	records, err := agg.ExtractChurnPage(ctx, sess, deps.History, eligible.FromConfig(sess.RepoRoot, cfg),
		churnOptions(cfg, cfg.Extensions), cfg.Page, cfg.Limit)
	if err != nil {
		return nil, fmt.Errorf("churn extraction failed: %w", err)
	}
	return records, nil
}

// GetComplexityResults returns one page of complexity records for the session repository.
func GetComplexityResults(ctx context.Context, cfg *contract.Config, sess *contract.Session, deps *Deps) ([]schema.ComplexityRecord, error) {
	if err := contract.ValidatePagination(cfg.Page, cfg.Limit); err != nil {
		return nil, err
	}
	if err := sess.Validate(); err != nil {
		return nil, err
	}
	records, err := scan.ScanComplexityPage(ctx, sess, deps.Engine, eligible.FromConfig(sess.RepoRoot, cfg),
		scanOptions(ctx, cfg, cfg.Extensions), cfg.Page, cfg.Limit)
	if err != nil {
		return nil, fmt.Errorf("complexity scan failed: %w", err)
	}
	return records, nil
}

// GetHotspotResults returns one page of fused hotspots for the session repository.
func GetHotspotResults(ctx context.Context, cfg *contract.Config, sess *contract.Session, deps *Deps) ([]schema.HotspotRecord, error) {
	if err := contract.ValidatePagination(cfg.Page, cfg.Limit); err != nil {
		return nil, err
	}
	ranked, err := rankedHotspots(ctx, cfg, sess, deps)
	if err != nil {
		return nil, err
	}
	return algo.Paginate(ranked, cfg.Page, cfg.Limit), nil
}

// rankedHotspots extracts complete churn and complexity sets concurrently and fuses
// them into the ranked, top-N truncated list. Pagination is left to the caller.
func rankedHotspots(ctx context.Context, cfg *contract.Config, sess *contract.Session, deps *Deps) ([]schema.HotspotRecord, error) {
	if err := contract.ValidateThresholds(cfg.ChurnThreshold, cfg.ComplexityThreshold, cfg.TopN); err != nil {
		return nil, err
	}
	if err := sess.Validate(); err != nil {
		return nil, err
	}

	var churn []schema.ChurnRecord
	var cx []schema.ComplexityRecord
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		churn, err = allChurn(gctx, cfg, sess, deps)
		return err
	})
	g.Go(func() error {
		var err error
		cx, err = allComplexity(gctx, cfg, sess, deps)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return algo.RankedHotspots(churn, cx, algo.FuseOptions{
		ChurnThreshold:      cfg.ChurnThreshold,
		ComplexityThreshold: cfg.ComplexityThreshold,
		TopN:                cfg.TopN,
		Extensions:          cfg.Extensions,
	}), nil
}

func allChurn(ctx context.Context, cfg *contract.Config, sess *contract.Session, deps *Deps) ([]schema.ChurnRecord, error) {
	records, err := agg.ExtractChurn(ctx, sess, deps.History, eligible.FromConfig(sess.RepoRoot, cfg), churnOptions(cfg, nil))
	if err != nil {
		return nil, fmt.Errorf("churn extraction failed: %w", err)
	}
	return records, nil
}

func allComplexity(ctx context.Context, cfg *contract.Config, sess *contract.Session, deps *Deps) ([]schema.ComplexityRecord, error) {
	records, err := scan.ScanComplexity(ctx, sess, deps.Engine, eligible.FromConfig(sess.RepoRoot, cfg), scanOptions(ctx, cfg, nil))
	if err != nil {
		return nil, fmt.Errorf("complexity scan failed: %w", err)
	}
	return records, nil
}

func churnOptions(cfg *contract.Config, exts []string) agg.Options {
	return agg.Options{Extensions: exts, MaxFiles: cfg.MaxAnalyzableFiles}
}

func scanOptions(ctx context.Context, cfg *contract.Config, exts []string) scan.Options {
	return scan.Options{Extensions: exts, MaxFiles: cfg.MaxComplexityFiles, Progress: progressFromContext(ctx)}
}
