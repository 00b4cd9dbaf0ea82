// Package scan walks a working tree and computes per-file complexity records.
package scan

import (
	"context"
	"io/fs"
	"math"
	"path/filepath"
	"sort"

	"github.com/devinsight/devinsight/core/algo"
	"github.com/devinsight/devinsight/internal/contract"
	"github.com/devinsight/devinsight/schema"
)

// Options controls a complexity scan.
type Options struct {
	Extensions []string          // Optional ".ext" filter; empty keeps every eligible file
	MaxFiles   int               // Cap on accumulated records; <= 0 disables the check
	Progress   func(path string) // Called after every analyzed file, may be nil
}

// dirPruner is implemented by filters that can reject whole directories up front.
type dirPruner interface {
	IsExcludedDir(name string) bool
}

// fileOutcome is the result of a single file attempt. Failed attempts are dropped.
type fileOutcome struct {
	record schema.ComplexityRecord
	ok     bool
}

// ScanComplexity walks the session root and analyzes every eligible file.
// Records are sorted by normalized path. The scan stops with a
// *contract.ResourceLimitError as soon as one more record than opts.MaxFiles
// would be kept; that record is not retained and no records are returned.
func ScanComplexity(ctx context.Context, sess *contract.Session, engine contract.AnalysisEngine, filter contract.EligibilityFilter, opts Options) ([]schema.ComplexityRecord, error) {
	if err := sess.Validate(); err != nil {
		return nil, err
	}
	root := sess.RepoRoot
	pruner, _ := filter.(dirPruner)

	records := make([]schema.ComplexityRecord, 0)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			return nil //nolint:nilerr // unreadable entries are skipped
		}
		if d.IsDir() {
			if path != root && pruner != nil && pruner.IsExcludedDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if !contract.HasExtension(path, opts.Extensions) || !filter.IsEligible(path) {
			return nil
		}

		outcome := analyzeFile(ctx, root, path, engine)
		if opts.Progress != nil {
			opts.Progress(path)
		}
		if !outcome.ok {
			return nil
		}
		if opts.MaxFiles > 0 && len(records) >= opts.MaxFiles {
			return &contract.ResourceLimitError{Kind: "complexity", Count: len(records) + 1, Limit: opts.MaxFiles}
		}
		records = append(records, outcome.record)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Path < records[j].Path
	})
	return records, nil
}

// ScanComplexityPage is ScanComplexity followed by pagination.
func ScanComplexityPage(ctx context.Context, sess *contract.Session, engine contract.AnalysisEngine, filter contract.EligibilityFilter, opts Options, page, limit int) ([]schema.ComplexityRecord, error) {
	records, err := ScanComplexity(ctx, sess, engine, filter, opts)
	if err != nil {
		return nil, err
	}
	return algo.Paginate(records, page, limit), nil
}

// analyzeFile runs the engine on one file and builds its record.
func analyzeFile(ctx context.Context, root, path string, engine contract.AnalysisEngine) fileOutcome {
	fa, err := engine.AnalyzeFile(ctx, path)
	if err != nil || fa == nil {
		return fileOutcome{}
	}
	return fileOutcome{record: BuildRecord(contract.RelativeNormalizedPath(root, path), fa), ok: true}
}

// BuildRecord derives the complexity record of a file from its analysis.
// The per-line ratio uses the unrounded mean.
func BuildRecord(path string, fa *schema.FileAnalysis) schema.ComplexityRecord {
	mean := fa.MeanCyclomatic()
	perLine := 0.0
	if fa.Lines > 0 {
		perLine = mean / float64(fa.Lines)
	}
	return schema.ComplexityRecord{
		Path:              path,
		Complexity:        roundTo(mean, 2),
		Lines:             fa.Lines,
		Functions:         len(fa.Functions),
		ComplexityPerLine: roundTo(perLine, 4),
	}
}

// roundTo rounds v half away from zero to the given number of decimals.
func roundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
