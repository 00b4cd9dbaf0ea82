// Package agg has aggregation logic for commit history data.
package agg

import (
	"context"
	"path/filepath"
	"sort"

	"github.com/devinsight/devinsight/core/algo"
	"github.com/devinsight/devinsight/internal/contract"
	"github.com/devinsight/devinsight/schema"
)

// Options controls a churn extraction.
type Options struct {
	Extensions []string // Optional ".ext" filter; empty keeps every eligible file
	MaxFiles   int      // Cap on distinct files; <= 0 disables the check
}

// fileChurn accumulates the history of one normalized path.
type fileChurn struct {
	commits   map[string]struct{}
	authors   map[string]struct{}
	additions int
	deletions int
}

// ExtractChurn walks every commit the provider yields and aggregates per-file churn.
// Records are sorted by normalized path. When more distinct files than opts.MaxFiles
// were touched, a *contract.ResourceLimitError is returned and no records.
func ExtractChurn(ctx context.Context, sess *contract.Session, provider contract.HistoryProvider, filter contract.EligibilityFilter, opts Options) ([]schema.ChurnRecord, error) {
	if err := sess.Validate(); err != nil {
		return nil, err
	}

	churnMap, err := aggregateHistory(ctx, sess.RepoRoot, provider, filter, opts.Extensions)
	if err != nil {
		return nil, err
	}

	if opts.MaxFiles > 0 && len(churnMap) > opts.MaxFiles {
		return nil, &contract.ResourceLimitError{Kind: "churn", Count: len(churnMap), Limit: opts.MaxFiles}
	}
	return buildRecords(churnMap), nil
}

// ExtractChurnPage is ExtractChurn followed by pagination.
func ExtractChurnPage(ctx context.Context, sess *contract.Session, provider contract.HistoryProvider, filter contract.EligibilityFilter, opts Options, page, limit int) ([]schema.ChurnRecord, error) {
	records, err := ExtractChurn(ctx, sess, provider, filter, opts)
	if err != nil {
		return nil, err
	}
	return algo.Paginate(records, page, limit), nil
}

// aggregateHistory performs a single walk and fills the per-path accumulators.
// Eligibility is evaluated once per distinct history path.
func aggregateHistory(ctx context.Context, root string, provider contract.HistoryProvider, filter contract.EligibilityFilter, exts []string) (map[string]*fileChurn, error) {
	churnMap := make(map[string]*fileChurn)
	eligible := make(map[string]bool)

	err := provider.Walk(ctx, root, func(c schema.Commit) error {
		for _, f := range c.Files {
			if !contract.HasExtension(f.Path, exts) {
				continue
			}
			ok, seen := eligible[f.Path]
			if !seen {
				ok = filter.IsEligible(filepath.Join(root, filepath.FromSlash(f.Path)))
				eligible[f.Path] = ok
			}
			if !ok {
				continue
			}
			aggregateForPath(churnMap, contract.NormalizePath(f.Path), c, f)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return churnMap, nil
}

// aggregateForPath updates the accumulator of a single path.
func aggregateForPath(churnMap map[string]*fileChurn, key string, c schema.Commit, f schema.FileChange) {
	fc, ok := churnMap[key]
	if !ok {
		fc = &fileChurn{
			commits: make(map[string]struct{}),
			authors: make(map[string]struct{}),
		}
		churnMap[key] = fc
	}
	fc.commits[c.Hash] = struct{}{}
	fc.authors[c.Author] = struct{}{}
	fc.additions += f.Additions
	fc.deletions += f.Deletions
}

// buildRecords materializes the accumulators in normalized path order.
func buildRecords(churnMap map[string]*fileChurn) []schema.ChurnRecord {
	paths := make([]string, 0, len(churnMap))
	for p := range churnMap {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	records := make([]schema.ChurnRecord, 0, len(paths))
	for _, p := range paths {
		fc := churnMap[p]
		records = append(records, schema.ChurnRecord{
			Path:       p,
			Commits:    len(fc.commits),
			Authors:    len(fc.authors),
			Additions:  fc.additions,
			Deletions:  fc.deletions,
			NetChanges: fc.additions - fc.deletions,
		})
	}
	return records
}
