// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"

	"github.com/devinsight/devinsight/schema"
)

// GitClient defines the git operations needed by the analysis.
// This allows the core analysis logic to be tested without needing a real git executable.
type GitClient interface {
	// Run executes a git command and returns its standard output.
	Run(ctx context.Context, repoPath string, args ...string) ([]byte, error)

	// GetActivityLog returns the raw numstat log of every commit reachable from any ref.
	GetActivityLog(ctx context.Context, repoPath string) ([]byte, error)

	// GetRepoRoot returns the absolute path to the root of the Git repository
	// containing the given context path.
	GetRepoRoot(ctx context.Context, contextPath string) (string, error)
}

// HistoryProvider enumerates every commit reachable from any ref of a repository.
// Visit is called once per commit; returning an error from visit stops the walk
// and that error is returned from Walk.
type HistoryProvider interface {
	Walk(ctx context.Context, repoPath string, visit func(schema.Commit) error) error
}

// AnalysisEngine computes per-function complexity for a single source file.
type AnalysisEngine interface {
	AnalyzeFile(ctx context.Context, path string) (*schema.FileAnalysis, error)
}

// EligibilityFilter decides whether a path should be analyzed.
type EligibilityFilter interface {
	IsEligible(path string) bool
}
