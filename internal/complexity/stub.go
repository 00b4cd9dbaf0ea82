//go:build !cgo

package complexity

import (
	"context"

	"github.com/devinsight/devinsight/internal/contract"
	"github.com/devinsight/devinsight/schema"
)

// Analyzer computes complexity metrics for source files.
// This is a stub implementation for non-CGO builds.
type Analyzer struct{}

var _ contract.AnalysisEngine = &Analyzer{} // Compile-time check

// NewAnalyzer creates a new complexity analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// AnalyzeFile always fails without CGO.
func (a *Analyzer) AnalyzeFile(context.Context, string) (*schema.FileAnalysis, error) {
	return nil, ErrNoCGO
}

// AnalyzeSource always fails without CGO.
func (a *Analyzer) AnalyzeSource(context.Context, string, []byte, Language) (*schema.FileAnalysis, error) {
	return nil, ErrNoCGO
}

// IsAvailable returns whether complexity analysis is available.
// Returns false when CGO is disabled.
func IsAvailable() bool {
	return false
}
