// Package outwriter has output and writer logic.
package outwriter

import (
	"os"
	"time"

	"github.com/devinsight/devinsight/internal/contract"
	"github.com/devinsight/devinsight/schema"
	"golang.org/x/term"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteChurn prints churn records using the configured output format.
func (ow *OutWriter) WriteChurn(records []schema.ChurnRecord, cfg *contract.Config, duration time.Duration) error {
	return WriteChurnResults(records, cfg, duration)
}

// WriteComplexity prints complexity records using the configured output format.
func (ow *OutWriter) WriteComplexity(records []schema.ComplexityRecord, cfg *contract.Config, duration time.Duration) error {
	return WriteComplexityResults(records, cfg, duration)
}

// WriteHotspots prints ranked hotspots using the configured output format.
func (ow *OutWriter) WriteHotspots(hotspots []schema.RankedHotspot, cfg *contract.Config, duration time.Duration) error {
	return WriteHotspotResults(hotspots, cfg, duration)
}

// Fixed column budgets, borders and padding included.
const (
	churnColumnsWidth      = 50 // Commits + Authors + Added + Deleted + Net
	complexityColumnsWidth = 45 // Complexity + Lines + Functions + Per Line
	hotspotColumnsWidth    = 45 // Rank + Commits + Complexity + Score + Risk
)

// GetMaxTablePathWidth calculates the maximum width for file paths in table output
// based on terminal width and the width taken by the other columns.
func GetMaxTablePathWidth(cfg *contract.Config, columnsWidth int) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Reserve generous space for table borders, separators, and padding
	available := termWidth - columnsWidth - 20
	if available < 15 {
		return 15
	}
	if available > 70 {
		return 70
	}
	return available
}
