package cmd

import (
	"github.com/devinsight/devinsight/core"
	"github.com/spf13/cobra"
)

// hotspotsCmd ranks files that are both busy and complex.
var hotspotsCmd = &cobra.Command{
	Use:   "hotspots [repo-path]",
	Short: "Rank files that change often and are hard to change.",
	Long: `Join churn and complexity by path and rank the files that meet both thresholds.

A file is a candidate when its commit count reaches --churn-threshold and its
mean complexity reaches --complexity-threshold. Candidates are scored by
commits times complexity and labelled High, Medium or Low risk.

Examples:
  # Top 10 hotspots with default thresholds
  devinsight hotspots

  # Stricter thresholds, Go files only
  devinsight hotspots --churn-threshold 20 --complexity-threshold 8 --ext go

  # Archive the ranking for later analysis
  devinsight hotspots --output parquet --output-file hotspots.parquet`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: hotspotSetup,
	Run:     runExecutor("Cannot run hotspot analysis", core.ExecuteHotspots),
}
