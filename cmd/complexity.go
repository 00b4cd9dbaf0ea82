package cmd

import (
	"github.com/devinsight/devinsight/core"
	"github.com/spf13/cobra"
)

// complexityCmd lists per-file cyclomatic complexity.
var complexityCmd = &cobra.Command{
	Use:   "complexity [repo-path]",
	Short: "Show per-file mean cyclomatic complexity.",
	Long: `Scan the working tree and measure every eligible file.

Each record carries the mean cyclomatic complexity over the file's functions,
the line count, the function count and the complexity per line.

Examples:
  # Show complexity records for the current repo
  devinsight complexity

  # Export everything to CSV
  devinsight complexity --limit 1000 --output csv --output-file complexity.csv`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: recordSetup,
	Run:     runExecutor("Cannot run complexity analysis", core.ExecuteComplexity),
}
