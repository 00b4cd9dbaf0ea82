package cmd

import (
	"github.com/devinsight/devinsight/core"
	"github.com/spf13/cobra"
)

// churnCmd lists per-file commit activity.
var churnCmd = &cobra.Command{
	Use:   "churn [repo-path]",
	Short: "Show per-file commit counts, authors and line changes.",
	Long: `Walk the full commit history and aggregate activity for every eligible file.

For each file that still exists in the working tree, reports:
- Number of commits that touched it
- Number of distinct authors
- Lines added, deleted and the net change

Examples:
  # Show the first page of churn records
  devinsight churn

  # Only Go and Python files, second page of 50
  devinsight churn --ext go,py --page 2 --limit 50

  # Read history in-process instead of shelling out to git
  devinsight churn --history-backend go-git --output json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: recordSetup,
	Run:     runExecutor("Cannot run churn analysis", core.ExecuteChurn),
}
