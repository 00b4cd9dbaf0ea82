package cmd

import (
	"github.com/devinsight/devinsight/core"
	"github.com/spf13/cobra"
)

// checkCmd focused on CI/CD policy enforcement.
var checkCmd = &cobra.Command{
	Use:   "check [repo-path]",
	Short: "Fail the build when hotspots reach a risk level",
	Long: `Rank hotspots and exit with a non-zero code when any of them reaches --fail-on.

Use cases:
- Pull request gates that block new High risk files
- Nightly jobs that track Medium risk growth

Examples:
  # Fail on any High risk hotspot
  devinsight check

  # Fail on Medium or worse with custom thresholds
  devinsight check --fail-on medium --churn-threshold 10 --complexity-threshold 6`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: hotspotSetup,
	Run:     runExecutor("Policy check failed", core.ExecuteCheck),
}
