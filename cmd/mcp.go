package cmd

import (
	"github.com/devinsight/devinsight/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp [repo-path]",
	Short: "Start the DevInsight MCP server",
	Long: `Launch an MCP server over stdio that lets AI agents query churn, complexity and hotspots.

Each tool call may pass its own repo_path. Calls without one analyze the
repository given on the command line.`,
	Args: cobra.MaximumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// The progress spinner would pollute stdio, which carries the protocol.
		if err := recordSetup(cmd, args); err != nil {
			return err
		}
		cfg.Progress = false
		return nil
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg)
	},
}
