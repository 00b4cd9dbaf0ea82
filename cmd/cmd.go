// Package cmd defines the command-line interface for devinsight.
package cmd

import (
	"github.com/devinsight/devinsight/internal/contract"
	"github.com/devinsight/devinsight/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(churnCmd)
	rootCmd.AddCommand(complexityCmd)
	rootCmd.AddCommand(hotspotsCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Bind all persistent flags of rootCmd to Viper
	flags := rootCmd.PersistentFlags()
	flags.Int("max-analyzable-files", contract.DefaultMaxAnalyzableFiles, "Maximum number of files churn extraction may report")
	flags.Int("max-complexity-files", contract.DefaultMaxComplexityFiles, "Maximum number of files the complexity scan may analyze")
	flags.String("allowed-extensions", "", "Comma-separated list of analyzable extensions (default: common source extensions)")
	flags.String("excluded-dirs", "", "Comma-separated list of directory names to skip (default: build and vendor dirs)")
	flags.String("exclude", "", "Comma-separated list of glob patterns to ignore")
	flags.Int("page", contract.DefaultPage, "Page of results to display, starting at 1")
	flags.IntP("limit", "l", 0, "Number of results per page (0 = 100 records or 10 hotspots)")
	flags.String("ext", "", "Only report files with these comma-separated extensions")
	flags.Int("churn-threshold", contract.DefaultChurnThreshold, "Minimum commits for a file to be a hotspot candidate")
	flags.Float64("complexity-threshold", contract.DefaultComplexityThreshold, "Minimum mean complexity for a file to be a hotspot candidate")
	flags.Int("top-n", contract.DefaultTopN, "Maximum number of hotspots kept before pagination")
	flags.String("history-backend", string(schema.GitCLIBackend), "History backend: git or go-git")
	flags.String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	flags.String("output-file", "", "Optional path to write output to")
	flags.Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	flags.Int("width", 0, "Terminal width override (0 = auto-detect)")
	flags.String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	flags.Bool("progress", false, "Show a progress spinner on stderr while scanning")
	flags.String("config", "", "Path to config file")
	if err := viper.BindPFlags(flags); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of checkCmd to Viper
	checkCmd.Flags().String("fail-on", string(schema.HighRisk), "Lowest risk level that fails the check: High or Medium or Low")
	if err := viper.BindPFlags(checkCmd.Flags()); err != nil {
		contract.LogFatal("Error binding check flags", err)
	}

	// Bind all flags of serveCmd to Viper
	serveCmd.Flags().String("addr", contract.DefaultAddr, "Address the HTTP API listens on")
	serveCmd.Flags().String("log-level", contract.DefaultLogLevel, "Log level: debug or info or warn or error")
	if err := viper.BindPFlags(serveCmd.Flags()); err != nil {
		contract.LogFatal("Error binding serve flags", err)
	}
}
