package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/devinsight/devinsight/core"
	"github.com/devinsight/devinsight/internal/complexity"
	"github.com/devinsight/devinsight/internal/contract"
	"github.com/devinsight/devinsight/schema"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:                "devinsight",
	Short:              "Find the files that change often and are hard to change.",
	Long:               `DevInsight combines Git churn with code complexity to surface the riskiest files of a repository.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName(".devinsight")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
	}

	viper.SetEnvPrefix("DEVINSIGHT")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("max-analyzable-files", contract.DefaultMaxAnalyzableFiles)
	viper.SetDefault("max-complexity-files", contract.DefaultMaxComplexityFiles)
	viper.SetDefault("page", contract.DefaultPage)
	viper.SetDefault("limit", 0)
	viper.SetDefault("churn-threshold", contract.DefaultChurnThreshold)
	viper.SetDefault("complexity-threshold", contract.DefaultComplexityThreshold)
	viper.SetDefault("top-n", contract.DefaultTopN)
	viper.SetDefault("history-backend", schema.GitCLIBackend)
	viper.SetDefault("output", schema.TextOut)
	viper.SetDefault("precision", contract.DefaultPrecision)
	viper.SetDefault("color", "yes")
	viper.SetDefault("fail-on", schema.HighRisk)
	viper.SetDefault("addr", contract.DefaultAddr)
	viper.SetDefault("log-level", contract.DefaultLogLevel)
}

// sharedSetup unmarshals config and runs validation. A zero limit is
// replaced by defaultLimit, which differs between record listings and hotspots.
func sharedSetup(ctx context.Context, args []string, defaultLimit int) error {
	// 1. Read config file. This merges defaults, file, env, and flags.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	// 2. Unmarshal all resolved values from Viper into our raw input struct.
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	// 3. Handle positional arguments (which Viper doesn't do).
	if len(args) == 1 {
		input.RepoPathStr = args[0]
	} else {
		input.RepoPathStr = "."
	}
	if input.Limit == 0 {
		input.Limit = defaultLimit
	}

	// 4. Run all validation and complex parsing.
	if err := contract.ProcessAndValidate(ctx, cfg, contract.NewLocalGitClient(), input); err != nil {
		return err
	}

	color.NoColor = color.NoColor || !cfg.UseColors
	if !complexity.IsAvailable() {
		contract.LogWarn("Complexity scores will be empty", complexity.ErrNoCGO)
	}
	return nil
}

// recordSetup prepares commands that list churn or complexity records.
func recordSetup(_ *cobra.Command, args []string) error {
	return sharedSetup(rootCtx, args, contract.DefaultResultLimit)
}

// hotspotSetup prepares commands that fuse records into hotspots.
func hotspotSetup(_ *cobra.Command, args []string) error {
	return sharedSetup(rootCtx, args, contract.DefaultHotspotLimit)
}

// runExecutor adapts a core executor to a cobra Run function that exits on failure.
func runExecutor(msg string, execute core.ExecutorFunc) func(*cobra.Command, []string) {
	return func(_ *cobra.Command, _ []string) {
		if err := execute(rootCtx, cfg); err != nil {
			contract.LogFatal(msg, err)
		}
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
