package contract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/devinsight/devinsight/schema"
)

// Default values for configuration.
const (
	DefaultMaxAnalyzableFiles  = 5000
	DefaultMaxComplexityFiles  = 5000
	DefaultPage                = 1
	DefaultResultLimit         = 100
	DefaultHotspotLimit        = 10
	MaxResultLimit             = 1000
	DefaultChurnThreshold      = 5
	DefaultComplexityThreshold = 5.0
	DefaultTopN                = 10000
	DefaultPrecision           = 2
	DefaultAddr                = ":8000"
	DefaultLogLevel            = "info"
)

// DefaultAllowedExtensions is the extension allow-list applied when none is configured.
var DefaultAllowedExtensions = []string{
	".py", ".java", ".js", ".ts", ".cpp", ".c", ".cs", ".go",
	".rb", ".kt", ".rs", ".php", ".html", ".css", ".sh", ".bash",
}

// DefaultExcludedDirs is the directory deny-list applied when none is configured.
var DefaultExcludedDirs = []string{
	"node_modules", "venv", "build", "dist", "out", "__pycache__", ".git",
	".idea", ".vscode", ".mvn", "test", "tests", "coverage", "target", ".gradle",
}

// Config holds the runtime configuration for the analysis.
// This struct remains the "final, validated" config.
type Config struct {
	RepoPath string

	MaxAnalyzableFiles int
	MaxComplexityFiles int
	AllowedExtensions  []string // Normalized as ".ext"
	ExcludedDirs       []string
	Excludes           []string // Extra glob patterns

	Page                int
	Limit               int
	Extensions          []string // Per-request extension filter, normalized as ".ext"
	ChurnThreshold      int
	ComplexityThreshold float64
	TopN                int

	HistoryBackend schema.HistoryBackend

	Output     schema.OutputMode
	OutputFile string
	Precision  int
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool
	Progress   bool

	FailOn schema.RiskLevel

	Addr     string
	LogLevel string
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	RepoPathStr string

	MaxAnalyzableFiles int    `mapstructure:"max-analyzable-files"`
	MaxComplexityFiles int    `mapstructure:"max-complexity-files"`
	AllowedExtensions  string `mapstructure:"allowed-extensions"`
	ExcludedDirs       string `mapstructure:"excluded-dirs"`
	Exclude            string `mapstructure:"exclude"`

	Page                int     `mapstructure:"page"`
	Limit               int     `mapstructure:"limit"`
	Ext                 string  `mapstructure:"ext"`
	ChurnThreshold      int     `mapstructure:"churn-threshold"`
	ComplexityThreshold float64 `mapstructure:"complexity-threshold"`
	TopN                int     `mapstructure:"top-n"`

	HistoryBackend string `mapstructure:"history-backend"`

	Output     string `mapstructure:"output"`
	OutputFile string `mapstructure:"output-file"`
	Precision  int    `mapstructure:"precision"`
	Width      int    `mapstructure:"width"`
	Color      string `mapstructure:"color"`
	Progress   bool   `mapstructure:"progress"`

	FailOn string `mapstructure:"fail-on"`

	Addr     string `mapstructure:"addr"`
	LogLevel string `mapstructure:"log-level"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	clone.AllowedExtensions = slices.Clone(c.AllowedExtensions)
	clone.ExcludedDirs = slices.Clone(c.ExcludedDirs)
	clone.Excludes = slices.Clone(c.Excludes)
	clone.Extensions = slices.Clone(c.Extensions)
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct. The client may be nil, in which case
// the repository path is used as given.
func ProcessAndValidate(ctx context.Context, cfg *Config, client GitClient, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processFileRules(cfg, input); err != nil {
		return err
	}
	if err := processFusionInputs(cfg, input); err != nil {
		return err
	}
	return resolveRepoPath(ctx, cfg, client, input)
}

// validateSimpleInputs validates output, paging and server options.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.Width = input.Width
	cfg.Progress = input.Progress
	cfg.OutputFile = input.OutputFile

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if err := ValidatePagination(input.Page, input.Limit); err != nil {
		return err
	}
	cfg.Page = input.Page
	cfg.Limit = input.Limit

	if input.Precision < 1 || input.Precision > 4 {
		return fmt.Errorf("precision must be between 1 and 4 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("--output-file is required when using parquet output")
	}

	cfg.HistoryBackend = schema.HistoryBackend(strings.ToLower(input.HistoryBackend))
	if _, ok := schema.ValidHistoryBackends[cfg.HistoryBackend]; !ok {
		return fmt.Errorf("invalid history backend '%s'. must be git, go-git", input.HistoryBackend)
	}

	cfg.Addr = input.Addr
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	cfg.LogLevel = strings.ToLower(input.LogLevel)
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}

	return nil
}

// processFileRules resolves the caps, allow-list, deny-list and excludes.
func processFileRules(cfg *Config, input *ConfigRawInput) error {
	if input.MaxAnalyzableFiles <= 0 {
		return fmt.Errorf("max-analyzable-files must be greater than 0 (received %d)", input.MaxAnalyzableFiles)
	}
	cfg.MaxAnalyzableFiles = input.MaxAnalyzableFiles

	if input.MaxComplexityFiles <= 0 {
		return fmt.Errorf("max-complexity-files must be greater than 0 (received %d)", input.MaxComplexityFiles)
	}
	cfg.MaxComplexityFiles = input.MaxComplexityFiles

	cfg.AllowedExtensions = ParseExtensions(input.AllowedExtensions)
	if len(cfg.AllowedExtensions) == 0 {
		cfg.AllowedExtensions = slices.Clone(DefaultAllowedExtensions)
	}

	cfg.ExcludedDirs = SplitList(input.ExcludedDirs)
	if len(cfg.ExcludedDirs) == 0 {
		cfg.ExcludedDirs = slices.Clone(DefaultExcludedDirs)
	}

	cfg.Excludes = SplitList(input.Exclude)
	cfg.Extensions = ParseExtensions(input.Ext)
	return nil
}

// processFusionInputs validates the hotspot thresholds and the check gate.
func processFusionInputs(cfg *Config, input *ConfigRawInput) error {
	if err := ValidateThresholds(input.ChurnThreshold, input.ComplexityThreshold, input.TopN); err != nil {
		return err
	}
	cfg.ChurnThreshold = input.ChurnThreshold
	cfg.ComplexityThreshold = input.ComplexityThreshold
	cfg.TopN = input.TopN

	if input.FailOn == "" {
		cfg.FailOn = schema.HighRisk
		return nil
	}
	level, err := schema.ParseRiskLevel(input.FailOn)
	if err != nil {
		return fmt.Errorf("invalid --fail-on value: %w", err)
	}
	cfg.FailOn = level
	return nil
}

// ValidatePagination checks page >= 1 and 1 <= limit <= MaxResultLimit.
func ValidatePagination(page, limit int) error {
	if page < 1 {
		return NewValidationError("page", "must be at least 1 (received %d)", page)
	}
	if limit < 1 || limit > MaxResultLimit {
		return NewValidationError("limit", "must be between 1 and %d (received %d)", MaxResultLimit, limit)
	}
	return nil
}

// ValidateThresholds checks the fusion parameters are non-negative.
func ValidateThresholds(churnThreshold int, complexityThreshold float64, topN int) error {
	if churnThreshold < 0 {
		return NewValidationError("churn_threshold", "must not be negative (received %d)", churnThreshold)
	}
	if complexityThreshold < 0 {
		return NewValidationError("complexity_threshold", "must not be negative (received %.2f)", complexityThreshold)
	}
	if topN < 0 {
		return NewValidationError("top_n", "must not be negative (received %d)", topN)
	}
	return nil
}

// resolveRepoPath resolves the repository root from the positional argument.
// When a git client is available, the enclosing work tree root is preferred so
// that history paths and working-tree paths share the same base.
func resolveRepoPath(ctx context.Context, cfg *Config, client GitClient, input *ConfigRawInput) error {
	searchPath := input.RepoPathStr
	if searchPath == "" {
		searchPath = "."
	}
	absSearchPath, err := filepath.Abs(searchPath)
	if err != nil {
		return err
	}
	absSearchPath = filepath.Clean(absSearchPath)

	info, err := os.Stat(absSearchPath)
	if err != nil {
		return fmt.Errorf("repository path %q is not accessible: %w", searchPath, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("repository path %q is not a directory", searchPath)
	}

	cfg.RepoPath = ResolveRepoRoot(ctx, client, absSearchPath)
	return nil
}
