package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/devinsight/devinsight/internal/contract"
	"github.com/devinsight/devinsight/schema"
)

// ErrCheckFailed is returned by ExecuteCheck when at least one hotspot violates the policy.
var ErrCheckFailed = errors.New("policy check failed")

// maxViolationsShown caps the violations listed on failure.
const maxViolationsShown = 5

// ExecuteCheck runs the check command for CI/CD gating.
// It fuses the complete churn and complexity sets and fails when any hotspot is
// at or above the configured fail-on risk level.
func ExecuteCheck(ctx context.Context, cfg *contract.Config) error {
	start := time.Now()
	sess, deps, err := prepare(cfg)
	if err != nil {
		return err
	}
	ctx, done := startProgress(ctx, cfg)
	hotspots, err := rankedHotspots(ctx, cfg, sess, deps)
	done()
	if err != nil {
		return err
	}

	result := BuildCheckResult(hotspots, cfg)
	if err := printCheckResult(os.Stdout, result, time.Since(start)); err != nil {
		return err
	}
	if !result.Passed {
		return fmt.Errorf("%w: %d violation(s) at or above %s risk", ErrCheckFailed, len(result.Violations), result.FailOn)
	}
	return nil
}

// BuildCheckResult evaluates ranked hotspots against cfg.FailOn.
// An empty FailOn defaults to High.
func BuildCheckResult(hotspots []schema.HotspotRecord, cfg *contract.Config) *schema.CheckResult {
	failOn := cfg.FailOn
	if failOn == "" {
		failOn = schema.HighRisk
	}
	result := &schema.CheckResult{
		FailOn:              failOn,
		ChurnThreshold:      cfg.ChurnThreshold,
		ComplexityThreshold: cfg.ComplexityThreshold,
		TotalHotspots:       len(hotspots),
		Counts:              make(map[schema.RiskLevel]int, len(schema.ValidRiskLevels)),
		Violations:          []schema.RankedHotspot{},
	}
	for _, ranked := range schema.RankHotspots(hotspots, 0) {
		result.Counts[ranked.RiskLevel]++
		if ranked.RiskLevel.Severity() >= failOn.Severity() {
			result.Violations = append(result.Violations, ranked)
		}
	}
	result.Passed = len(result.Violations) == 0
	return result
}

// printCheckResult prints the check result in a concise format suitable for CI/CD.
func printCheckResult(w io.Writer, result *schema.CheckResult, duration time.Duration) error {
	if err := printCheckHeader(w, result, duration); err != nil {
		return err
	}
	if result.Passed {
		_, err := fmt.Fprintf(w, "✅ All files passed policy checks (no hotspot at or above %s risk)\n", result.FailOn)
		return err
	}
	return printCheckFailure(w, result)
}

// printCheckHeader prints the common header information for check results.
func printCheckHeader(w io.Writer, result *schema.CheckResult, duration time.Duration) error {
	if _, err := fmt.Fprintln(w, "Policy Check Results:"); err != nil {
		return err
	}

	labels := []string{"Fail on:", "Thresholds:", "Hotspots:"}
	values := []any{
		result.FailOn,
		fmt.Sprintf("commits >= %d, complexity >= %.1f", result.ChurnThreshold, result.ComplexityThreshold),
		fmt.Sprintf("%d (high=%d, medium=%d, low=%d)", result.TotalHotspots,
			result.Counts[schema.HighRisk], result.Counts[schema.MediumRisk], result.Counts[schema.LowRisk]),
	}

	maxLabelLen := 0
	for _, label := range labels {
		maxLabelLen = max(maxLabelLen, len(label))
	}
	for i, label := range labels {
		if _, err := fmt.Fprintf(w, "  %-*s %v\n", maxLabelLen+1, label, values[i]); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "\nChecked in %v\n\n", duration)
	return err
}

// printCheckFailure lists the highest ranked violations.
func printCheckFailure(w io.Writer, result *schema.CheckResult) error {
	if _, err := fmt.Fprintf(w, "❌ Policy check failed: %d violation(s) found across %d hotspots\n\n",
		len(result.Violations), result.TotalHotspots); err != nil {
		return err
	}
	for i, v := range result.Violations {
		if i == maxViolationsShown {
			_, err := fmt.Fprintf(w, "  ... and %d more\n", len(result.Violations)-i)
			return err
		}
		if _, err := fmt.Fprintf(w, "  - %s (%s, commits: %d, complexity: %.2f, score: %.1f)\n",
			v.Path, contract.GetColorLabel(v.RiskLevel), v.Commits, v.Complexity, v.RiskScore); err != nil {
			return err
		}
	}
	return nil
}
