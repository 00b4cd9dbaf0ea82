// Package main provides a performance benchmarking tool for the DevInsight CLI.
// It measures execution times across repositories, commands and history backends,
// running each combination several times and averaging the successful runs,
// generating CSV output for performance analysis and documentation.
//
// Prerequisites:
// - devinsight binary installed and available in PATH
// - Test repositories cloned to the specified base directory
// - Git repositories: csv-parser, fd, git, kubernetes
//
// Usage: go run benchmark/main.go [repo-base-dir]
//
//	repo-base-dir: Directory containing test repositories
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// BenchmarkResult holds the averaged timing of one command against one repository.
type BenchmarkResult struct {
	Repository string
	Command    string
	Backend    string
	AvgTime    string
	Successes  int
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	RepoBase  string
	Timeout   time.Duration
	Runs      int
	TestRepos []string
	Commands  []string
	Backends  []string
	// MaxFiles raises the resource caps so that large repositories do not fail fast.
	MaxFiles int
}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [repo-base-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		RepoBase:  os.Args[1],
		Timeout:   10 * time.Minute,
		Runs:      3,
		TestRepos: []string{"csv-parser", "fd", "git", "kubernetes"},
		Commands:  []string{"churn", "complexity", "hotspots"},
		Backends:  []string{"git", "go-git"},
		MaxFiles:  200000,
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(config, results)
}

// checkPrerequisites verifies that the devinsight binary and test repositories exist
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("devinsight"); err != nil {
		return fmt.Errorf("devinsight binary not found in PATH")
	}

	for _, repo := range config.TestRepos {
		repoPath := filepath.Join(config.RepoBase, repo)
		if _, err := os.Stat(repoPath); os.IsNotExist(err) {
			return fmt.Errorf("repository %s not found at %s", repo, repoPath)
		}
	}
	return nil
}

// runBenchmarks executes every command with every backend across configured repositories
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d repos, %d commands, %d backends, %d runs each, %v timeout\n",
		len(config.TestRepos), len(config.Commands), len(config.Backends), config.Runs, config.Timeout)

	for _, repo := range config.TestRepos {
		fmt.Printf("Benchmarking %s\n", repo)
		repoPath := filepath.Join(config.RepoBase, repo)

		for _, command := range config.Commands {
			// Complexity never reads history, so one backend is enough.
			backends := config.Backends
			if command == "complexity" {
				backends = backends[:1]
			}
			for _, backend := range backends {
				results = append(results, runBenchmarkSuite(config, repo, repoPath, command, backend))
			}
		}
	}
	return results
}

// runBenchmarkSuite runs one command several times and averages the successful runs
func runBenchmarkSuite(config BenchmarkConfig, repo, repoPath, command, backend string) BenchmarkResult {
	fmt.Printf("  %s with %s backend (%d runs)\n", command, backend, config.Runs)

	args := []string{
		command,
		"--history-backend", backend,
		"--max-analyzable-files", fmt.Sprint(config.MaxFiles),
		"--max-complexity-files", fmt.Sprint(config.MaxFiles),
		"--color", "no",
	}

	var times []float64
	for range config.Runs {
		if elapsed, ok := runOnce(config.Timeout, repoPath, args); ok {
			times = append(times, elapsed)
		}
	}

	avgTime := "TIMEOUT"
	if len(times) > 0 {
		var sum float64
		for _, t := range times {
			sum += t
		}
		avgTime = fmt.Sprintf("%.3fs", sum/float64(len(times)))
	}
	fmt.Printf("    Average: %s (%d/%d successful)\n", avgTime, len(times), config.Runs)

	return BenchmarkResult{
		Repository: repo,
		Command:    command,
		Backend:    backend,
		AvgTime:    avgTime,
		Successes:  len(times),
	}
}

// runOnce executes devinsight a single time and reports the elapsed seconds
func runOnce(timeout time.Duration, repoPath string, args []string) (float64, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	start := time.Now()
	cmd := exec.CommandContext(ctx, "devinsight", args...)
	cmd.Dir = repoPath
	output, err := cmd.CombinedOutput()
	if err != nil || !isSuccess(output) {
		return 0, false
	}
	return time.Since(start).Seconds(), true
}

// isSuccess checks if command output indicates successful completion
func isSuccess(output []byte) bool {
	outputStr := string(output)
	return strings.Contains(outputStr, "Analysis completed in") || strings.Contains(outputStr, "No files matched.")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("devinsight_benchmark_%s.csv", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"repo", "cmd", "backend", "avg_time", "successes"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		row := []string{result.Repository, result.Command, result.Backend, result.AvgTime, fmt.Sprint(result.Successes)}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results grouped by command
func printSummary(config BenchmarkConfig, results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, command := range config.Commands {
		fmt.Printf("%s:\n", command)
		for _, result := range results {
			if result.Command == command {
				fmt.Printf("  %-12s %-7s: %s\n", result.Repository, result.Backend, result.AvgTime)
			}
		}
	}
}
