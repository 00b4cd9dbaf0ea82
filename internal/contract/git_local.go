package contract

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// CommitHeaderPrefix marks the start of a commit header in the activity log.
const CommitHeaderPrefix = "--"

// ActivityLogFormat is the pretty format of a commit header: hash, author e-mail, author name.
const ActivityLogFormat = "--%H|%ae|%an"

// LocalGitClient implements the GitClient interface by executing the
// local 'git' binary installed on the machine.
type LocalGitClient struct{}

var _ GitClient = &LocalGitClient{} // Compile-time check

// NewLocalGitClient creates a new instance of the local Git client.
func NewLocalGitClient() *LocalGitClient {
	return &LocalGitClient{}
}

// Run executes a git command and returns its stdout output.
func (c *LocalGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	fullArgs := append([]string{"-C", repoPath}, args...)
	cmd := exec.CommandContext(ctx, "git", fullArgs...)
	out, err := cmd.Output()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		stderr := strings.TrimSpace(string(exitErr.Stderr))
		return nil, fmt.Errorf("git command failed in %q: %s. If this is not a Git repository, verify the path or run 'git init'", repoPath, stderr)
	} else if err != nil {
		return nil, fmt.Errorf("git command failed: %w. Ensure Git is installed and available on your PATH", err)
	}
	return out, nil
}

// GetActivityLog implements the GitClient interface.
// Merge commits are diffed against their first parent and renames are
// reported as a deletion plus an addition.
func (c *LocalGitClient) GetActivityLog(ctx context.Context, repoPath string) ([]byte, error) {
	args := []string{
		"log",
		"--all",
		"--numstat",
		"--no-renames",
		"--diff-merges=first-parent",
		"--pretty=format:" + ActivityLogFormat,
	}
	return c.Run(ctx, repoPath, args...)
}

// GetRepoRoot implements the GitClient interface.
func (c *LocalGitClient) GetRepoRoot(ctx context.Context, contextPath string) (string, error) {
	out, err := c.Run(ctx, contextPath, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
