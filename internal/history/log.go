package history

import (
	"context"
	"strconv"
	"strings"

	"github.com/devinsight/devinsight/internal/contract"
	"github.com/devinsight/devinsight/schema"
)

// LogProvider reads history from `git log --numstat` output.
type LogProvider struct {
	client contract.GitClient
}

var _ contract.HistoryProvider = &LogProvider{} // Compile-time check

// NewLogProvider creates a LogProvider backed by client.
func NewLogProvider(client contract.GitClient) *LogProvider {
	return &LogProvider{client: client}
}

// Walk runs a single repository-wide git log across all refs and calls visit once per commit.
func (p *LogProvider) Walk(ctx context.Context, repoPath string, visit func(schema.Commit) error) error {
	out, err := p.client.GetActivityLog(ctx, repoPath)
	if err != nil {
		return err
	}
	return parseActivityLog(ctx, out, visit)
}

// parseActivityLog processes the git log output and emits one Commit per header line.
func parseActivityLog(ctx context.Context, out []byte, visit func(schema.Commit) error) error {
	var current *schema.Commit

	flush := func() error {
		if current == nil {
			return nil
		}
		c := *current
		current = nil
		return visit(c)
	}

	for l := range strings.SplitSeq(string(out), "\n") {
		l = strings.TrimRight(l, " \r")

		if strings.HasPrefix(l, contract.CommitHeaderPrefix) {
			if err := flush(); err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			hash, author := parseCommitHeader(l)
			current = &schema.Commit{Hash: hash, Author: author}
			continue
		}
		if l == "" || current == nil {
			continue // Skip blank lines and anything before the first header
		}

		current.Files = append(current.Files, parseFileStatsLine(l)...)
	}
	return flush()
}

// parseCommitHeader extracts the hash and author identity from "--hash|email|name".
// The e-mail identifies the author; the name is used only when the e-mail is empty.
func parseCommitHeader(line string) (string, string) {
	if !strings.HasPrefix(line, contract.CommitHeaderPrefix) {
		return "", ""
	}
	parts := strings.SplitN(line[len(contract.CommitHeaderPrefix):], "|", 3) // hash|email|name
	hash := parts[0]
	var email, name string
	if len(parts) > 1 {
		email = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 {
		name = strings.TrimSpace(parts[2])
	}
	if email != "" {
		return hash, email
	}
	return hash, name
}

// parseFileStatsLine parses "add<TAB>del<TAB>path" into file changes.
// A rename yields one change for each side.
func parseFileStatsLine(line string) []schema.FileChange {
	parts := strings.SplitN(line, "\t", 3)
	if len(parts) < 3 {
		return nil
	}

	add := parseChurnValue(parts[0])
	del := parseChurnValue(parts[1])
	path := unquotePath(parts[2])
	if path == "" {
		return nil
	}

	if !strings.Contains(path, " => ") {
		return []schema.FileChange{{Path: path, Additions: add, Deletions: del}}
	}

	oldPath, newPath := parseRenamePath(path)
	var changes []schema.FileChange
	for _, p := range []string{oldPath, newPath} {
		if p != "" {
			changes = append(changes, schema.FileChange{Path: p, Additions: add, Deletions: del})
		}
	}
	return changes
}

// parseChurnValue converts a churn string to int, handling "-" (binary) as 0.
func parseChurnValue(s string) int {
	if s == "-" {
		return 0
	}
	if val, err := strconv.Atoi(s); err == nil && val >= 0 {
		return val
	}
	return 0
}

// unquotePath undoes git's C-style quoting of unusual path names.
func unquotePath(p string) string {
	p = strings.TrimSpace(p)
	if len(p) >= 2 && strings.HasPrefix(p, `"`) && strings.HasSuffix(p, `"`) {
		if unq, err := strconv.Unquote(p); err == nil {
			return unq
		}
	}
	return p
}

// parseRenamePath extracts old and new paths from a rename string.
func parseRenamePath(path string) (string, string) {
	if !strings.Contains(path, "{") {
		// Simple format: "old => new"
		parts := strings.SplitN(path, " => ", 2)
		if len(parts) == 2 {
			return parts[0], parts[1]
		}
		return "", ""
	}

	braceStart := strings.Index(path, "{")
	braceEnd := strings.Index(path, "}")
	if braceStart == -1 || braceEnd == -1 || braceStart >= braceEnd {
		return "", ""
	}

	// Braced format: prefix{old => new}suffix
	prefix := path[:braceStart]
	renamePart := path[braceStart+1 : braceEnd]
	suffix := path[braceEnd+1:]

	renameParts := strings.SplitN(renamePart, " => ", 2)
	if len(renameParts) != 2 {
		return "", ""
	}
	return joinRenamePath(prefix, renameParts[0], suffix), joinRenamePath(prefix, renameParts[1], suffix)
}

// joinRenamePath rebuilds one side of a braced rename. An empty side such as
// "{ => sub}/a.go" must not leave a double slash behind.
func joinRenamePath(prefix, middle, suffix string) string {
	if middle == "" {
		return strings.TrimPrefix(prefix+strings.TrimPrefix(suffix, "/"), "/")
	}
	return prefix + middle + suffix
}
