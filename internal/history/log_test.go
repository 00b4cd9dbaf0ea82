package history

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/devinsight/devinsight/internal/contract"
	"github.com/devinsight/devinsight/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// logScenario represents a single commit for test log generation.
type logScenario struct {
	hash  string
	email string
	name  string
	files []string // Raw numstat lines
}

// generateTestGitLog creates a programmatic git log fixture for testing.
func generateTestGitLog(scenarios []logScenario) []byte {
	var lines []string
	for _, s := range scenarios {
		lines = append(lines, fmt.Sprintf("--%s|%s|%s", s.hash, s.email, s.name))
		lines = append(lines, s.files...)
		lines = append(lines, "") // Empty line between commits
	}
	return []byte(strings.Join(lines, "\n"))
}

// collect parses out and returns every emitted commit.
func collect(t *testing.T, out []byte) []schema.Commit {
	t.Helper()
	var commits []schema.Commit
	require.NoError(t, parseActivityLog(context.Background(), out, func(c schema.Commit) error {
		commits = append(commits, c)
		return nil
	}))
	return commits
}

func TestParseActivityLog(t *testing.T) {
	out := generateTestGitLog([]logScenario{
		{hash: "abc123", email: "alice@example.com", name: "Alice", files: []string{
			"10\t2\tsrc/app.py",
			"3\t0\tREADME.md",
		}},
		{hash: "def456", email: "", name: "Bob", files: []string{
			"-\t-\tassets/logo.png",
		}},
		{hash: "ghi789", email: "carol@example.com", name: "Carol"}, // Merge without numstat
	})

	commits := collect(t, out)
	require.Len(t, commits, 3)

	assert.Equal(t, "abc123", commits[0].Hash)
	assert.Equal(t, "alice@example.com", commits[0].Author)
	assert.Equal(t, []schema.FileChange{
		{Path: "src/app.py", Additions: 10, Deletions: 2},
		{Path: "README.md", Additions: 3, Deletions: 0},
	}, commits[0].Files)

	assert.Equal(t, "Bob", commits[1].Author, "name is used when e-mail is empty")
	assert.Equal(t, []schema.FileChange{{Path: "assets/logo.png"}}, commits[1].Files)

	assert.Equal(t, "carol@example.com", commits[2].Author)
	assert.Empty(t, commits[2].Files)
}

func TestParseActivityLog_IgnoresNoise(t *testing.T) {
	out := []byte("stray line before header\n\n--h1|a@x|A\r\n1\t1\ta.go\r\nnot a stat line\n")
	commits := collect(t, out)
	require.Len(t, commits, 1)
	assert.Equal(t, []schema.FileChange{{Path: "a.go", Additions: 1, Deletions: 1}}, commits[0].Files)
}

func TestParseActivityLog_VisitError(t *testing.T) {
	out := generateTestGitLog([]logScenario{
		{hash: "a", email: "a@x", files: []string{"1\t0\ta.go"}},
		{hash: "b", email: "b@x", files: []string{"1\t0\tb.go"}},
	})
	stop := errors.New("stop")

	calls := 0
	err := parseActivityLog(context.Background(), out, func(schema.Commit) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

func TestParseActivityLog_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := generateTestGitLog([]logScenario{{hash: "a", email: "a@x", files: []string{"1\t0\ta.go"}}})
	err := parseActivityLog(ctx, out, func(schema.Commit) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseFileStatsLine(t *testing.T) {
	tests := []struct {
		line     string
		expected []schema.FileChange
	}{
		{"5\t3\tmain.go", []schema.FileChange{{Path: "main.go", Additions: 5, Deletions: 3}}},
		{"-\t-\timage.png", []schema.FileChange{{Path: "image.png"}}},
		{"2\t1\told.go => new.go", []schema.FileChange{
			{Path: "old.go", Additions: 2, Deletions: 1},
			{Path: "new.go", Additions: 2, Deletions: 1},
		}},
		{"0\t0\tsrc/{a => b}/x.go", []schema.FileChange{{Path: "src/a/x.go"}, {Path: "src/b/x.go"}}},
		{"1\t0\tsrc/{ => sub}/x.go", []schema.FileChange{
			{Path: "src/x.go", Additions: 1},
			{Path: "src/sub/x.go", Additions: 1},
		}},
		{"4\t0\t\"dir/with \\\"quote\\\".py\"", []schema.FileChange{{Path: `dir/with "quote".py`, Additions: 4}}},
		{"4\t0", nil},
		{"4\t0\t", nil},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseFileStatsLine(tt.line))
		})
	}
}

func TestParseChurnValue(t *testing.T) {
	assert.Equal(t, 0, parseChurnValue("-"))
	assert.Equal(t, 42, parseChurnValue("42"))
	assert.Equal(t, 0, parseChurnValue("-3"))
	assert.Equal(t, 0, parseChurnValue("abc"))
}

func TestParseRenamePath(t *testing.T) {
	tests := []struct {
		path, oldPath, newPath string
	}{
		{"a.go => b.go", "a.go", "b.go"},
		{"pkg/{old => new}.go", "pkg/old.go", "pkg/new.go"},
		{"{lib => src}/util.go", "lib/util.go", "src/util.go"},
		{"pkg/{broken", "", ""},
		{"pkg/{no arrow}/x.go", "", ""},
		{"plain.go", "", ""},
	}
	for _, tt := range tests {
		oldPath, newPath := parseRenamePath(tt.path)
		assert.Equal(t, tt.oldPath, oldPath, tt.path)
		assert.Equal(t, tt.newPath, newPath, tt.path)
	}
}

func TestParseCommitHeader(t *testing.T) {
	hash, author := parseCommitHeader("--abc|a@x.com|Alice Smith")
	assert.Equal(t, "abc", hash)
	assert.Equal(t, "a@x.com", author)

	hash, author = parseCommitHeader("--abc||Alice Smith")
	assert.Equal(t, "abc", hash)
	assert.Equal(t, "Alice Smith", author)

	hash, author = parseCommitHeader("abc|a@x|A")
	assert.Empty(t, hash)
	assert.Empty(t, author)
}

func TestLogProvider_Walk(t *testing.T) {
	client := new(contract.MockGitClient)
	out := generateTestGitLog([]logScenario{{hash: "a", email: "a@x", files: []string{"1\t2\tmain.go"}}})
	client.On("GetActivityLog", mock.Anything, "/repo").Return(out, nil).Once()

	var commits []schema.Commit
	err := NewLogProvider(client).Walk(context.Background(), "/repo", func(c schema.Commit) error {
		commits = append(commits, c)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, commits, 1)
	assert.Equal(t, []schema.FileChange{{Path: "main.go", Additions: 1, Deletions: 2}}, commits[0].Files)
	client.AssertExpectations(t)
}

func TestLogProvider_WalkError(t *testing.T) {
	client := new(contract.MockGitClient)
	client.On("GetActivityLog", mock.Anything, "/repo").Return(nil, errors.New("not a git repository")).Once()

	err := NewLogProvider(client).Walk(context.Background(), "/repo", func(schema.Commit) error { return nil })
	assert.ErrorContains(t, err, "not a git repository")
}

func TestNew(t *testing.T) {
	p, err := New(schema.GitCLIBackend, nil)
	require.NoError(t, err)
	assert.IsType(t, &LogProvider{}, p)

	p, err = New(schema.GoGitBackend, nil)
	require.NoError(t, err)
	assert.IsType(t, &GoGitProvider{}, p)

	_, err = New("svn", nil)
	assert.Error(t, err)
}
