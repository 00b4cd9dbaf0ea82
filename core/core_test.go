package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/devinsight/devinsight/internal/contract"
	"github.com/devinsight/devinsight/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// fixture is a small repository with a scripted history and engine.
type fixture struct {
	root    string
	sess    *contract.Session
	deps    *Deps
	history *contract.MockHistoryProvider
	engine  *contract.MockAnalysisEngine
}

// touches returns n commits changing path, spread over authors.
func touches(path string, n int, authors ...string) []schema.Commit {
	commits := make([]schema.Commit, n)
	for i := range n {
		commits[i] = schema.Commit{
			Hash:   fmt.Sprintf("%s-%d", path, i),
			Author: authors[i%len(authors)],
			Files:  []schema.FileChange{{Path: path, Additions: 2, Deletions: 1}},
		}
	}
	return commits
}

func analysis(cyclomatic int) *schema.FileAnalysis {
	return &schema.FileAnalysis{
		Lines:     10,
		Functions: []schema.FunctionComplexity{{Name: "f", Cyclomatic: cyclomatic}},
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	for _, name := range []string{"hot.py", "warm.py", "cold.py", "calm.go"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte("x = 1\n"), 0o644))
	}

	history := &contract.MockHistoryProvider{}
	history.Commits = append(history.Commits, touches("hot.py", 12, "a@x.io", "b@x.io")...)
	history.Commits = append(history.Commits, touches("warm.py", 6, "a@x.io")...)
	history.Commits = append(history.Commits, touches("cold.py", 6, "c@x.io")...)
	history.Commits = append(history.Commits, touches("calm.go", 1, "a@x.io")...)
	history.On("Walk", mock.Anything, root).Return(nil)

	engine := new(contract.MockAnalysisEngine)
	engine.On("AnalyzeFile", mock.Anything, filepath.Join(root, "hot.py")).Return(analysis(6), nil)
	engine.On("AnalyzeFile", mock.Anything, filepath.Join(root, "warm.py")).Return(analysis(6), nil)
	engine.On("AnalyzeFile", mock.Anything, filepath.Join(root, "cold.py")).Return(analysis(2), nil)
	engine.On("AnalyzeFile", mock.Anything, filepath.Join(root, "calm.go")).Return(analysis(20), nil)

	return &fixture{
		root:    root,
		sess:    &contract.Session{ID: "test", RepoRoot: root},
		deps:    &Deps{History: history, Engine: engine},
		history: history,
		engine:  engine,
	}
}

func testConfig() *contract.Config {
	return &contract.Config{
		MaxAnalyzableFiles:  contract.DefaultMaxAnalyzableFiles,
		MaxComplexityFiles:  contract.DefaultMaxComplexityFiles,
		Page:                1,
		Limit:               10,
		ChurnThreshold:      contract.DefaultChurnThreshold,
		ComplexityThreshold: contract.DefaultComplexityThreshold,
		TopN:                contract.DefaultTopN,
		FailOn:              schema.HighRisk,
	}
}

func paths[T any](items []T, path func(T) string) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = path(item)
	}
	return out
}

func TestGetChurnResults(t *testing.T) {
	f := newFixture(t)
	cfg := testConfig()
	cfg.Limit = 2

	records, err := GetChurnResults(context.Background(), cfg, f.sess, f.deps)
	require.NoError(t, err)
	assert.Equal(t, []string{"calm.go", "cold.py"}, paths(records, func(r schema.ChurnRecord) string { return r.Path }))

	cfg.Extensions = []string{".py"}
	records, err = GetChurnResults(context.Background(), cfg, f.sess, f.deps)
	require.NoError(t, err)
	assert.Equal(t, []string{"cold.py", "hot.py"}, paths(records, func(r schema.ChurnRecord) string { return r.Path }))
	assert.Equal(t, 12, records[1].Commits)
	assert.Equal(t, 2, records[1].Authors)
	assert.Equal(t, 12, records[1].NetChanges)
}

func TestGetComplexityResults(t *testing.T) {
	f := newFixture(t)
	cfg := testConfig()
	cfg.Page = 2
	cfg.Limit = 2

	records, err := GetComplexityResults(context.Background(), cfg, f.sess, f.deps)
	require.NoError(t, err)
	assert.Equal(t, []string{"hot.py", "warm.py"}, paths(records, func(r schema.ComplexityRecord) string { return r.Path }))
	assert.Equal(t, 6.0, records[0].Complexity)
}

func TestGetHotspotResults(t *testing.T) {
	f := newFixture(t)

	hotspots, err := GetHotspotResults(context.Background(), testConfig(), f.sess, f.deps)
	require.NoError(t, err)
	assert.Equal(t, []schema.HotspotRecord{
		{Path: "hot.py", Commits: 12, Complexity: 6, RiskLevel: schema.HighRisk, RiskColor: schema.RedColor},
		{Path: "warm.py", Commits: 6, Complexity: 6, RiskLevel: schema.MediumRisk, RiskColor: schema.OrangeColor},
	}, hotspots)

	cfg := testConfig()
	cfg.Page = 2
	cfg.Limit = 1
	hotspots, err = GetHotspotResults(context.Background(), cfg, f.sess, f.deps)
	require.NoError(t, err)
	require.Len(t, hotspots, 1)
	assert.Equal(t, "warm.py", hotspots[0].Path)
}

func TestGetHotspotResults_ResourceLimit(t *testing.T) {
	f := newFixture(t)
	cfg := testConfig()
	cfg.MaxComplexityFiles = 2

	_, err := GetHotspotResults(context.Background(), cfg, f.sess, f.deps)
	require.ErrorIs(t, err, contract.ErrResourceLimitExceeded)

	var limitErr *contract.ResourceLimitError
	require.ErrorAs(t, err, &limitErr)
	assert.Equal(t, 2, limitErr.Limit)
}

func TestGetResults_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := GetChurnResults(ctx, testConfig(), nil, f.deps)
	assert.ErrorIs(t, err, contract.ErrNoRepositorySelected)
	_, err = GetComplexityResults(ctx, testConfig(), &contract.Session{}, f.deps)
	assert.ErrorIs(t, err, contract.ErrNoRepositorySelected)
	_, err = GetHotspotResults(ctx, testConfig(), nil, f.deps)
	assert.ErrorIs(t, err, contract.ErrNoRepositorySelected)

	cfg := testConfig()
	cfg.Page = 0
	_, err = GetChurnResults(ctx, cfg, f.sess, f.deps)
	assert.True(t, contract.IsValidationError(err))

	cfg = testConfig()
	cfg.ComplexityThreshold = -1
	_, err = GetHotspotResults(ctx, cfg, f.sess, f.deps)
	assert.True(t, contract.IsValidationError(err))

	walkErr := errors.New("walk failed")
	history := &contract.MockHistoryProvider{}
	history.On("Walk", mock.Anything, f.root).Return(walkErr)
	_, err = GetHotspotResults(ctx, testConfig(), f.sess, &Deps{History: history, Engine: f.engine})
	assert.ErrorIs(t, err, walkErr)
}

func TestNewDeps(t *testing.T) {
	deps, err := NewDeps(&contract.Config{HistoryBackend: schema.GoGitBackend}, nil)
	require.NoError(t, err)
	assert.NotNil(t, deps.History)
	assert.NotNil(t, deps.Engine)
	assert.NotNil(t, deps.Git)

	_, err = NewDeps(&contract.Config{HistoryBackend: "svn"}, nil)
	assert.Error(t, err)
}

func TestProgressContext(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, progressFromContext(ctx))
	assert.Equal(t, ctx, withProgress(ctx, nil))

	var seen []string
	ctx = withProgress(ctx, func(p string) { seen = append(seen, p) })
	progressFromContext(ctx)("a.py")
	assert.Equal(t, []string{"a.py"}, seen)
}

func TestGetComplexityResults_ReportsProgress(t *testing.T) {
	f := newFixture(t)
	count := 0
	ctx := withProgress(context.Background(), func(string) { count++ })

	_, err := GetComplexityResults(ctx, testConfig(), f.sess, f.deps)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestExecuteChurn_InvalidRepo(t *testing.T) {
	cfg := testConfig()
	cfg.RepoPath = filepath.Join(t.TempDir(), "missing")
	assert.Error(t, ExecuteChurn(context.Background(), cfg))
	assert.Error(t, ExecuteComplexity(context.Background(), cfg))
	assert.Error(t, ExecuteHotspots(context.Background(), cfg))
	assert.Error(t, ExecuteCheck(context.Background(), cfg))
}

func TestBuildCheckResult(t *testing.T) {
	hotspots := []schema.HotspotRecord{
		{Path: "a.py", Commits: 12, Complexity: 6, RiskLevel: schema.HighRisk},
		{Path: "b.py", Commits: 6, Complexity: 6, RiskLevel: schema.MediumRisk},
		{Path: "c.py", Commits: 1, Complexity: 6, RiskLevel: schema.LowRisk},
	}

	tests := []struct {
		failOn     schema.RiskLevel
		violations int
	}{
		{schema.HighRisk, 1},
		{schema.MediumRisk, 2},
		{schema.LowRisk, 3},
		{"", 1},
	}
	for _, tt := range tests {
		t.Run(string(tt.failOn), func(t *testing.T) {
			cfg := testConfig()
			cfg.FailOn = tt.failOn
			result := BuildCheckResult(hotspots, cfg)
			assert.Len(t, result.Violations, tt.violations)
			assert.False(t, result.Passed)
			assert.Equal(t, 3, result.TotalHotspots)
			assert.Equal(t, 1, result.Counts[schema.MediumRisk])
			assert.Equal(t, 1, result.Violations[0].Rank)
		})
	}

	result := BuildCheckResult(nil, testConfig())
	assert.True(t, result.Passed)
	assert.Empty(t, result.Violations)
}

func TestPrintCheckResult(t *testing.T) {
	var hotspots []schema.HotspotRecord
	for i := range 7 {
		hotspots = append(hotspots, schema.HotspotRecord{Path: fmt.Sprintf("f%d.py", i), Commits: 20, Complexity: 9, RiskLevel: schema.HighRisk})
	}
	result := BuildCheckResult(hotspots, testConfig())

	var buf bytes.Buffer
	require.NoError(t, printCheckResult(&buf, result, 0))
	out := buf.String()
	assert.Contains(t, out, "Policy Check Results:")
	assert.Contains(t, out, "commits >= 5, complexity >= 5.0")
	assert.Contains(t, out, "❌ Policy check failed: 7 violation(s) found across 7 hotspots")
	assert.Contains(t, out, "f4.py")
	assert.NotContains(t, out, "f5.py")
	assert.Contains(t, out, "... and 2 more")

	buf.Reset()
	require.NoError(t, printCheckResult(&buf, BuildCheckResult(nil, testConfig()), 0))
	assert.Contains(t, buf.String(), "✅ All files passed policy checks")
}
