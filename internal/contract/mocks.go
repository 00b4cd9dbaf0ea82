package contract

import (
	"context"

	"github.com/devinsight/devinsight/schema"
	"github.com/stretchr/testify/mock"
)

// MockGitClient is a mock implementation of GitClient for testing.
type MockGitClient struct {
	mock.Mock
}

var _ GitClient = &MockGitClient{} // Compile-time check

// Run implements the GitClient interface.
func (m *MockGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	var mockArgs []any
	mockArgs = append(mockArgs, ctx, repoPath)
	for _, arg := range args {
		mockArgs = append(mockArgs, arg)
	}
	ret := m.Called(mockArgs...)
	output, _ := ret.Get(0).([]byte)
	return output, ret.Error(1)
}

// GetActivityLog implements the GitClient interface.
func (m *MockGitClient) GetActivityLog(ctx context.Context, repoPath string) ([]byte, error) {
	ret := m.Called(ctx, repoPath)
	output, _ := ret.Get(0).([]byte)
	return output, ret.Error(1)
}

// GetRepoRoot implements the GitClient interface.
func (m *MockGitClient) GetRepoRoot(ctx context.Context, contextPath string) (string, error) {
	ret := m.Called(ctx, contextPath)
	root, _ := ret.Get(0).(string)
	return root, ret.Error(1)
}

// MockHistoryProvider replays a fixed list of commits, or returns Err.
type MockHistoryProvider struct {
	mock.Mock
	Commits []schema.Commit
}

var _ HistoryProvider = &MockHistoryProvider{} // Compile-time check

// Walk implements the HistoryProvider interface.
func (m *MockHistoryProvider) Walk(ctx context.Context, repoPath string, visit func(schema.Commit) error) error {
	ret := m.Called(ctx, repoPath)
	if err := ret.Error(0); err != nil {
		return err
	}
	for _, c := range m.Commits {
		if err := visit(c); err != nil {
			return err
		}
	}
	return nil
}

// MockAnalysisEngine is a mock implementation of AnalysisEngine for testing.
type MockAnalysisEngine struct {
	mock.Mock
}

var _ AnalysisEngine = &MockAnalysisEngine{} // Compile-time check

// AnalyzeFile implements the AnalysisEngine interface.
func (m *MockAnalysisEngine) AnalyzeFile(ctx context.Context, path string) (*schema.FileAnalysis, error) {
	ret := m.Called(ctx, path)
	fa, _ := ret.Get(0).(*schema.FileAnalysis)
	return fa, ret.Error(1)
}
