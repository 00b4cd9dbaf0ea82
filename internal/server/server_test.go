package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/devinsight/devinsight/core"
	"github.com/devinsight/devinsight/internal/contract"
	"github.com/devinsight/devinsight/schema"
	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// newTestServer returns a server whose history touches app.py six times and
// whose engine reports a mean complexity of 7 for every file.
func newTestServer(t *testing.T, mutate func(*contract.Config)) *Server {
	t.Helper()
	history := &contract.MockHistoryProvider{}
	for i := range 6 {
		history.Commits = append(history.Commits, schema.Commit{
			Hash:   fmt.Sprintf("c%d", i),
			Author: "dev@example.com",
			Files:  []schema.FileChange{{Path: "app.py", Additions: 2, Deletions: 1}},
		})
	}
	history.On("Walk", mock.Anything, mock.Anything).Return(nil)

	engine := new(contract.MockAnalysisEngine)
	engine.On("AnalyzeFile", mock.Anything, mock.Anything).Return(&schema.FileAnalysis{
		Lines:     10,
		Functions: []schema.FunctionComplexity{{Name: "f", Cyclomatic: 7}},
	}, nil)

	cfg := &contract.Config{
		Addr:                "127.0.0.1:0",
		MaxAnalyzableFiles:  contract.DefaultMaxAnalyzableFiles,
		MaxComplexityFiles:  contract.DefaultMaxComplexityFiles,
		ChurnThreshold:      contract.DefaultChurnThreshold,
		ComplexityThreshold: contract.DefaultComplexityThreshold,
		TopN:                contract.DefaultTopN,
	}
	if mutate != nil {
		mutate(cfg)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := NewServer(cfg, &core.Deps{History: history, Engine: engine}, logger)
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	return s
}

// newRepo creates a working tree with app.py and lib.go.
func newRepo(t *testing.T) string {
	t.Helper()
	repo := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(repo, "app.py"), []byte("x = 1\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(repo, "lib.go"), []byte("package lib\n"), 0o644))
	return repo
}

func do(s *Server, method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func analyzePath(t *testing.T, s *Server, repo string) statusResponse {
	t.Helper()
	form := url.Values{"repo_path": {repo}}
	rec := do(s, http.MethodPost, "/analyze", strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp statusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func decodeStatus(t *testing.T, rec *httptest.ResponseRecorder) statusResponse {
	t.Helper()
	var resp statusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestRoot(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(s, http.MethodGet, "/", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"devinsight is running"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = do(s, http.MethodGet, "/unknown", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRequestIDIsPropagated(t *testing.T) {
	s := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))
}

func TestMetricsWithoutRepository(t *testing.T) {
	s := newTestServer(t, nil)
	for _, path := range []string{"/churn-metrics", "/complexity-metrics", "/hotspots"} {
		rec := do(s, http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
		resp := decodeStatus(t, rec)
		assert.Equal(t, "error", resp.Status)
		assert.Equal(t, noRepositoryDetail, resp.Detail)
	}
}

func TestAnalyze_RepoPath(t *testing.T) {
	s := newTestServer(t, nil)
	repo := newRepo(t)

	resp := analyzePath(t, s, repo)
	assert.Equal(t, "success", resp.Status)
	assert.Contains(t, resp.Detail, repo)
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, resp.SessionID, s.currentSession().ID)
}

func TestAnalyze_Invalid(t *testing.T) {
	s := newTestServer(t, nil)

	form := url.Values{"repo_path": {filepath.Join(t.TempDir(), "missing")}}
	rec := do(s, http.MethodPost, "/analyze", strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid repo path.", decodeStatus(t, rec).Detail)

	rec = do(s, http.MethodPost, "/analyze", strings.NewReader(""), "application/x-www-form-urlencoded")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No repo path or file provided.", decodeStatus(t, rec).Detail)
	assert.Nil(t, s.currentSession())
}

func TestChurnMetrics(t *testing.T) {
	s := newTestServer(t, nil)
	analyzePath(t, s, newRepo(t))

	rec := do(s, http.MethodGet, "/churn-metrics?page=1&limit=5", nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var records []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "app.py", records[0]["file"])
	assert.EqualValues(t, 6, records[0]["commits"])
	assert.EqualValues(t, 6, records[0]["net_changes"])

	rec = do(s, http.MethodGet, "/churn-metrics?ext=go", nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = do(s, http.MethodGet, "/churn-metrics?page=2", nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestComplexityMetrics(t *testing.T) {
	s := newTestServer(t, nil)
	analyzePath(t, s, newRepo(t))

	rec := do(s, http.MethodGet, "/complexity-metrics", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var records []schema.ComplexityRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 2)
	assert.Equal(t, "app.py", records[0].Path)
	assert.Equal(t, "lib.go", records[1].Path)
	assert.Equal(t, 0.7, records[1].ComplexityPerLine)
}

func TestHotspots(t *testing.T) {
	s := newTestServer(t, nil)
	analyzePath(t, s, newRepo(t))

	rec := do(s, http.MethodGet, "/hotspots", nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var hotspots []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &hotspots))
	require.Len(t, hotspots, 1)
	assert.Equal(t, "app.py", hotspots[0]["file"])
	assert.Equal(t, "Medium", hotspots[0]["risk_level"])
	assert.Equal(t, "orange", hotspots[0]["color"])

	rec = do(s, http.MethodGet, "/hotspots?churn_threshold=10", nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(s, http.MethodGet, "/hotspots?top_n=0", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code, "top_n=0 disables truncation")

	rec = do(s, http.MethodGet, "/hotspots?page=2", nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestParameterErrors(t *testing.T) {
	s := newTestServer(t, nil)
	analyzePath(t, s, newRepo(t))

	for _, target := range []string{
		"/churn-metrics?page=0",
		"/churn-metrics?limit=1001",
		"/complexity-metrics?limit=abc",
		"/hotspots?complexity_threshold=high",
		"/hotspots?churn_threshold=-1",
	} {
		rec := do(s, http.MethodGet, target, nil, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.Equal(t, "error", decodeStatus(t, rec).Status, target)
	}
}

func TestResourceLimit(t *testing.T) {
	s := newTestServer(t, func(cfg *contract.Config) { cfg.MaxComplexityFiles = 1 })
	analyzePath(t, s, newRepo(t))

	rec := do(s, http.MethodGet, "/complexity-metrics", nil, "")
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	detail := decodeStatus(t, rec).Detail
	assert.Contains(t, detail, "2")
	assert.Contains(t, detail, "1")
}

// zipBody builds a multipart body holding a zip archive with the given entries.
func zipBody(t *testing.T, entries map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var archive bytes.Buffer
	zw := zip.NewWriter(&archive)
	for name, content := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "repo.zip")
	require.NoError(t, err)
	_, err = part.Write(archive.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func TestAnalyze_ZipUpload(t *testing.T) {
	s := newTestServer(t, nil)

	body, contentType := zipBody(t, map[string]string{
		"project/app.py":    "x = 1\n",
		"project/lib/a.go":  "package lib\n",
		"zzz/other.py":      "y = 2\n",
		"top-level-file.md": "# readme\n",
	})
	rec := do(s, http.MethodPost, "/analyze", body, contentType)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Analyzed repo from zip: repo.zip", decodeStatus(t, rec).Detail)

	sess := s.currentSession()
	require.NotNil(t, sess)
	assert.Equal(t, "project", filepath.Base(sess.RepoRoot))
	assert.FileExists(t, filepath.Join(sess.RepoRoot, "lib", "a.go"))
	uploadDir := filepath.Dir(sess.RepoRoot)

	// Reselecting removes the previous upload
	analyzePath(t, s, newRepo(t))
	assert.NoDirExists(t, uploadDir)
}

func TestAnalyze_ReselectKeepsUploadUntilReleased(t *testing.T) {
	s := newTestServer(t, nil)
	body, contentType := zipBody(t, map[string]string{"project/app.py": "x = 1\n"})
	rec := do(s, http.MethodPost, "/analyze", body, contentType)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	held, release := s.acquireSession()
	require.NotNil(t, held)
	uploadDir := filepath.Dir(held.RepoRoot)

	analyzePath(t, s, newRepo(t))
	assert.NotEqual(t, held.ID, s.currentSession().ID)
	assert.FileExists(t, filepath.Join(held.RepoRoot, "app.py"), "a running request still reads the old upload")

	release()
	assert.NoDirExists(t, uploadDir)
}

func TestAcquireSession_NoSelection(t *testing.T) {
	s := newTestServer(t, nil)
	sess, release := s.acquireSession()
	assert.Nil(t, sess)
	release()
}

func TestAnalyze_ZipRejected(t *testing.T) {
	tests := []struct {
		name    string
		entries map[string]string
		detail  string
	}{
		{"zip slip", map[string]string{"../evil.py": "x = 1\n"}, "zip"},
		{"no directory", map[string]string{"app.py": "x = 1\n"}, "no repo found in zip"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, nil)
			body, contentType := zipBody(t, tt.entries)
			rec := do(s, http.MethodPost, "/analyze", body, contentType)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, decodeStatus(t, rec).Detail, tt.detail)
			assert.Nil(t, s.currentSession())
		})
	}
}

func TestAnalyze_ZipDecompressedBudget(t *testing.T) {
	saved := maxExtractedSize
	maxExtractedSize = 16
	t.Cleanup(func() { maxExtractedSize = saved })

	t.Run("exact fit", func(t *testing.T) {
		s := newTestServer(t, nil)
		body, contentType := zipBody(t, map[string]string{"project/app.py": strings.Repeat("x", 16)})
		rec := do(s, http.MethodPost, "/analyze", body, contentType)
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})

	t.Run("over budget across entries", func(t *testing.T) {
		s := newTestServer(t, nil)
		body, contentType := zipBody(t, map[string]string{
			"project/a.py": strings.Repeat("a", 10),
			"project/b.py": strings.Repeat("b", 10),
		})
		rec := do(s, http.MethodPost, "/analyze", body, contentType)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decodeStatus(t, rec).Detail, "exceeds 16 bytes when decompressed")
		assert.Nil(t, s.currentSession())
	})
}

func TestRecoveryMiddleware(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := RecoveryMiddleware(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal server error")
}

func TestShutdownRemovesUpload(t *testing.T) {
	s := newTestServer(t, nil)
	body, contentType := zipBody(t, map[string]string{"project/app.py": "x = 1\n"})
	rec := do(s, http.MethodPost, "/analyze", body, contentType)
	require.Equal(t, http.StatusOK, rec.Code)
	uploadDir := filepath.Dir(s.currentSession().RepoRoot)

	require.NoError(t, s.Shutdown(context.Background()))
	assert.NoDirExists(t, uploadDir)
	assert.Nil(t, s.currentSession())
}

func TestShutdownKeepsHeldUpload(t *testing.T) {
	s := newTestServer(t, nil)
	body, contentType := zipBody(t, map[string]string{"project/app.py": "x = 1\n"})
	rec := do(s, http.MethodPost, "/analyze", body, contentType)
	require.Equal(t, http.StatusOK, rec.Code)

	held, release := s.acquireSession()
	uploadDir := filepath.Dir(held.RepoRoot)
	require.NoError(t, s.Shutdown(context.Background()))
	assert.DirExists(t, uploadDir)

	release()
	assert.NoDirExists(t, uploadDir)
}

func TestNewLogger(t *testing.T) {
	ctx := context.Background()
	assert.True(t, NewLogger("debug").Enabled(ctx, slog.LevelDebug))
	assert.False(t, NewLogger("warn").Enabled(ctx, slog.LevelInfo))
	assert.True(t, NewLogger("bogus").Enabled(ctx, slog.LevelInfo))
}

func TestAnalyze_SubdirectoryResolvesToRepoRoot(t *testing.T) {
	repo := newRepo(t)
	sub := filepath.Join(repo, "src")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	s := newTestServer(t, nil)
	git := new(contract.MockGitClient)
	git.On("GetRepoRoot", mock.Anything, sub).Return(repo, nil)
	s.deps.Git = git

	resp := analyzePath(t, s, sub)
	assert.Equal(t, "Analyzed repo at "+filepath.Clean(repo), resp.Detail)

	rec := do(s, http.MethodGet, "/churn-metrics", nil, "")
	require.Equal(t, http.StatusOK, rec.Code, "a subdirectory must not silently yield an empty result")
	var records []schema.ChurnRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "app.py", records[0].Path)
	git.AssertExpectations(t)
}
