package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/devinsight/devinsight/core"
	"github.com/devinsight/devinsight/internal/contract"
)

// maxUploadSize caps the size of an uploaded repository archive.
const maxUploadSize = 512 << 20

// noRepositoryDetail is returned while no repository is selected.
const noRepositoryDetail = "No repo analyzed yet."

// statusResponse is the body of /analyze responses and of every error.
type statusResponse struct {
	Status    string `json:"status"`
	Detail    string `json:"detail"`
	SessionID string `json:"session_id,omitempty"`
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "devinsight is running"})
}

// handleAnalyze selects the repository for later requests, either from a local
// repo_path or from an uploaded zip archive.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(32 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid form: %v", err))
		return
	}

	if repoPath := r.FormValue("repo_path"); repoPath != "" {
		abs, err := filepath.Abs(repoPath)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid repo path.")
			return
		}
		sess, err := contract.OpenSession(r.Context(), s.deps.Git, abs, repoPath)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid repo path.")
			return
		}
		s.selectRepository(sess, "")
		writeJSON(w, http.StatusOK, statusResponse{
			Status:    "success",
			Detail:    fmt.Sprintf("Analyzed repo at %s", sess.RepoRoot),
			SessionID: sess.ID,
		})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil || header.Filename == "" {
		writeError(w, http.StatusBadRequest, "No repo path or file provided.")
		return
	}
	defer func() { _ = file.Close() }()

	uploadDir, root, err := extractUpload(file, header.Size)
	if err != nil {
		s.logger.Warn("Rejected upload", "file", header.Filename, "error", err, "requestID", GetRequestID(r.Context()))
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sess, err := contract.NewSession(root, header.Filename)
	if err != nil {
		removeDir(uploadDir)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.selectRepository(sess, uploadDir)
	writeJSON(w, http.StatusOK, statusResponse{
		Status:    "success",
		Detail:    fmt.Sprintf("Analyzed repo from zip: %s", header.Filename),
		SessionID: sess.ID,
	})
}

func (s *Server) handleChurnMetrics(w http.ResponseWriter, r *http.Request) {
	sess, release := s.acquireSession()
	defer release()
	cfg, err := pageConfig(s.baseCfg, r, contract.DefaultResultLimit)
	if err != nil {
		s.writeAnalysisError(w, r, err)
		return
	}
	records, err := core.GetChurnResults(r.Context(), cfg, sess, s.deps)
	if err != nil {
		s.writeAnalysisError(w, r, err)
		return
	}
	writeRecords(w, records)
}

func (s *Server) handleComplexityMetrics(w http.ResponseWriter, r *http.Request) {
	sess, release := s.acquireSession()
	defer release()
	cfg, err := pageConfig(s.baseCfg, r, contract.DefaultResultLimit)
	if err != nil {
		s.writeAnalysisError(w, r, err)
		return
	}
	records, err := core.GetComplexityResults(r.Context(), cfg, sess, s.deps)
	if err != nil {
		s.writeAnalysisError(w, r, err)
		return
	}
	writeRecords(w, records)
}

func (s *Server) handleHotspots(w http.ResponseWriter, r *http.Request) {
	sess, release := s.acquireSession()
	defer release()
	cfg, err := pageConfig(s.baseCfg, r, contract.DefaultHotspotLimit)
	if err == nil {
		err = applyFusionParams(cfg, r)
	}
	if err != nil {
		s.writeAnalysisError(w, r, err)
		return
	}
	hotspots, err := core.GetHotspotResults(r.Context(), cfg, sess, s.deps)
	if err != nil {
		s.writeAnalysisError(w, r, err)
		return
	}
	writeRecords(w, hotspots)
}

// writeAnalysisError maps analysis errors onto HTTP status codes.
func (s *Server) writeAnalysisError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, contract.ErrNoRepositorySelected):
		writeError(w, http.StatusBadRequest, noRepositoryDetail)
	case contract.IsValidationError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, contract.ErrResourceLimitExceeded):
		writeError(w, http.StatusRequestEntityTooLarge, err.Error())
	default:
		s.logger.Error("Analysis failed", "path", r.URL.Path, "error", err, "requestID", GetRequestID(r.Context()))
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// writeRecords answers 204 for an empty result and a JSON array otherwise.
func writeRecords[T any](w http.ResponseWriter, records []T) {
	if len(records) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, statusResponse{Status: "error", Detail: detail})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
