package server

import (
	"net/http"
	"strconv"

	"github.com/devinsight/devinsight/internal/contract"
)

// pageConfig clones base and applies the page, limit and ext query parameters.
func pageConfig(base *contract.Config, r *http.Request, defaultLimit int) (*contract.Config, error) {
	q := r.URL.Query()
	cfg := base.Clone()

	var err error
	if cfg.Page, err = intParam(q.Get("page"), "page", contract.DefaultPage); err != nil {
		return nil, err
	}
	if cfg.Limit, err = intParam(q.Get("limit"), "limit", defaultLimit); err != nil {
		return nil, err
	}
	if err := contract.ValidatePagination(cfg.Page, cfg.Limit); err != nil {
		return nil, err
	}
	cfg.Extensions = contract.ParseExtensions(q.Get("ext"))
	return cfg, nil
}

// applyFusionParams reads churn_threshold, complexity_threshold and top_n.
func applyFusionParams(cfg *contract.Config, r *http.Request) error {
	q := r.URL.Query()

	var err error
	if cfg.ChurnThreshold, err = intParam(q.Get("churn_threshold"), "churn_threshold", cfg.ChurnThreshold); err != nil {
		return err
	}
	if raw := q.Get("complexity_threshold"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return contract.NewValidationError("complexity_threshold", "must be a number (received %q)", raw)
		}
		cfg.ComplexityThreshold = v
	}
	if cfg.TopN, err = intParam(q.Get("top_n"), "top_n", cfg.TopN); err != nil {
		return err
	}
	return contract.ValidateThresholds(cfg.ChurnThreshold, cfg.ComplexityThreshold, cfg.TopN)
}

func intParam(raw, name string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, contract.NewValidationError(name, "must be an integer (received %q)", raw)
	}
	return v, nil
}
