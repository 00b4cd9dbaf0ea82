package algo

import (
	"github.com/devinsight/devinsight/internal/contract"
	"github.com/devinsight/devinsight/schema"
)

// FuseOptions controls gating, truncation and pagination of hotspot fusion.
type FuseOptions struct {
	ChurnThreshold      int      // Minimum commits for a candidate
	ComplexityThreshold float64  // Minimum mean complexity for a candidate
	TopN                int      // Truncation before pagination, <= 0 keeps all
	Page                int      // 1-based page
	Limit               int      // Items per page
	Extensions          []string // Optional ".ext" filter applied to both inputs
}

// FilterByExtension keeps the records whose path has one of exts.
// An empty exts returns the input unchanged.
func FilterByExtension[T any](records []T, exts []string, path func(T) string) []T {
	if len(exts) == 0 {
		return records
	}
	out := make([]T, 0, len(records))
	for _, r := range records {
		if contract.HasExtension(path(r), exts) {
			out = append(out, r)
		}
	}
	return out
}

// Fuse joins churn and complexity records on their normalized path into a ranked,
// risk-classified and paginated hotspot list. A file qualifies only when it appears
// in both inputs and meets both thresholds.
func Fuse(churn []schema.ChurnRecord, complexity []schema.ComplexityRecord, opts FuseOptions) []schema.HotspotRecord {
	ranked := RankedHotspots(churn, complexity, opts)
	return Paginate(ranked, opts.Page, opts.Limit)
}

// RankedHotspots runs every fusion step except pagination: filtering, gating,
// classification, stable ranking and top-N truncation.
func RankedHotspots(churn []schema.ChurnRecord, complexity []schema.ComplexityRecord, opts FuseOptions) []schema.HotspotRecord {
	churn = FilterByExtension(churn, opts.Extensions, func(r schema.ChurnRecord) string { return r.Path })
	complexity = FilterByExtension(complexity, opts.Extensions, func(r schema.ComplexityRecord) string { return r.Path })

	complexityByPath := make(map[string]float64, len(complexity))
	for _, r := range complexity {
		complexityByPath[contract.NormalizePath(r.Path)] = r.Complexity
	}

	hotspots := make([]schema.HotspotRecord, 0)
	for _, r := range churn {
		cx, ok := complexityByPath[contract.NormalizePath(r.Path)]
		if !ok || r.Commits < opts.ChurnThreshold || cx < opts.ComplexityThreshold {
			continue
		}
		level := ClassifyRisk(r.Commits, cx)
		hotspots = append(hotspots, schema.HotspotRecord{
			Path:       r.Path,
			Commits:    r.Commits,
			Complexity: cx,
			RiskLevel:  level,
			RiskColor:  level.Color(),
		})
	}

	RankHotspots(hotspots)
	return TopN(hotspots, opts.TopN)
}
