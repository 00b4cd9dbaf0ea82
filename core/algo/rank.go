// Package algo has the pure ranking, gating and risk logic behind hotspot fusion.
package algo

import (
	"sort"

	"github.com/devinsight/devinsight/schema"
)

// Paginate returns the slice of items for a 1-based page. A page or limit below 1,
// or an offset past the end, yields an empty (non-nil) slice rather than an error.
func Paginate[T any](items []T, page, limit int) []T {
	if page < 1 || limit < 1 {
		return []T{}
	}
	offset := (page - 1) * limit
	if offset >= len(items) || offset < 0 {
		return []T{}
	}
	end := min(offset+limit, len(items))
	return items[offset:end]
}

// PageOffset returns the index of the first item on page.
func PageOffset(page, limit int) int {
	if page < 1 || limit < 1 {
		return 0
	}
	return (page - 1) * limit
}

// TopN truncates items to the first n. Non-positive n keeps everything.
func TopN[T any](items []T, n int) []T {
	if n > 0 && len(items) > n {
		return items[:n]
	}
	return items
}

// RankHotspots sorts hotspots by risk score in descending order.
// Ties keep their prior relative order.
func RankHotspots(hotspots []schema.HotspotRecord) {
	sort.SliceStable(hotspots, func(i, j int) bool {
		return hotspots[i].RiskScore() > hotspots[j].RiskScore()
	})
}
