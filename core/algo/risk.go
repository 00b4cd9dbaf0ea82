package algo

import "github.com/devinsight/devinsight/schema"

// ClassifyRisk maps a (commits, complexity) pair to a fixed risk band.
// The bands are independent of the gating thresholds used by Fuse.
func ClassifyRisk(commits int, complexity float64) schema.RiskLevel {
	switch {
	case commits >= schema.HighRiskCommits || complexity >= schema.HighRiskComplexity:
		return schema.HighRisk
	case commits >= schema.MediumRiskCommits || complexity >= schema.MediumRiskComplexity:
		return schema.MediumRisk
	default:
		return schema.LowRisk
	}
}

// RiskScore is the ranking key of a hotspot.
func RiskScore(commits int, complexity float64) float64 {
	return float64(commits) * complexity
}
