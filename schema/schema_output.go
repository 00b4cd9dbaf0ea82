package schema

import (
	"fmt"
	"strings"
)

// Color returns the display color for the risk level.
func (r RiskLevel) Color() RiskColor {
	switch r {
	case HighRisk:
		return RedColor
	case MediumRisk:
		return OrangeColor
	default:
		return GreenColor
	}
}

// Severity orders risk levels so that High > Medium > Low.
func (r RiskLevel) Severity() int {
	switch r {
	case HighRisk:
		return 3
	case MediumRisk:
		return 2
	case LowRisk:
		return 1
	default:
		return 0
	}
}

// ParseRiskLevel parses a case-insensitive risk level name.
func ParseRiskLevel(s string) (RiskLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return HighRisk, nil
	case "medium":
		return MediumRisk, nil
	case "low":
		return LowRisk, nil
	default:
		return "", fmt.Errorf("invalid risk level '%s'. must be high, medium, low", s)
	}
}

// RankedHotspot adds presentation data to a HotspotRecord.
type RankedHotspot struct {
	Rank      int     `json:"rank"`
	RiskScore float64 `json:"risk_score"`
	HotspotRecord
}

// RankHotspots adds a 1-based rank and risk score to a list of hotspots.
// The rank is relative to the first item, so callers paginating should
// pass the page offset.
func RankHotspots(hotspots []HotspotRecord, offset int) []RankedHotspot {
	output := make([]RankedHotspot, len(hotspots))
	for i, h := range hotspots {
		output[i] = RankedHotspot{
			Rank:          offset + i + 1,
			RiskScore:     h.RiskScore(),
			HotspotRecord: h,
		}
	}
	return output
}

// CheckResult is the outcome of gating a repository on its hotspot risk levels.
type CheckResult struct {
	Passed              bool              `json:"passed"`
	FailOn              RiskLevel         `json:"fail_on"`
	ChurnThreshold      int               `json:"churn_threshold"`
	ComplexityThreshold float64           `json:"complexity_threshold"`
	TotalHotspots       int               `json:"total_hotspots"`
	Counts              map[RiskLevel]int `json:"counts"`
	Violations          []RankedHotspot   `json:"violations"` // Hotspots at or above FailOn, in rank order
}
