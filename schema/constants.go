package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// RiskLevel is the qualitative band assigned to a hotspot.
	RiskLevel string

	// RiskColor is the display color paired with a RiskLevel.
	RiskColor string

	// HistoryBackend selects how commit history is read.
	HistoryBackend string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All risk levels, from most to least severe.
const (
	HighRisk   RiskLevel = "High"
	MediumRisk RiskLevel = "Medium"
	LowRisk    RiskLevel = "Low"
)

// All risk colors.
const (
	RedColor    RiskColor = "red"
	OrangeColor RiskColor = "orange"
	GreenColor  RiskColor = "green"
)

// All history backends supported.
const (
	GitCLIBackend HistoryBackend = "git" // default
	GoGitBackend  HistoryBackend = "go-git"
)

// Risk band boundaries. A file is High when either axis reaches the high
// boundary, Medium when either reaches the medium one.
const (
	HighRiskCommits      = 10
	HighRiskComplexity   = 15.0
	MediumRiskCommits    = 5
	MediumRiskComplexity = 8.0
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidHistoryBackends lists all valid history backends.
var ValidHistoryBackends = map[HistoryBackend]struct{}{
	GitCLIBackend: {},
	GoGitBackend:  {},
}

// ValidRiskLevels lists all valid risk levels.
var ValidRiskLevels = map[RiskLevel]struct{}{
	HighRisk:   {},
	MediumRisk: {},
	LowRisk:    {},
}
