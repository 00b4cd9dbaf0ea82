// Package schema has the models shared by all parts of devinsight.
package schema

// ChurnRecord holds the change statistics of one file across the full history.
type ChurnRecord struct {
	Path       string `json:"file"`        // Normalized path relative to the repository root
	Commits    int    `json:"commits"`     // Distinct commits touching the file
	Authors    int    `json:"authors"`     // Distinct author identities among those commits
	Additions  int    `json:"additions"`   // Total lines added
	Deletions  int    `json:"deletions"`   // Total lines deleted
	NetChanges int    `json:"net_changes"` // Additions minus deletions
}

// ComplexityRecord holds the static complexity of one file in the working tree.
type ComplexityRecord struct {
	Path              string  `json:"file"`
	Complexity        float64 `json:"complexity"`          // Mean cyclomatic complexity, 2 decimals
	Lines             int     `json:"lines"`               // Non-comment lines of code
	Functions         int     `json:"functions"`           // Number of detected functions
	ComplexityPerLine float64 `json:"complexity_per_line"` // Complexity / Lines, 4 decimals
}

// HotspotRecord joins churn and complexity for a file that passed both gates.
type HotspotRecord struct {
	Path       string    `json:"file"`
	Commits    int       `json:"commits"`
	Complexity float64   `json:"complexity"`
	RiskLevel  RiskLevel `json:"risk_level"`
	RiskColor  RiskColor `json:"color"`
}

// RiskScore is the ordering key of a hotspot.
func (h HotspotRecord) RiskScore() float64 {
	return float64(h.Commits) * h.Complexity
}

// FileChange is one file touched by one commit.
type FileChange struct {
	Path      string // Path as reported by the history, relative to the root
	Additions int
	Deletions int
}

// Commit is a provider-neutral view of a single commit.
type Commit struct {
	Hash   string
	Author string // E-mail, or the name when no e-mail is recorded
	Files  []FileChange
}

// FunctionComplexity is the engine result for one function.
type FunctionComplexity struct {
	Name       string `json:"name"`
	StartLine  int    `json:"start_line"`
	EndLine    int    `json:"end_line"`
	Cyclomatic int    `json:"cyclomatic"`
}

// FileAnalysis is the engine result for one file.
type FileAnalysis struct {
	Path      string               `json:"path"`
	Language  string               `json:"language"`
	Functions []FunctionComplexity `json:"functions"`
	Lines     int                  `json:"lines"`
}

// MeanCyclomatic returns the mean cyclomatic complexity across functions,
// or 0 when the file has none.
func (f *FileAnalysis) MeanCyclomatic() float64 {
	if len(f.Functions) == 0 {
		return 0
	}
	total := 0
	for _, fn := range f.Functions {
		total += fn.Cyclomatic
	}
	return float64(total) / float64(len(f.Functions))
}
