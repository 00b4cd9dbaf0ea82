// Package parquet provides data structures and functions for exporting devinsight
// metrics to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/devinsight/devinsight/schema"
	"github.com/parquet-go/parquet-go"
)

// ChurnRow is the Parquet layout of a churn record.
type ChurnRow struct {
	// FilePath is the normalized path relative to the repository root
	FilePath string `parquet:"file_path,snappy"`

	Commits    int32 `parquet:"commits,snappy"`
	Authors    int32 `parquet:"authors,snappy"`
	Additions  int64 `parquet:"additions,snappy"`
	Deletions  int64 `parquet:"deletions,snappy"`
	NetChanges int64 `parquet:"net_changes,snappy"`

	// AnalysisTime is when the export was produced (stored as TIMESTAMP with nanosecond precision)
	AnalysisTime time.Time `parquet:"analysis_time,snappy"`
}

// ComplexityRow is the Parquet layout of a complexity record.
type ComplexityRow struct {
	FilePath          string    `parquet:"file_path,snappy"`
	Complexity        float64   `parquet:"complexity,snappy"`
	Lines             int32     `parquet:"lines,snappy"`
	Functions         int32     `parquet:"functions,snappy"`
	ComplexityPerLine float64   `parquet:"complexity_per_line,snappy"`
	AnalysisTime      time.Time `parquet:"analysis_time,snappy"`
}

// HotspotRow is the Parquet layout of a ranked hotspot.
type HotspotRow struct {
	Rank       int32   `parquet:"rank,snappy"`
	FilePath   string  `parquet:"file_path,snappy"`
	Commits    int32   `parquet:"commits,snappy"`
	Complexity float64 `parquet:"complexity,snappy"`

	// RiskScore is commits x complexity, the ordering key
	RiskScore float64 `parquet:"risk_score,snappy"`

	RiskLevel    string    `parquet:"risk_level,snappy"`
	Color        string    `parquet:"color,snappy"`
	AnalysisTime time.Time `parquet:"analysis_time,snappy"`
}

// ChurnRows converts churn records into rows stamped with at.
func ChurnRows(records []schema.ChurnRecord, at time.Time) []ChurnRow {
	rows := make([]ChurnRow, len(records))
	for i, r := range records {
		rows[i] = ChurnRow{
			FilePath:     r.Path,
			Commits:      int32(r.Commits),
			Authors:      int32(r.Authors),
			Additions:    int64(r.Additions),
			Deletions:    int64(r.Deletions),
			NetChanges:   int64(r.NetChanges),
			AnalysisTime: at,
		}
	}
	return rows
}

// ComplexityRows converts complexity records into rows stamped with at.
func ComplexityRows(records []schema.ComplexityRecord, at time.Time) []ComplexityRow {
	rows := make([]ComplexityRow, len(records))
	for i, r := range records {
		rows[i] = ComplexityRow{
			FilePath:          r.Path,
			Complexity:        r.Complexity,
			Lines:             int32(r.Lines),
			Functions:         int32(r.Functions),
			ComplexityPerLine: r.ComplexityPerLine,
			AnalysisTime:      at,
		}
	}
	return rows
}

// HotspotRows converts ranked hotspots into rows stamped with at.
func HotspotRows(hotspots []schema.RankedHotspot, at time.Time) []HotspotRow {
	rows := make([]HotspotRow, len(hotspots))
	for i, h := range hotspots {
		rows[i] = HotspotRow{
			Rank:         int32(h.Rank),
			FilePath:     h.Path,
			Commits:      int32(h.Commits),
			Complexity:   h.Complexity,
			RiskScore:    h.RiskScore,
			RiskLevel:    string(h.RiskLevel),
			Color:        string(h.RiskColor),
			AnalysisTime: at,
		}
	}
	return rows
}

// WriteChurnParquet writes churn rows to a Parquet file.
func WriteChurnParquet(data []ChurnRow, outputPath string) error {
	return writeRows(data, outputPath)
}

// WriteComplexityParquet writes complexity rows to a Parquet file.
func WriteComplexityParquet(data []ComplexityRow, outputPath string) error {
	return writeRows(data, outputPath)
}

// WriteHotspotsParquet writes hotspot rows to a Parquet file.
func WriteHotspotsParquet(data []HotspotRow, outputPath string) error {
	return writeRows(data, outputPath)
}

// writeRows writes a slice of rows to outputPath. The schema is derived from the
// struct tags of T.
func writeRows[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}
