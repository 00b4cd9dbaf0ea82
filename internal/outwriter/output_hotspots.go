package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/devinsight/devinsight/internal/contract"
	"github.com/devinsight/devinsight/internal/parquet"
	"github.com/devinsight/devinsight/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteHotspotResults outputs ranked hotspots, dispatching based on the output format configured.
func WriteHotspotResults(hotspots []schema.RankedHotspot, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, nonNil(hotspots))
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeHotspotCSV(w, hotspots, fmtFloat, intFmt)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := parquet.WriteHotspotsParquet(parquet.HotspotRows(hotspots, time.Now()), cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		reportParquet(cfg.OutputFile)
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeHotspotTable(w, hotspots, cfg, fmtFloat, intFmt, duration)
		}, "Wrote table")
	}
	return nil
}

// writeHotspotTable generates and writes the human-readable table.
func writeHotspotTable(w io.Writer, hotspots []schema.RankedHotspot, cfg *contract.Config, fmtFloat func(float64) string, intFmt string, duration time.Duration) error {
	if len(hotspots) == 0 {
		return writeEmpty(w)
	}
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Rank", "Path", "Commits", "Complexity", "Score", "Risk"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	pathWidth := GetMaxTablePathWidth(cfg, hotspotColumnsWidth)
	var data [][]string
	counts := make(map[schema.RiskLevel]int, len(schema.ValidRiskLevels))
	for _, h := range hotspots {
		data = append(data, []string{
			strconv.Itoa(h.Rank),
			contract.TruncatePath(h.Path, pathWidth),
			fmt.Sprintf(intFmt, h.Commits),
			fmtFloat(h.Complexity),
			fmtFloat(h.RiskScore),
			contract.GetColorLabel(h.RiskLevel),
		})
		counts[h.RiskLevel]++
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Showing %d hotspots (high: %d, medium: %d, low: %d)\n",
		len(hotspots), counts[schema.HighRisk], counts[schema.MediumRisk], counts[schema.LowRisk]); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Analysis completed in %v. Thresholds: commits >= %d, complexity >= %s\n",
		duration, cfg.ChurnThreshold, fmtFloat(cfg.ComplexityThreshold))
	return err
}

// writeHotspotCSV writes ranked hotspots in CSV format.
func writeHotspotCSV(w io.Writer, hotspots []schema.RankedHotspot, fmtFloat func(float64) string, intFmt string) error {
	header := []string{"rank", "file", "commits", "complexity", "risk_score", "risk_level", "color"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, h := range hotspots {
			row := []string{
				strconv.Itoa(h.Rank),
				h.Path,
				fmt.Sprintf(intFmt, h.Commits),
				fmtFloat(h.Complexity),
				fmtFloat(h.RiskScore),
				string(h.RiskLevel),
				string(h.RiskColor),
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
		return nil
	})
}
