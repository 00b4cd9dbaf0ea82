package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/devinsight/devinsight/internal/contract"
	"github.com/devinsight/devinsight/internal/parquet"
	"github.com/devinsight/devinsight/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteComplexityResults outputs complexity records, dispatching based on the output format configured.
func WriteComplexityResults(records []schema.ComplexityRecord, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, nonNil(records))
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeComplexityCSV(w, records, fmtFloat, intFmt)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := parquet.WriteComplexityParquet(parquet.ComplexityRows(records, time.Now()), cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		reportParquet(cfg.OutputFile)
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeComplexityTable(w, records, cfg, fmtFloat, intFmt, duration)
		}, "Wrote table")
	}
	return nil
}

// writeComplexityTable generates and writes the human-readable table.
func writeComplexityTable(w io.Writer, records []schema.ComplexityRecord, cfg *contract.Config, fmtFloat func(float64) string, intFmt string, duration time.Duration) error {
	if len(records) == 0 {
		return writeEmpty(w)
	}
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Path", "Complexity", "Lines", "Functions", "Per Line"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	pathWidth := GetMaxTablePathWidth(cfg, complexityColumnsWidth)
	var data [][]string
	totalLines, totalFunctions := 0, 0
	for _, r := range records {
		data = append(data, []string{
			contract.TruncatePath(r.Path, pathWidth),
			fmtFloat(r.Complexity),
			fmt.Sprintf(intFmt, r.Lines),
			fmt.Sprintf(intFmt, r.Functions),
			// Per-line values are tiny, so they keep their stored precision
			fmt.Sprintf("%.4f", r.ComplexityPerLine),
		})
		totalLines += r.Lines
		totalFunctions += r.Functions
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Showing %d files on page %d (lines of code: %d, functions: %d)\n", len(records), cfg.Page, totalLines, totalFunctions); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Analysis completed in %v\n", duration)
	return err
}

// writeComplexityCSV writes complexity records in CSV format.
func writeComplexityCSV(w io.Writer, records []schema.ComplexityRecord, fmtFloat func(float64) string, intFmt string) error {
	header := []string{"file", "complexity", "lines", "functions", "complexity_per_line"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range records {
			row := []string{
				r.Path,
				fmtFloat(r.Complexity),
				fmt.Sprintf(intFmt, r.Lines),
				fmt.Sprintf(intFmt, r.Functions),
				fmt.Sprintf("%.4f", r.ComplexityPerLine),
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
		return nil
	})
}
