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

// WriteChurnResults outputs churn records, dispatching based on the output format configured.
func WriteChurnResults(records []schema.ChurnRecord, cfg *contract.Config, duration time.Duration) error {
	_, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, nonNil(records))
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeChurnCSV(w, records, intFmt)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := parquet.WriteChurnParquet(parquet.ChurnRows(records, time.Now()), cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		reportParquet(cfg.OutputFile)
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeChurnTable(w, records, cfg, intFmt, duration)
		}, "Wrote table")
	}
	return nil
}

// writeChurnTable generates and writes the human-readable table.
func writeChurnTable(w io.Writer, records []schema.ChurnRecord, cfg *contract.Config, intFmt string, duration time.Duration) error {
	if len(records) == 0 {
		return writeEmpty(w)
	}
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Path", "Commits", "Authors", "Added", "Deleted", "Net"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	pathWidth := GetMaxTablePathWidth(cfg, churnColumnsWidth)
	var data [][]string
	totalAdded, totalDeleted := 0, 0
	for _, r := range records {
		data = append(data, []string{
			contract.TruncatePath(r.Path, pathWidth),
			fmt.Sprintf(intFmt, r.Commits),
			fmt.Sprintf(intFmt, r.Authors),
			fmt.Sprintf(intFmt, r.Additions),
			fmt.Sprintf(intFmt, r.Deletions),
			fmt.Sprintf(intFmt, r.NetChanges),
		})
		totalAdded += r.Additions
		totalDeleted += r.Deletions
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Showing %d files on page %d (lines added: %d, lines deleted: %d)\n", len(records), cfg.Page, totalAdded, totalDeleted); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Analysis completed in %v. History backend: %s\n", duration, cfg.HistoryBackend)
	return err
}

// writeChurnCSV writes churn records in CSV format.
func writeChurnCSV(w io.Writer, records []schema.ChurnRecord, intFmt string) error {
	header := []string{"file", "commits", "authors", "additions", "deletions", "net_changes"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range records {
			row := []string{
				r.Path,
				fmt.Sprintf(intFmt, r.Commits),
				fmt.Sprintf(intFmt, r.Authors),
				fmt.Sprintf(intFmt, r.Additions),
				fmt.Sprintf(intFmt, r.Deletions),
				fmt.Sprintf(intFmt, r.NetChanges),
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
		return nil
	})
}
