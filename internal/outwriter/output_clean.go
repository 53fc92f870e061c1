package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/huangsam/cgmprep/internal/contract"
	"github.com/huangsam/cgmprep/internal/parquet"
	"github.com/huangsam/cgmprep/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/xuri/excelize/v2"
)

// Sheet names of the xlsx output.
const (
	cleanedSheet = "cleaned"
	daysSheet    = "days"
)

// WriteCleanResult outputs a cleaning run, dispatching based on the output format configured.
// A partial run also prints a warning to stderr.
func WriteCleanResult(result *schema.PipelineResult, cfg *contract.Config, duration time.Duration) error {
	if result == nil || result.Table == nil {
		return fmt.Errorf("no result to write")
	}
	if result.Partial() {
		writePartialWarning(os.Stderr, result)
	}

	// Dispatcher: Handle different output formats
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCleanJSON(w, result)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCleanCSV(w, result.Table, createFormatter(cfg.Precision))
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return parquet.WriteTable(w, result.Table)
		}, "Wrote Parquet"); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	case schema.XLSXOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCleanXLSX(w, result)
		}, "Wrote workbook"); err != nil {
			return fmt.Errorf("error writing xlsx output: %w", err)
		}
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCleanTable(w, result, cfg, duration)
		}, "Wrote table")
	}
	return nil
}

// writePartialWarning names the day that ended the run early.
func writePartialWarning(w io.Writer, result *schema.PipelineResult) {
	f := result.Failure
	_, _ = contract.WarnColor.Fprintf(w, "⚠️  Partial result: stopped at %q (day %d): %s\n", f.Sheet, f.Index+1, f.Error)
	_, _ = fmt.Fprintf(w, "Kept %d of %d requested days\n", result.Summary.DaysLoaded, result.Summary.DaysRequested)
}

// writeCleanTable writes a preview of the first cfg.Limit rows and the run summary.
func writeCleanTable(w io.Writer, result *schema.PipelineResult, cfg *contract.Config, duration time.Duration) error {
	t := result.Table
	fmtFloat := createFormatter(cfg.Precision)
	columns := t.Columns()
	glucose, hasGlucose := t.Column(schema.GlucoseColumn)

	// 1. Define Headers
	labelWidth := GetMaxColumnLabelWidth(cfg, len(columns))
	headers := []string{"Row"}
	for _, col := range columns {
		headers = append(headers, contract.TruncateLabel(col.Name, labelWidth))
	}
	if hasGlucose {
		headers = append(headers, "Range")
	}

	table := tablewriter.NewWriter(w)
	table.Header(headers)

	// 2. Configure Alignment
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	// 3. Populate Rows
	shown := min(cfg.Limit, t.Len())
	if cfg.Limit <= 0 {
		shown = t.Len()
	}
	var data [][]string
	for r := range shown {
		row := []string{strconv.Itoa(r + 1)}
		for _, col := range columns {
			row = append(row, formatCell(col, r, fmtFloat, "-"))
		}
		if hasGlucose {
			row = append(row, rangeLabel(glucose, r, cfg.UseColors))
		}
		data = append(data, row)
	}

	// 4. Render the table
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	s := result.Summary
	if _, err := fmt.Fprintf(w, "Showing %d of %d rows from %d of %d days\n", shown, s.Rows, s.DaysLoaded, s.DaysRequested); err != nil {
		return err
	}
	if s.Rows-s.MissingGlucose > 0 {
		if _, err := fmt.Fprintf(w, "Glucose mean %s mmol/L (sd %s), %s%% below / %s%% in / %s%% above range\n",
			fmtFloat(s.GlucoseMean), fmtFloat(s.GlucoseStdDev),
			fmtFloat(s.PercentBelow), fmtFloat(s.PercentInRange), fmtFloat(s.PercentAbove)); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "Cleaning completed in %v with %d workers. Runs backend: %s\n", duration, cfg.Workers, cfg.RunsBackend); err != nil {
		return err
	}
	return nil
}

// rangeLabel labels the glucose reading at row r.
func rangeLabel(glucose *schema.Column, r int, useColors bool) string {
	if glucose.Kind != schema.FloatKind || glucose.IsMissing(r) {
		return "-"
	}
	if useColors {
		return contract.GetColorLabel(glucose.Floats()[r])
	}
	return contract.GetPlainLabel(glucose.Floats()[r])
}

// writeCleanCSV writes every row of the table. Missing cells are empty.
func writeCleanCSV(w io.Writer, t *schema.Table, fmtFloat func(float64) string) error {
	columns := t.Columns()
	return writeCSVWithHeader(w, t.Names(), func(csvWriter *csv.Writer) error {
		rec := make([]string, len(columns))
		for r := range t.Len() {
			for c, col := range columns {
				rec[c] = formatCell(col, r, fmtFloat, "")
			}
			if err := csvWriter.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// CleanDocument is the JSON document of a cleaning run.
type CleanDocument struct {
	Summary schema.Summary      `json:"summary"`
	Days    []schema.DayOutcome `json:"days"`
	Partial bool                `json:"partial"`
	Columns []string            `json:"columns"`
	Rows    [][]any             `json:"rows"`
}

// NewCleanDocument builds the JSON document of result with at most limit rows,
// or every row when limit is not positive. Rows are arrays ordered like Columns
// and missing cells are null.
func NewCleanDocument(result *schema.PipelineResult, limit int) CleanDocument {
	t := result.Table
	n := t.Len()
	if limit > 0 {
		n = min(n, limit)
	}
	doc := CleanDocument{
		Summary: result.Summary,
		Days:    result.Days,
		Partial: result.Partial(),
		Columns: t.Names(),
		Rows:    make([][]any, n),
	}
	columns := t.Columns()
	for r := range doc.Rows {
		row := make([]any, len(columns))
		for c, col := range columns {
			row[c] = cellValue(col, r)
		}
		doc.Rows[r] = row
	}
	return doc
}

// writeCleanJSON writes the summary, the day outcomes and every row.
func writeCleanJSON(w io.Writer, result *schema.PipelineResult) error {
	return writeJSON(w, NewCleanDocument(result, 0))
}

// writeCleanXLSX writes the table to a "cleaned" sheet and the day outcomes to a "days" sheet.
func writeCleanXLSX(w io.Writer, result *schema.PipelineResult) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", cleanedSheet); err != nil {
		return err
	}
	t := result.Table
	if err := setRow(f, cleanedSheet, 1, toAny(t.Names())); err != nil {
		return err
	}
	columns := t.Columns()
	for r := range t.Len() {
		row := make([]any, len(columns))
		for c, col := range columns {
			row[c] = cellValue(col, r)
		}
		if err := setRow(f, cleanedSheet, r+2, row); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(daysSheet); err != nil {
		return err
	}
	if err := setRow(f, daysSheet, 1, []any{"index", "sheet", "rows", "status", "error"}); err != nil {
		return err
	}
	for i, day := range result.Days {
		row := []any{day.Index, day.Sheet, day.Rows, string(day.Status), day.Error}
		if err := setRow(f, daysSheet, i+2, row); err != nil {
			return err
		}
	}

	return f.Write(w)
}

// setRow writes values to the given 1-based row starting at column A.
func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
