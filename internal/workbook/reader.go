// Package workbook reads day sheets out of a glucose monitor spreadsheet export.
package workbook

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/huangsam/cgmprep/internal/contract"
	"github.com/huangsam/cgmprep/schema"
	"github.com/xuri/excelize/v2"
)

// timeLayouts are the text timestamp forms seen in exports that were re-saved as text.
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/06 15:04",
	"Jan 2, 2006 3:04 PM",
	"Jan 2, 2006 15:04",
}

// Options controls how a sheet is turned into a table.
type Options struct {
	// HeaderRow is the 0-based row holding column names; data starts on the next row.
	HeaderRow int

	// DropColumns are header names removed from every sheet, matched case-insensitively.
	DropColumns []string
}

// Reader reads named sheets from one workbook.
type Reader struct {
	mu   sync.Mutex
	file *excelize.File
	path string
	opts Options
}

var _ contract.SheetReader = &Reader{} // Compile-time check

// Open opens the workbook at path.
func Open(path string, opts Options) (*Reader, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open workbook %q: %w", schema.ErrSourceUnavailable, path, err)
	}
	return &Reader{file: f, path: path, opts: opts}, nil
}

// Close releases the workbook.
func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.file.Close()
}

// Sheets lists the sheet names in workbook order.
func (r *Reader) Sheets() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.file.GetSheetList()
}

// ReadSheet loads the named sheet. The time column becomes a time column and every
// other kept column a string column, with empty cells missing. Blank rows are skipped.
func (r *Reader) ReadSheet(ctx context.Context, sheet string) (*schema.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !slices.Contains(r.file.GetSheetList(), sheet) {
		return nil, fmt.Errorf("%w: sheet %q not found in %s", schema.ErrSourceUnavailable, sheet, r.path)
	}
	rows, err := r.file.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read sheet %q: %w", schema.ErrSourceUnavailable, sheet, err)
	}
	return buildTable(rows, r.opts)
}

// buildTable converts raw spreadsheet rows into a typed table.
func buildTable(rows [][]string, opts Options) (*schema.Table, error) {
	if len(rows) <= opts.HeaderRow {
		return nil, fmt.Errorf("%w: header row %d not found (sheet has %d rows)", schema.ErrFormat, opts.HeaderRow, len(rows))
	}

	drop := make(map[string]struct{}, len(opts.DropColumns))
	for _, name := range opts.DropColumns {
		drop[strings.ToLower(strings.TrimSpace(name))] = struct{}{}
	}

	type field struct {
		name  string
		index int
	}
	var fields []field
	seen := make(map[string]struct{})
	for i, raw := range rows[opts.HeaderRow] {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		if _, ok := drop[strings.ToLower(name)]; ok {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		fields = append(fields, field{name: name, index: i})
	}
	if _, ok := seen[schema.TimeColumn]; !ok {
		return nil, fmt.Errorf("%w: no %q column in header row %d", schema.ErrFormat, schema.TimeColumn, opts.HeaderRow)
	}

	var data [][]string
	for _, row := range rows[opts.HeaderRow+1:] {
		if !isBlank(row) {
			data = append(data, row)
		}
	}

	table := schema.NewTable()
	for _, fd := range fields {
		var col *schema.Column
		if fd.name == schema.TimeColumn {
			times := make([]time.Time, len(data))
			for r, row := range data {
				raw := strings.TrimSpace(cell(row, fd.index))
				if raw == "" {
					continue
				}
				ts, err := ParseTimestamp(raw)
				if err != nil {
					return nil, fmt.Errorf("%w: row %d: %w", schema.ErrFormat, r, err)
				}
				times[r] = ts
			}
			col = schema.NewTimeColumn(fd.name, times)
		} else {
			values := make([]string, len(data))
			present := make([]bool, len(data))
			for r, row := range data {
				raw := strings.TrimSpace(cell(row, fd.index))
				values[r] = raw
				present[r] = raw != ""
			}
			col = schema.NewStringColumn(fd.name, values, present)
		}
		if err := table.SetColumn(col); err != nil {
			return nil, err
		}
	}
	return table, nil
}

// maxExcelSerial is Dec 31, 9999, the last date Excel can represent.
const maxExcelSerial = 2958465

// ParseTimestamp reads an Excel serial date or one of the known text layouts.
func ParseTimestamp(raw string) (time.Time, error) {
	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		if serial <= 0 || serial > maxExcelSerial || math.IsNaN(serial) {
			return time.Time{}, fmt.Errorf("invalid excel serial date %q", raw)
		}
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid excel serial date %q: %w", raw, err)
		}
		return t.Round(time.Second), nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", raw)
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
