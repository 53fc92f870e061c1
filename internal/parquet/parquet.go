// Package parquet exports cleaned glucose tables and the run ledger to Parquet files
// using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/cgmprep/schema"
	"github.com/parquet-go/parquet-go"
)

// Run represents a single cleaning run with its outcome.
// This struct maps to the cgmprep_runs database table.
type Run struct {
	// RunID is the unique identifier for this run
	RunID int64 `parquet:"run_id,snappy"`

	// RunUUID is the random identifier assigned when the run began
	RunUUID string `parquet:"run_uuid,snappy"`

	// StartTime is when the run began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	Workbook      string `parquet:"workbook,snappy"`
	StartSheet    string `parquet:"start_sheet,snappy"`
	DaysRequested int32  `parquet:"days_requested,snappy"`
	DaysLoaded    int32  `parquet:"days_loaded,snappy"`
	TotalRows     int32  `parquet:"total_rows,snappy"`

	// Status is one of running, complete, partial, empty, failed
	Status string `parquet:"status,snappy"`

	// ConfigParams contains the JSON-encoded run parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// RunDay represents the outcome of one requested day sheet of a run.
// This struct maps to the cgmprep_run_days database table.
type RunDay struct {
	RunID        int64     `parquet:"run_id,snappy"`
	DayIndex     int32     `parquet:"day_index,snappy"`
	SheetName    string    `parquet:"sheet_name,snappy"`
	Rows         int32     `parquet:"rows,snappy"`
	Status       string    `parquet:"status,snappy"`
	ErrorMessage *string   `parquet:"error_message,optional,snappy"`
	RecordTime   time.Time `parquet:"record_time,snappy"`
}

// WriteRunsParquet writes a slice of Run structs to a Parquet file.
func WriteRunsParquet(data []Run, outputPath string) error {
	return writeRecords(data, outputPath)
}

// WriteRunDaysParquet writes a slice of RunDay structs to a Parquet file.
func WriteRunDaysParquet(data []RunDay, outputPath string) error {
	return writeRecords(data, outputPath)
}

// writeRecords writes records with a schema inferred from the struct tags of T.
func writeRecords[T any](data []T, outputPath string) error {
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

// ConvertRunRecords converts schema.RunRecord to Run for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []Run {
	result := make([]Run, len(records))
	for i, record := range records {
		result[i] = Run{
			RunID:         record.RunID,
			RunUUID:       record.RunUUID,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			Workbook:      record.Workbook,
			StartSheet:    record.StartSheet,
			DaysRequested: record.DaysRequested,
			DaysLoaded:    record.DaysLoaded,
			TotalRows:     record.TotalRows,
			Status:        record.Status,
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}

// ConvertDayRecords converts schema.DayRecord to RunDay for Parquet export.
func ConvertDayRecords(records []schema.DayRecord) []RunDay {
	result := make([]RunDay, len(records))
	for i, record := range records {
		result[i] = RunDay{
			RunID:        record.RunID,
			DayIndex:     record.DayIndex,
			SheetName:    record.SheetName,
			Rows:         record.Rows,
			Status:       record.Status,
			ErrorMessage: record.ErrorMessage,
			RecordTime:   record.RecordTime,
		}
	}
	return result
}

// TableSchema builds the Parquet schema of a cleaned table. Every column is
// optional so missing cells survive as nulls. Time columns are stored as
// nanosecond timestamps.
func TableSchema(t *schema.Table) *parquet.Schema {
	group := parquet.Group{}
	for _, col := range t.Columns() {
		var node parquet.Node
		switch col.Kind {
		case schema.StringKind:
			node = parquet.String()
		case schema.TimeKind:
			node = parquet.Timestamp(parquet.Nanosecond)
		default:
			node = parquet.Leaf(parquet.DoubleType)
		}
		group[col.Name] = parquet.Compressed(parquet.Optional(node), &parquet.Snappy)
	}
	return parquet.NewSchema("cgmprep", group)
}

// WriteTable writes a cleaned table to w as a single Parquet file.
func WriteTable(w io.Writer, t *schema.Table) error {
	sch := TableSchema(t)
	fields := sch.Fields()

	columns := make([]*schema.Column, len(fields))
	for i, field := range fields {
		col, ok := t.Column(field.Name())
		if !ok {
			return fmt.Errorf("column %q missing from table", field.Name())
		}
		columns[i] = col
	}

	writer := parquet.NewWriter(w, sch)
	rows := make([]parquet.Row, t.Len())
	for r := range rows {
		row := make(parquet.Row, len(columns))
		for c, col := range columns {
			row[c] = cellValue(col, r).Level(0, definitionLevel(col, r), c)
		}
		rows[r] = row
	}
	if _, err := writer.WriteRows(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write rows to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteTableParquet writes a cleaned table to a Parquet file at outputPath.
func WriteTableParquet(t *schema.Table, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()
	return WriteTable(file, t)
}

func cellValue(col *schema.Column, r int) parquet.Value {
	if col.IsMissing(r) {
		return parquet.NullValue()
	}
	switch col.Kind {
	case schema.StringKind:
		s, _ := col.StringAt(r)
		return parquet.ByteArrayValue([]byte(s))
	case schema.TimeKind:
		return parquet.Int64Value(col.Times()[r].UnixNano())
	default:
		return parquet.DoubleValue(col.Floats()[r])
	}
}

func definitionLevel(col *schema.Column, r int) int {
	if col.IsMissing(r) {
		return 0
	}
	return 1
}
