package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/huangsam/cgmprep/internal/contract"
	"github.com/huangsam/cgmprep/schema"
)

// writeWithFile handles the common pattern of opening a file, writing to it, and cleaning up.
// It accepts a writer function that takes an io.Writer and returns an error.
func writeWithFile(outputFile string, writer func(io.Writer) error, successMsg string) error {
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	// Only close if it's not stdout
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}

	if err := writer(file); err != nil {
		return err
	}

	if file != os.Stdout {
		_, _ = fmt.Fprintf(os.Stderr, "💾 %s to %s\n", successMsg, outputFile)
	}
	return nil
}

// writeJSON is a generic JSON encoder that handles indentation consistently.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeCSVWithHeader handles the common pattern of creating a CSV writer,
// writing a header, and writing data rows.
func writeCSVWithHeader(w io.Writer, header []string, writeRows func(*csv.Writer) error) error {
	csvWriter := csv.NewWriter(w)

	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := writeRows(csvWriter); err != nil {
		return err
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

// createFormatter creates the float formatter shared by the text and csv outputs.
func createFormatter(precision int) func(float64) string {
	return func(v float64) string {
		return fmt.Sprintf("%.*f", precision, v)
	}
}

// formatCell renders row r of col, using missing for an absent value.
func formatCell(col *schema.Column, r int, fmtFloat func(float64) string, missing string) string {
	if col.IsMissing(r) {
		return missing
	}
	switch col.Kind {
	case schema.StringKind:
		s, _ := col.StringAt(r)
		return s
	case schema.TimeKind:
		return col.Times()[r].Format(contract.DateTimeFormat)
	default:
		return fmtFloat(col.Floats()[r])
	}
}

// cellValue returns row r of col as a JSON or spreadsheet value, nil when missing.
func cellValue(col *schema.Column, r int) any {
	if col.IsMissing(r) {
		return nil
	}
	switch col.Kind {
	case schema.StringKind:
		s, _ := col.StringAt(r)
		return s
	case schema.TimeKind:
		return col.Times()[r]
	default:
		v := col.Floats()[r]
		if math.IsInf(v, 0) {
			return nil
		}
		return v
	}
}
