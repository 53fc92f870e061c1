package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
)

// Glucose range label constants.
const (
	VeryLowValue = "Very Low" // VeryLowValue is below 3.0 mmol/L
	LowValue     = "Low"      // LowValue is below 3.9 mmol/L
	InRangeValue = "In Range" // InRangeValue is 3.9 to 10.0 mmol/L
	HighValue    = "High"     // HighValue is above 10.0 mmol/L
)

// Glucose range boundaries in mmol/L.
const (
	VeryLowBound = 3.0
	LowBound     = 3.9
	HighBound    = 10.0
)

// Color variables for console output.
var (
	VeryLowColor = color.New(color.FgRed, color.Bold) // VeryLowColor represents urgent danger.
	LowColor     = color.New(color.FgRed)             // LowColor represents standard danger.
	InRangeColor = color.New(color.FgGreen)           // InRangeColor represents the target range.
	HighColor    = color.New(color.FgYellow)          // HighColor represents standard caution.
	WarnColor    = color.New(color.FgYellow, color.Bold)
)

// GetPlainLabel returns a plain text label for a glucose reading.
// This is the core logic used for CSV, JSON, and table printing.
func GetPlainLabel(mmol float64) string {
	switch {
	case mmol < VeryLowBound:
		return VeryLowValue
	case mmol < LowBound:
		return LowValue
	case mmol <= HighBound:
		return InRangeValue
	default:
		return HighValue
	}
}

// GetColorLabel returns a colored text label for console output (table).
func GetColorLabel(mmol float64) string {
	text := GetPlainLabel(mmol)

	switch text {
	case VeryLowValue:
		return VeryLowColor.Sprint(text)
	case LowValue:
		return LowColor.Sprint(text)
	case InRangeValue:
		return InRangeColor.Sprint(text)
	default: // "High"
		return HighColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path means os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetRunsDBFilePath returns the path to the SQLite DB file for the run ledger.
func GetRunsDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".cgmprep_runs.db"
	}
	return filepath.Join(homeDir, ".cgmprep_runs.db")
}

// TruncateLabel shortens a column label to maxWidth runes with an ellipsis suffix.
// Requires maxWidth > 3 so that at least one character of content remains.
func TruncateLabel(label string, maxWidth int) string {
	runes := []rune(label)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return label
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
