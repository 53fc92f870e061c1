package schema

import (
	"errors"
	"fmt"
)

// Error kinds of the cleaning pipeline. Check them with errors.Is.
var (
	// ErrConfig is raised for invalid run parameters, before any I/O happens.
	ErrConfig = errors.New("invalid configuration")

	// ErrFormat is raised when a cell cannot be interpreted.
	ErrFormat = errors.New("malformed data")

	// ErrSourceUnavailable is raised when a requested day sheet cannot be read.
	ErrSourceUnavailable = errors.New("source unavailable")
)

// CoercionError reports a cell that could not be converted to a number.
type CoercionError struct {
	Column string
	Row    int
	Value  string
}

func (e *CoercionError) Error() string {
	if e.Row < 0 {
		return fmt.Sprintf("column %q: %s", e.Column, e.Value)
	}
	return fmt.Sprintf("column %q row %d: cannot coerce %q to a number", e.Column, e.Row, e.Value)
}

// Unwrap lets errors.Is match ErrFormat.
func (e *CoercionError) Unwrap() error { return ErrFormat }

// TrendSymbolError reports a trend glyph that is neither a known symbol nor a gap marker.
type TrendSymbolError struct {
	Row    int
	Symbol string
}

func (e *TrendSymbolError) Error() string {
	return fmt.Sprintf("row %d: unknown trend symbol %q", e.Row, e.Symbol)
}

// Unwrap lets errors.Is match ErrFormat.
func (e *TrendSymbolError) Unwrap() error { return ErrFormat }
