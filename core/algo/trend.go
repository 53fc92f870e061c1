// Package algo holds the pure numeric and sequential algorithms of the cleaning pipeline.
package algo

import (
	"math"
	"slices"
	"strings"

	"github.com/huangsam/cgmprep/schema"
)

// Trend codes range from steeply falling to steeply rising.
const (
	MinTrendCode = 0
	MaxTrendCode = 6

	// TrendCodePrecision keeps imputed trends on whole ordinal codes.
	TrendCodePrecision = 0
)

// trendSymbols is indexed by trend code.
var trendSymbols = [...]string{"↓↓", "↓", "➘", "→", "➚", "↑", "↑↑"}

// DefaultGapMarkers are placeholder glyphs the monitor writes for unknown trends.
var DefaultGapMarkers = []string{"?"}

// TrendSymbols returns the canonical glyphs ordered by code.
func TrendSymbols() []string {
	return slices.Clone(trendSymbols[:])
}

// TrendCode returns the ordinal code of a canonical glyph.
func TrendCode(symbol string) (int, bool) {
	for code, s := range trendSymbols {
		if s == symbol {
			return code, true
		}
	}
	return 0, false
}

// TrendSymbol returns the glyph for a code.
func TrendSymbol(code int) (string, bool) {
	if code < MinTrendCode || code > MaxTrendCode {
		return "", false
	}
	return trendSymbols[code], true
}

// TrendEncoder maps trend glyphs to codes.
type TrendEncoder struct {
	GapMarkers []string
}

// Encode converts one column of glyphs. present marks non-missing entries.
// Gap markers and missing entries become NaN; anything else unknown is a
// TrendSymbolError.
func (e TrendEncoder) Encode(values []string, present []bool) ([]float64, error) {
	out := make([]float64, len(values))
	for i, raw := range values {
		if !present[i] {
			out[i] = math.NaN()
			continue
		}
		symbol := strings.TrimSpace(raw)
		if code, ok := TrendCode(symbol); ok {
			out[i] = float64(code)
			continue
		}
		if slices.Contains(e.GapMarkers, symbol) {
			out[i] = math.NaN()
			continue
		}
		return nil, &schema.TrendSymbolError{Row: i, Symbol: raw}
	}
	return out, nil
}

// OutOfRangeTrends returns the rows holding a non-missing code outside 0..6.
func OutOfRangeTrends(codes []float64) []int {
	var rows []int
	for i, v := range codes {
		if math.IsNaN(v) {
			continue
		}
		if v < MinTrendCode || v > MaxTrendCode {
			rows = append(rows, i)
		}
	}
	return rows
}
