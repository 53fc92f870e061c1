package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/huangsam/cgmprep/core/algo"
	"github.com/huangsam/cgmprep/internal/contract"
	"github.com/huangsam/cgmprep/schema"
)

// daySheetStages builds the Stage 1 steps for one sheet from the run configuration.
func daySheetStages(cfg *contract.Config) []namedSheetStage {
	return []namedSheetStage{
		{name: "encode trends", run: EncodeTrends(algo.TrendEncoder{GapMarkers: cfg.GapMarkers})},
		{name: "coerce numeric", run: CoerceNumericStage(schema.ExerciseColumn, schema.GlucoseColumn)},
		{name: "impute trend", run: Impute(schema.TrendColumn, algo.TrendCodePrecision)},
		{name: "check trend range", run: FlagTrendRange()},
		{name: "impute glucose", run: Impute(schema.GlucoseColumn, cfg.GlucosePrecision)},
	}
}

// EncodeTrends replaces the trend glyph column with ordinal codes.
// A trend column that is already numeric is left alone.
func EncodeTrends(enc algo.TrendEncoder) SheetStage {
	return func(t *schema.Table, _ *DayReport) error {
		col, ok := t.Column(schema.TrendColumn)
		if !ok {
			return fmt.Errorf("%w: no %q column", schema.ErrFormat, schema.TrendColumn)
		}
		if col.Kind == schema.FloatKind {
			return nil
		}
		if col.Kind != schema.StringKind {
			return fmt.Errorf("%w: %q is a %s column", schema.ErrFormat, schema.TrendColumn, col.Kind)
		}
		codes, err := enc.Encode(col.Strings())
		if err != nil {
			return err
		}
		return t.SetColumn(schema.NewFloatColumn(schema.TrendColumn, codes))
	}
}

// CoerceNumeric converts the named string columns to floats in place. Missing cells
// stay missing, float columns are left untouched, and an unknown column or a cell
// that is not a number is a CoercionError.
func CoerceNumeric(t *schema.Table, columns ...string) error {
	for _, name := range columns {
		col, ok := t.Column(name)
		if !ok {
			return &schema.CoercionError{Column: name, Row: -1, Value: "column not found"}
		}
		switch col.Kind {
		case schema.FloatKind:
			continue
		case schema.StringKind:
		default:
			return &schema.CoercionError{Column: name, Row: -1, Value: "cannot coerce a " + col.Kind.String() + " column"}
		}

		values, present := col.Strings()
		out := make([]float64, len(values))
		for i, raw := range values {
			if !present[i] {
				out[i] = math.NaN()
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil {
				return &schema.CoercionError{Column: name, Row: i, Value: raw}
			}
			out[i] = v
		}
		if err := t.SetColumn(schema.NewFloatColumn(name, out)); err != nil {
			return err
		}
	}
	return nil
}

// CoerceNumericStage wraps CoerceNumeric as a sheet stage.
func CoerceNumericStage(columns ...string) SheetStage {
	return func(t *schema.Table, _ *DayReport) error {
		return CoerceNumeric(t, columns...)
	}
}

// Impute fills interior gaps of a float column by linear interpolation and rounds
// the column to precision places. Leading and trailing gaps stay missing.
func Impute(column string, precision int) SheetStage {
	return func(t *schema.Table, rep *DayReport) error {
		col, ok := t.Column(column)
		if !ok {
			return fmt.Errorf("%w: no %q column", schema.ErrFormat, column)
		}
		if col.Kind != schema.FloatKind {
			return fmt.Errorf("%w: %q must be numeric before imputation", schema.ErrFormat, column)
		}
		before := algo.CountMissing(col.Floats())
		filled := algo.Interpolate(col.Floats(), precision)
		if rep != nil {
			rep.Imputed[column] += before - algo.CountMissing(filled)
		}
		return t.SetColumn(schema.NewFloatColumn(column, filled))
	}
}

// FlagTrendRange reports trend codes outside 0..6 without changing them.
func FlagTrendRange() SheetStage {
	return func(t *schema.Table, rep *DayReport) error {
		col, ok := t.Column(schema.TrendColumn)
		if !ok || col.Kind != schema.FloatKind {
			return fmt.Errorf("%w: no numeric %q column", schema.ErrFormat, schema.TrendColumn)
		}
		codes := col.Floats()
		for _, row := range algo.OutOfRangeTrends(codes) {
			if rep == nil {
				continue
			}
			rep.Flagged[schema.TrendColumn]++
			rep.Issues = append(rep.Issues, fmt.Sprintf("row %d: trend %g outside %d..%d", row, codes[row], algo.MinTrendCode, algo.MaxTrendCode))
		}
		return nil
	}
}
