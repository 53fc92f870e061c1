package core

import (
	"math"

	"github.com/huangsam/cgmprep/internal/contract"
	"github.com/huangsam/cgmprep/schema"
	"gonum.org/v1/gonum/stat"
)

// baseColumns are the cleaned columns that are not activity indicators.
var baseColumns = map[string]struct{}{
	schema.TimeColumn:      {},
	schema.GlucoseColumn:   {},
	schema.TrendColumn:     {},
	schema.ExerciseColumn:  {},
	schema.DayColumn:       {},
	schema.MonthColumn:     {},
	schema.YearColumn:      {},
	schema.HoursTimeColumn: {},
	schema.WeekdayColumn:   {},
}

// Summarize computes descriptive statistics of a cleaned table.
func Summarize(t *schema.Table) schema.Summary {
	summary := schema.Summary{ActivityRowCount: map[string]int{}}
	if t == nil {
		return summary
	}
	summary.Rows = t.Len()

	if col, ok := t.Column(schema.GlucoseColumn); ok && col.Kind == schema.FloatKind {
		var readings []float64
		for _, v := range col.Floats() {
			if math.IsNaN(v) {
				summary.MissingGlucose++
				continue
			}
			readings = append(readings, v)
		}
		if len(readings) > 0 {
			mean, std := stat.MeanStdDev(readings, nil)
			summary.GlucoseMean = mean
			if !math.IsNaN(std) {
				summary.GlucoseStdDev = std
			}

			var below, inRange, above int
			for _, v := range readings {
				switch {
				case v < contract.LowBound:
					below++
				case v <= contract.HighBound:
					inRange++
				default:
					above++
				}
			}
			total := float64(len(readings))
			summary.PercentBelow = 100 * float64(below) / total
			summary.PercentInRange = 100 * float64(inRange) / total
			summary.PercentAbove = 100 * float64(above) / total
		}
	}

	for _, col := range t.Columns() {
		if _, ok := baseColumns[col.Name]; ok || col.Kind != schema.FloatKind {
			continue
		}
		count := 0
		for _, v := range col.Floats() {
			if v == 1 {
				count++
			}
		}
		summary.ActivityRowCount[col.Name] = count
	}
	return summary
}
