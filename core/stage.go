package core

import (
	"fmt"

	"github.com/huangsam/cgmprep/schema"
)

// DayReport collects what Stage 1 noticed while cleaning one sheet.
type DayReport struct {
	Issues  []string       // flagged values that were kept
	Imputed map[string]int // column -> values filled by interpolation
	Flagged map[string]int // column -> values outside the expected range
}

func newDayReport() *DayReport {
	return &DayReport{Imputed: map[string]int{}, Flagged: map[string]int{}}
}

// SheetStage is one Stage 1 step, applied to a single day sheet in place.
type SheetStage func(t *schema.Table, rep *DayReport) error

// TableStage is one Stage 2 step, applied to the concatenated table in place.
type TableStage func(t *schema.Table) error

// namedSheetStage pairs a stage with the name used in error messages.
type namedSheetStage struct {
	name string
	run  SheetStage
}

// namedTableStage pairs a stage with the name used in error messages.
type namedTableStage struct {
	name string
	run  TableStage
}

// runSheetStages applies stages in order and stops at the first error.
func runSheetStages(t *schema.Table, rep *DayReport, stages []namedSheetStage) error {
	for _, s := range stages {
		if err := s.run(t, rep); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return nil
}

// runTableStages applies stages in order and stops at the first error.
func runTableStages(t *schema.Table, stages []namedTableStage) error {
	for _, s := range stages {
		if err := s.run(t); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return nil
}
