// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/cgmprep/schema"
)

// SheetReader loads one day sheet of a glucose export.
// This allows the pipeline to be tested without a real workbook on disk.
type SheetReader interface {
	// ReadSheet returns the raw table of the named sheet. A sheet that does not
	// exist or cannot be read yields an error wrapping schema.ErrSourceUnavailable.
	ReadSheet(ctx context.Context, sheet string) (*schema.Table, error)
}

// StoreManager defines the interface for managing the run ledger.
// This allows the persistence layer to be mocked for testing.
type StoreManager interface {
	GetRunStore() RunStore
}

// RunStore defines the interface for tracking pipeline runs and their per-day outcomes.
type RunStore interface {
	// BeginRun creates a new run and returns its unique ID
	BeginRun(start schema.RunStart) (int64, error)

	// RecordDay stores the outcome of one requested day sheet
	RecordDay(runID int64, recordTime time.Time, day schema.DayOutcome) error

	// EndRun updates the run with completion data
	EndRun(runID int64, endTime time.Time, summary schema.RunSummary) error

	// GetStatus returns status information about the run store
	GetStatus() (schema.RunStoreStatus, error)

	// GetAllRuns returns every stored run ordered by ID
	GetAllRuns() ([]schema.RunRecord, error)

	// GetAllDays returns every stored day outcome ordered by run and day index
	GetAllDays() ([]schema.DayRecord, error)

	// Close closes the underlying connection
	Close() error
}

// ResultWriter renders a finished cleaning run in the configured output format.
type ResultWriter interface {
	WriteClean(result *schema.PipelineResult, cfg *Config, duration time.Duration) error
}
