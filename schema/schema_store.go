package schema

import "time"

// RunSummary is what the run ledger stores when a run ends.
type RunSummary struct {
	DaysLoaded int
	TotalRows  int
	Status     RunStatus
}

// RunRecord represents a row from the cgmprep_runs table.
type RunRecord struct {
	RunID         int64
	RunUUID       string
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int32
	Workbook      string
	StartSheet    string
	DaysRequested int32
	DaysLoaded    int32
	TotalRows     int32
	Status        string
	ConfigParams  *string
}

// DayRecord represents a row from the cgmprep_run_days table.
type DayRecord struct {
	RunID        int64
	DayIndex     int32
	SheetName    string
	Rows         int32
	Status       string
	ErrorMessage *string
	RecordTime   time.Time
}

// RunStart holds what the run ledger stores when a run begins.
type RunStart struct {
	RunUUID       string
	StartTime     time.Time
	Workbook      string
	StartSheet    string
	DaysRequested int
	ConfigParams  map[string]any
}
