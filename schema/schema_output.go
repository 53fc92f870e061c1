package schema

// DayOutcome records what happened to one requested day sheet.
type DayOutcome struct {
	Index  int       `json:"index"`
	Sheet  string    `json:"sheet"`
	Rows   int       `json:"rows"`
	Status DayStatus `json:"status"`
	Err    error     `json:"-"`
	Error  string    `json:"error,omitempty"`
	Issues []string  `json:"issues,omitempty"` // flagged but accepted values
}

// Summary holds descriptive statistics of a cleaned table.
type Summary struct {
	Rows             int            `json:"rows"`
	DaysLoaded       int            `json:"days_loaded"`
	DaysRequested    int            `json:"days_requested"`
	MissingGlucose   int            `json:"missing_glucose"`
	GlucoseMean      float64        `json:"glucose_mean"`
	GlucoseStdDev    float64        `json:"glucose_std_dev"`
	PercentBelow     float64        `json:"percent_below_range"`
	PercentInRange   float64        `json:"percent_in_range"`
	PercentAbove     float64        `json:"percent_above_range"`
	ActivityRowCount map[string]int `json:"activity_row_count"`
}

// PipelineResult is the outcome of a full cleaning run.
type PipelineResult struct {
	Table   *Table       `json:"-"`
	Days    []DayOutcome `json:"days"`
	Failure *DayOutcome  `json:"failure,omitempty"`
	Summary Summary      `json:"summary"`
}

// Partial reports whether fewer days than requested made it into the table.
func (r *PipelineResult) Partial() bool {
	return r.Failure != nil
}

// Status maps the result to a run ledger status.
func (r *PipelineResult) Status() RunStatus {
	switch {
	case r.Failure == nil:
		return RunComplete
	case r.Summary.DaysLoaded == 0:
		return RunEmpty
	default:
		return RunPartial
	}
}
