package schema

import "time"

// RunStoreStatus represents the status of the run ledger.
type RunStoreStatus struct {
	Backend       string           `json:"backend"`
	Connected     bool             `json:"connected"`
	TotalRuns     int              `json:"total_runs"`
	LastRunID     int64            `json:"last_run_id"`
	LastRunTime   time.Time        `json:"last_run_time"`
	OldestRunTime time.Time        `json:"oldest_run_time"`
	TotalRows     int              `json:"total_rows"`
	PartialRuns   int              `json:"partial_runs"`
	TableSizes    map[string]int64 `json:"table_sizes"`
}
