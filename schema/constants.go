package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for the run ledger.
	DatabaseBackend string

	// RunStatus represents how a pipeline run ended.
	RunStatus string

	// DayStatus represents the outcome of a single day sheet.
	DayStatus string
)

// Source column names as they appear in the export header row.
const (
	TimeColumn     = "time"
	GlucoseColumn  = "mmol/L"
	TrendColumn    = "trend"
	ActivityColumn = "activity"
	ExerciseColumn = "exercise (mins)"
)

// Derived feature column names.
const (
	DayColumn       = "day"
	MonthColumn     = "month"
	YearColumn      = "year"
	HoursTimeColumn = "hours_time"
	WeekdayColumn   = "weekday"
)

// DefaultDropColumns are the export columns the pipeline never uses.
var DefaultDropColumns = []string{"carbs (g)", "bolus (u)", "basal (u)", "protein (g)", "photos"}

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
	XLSXOut    OutputMode = "xlsx"
)

// All run ledger backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All run statuses supported.
const (
	RunRunning  RunStatus = "running"  // begun but not yet ended
	RunComplete RunStatus = "complete" // every requested day was cleaned
	RunPartial  RunStatus = "partial"  // a prefix of the requested days was cleaned
	RunEmpty    RunStatus = "empty"    // the first day already failed
	RunFailed   RunStatus = "failed"   // feature engineering failed after cleaning
)

// All day statuses supported.
const (
	DayOK      DayStatus = "ok"
	DayFailed  DayStatus = "failed"
	DaySkipped DayStatus = "skipped" // not attempted after an earlier failure
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
	XLSXOut:    {},
}

// ValidDatabaseBackends lists all valid run ledger backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}
