package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql" // MySQL driver
	"github.com/huangsam/cgmprep/internal/contract"
	"github.com/huangsam/cgmprep/schema"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

// Table names for run tracking.
const (
	runsTable    = "cgmprep_runs"
	runDaysTable = "cgmprep_run_days"
)

// RunStoreImpl implements the RunStore interface.
type RunStoreImpl struct {
	db         *sql.DB
	backend    schema.DatabaseBackend
	driverName string
}

var _ contract.RunStore = &RunStoreImpl{} // Compile-time check

// NewRunStore creates a new RunStore with the specified backend.
func NewRunStore(backend schema.DatabaseBackend, connStr string) (contract.RunStore, error) {
	if backend == schema.NoneBackend {
		// Return a no-op store for disabled tracking
		return &RunStoreImpl{backend: backend}, nil
	}

	db, driverName, err := openDB(backend, connStr)
	if err != nil {
		return nil, err
	}

	// Ping to verify connection
	if err := db.Ping(); err != nil {
		_ = db.Close()
		var connDetail string
		switch backend {
		case schema.MySQLBackend:
			connDetail = "Check that MySQL is running and the connection string is correct. Ensure user/password are valid."
		case schema.PostgreSQLBackend:
			connDetail = "Check that PostgreSQL is running and the connection string is correct. Ensure user/password are valid."
		default:
			connDetail = "Verify the database file is accessible."
		}
		return nil, fmt.Errorf("failed to connect to %s database: %w. %s", backend, err, connDetail)
	}

	// Create the table schemas
	if err := createRunTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create run tables: %w", err)
	}

	return &RunStoreImpl{
		db:         db,
		backend:    backend,
		driverName: driverName,
	}, nil
}

// openDB opens a database handle for one of the SQL backends.
func openDB(backend schema.DatabaseBackend, connStr string) (*sql.DB, string, error) {
	switch backend {
	case schema.SQLiteBackend:
		dbPath := connStr
		if dbPath == "" {
			dbPath = GetRunsDBFilePath()
		}
		db, err := sql.Open("sqlite", dbPath)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open SQLite database at %q: %w. Check that the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)
		return db, "sqlite", nil

	case schema.MySQLBackend:
		// connStr should be:
		// user:password@tcp(host:port)/dbname
		dsn, err := mysql.ParseDSN(connStr)
		if err != nil {
			return nil, "", fmt.Errorf("failed to parse MySQL connection string: %w. Check connection string format: user:password@tcp(host:port)/dbname", err)
		}
		// DATETIME columns are scanned into time.Time
		dsn.ParseTime = true
		db, err := sql.Open("mysql", dsn.FormatDSN())
		if err != nil {
			return nil, "", fmt.Errorf("failed to open MySQL database: %w. Check connection string format: user:password@tcp(host:port)/dbname", err)
		}
		return db, "mysql", nil

	case schema.PostgreSQLBackend:
		// connStr should be:
		// host=localhost port=5432 user=postgres password=secret dbname=postgres
		db, err := sql.Open("pgx", connStr)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open PostgreSQL database: %w. Check connection string format: host=localhost port=5432 user=postgres dbname=mydb", err)
		}
		return db, "pgx", nil

	default:
		return nil, "", fmt.Errorf("unsupported backend: %s", backend)
	}
}

// createRunTables creates the run tracking tables.
func createRunTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{runsTable, getCreateRunsQuery(backend)},
		{runDaysTable, getCreateRunDaysQuery(backend)},
	}

	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}
	return nil
}

// getCreateRunsQuery returns the CREATE TABLE query for cgmprep_runs.
func getCreateRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(runsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				run_uuid VARCHAR(36) NOT NULL,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				workbook VARCHAR(512) NOT NULL,
				start_sheet VARCHAR(32) NOT NULL,
				days_requested INT NOT NULL,
				days_loaded INT NOT NULL DEFAULT 0,
				total_rows INT NOT NULL DEFAULT 0,
				status VARCHAR(16) NOT NULL,
				config_params TEXT
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGSERIAL PRIMARY KEY,
				run_uuid TEXT NOT NULL,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INT,
				workbook TEXT NOT NULL,
				start_sheet TEXT NOT NULL,
				days_requested INT NOT NULL,
				days_loaded INT NOT NULL DEFAULT 0,
				total_rows INT NOT NULL DEFAULT 0,
				status TEXT NOT NULL,
				config_params TEXT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER PRIMARY KEY AUTOINCREMENT,
				run_uuid TEXT NOT NULL,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				workbook TEXT NOT NULL,
				start_sheet TEXT NOT NULL,
				days_requested INTEGER NOT NULL,
				days_loaded INTEGER NOT NULL DEFAULT 0,
				total_rows INTEGER NOT NULL DEFAULT 0,
				status TEXT NOT NULL,
				config_params TEXT
			);
		`, quotedTableName)
	}
}

// getCreateRunDaysQuery returns the CREATE TABLE query for cgmprep_run_days.
func getCreateRunDaysQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(runDaysTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				day_index INT NOT NULL,
				sheet_name VARCHAR(32) NOT NULL,
				day_rows INT NOT NULL,
				status VARCHAR(16) NOT NULL,
				error_message TEXT,
				record_time DATETIME(6) NOT NULL,
				PRIMARY KEY (run_id, day_index)
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				day_index INT NOT NULL,
				sheet_name TEXT NOT NULL,
				day_rows INT NOT NULL,
				status TEXT NOT NULL,
				error_message TEXT,
				record_time TIMESTAMPTZ NOT NULL,
				PRIMARY KEY (run_id, day_index)
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER NOT NULL,
				day_index INTEGER NOT NULL,
				sheet_name TEXT NOT NULL,
				day_rows INTEGER NOT NULL,
				status TEXT NOT NULL,
				error_message TEXT,
				record_time TEXT NOT NULL,
				PRIMARY KEY (run_id, day_index)
			);
		`, quotedTableName)
	}
}

// BeginRun creates a new run and returns its unique ID.
func (rs *RunStoreImpl) BeginRun(start schema.RunStart) (int64, error) {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return 0, nil
	}

	// Serialize config params to JSON
	configJSON, err := json.Marshal(start.ConfigParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	query := fmt.Sprintf(`INSERT INTO %s (run_uuid, start_time, workbook, start_sheet, days_requested, status, config_params)
		VALUES (?, ?, ?, ?, ?, ?, ?)`, quoteTableName(runsTable, rs.backend))
	args := []any{
		start.RunUUID, formatTime(start.StartTime, rs.backend), start.Workbook, start.StartSheet,
		start.DaysRequested, string(schema.RunRunning), string(configJSON),
	}

	var runID int64
	switch rs.backend {
	case schema.PostgreSQLBackend:
		err = rs.db.QueryRow(rebind(query+" RETURNING run_id", rs.backend), args...).Scan(&runID)
	default: // SQLite and MySQL
		var result sql.Result
		result, err = rs.db.Exec(query, args...)
		if err == nil {
			runID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	return runID, nil
}

// RecordDay stores the outcome of one requested day sheet.
func (rs *RunStoreImpl) RecordDay(runID int64, recordTime time.Time, day schema.DayOutcome) error {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil
	}

	var errorMessage *string
	if day.Error != "" {
		errorMessage = &day.Error
	}

	query := fmt.Sprintf(`INSERT INTO %s (run_id, day_index, sheet_name, day_rows, status, error_message, record_time)
		VALUES (?, ?, ?, ?, ?, ?, ?)`, quoteTableName(runDaysTable, rs.backend))
	_, err := rs.db.Exec(rebind(query, rs.backend),
		runID, day.Index, day.Sheet, day.Rows, string(day.Status), errorMessage, formatTime(recordTime, rs.backend))
	if err != nil {
		return fmt.Errorf("failed to insert day %d of run %d: %w", day.Index, runID, err)
	}
	return nil
}

// EndRun updates the run with completion data.
func (rs *RunStoreImpl) EndRun(runID int64, endTime time.Time, summary schema.RunSummary) error {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil
	}

	// First, get the start_time to calculate duration
	quotedTableName := quoteTableName(runsTable, rs.backend)
	row := rs.db.QueryRow(rebind(fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = ?`, quotedTableName), rs.backend), runID)
	startTime, err := scanTime(row, rs.backend)
	if err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}

	// Calculate duration in milliseconds
	durationMs := endTime.Sub(startTime).Milliseconds()

	updateQuery := fmt.Sprintf(`UPDATE %s SET end_time = ?, run_duration_ms = ?, days_loaded = ?, total_rows = ?, status = ? WHERE run_id = ?`, quotedTableName)
	_, err = rs.db.Exec(rebind(updateQuery, rs.backend),
		formatTime(endTime, rs.backend), durationMs, summary.DaysLoaded, summary.TotalRows, string(summary.Status), runID)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (rs *RunStoreImpl) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the run store.
func (rs *RunStoreImpl) GetStatus() (schema.RunStoreStatus, error) {
	status := schema.RunStoreStatus{
		Backend:    string(rs.backend),
		Connected:  rs.db != nil,
		TableSizes: make(map[string]int64),
	}

	if rs.backend == schema.NoneBackend || rs.db == nil {
		return status, nil
	}

	quotedRuns := quoteTableName(runsTable, rs.backend)

	// Get total runs
	row := rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedRuns))
	if err := row.Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		// Get last run info
		row = rs.db.QueryRow(fmt.Sprintf("SELECT run_id FROM %s ORDER BY run_id DESC LIMIT 1", quotedRuns))
		if err := row.Scan(&status.LastRunID); err != nil {
			return status, fmt.Errorf("failed to get last run id: %w", err)
		}
		row = rs.db.QueryRow(rebind(fmt.Sprintf("SELECT start_time FROM %s WHERE run_id = ?", quotedRuns), rs.backend), status.LastRunID)
		lastRunTime, err := scanTime(row, rs.backend)
		if err != nil {
			return status, fmt.Errorf("failed to get last run time: %w", err)
		}
		status.LastRunTime = lastRunTime

		// Get oldest run time
		row = rs.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", quotedRuns))
		oldestRunTime, err := scanTime(row, rs.backend)
		if err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		status.OldestRunTime = oldestRunTime

		// Get total rows produced
		row = rs.db.QueryRow(fmt.Sprintf("SELECT COALESCE(SUM(total_rows), 0) FROM %s", quotedRuns))
		if err := row.Scan(&status.TotalRows); err != nil {
			return status, fmt.Errorf("failed to get total rows: %w", err)
		}

		// Get runs that lost days
		partialQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE status IN (?, ?)", quotedRuns)
		row = rs.db.QueryRow(rebind(partialQuery, rs.backend), string(schema.RunPartial), string(schema.RunEmpty))
		if err := row.Scan(&status.PartialRuns); err != nil {
			return status, fmt.Errorf("failed to get partial runs: %w", err)
		}
	}

	// Get table sizes
	for _, table := range []string{runsTable, runDaysTable} {
		row = rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, rs.backend)))
		var count int64
		if err := row.Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}

// GetAllRuns retrieves all runs from the store.
func (rs *RunStoreImpl) GetAllRuns() ([]schema.RunRecord, error) {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, run_uuid, start_time, end_time, run_duration_ms, workbook, start_sheet,
		days_requested, days_loaded, total_rows, status, config_params
		FROM %s ORDER BY run_id`, quoteTableName(runsTable, rs.backend))

	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord
	for rows.Next() {
		var record schema.RunRecord

		switch rs.backend {
		case schema.SQLiteBackend:
			var startTimeStr string
			var endTimeStr *string
			if err := rows.Scan(&record.RunID, &record.RunUUID, &startTimeStr, &endTimeStr, &record.RunDurationMs,
				&record.Workbook, &record.StartSheet, &record.DaysRequested, &record.DaysLoaded, &record.TotalRows,
				&record.Status, &record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan run: %w", err)
			}
			startTime, err := time.Parse(time.RFC3339Nano, startTimeStr)
			if err != nil {
				return nil, fmt.Errorf("failed to parse start_time: %w", err)
			}
			record.StartTime = startTime
			if endTimeStr != nil {
				endTime, err := time.Parse(time.RFC3339Nano, *endTimeStr)
				if err != nil {
					return nil, fmt.Errorf("failed to parse end_time: %w", err)
				}
				record.EndTime = &endTime
			}
		default: // MySQL and PostgreSQL
			if err := rows.Scan(&record.RunID, &record.RunUUID, &record.StartTime, &record.EndTime, &record.RunDurationMs,
				&record.Workbook, &record.StartSheet, &record.DaysRequested, &record.DaysLoaded, &record.TotalRows,
				&record.Status, &record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan run: %w", err)
			}
		}

		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return results, nil
}

// GetAllDays retrieves all day outcomes from the store.
func (rs *RunStoreImpl) GetAllDays() ([]schema.DayRecord, error) {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, day_index, sheet_name, day_rows, status, error_message, record_time
		FROM %s ORDER BY run_id, day_index`, quoteTableName(runDaysTable, rs.backend))

	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query run days: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.DayRecord
	for rows.Next() {
		var record schema.DayRecord

		switch rs.backend {
		case schema.SQLiteBackend:
			var recordTimeStr string
			if err := rows.Scan(&record.RunID, &record.DayIndex, &record.SheetName, &record.Rows,
				&record.Status, &record.ErrorMessage, &recordTimeStr); err != nil {
				return nil, fmt.Errorf("failed to scan run day: %w", err)
			}
			recordTime, err := time.Parse(time.RFC3339Nano, recordTimeStr)
			if err != nil {
				return nil, fmt.Errorf("failed to parse record_time: %w", err)
			}
			record.RecordTime = recordTime
		default: // MySQL and PostgreSQL
			if err := rows.Scan(&record.RunID, &record.DayIndex, &record.SheetName, &record.Rows,
				&record.Status, &record.ErrorMessage, &record.RecordTime); err != nil {
				return nil, fmt.Errorf("failed to scan run day: %w", err)
			}
		}

		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating run days: %w", err)
	}
	return results, nil
}

// scanTime reads a single time column, which SQLite stores as RFC3339 text.
func scanTime(row *sql.Row, backend schema.DatabaseBackend) (time.Time, error) {
	switch backend {
	case schema.SQLiteBackend:
		var s string
		if err := row.Scan(&s); err != nil {
			return time.Time{}, err
		}
		return time.Parse(time.RFC3339Nano, s)
	default: // MySQL and PostgreSQL store as native datetime
		var t time.Time
		if err := row.Scan(&t); err != nil {
			return time.Time{}, err
		}
		return t, nil
	}
}

// formatTime converts a time.Time to the appropriate format for the backend.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	switch backend {
	case schema.SQLiteBackend:
		return t.Format(time.RFC3339Nano)
	default:
		return t
	}
}

// quoteTableName quotes a table name for the backend's SQL dialect.
func quoteTableName(name string, backend schema.DatabaseBackend) string {
	switch backend {
	case schema.MySQLBackend:
		return "`" + name + "`"
	default:
		return `"` + name + `"`
	}
}

// rebind rewrites ? placeholders to $N for PostgreSQL.
func rebind(query string, backend schema.DatabaseBackend) string {
	if backend != schema.PostgreSQLBackend {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
