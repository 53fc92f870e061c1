package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/cgmprep/internal/contract"
	"github.com/huangsam/cgmprep/internal/iocache"
	"github.com/huangsam/cgmprep/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// runsBackendConfig reads and validates the run ledger settings from viper.
func runsBackendConfig() (schema.DatabaseBackend, string, error) {
	if err := loadConfigFile(); err != nil {
		return "", "", err
	}

	backend := schema.DatabaseBackend(viper.GetString("runs-backend"))
	if backend == "" {
		backend = schema.NoneBackend
	}
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", "", fmt.Errorf("%w: invalid runs backend '%s'", schema.ErrConfig, backend)
	}
	connStr := viper.GetString("runs-db-connect")
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", fmt.Errorf("%w: %w", schema.ErrConfig, err)
	}
	return backend, connStr, nil
}

// runsSetup loads minimal configuration needed for run ledger operations.
// This is used by commands that need ledger access without full shared setup.
func runsSetup() error {
	backend, connStr, err := runsBackendConfig()
	if err != nil {
		return err
	}
	if err := iocache.InitStores(backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize run ledger: %w", err)
	}

	cfg.RunsBackend = backend
	cfg.RunsDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// runsSetupWrapper wraps runsSetup to provide PreRunE for runs commands.
func runsSetupWrapper(_ *cobra.Command, _ []string) error {
	return runsSetup()
}

// runsMigrateSetup loads the ledger settings without opening the store, so that
// migrations can run on a fresh database.
func runsMigrateSetup(_ *cobra.Command, _ []string) error {
	backend, connStr, err := runsBackendConfig()
	if err != nil {
		return err
	}
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = iocache.GetRunsDBFilePath()
	}
	cfg.RunsBackend = backend
	cfg.RunsDBConnect = connStr
	return nil
}

// runsCmd manages the run ledger.
//
// Note: runs subcommands use minimal initialization (runsSetup) instead of the
// full sharedSetup used by clean. No workbook or sheet range is needed.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage the ledger of cleaning runs",
	Long: `Manage the ledger that records every clean run.

For each run the ledger stores:
- Run metadata (workbook, start sheet, requested days, configuration, duration)
- The outcome of every requested day (ok, failed or skipped) with its row count

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show ledger statistics
  export  - Export runs and day outcomes to Parquet
  clear   - Remove all ledger data
  migrate - Run database schema migrations`,
}

// runsStatusCmd shows ledger status.
var runsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display run ledger statistics and connection details",
	Long: `Show the backend, connection state, run counts and table sizes of the run ledger.

Examples:
  cgmprep runs status
  CGMPREP_RUNS_BACKEND=postgresql CGMPREP_RUNS_DB_CONNECT="host=localhost dbname=cgm" cgmprep runs status`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := iocache.Manager.GetRunStore()
		if store == nil {
			iocache.PrintRunStatus(os.Stdout, schema.RunStoreStatus{Backend: string(cfg.RunsBackend)})
			return
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get run ledger status", err)
		}
		iocache.PrintRunStatus(os.Stdout, status)
	},
}

// runsClearCmd clears the ledger.
var runsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all run ledger data",
	Long: `Delete every stored run and day outcome.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  cgmprep runs export --output-file backup
  cgmprep runs clear`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		iocache.CloseStores()
		dbFilePath := iocache.GetRunsDBFilePath()
		if cfg.RunsBackend == schema.SQLiteBackend && cfg.RunsDBConnect != "" {
			dbFilePath = cfg.RunsDBConnect
		}
		if err := iocache.ClearRuns(cfg.RunsBackend, dbFilePath, cfg.RunsDBConnect); err != nil {
			contract.LogFatal("Failed to clear run ledger", err)
		}
		fmt.Println("Run ledger cleared successfully.")
	},
}

// runsExportCmd exports the ledger to Parquet files.
var runsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export runs and day outcomes to Parquet",
	Long: `Export the run ledger to two Parquet files for analytics tools.

Writes:
- <output-file>.runs.parquet      one row per run
- <output-file>.run_days.parquet  one row per requested day

Requires: --output-file parameter

Examples:
  cgmprep runs export --output-file ledger
  duckdb -c "SELECT status, count(*) FROM read_parquet('ledger.run_days.parquet') GROUP BY status"`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteRunsExport(iocache.Manager.GetRunStore(), cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export run ledger", err)
		}
	},
}

// runsMigrateCmd runs database migrations for the ledger.
var runsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions of the run ledger.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  cgmprep runs migrate

  # Rollback to initial state
  cgmprep runs migrate --target-version 0`,
	PreRunE: runsMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateRuns(cfg.RunsBackend, cfg.RunsDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
