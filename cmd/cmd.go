// Package cmd defines the command-line interface for cgmprep.
package cmd

import (
	"strings"

	"github.com/huangsam/cgmprep/core/algo"
	"github.com/huangsam/cgmprep/internal/contract"
	"github.com/huangsam/cgmprep/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(sheetsCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the runs subcommands to the parent runs command
	runsCmd.AddCommand(runsStatusCmd)
	runsCmd.AddCommand(runsClearCmd)
	runsCmd.AddCommand(runsExportCmd)
	runsCmd.AddCommand(runsMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("workbook", contract.DefaultWorkbook, "Path to the exported workbook")
	rootCmd.PersistentFlags().String("start", "", "First day sheet, e.g. \"Sat Feb 27, 2021\"")
	rootCmd.PersistentFlags().String("days", "1", "Number of consecutive days to read")
	rootCmd.PersistentFlags().Int("header-row", contract.DefaultHeaderRow, "0-based sheet row holding the column names")
	rootCmd.PersistentFlags().String("drop", strings.Join(schema.DefaultDropColumns, ","), "Comma-separated list of columns to drop")
	rootCmd.PersistentFlags().String("sampling-interval", algo.DefaultSamplingInterval.String(), "Time between consecutive readings")
	rootCmd.PersistentFlags().Float64("overrun-threshold", algo.DefaultOverrunThreshold, "Remaining minutes at or below which an exercise interval ends")
	rootCmd.PersistentFlags().String("gap-markers", strings.Join(algo.DefaultGapMarkers, ","), "Comma-separated trend glyphs treated as missing")
	rootCmd.PersistentFlags().Int("glucose-precision", contract.DefaultGlucosePrecision, "Decimal places kept for interpolated glucose")
	rootCmd.PersistentFlags().String("activities", "", "Comma-separated activity catalog; other activities share one column")
	rootCmd.PersistentFlags().String("other-activity", contract.DefaultOtherActivity, "Column for activities outside the catalog")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultLimit, "Number of rows to display")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet or xlsx")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("runs-backend", string(schema.SQLiteBackend), "Run ledger backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("runs-db-connect", "", "Database connection string for the run ledger (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("metrics-file", "", "Write pipeline metrics in Prometheus text format to this file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of runsMigrateCmd to Viper
	runsMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(runsMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding runs migrate flags", err)
	}
}
