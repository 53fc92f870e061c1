package iocache

import (
	"errors"
	"fmt"

	"github.com/huangsam/cgmprep/internal/contract"
	"github.com/huangsam/cgmprep/internal/parquet"
)

// ExecuteRunsExport exports the run ledger to two Parquet files next to outputFile.
func ExecuteRunsExport(store contract.RunStore, outputFile string) error {
	// Validate that output file is specified
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("run tracking is disabled. Set --runs-backend to export runs")
	}

	// Check if there's any data to export
	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get run ledger status: %w", err)
	}

	if status.TotalRuns == 0 {
		return errors.New("no runs found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total runs: %d\n", status.TotalRuns)
	fmt.Printf("Total day records: %d\n", status.TableSizes[runDaysTable])

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}

	days, err := store.GetAllDays()
	if err != nil {
		return fmt.Errorf("failed to retrieve run days: %w", err)
	}

	parquetRuns := parquet.ConvertRunRecords(runs)
	parquetDays := parquet.ConvertDayRecords(days)

	runsFile := outputFile + ".runs.parquet"
	if err := parquet.WriteRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	fmt.Printf("Exported %d runs to: %s\n", len(parquetRuns), runsFile)

	daysFile := outputFile + ".run_days.parquet"
	if err := parquet.WriteRunDaysParquet(parquetDays, daysFile); err != nil {
		return fmt.Errorf("failed to write run days: %w", err)
	}
	fmt.Printf("Exported %d day records to: %s\n", len(parquetDays), daysFile)

	fmt.Println("\nExport complete! The Parquet files can be used with:")
	fmt.Println("  - Pandas (via pyarrow)")
	fmt.Println("  - DuckDB")
	fmt.Println("  - Any other Parquet-compatible tool")

	return nil
}
