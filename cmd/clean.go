package cmd

import (
	"github.com/huangsam/cgmprep/core"
	"github.com/huangsam/cgmprep/internal/contract"
	"github.com/huangsam/cgmprep/internal/metrics"
	"github.com/huangsam/cgmprep/internal/outwriter"
	"github.com/huangsam/cgmprep/internal/workbook"
	"github.com/spf13/cobra"
)

// cleanCmd cleans a run of consecutive day sheets into one feature table.
var cleanCmd = &cobra.Command{
	Use:   "clean [workbook]",
	Short: "Clean consecutive day sheets into one model-ready table",
	Long: `Read consecutive day sheets from a glucose monitor export and clean them into one table.

Each day sheet goes through:
- Trend glyph encoding (↓↓ through ↑↑ become 0 through 6)
- Numeric coercion of the glucose column
- Linear interpolation of missing readings
- Date features (day, month, year, hours_time, weekday)
- Exercise interval reconstruction from activity annotations
- One-hot encoding of activities

The run stops at the first day that cannot be read or cleaned. Days before it
are still returned, with a warning naming the failed sheet.

Examples:
  # Clean three days starting on a Saturday
  cgmprep clean Sugarmate-Report.xlsx --start "Sat Feb 27, 2021" --days 3

  # Write the full table for a notebook
  cgmprep clean --start "Sat Feb 27, 2021" --days 7 --output parquet --output-file week.parquet

  # Keep a fixed set of activity columns
  cgmprep clean --start "Sat Feb 27, 2021" --activities "Walking,Running,Yoga"`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		reader, err := workbook.Open(cfg.Workbook, workbook.Options{
			HeaderRow:   cfg.HeaderRow,
			DropColumns: cfg.DropColumns,
		})
		if err != nil {
			contract.LogFatal("Cannot open workbook", err)
		}
		defer func() { _ = reader.Close() }()

		runner := core.Runner{
			Reader:  reader,
			Manager: storeManager,
			Logger:  logger,
			Metrics: metrics.NewRecorder(),
		}
		if _, err := core.ExecuteClean(rootCtx, cfg, runner, outwriter.NewOutWriter()); err != nil {
			contract.LogFatal("Cannot clean workbook", err)
		}
	},
}
