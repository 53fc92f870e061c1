package cmd

import (
	"fmt"

	"github.com/huangsam/cgmprep/internal/contract"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// sheetsCmd prints the sheet names a clean run would read.
var sheetsCmd = &cobra.Command{
	Use:   "sheets",
	Short: "List the sheet names of consecutive days",
	Long: `Print the names of the day sheets that a clean run with the same --start and --days would read.

No workbook is opened. Names follow the export's "Sat Feb 27, 2021" form, and
February always has 28 days.

Examples:
  cgmprep sheets --start "Sat Feb 27, 2021" --days 3`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return loadConfigFile()
	},
	Run: func(cmd *cobra.Command, _ []string) {
		names, err := sheetNames(viper.GetString("start"), viper.GetString("days"))
		if err != nil {
			contract.LogFatal("Cannot list sheets", err)
		}
		for _, name := range names {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), name)
		}
	},
}

// sheetNames parses the raw day count and enumerates names from start.
func sheetNames(start, days string) ([]string, error) {
	n, err := contract.ParseDays(days)
	if err != nil {
		return nil, err
	}
	names, err := contract.SheetNames(start, n)
	if err != nil {
		return nil, fmt.Errorf("invalid --start: %w", err)
	}
	return names, nil
}
