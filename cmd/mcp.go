package cmd

import (
	"github.com/huangsam/cgmprep/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the cgmprep MCP server",
	Long: `Launch an MCP server on stdio that lets AI agents clean workbooks via standard tools.

Tools:
  clean_workbook   - clean consecutive day sheets and return the table as JSON
  list_sheet_names - list the sheet names of consecutive days

Flags such as --header-row, --drop and --activities set the defaults used by every call.
Logs go to stderr so that stdout stays reserved for the protocol.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return serverSetup(rootCtx, cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, storeManager, logger)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
