// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/cgmprep/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

// NewMCPServer initializes and configures the cgmprep MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.StoreManager, logger *zap.Logger) *server.MCPServer {
	s := server.NewMCPServer(
		"cgmprep Cleaning Server",
		"1.0.0",
		server.WithLogging(),
	)

	if logger == nil {
		logger = zap.NewNop()
	}
	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
		logger:  logger,
		open:    openWorkbook,
	}

	// --- 1. Tool: clean_workbook ---
	s.AddTool(mcp.NewTool("clean_workbook",
		mcp.WithDescription("Clean consecutive day sheets of a glucose monitor export into one feature table."),
		mcp.WithString("workbook", mcp.Description("Path to the exported workbook (defaults to the configured workbook).")),
		mcp.WithString("start_sheet", mcp.Description("Name of the first day sheet, e.g. 'Sat Feb 27, 2021'."), mcp.Required()),
		mcp.WithNumber("days", mcp.Description("Number of consecutive days to clean. Defaults to 1.")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of table rows returned.")),
	), h.handleCleanWorkbook)

	// --- 2. Tool: list_sheet_names ---
	s.AddTool(mcp.NewTool("list_sheet_names",
		mcp.WithDescription("List the sheet names of consecutive days starting at a given sheet."),
		mcp.WithString("start_sheet", mcp.Description("Name of the first day sheet."), mcp.Required()),
		mcp.WithNumber("days", mcp.Description("Number of consecutive days."), mcp.Required()),
	), h.handleListSheetNames)

	return s
}

// StartMCPServer starts the cgmprep MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.StoreManager, logger *zap.Logger) error {
	s := NewMCPServer(baseCfg, mgr, logger)
	return server.ServeStdio(s)
}
