package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/huangsam/cgmprep/core"
	"github.com/huangsam/cgmprep/internal/contract"
	"github.com/huangsam/cgmprep/internal/outwriter"
	"github.com/huangsam/cgmprep/internal/workbook"
	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"
)

// sheetSource is an open workbook.
type sheetSource interface {
	contract.SheetReader
	Close() error
}

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.StoreManager
	logger  *zap.Logger
	open    func(cfg *contract.Config) (sheetSource, error)
}

func openWorkbook(cfg *contract.Config) (sheetSource, error) {
	r, err := workbook.Open(cfg.Workbook, workbook.Options{HeaderRow: cfg.HeaderRow, DropColumns: cfg.DropColumns})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// requestDays reads the days argument, which must be a positive whole number.
func requestDays(request mcp.CallToolRequest, fallback int) (int, error) {
	days := request.GetFloat("days", float64(fallback))
	if days != float64(int(days)) {
		return 0, fmt.Errorf("days must be a whole number (received %g)", days)
	}
	return contract.ParseDays(fmt.Sprint(int(days)))
}

func (h *toolHandler) handleCleanWorkbook(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if p := strings.TrimSpace(request.GetString("workbook", "")); p != "" {
		cfg.Workbook = p
	}
	cfg.StartSheet = strings.TrimSpace(request.GetString("start_sheet", ""))
	limit := cfg.Limit
	if l := request.GetInt("limit", 0); l > 0 {
		limit = l
	}

	if cfg.Workbook == "" {
		return mcp.NewToolResultError("invalid clean parameters: workbook is required"), nil
	}
	if _, err := contract.ParseSheetName(cfg.StartSheet); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid clean parameters: %v", err)), nil
	}
	days, err := requestDays(request, 1)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid clean parameters: %v", err)), nil
	}
	cfg.Days = days

	reader, err := h.open(cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("cannot open workbook: %v", err)), nil
	}
	defer func() { _ = reader.Close() }()

	result, err := core.RunClean(ctx, cfg, core.Runner{Reader: reader, Manager: h.mgr, Logger: h.logger})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("cleaning failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(outwriter.NewCleanDocument(result, limit), "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleListSheetNames(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := strings.TrimSpace(request.GetString("start_sheet", ""))
	days, err := requestDays(request, 0)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid sheet parameters: %v", err)), nil
	}

	names, err := contract.SheetNames(start, days)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid sheet parameters: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(names, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
