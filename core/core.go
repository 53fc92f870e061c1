// Package core has the cleaning pipeline and the entry points that run it.
package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/cgmprep/internal/contract"
	"github.com/huangsam/cgmprep/internal/metrics"
	"github.com/huangsam/cgmprep/schema"
	"go.uber.org/zap"
)

// Runner bundles the collaborators of a tracked cleaning run.
type Runner struct {
	Reader  contract.SheetReader
	Manager contract.StoreManager // optional; nil or a nil store disables tracking
	Logger  *zap.Logger           // optional
	Metrics *metrics.Recorder     // optional
}

// ExecuteClean runs the pipeline for cfg, records it in the run ledger and hands the
// result to writer. It serves as the main entry point for the 'clean' command.
func ExecuteClean(ctx context.Context, cfg *contract.Config, runner Runner, writer contract.ResultWriter) (*schema.PipelineResult, error) {
	start := time.Now()
	result, err := RunClean(ctx, cfg, runner)
	if err != nil {
		return nil, err
	}
	if err := writer.WriteClean(result, cfg, time.Since(start)); err != nil {
		return result, fmt.Errorf("write output: %w", err)
	}
	return result, nil
}

// RunClean runs the pipeline for cfg and tracks it in the run ledger when one is
// configured. Ledger failures are logged as warnings and never fail the run.
func RunClean(ctx context.Context, cfg *contract.Config, runner Runner) (*schema.PipelineResult, error) {
	logger := runner.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	// --- 0. Begin Run Tracking (if configured) ---
	var store contract.RunStore
	if runner.Manager != nil {
		store = runner.Manager.GetRunStore()
	}
	var runID int64
	if store != nil {
		var err error
		runID, err = store.BeginRun(schema.RunStart{
			RunUUID:       uuid.NewString(),
			StartTime:     time.Now(),
			Workbook:      cfg.Workbook,
			StartSheet:    cfg.StartSheet,
			DaysRequested: cfg.Days,
			ConfigParams:  cfg.Params(),
		})
		if err != nil {
			logger.Warn("run tracking initialization failed", zap.Error(err))
		}
	}

	// --- 1. Pipeline ---
	pipeline := &Pipeline{Reader: runner.Reader, Config: cfg, Logger: logger, Metrics: runner.Metrics}
	result, runErr := pipeline.Run(ctx, cfg.StartSheet, cfg.Days)

	// --- 2. End Run Tracking ---
	if store != nil && runID > 0 {
		endRun(store, runID, result, runErr, logger)
	}

	// --- 3. Metrics textfile ---
	if cfg.MetricsFile != "" {
		if err := runner.Metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			logger.Warn("failed to write metrics textfile", zap.String("path", cfg.MetricsFile), zap.Error(err))
		}
	}

	if runErr != nil {
		return nil, runErr
	}
	return result, nil
}

// endRun stores every day outcome and closes the run with its totals.
func endRun(store contract.RunStore, runID int64, result *schema.PipelineResult, runErr error, logger *zap.Logger) {
	now := time.Now()
	summary := schema.RunSummary{Status: schema.RunFailed}
	if result != nil {
		for _, day := range result.Days {
			if err := store.RecordDay(runID, now, day); err != nil {
				logger.Warn("run tracking failed for day",
					zap.String("sheet", day.Sheet),
					zap.Int("day_index", day.Index),
					zap.Error(err))
			}
		}
		summary = schema.RunSummary{
			DaysLoaded: result.Summary.DaysLoaded,
			TotalRows:  result.Summary.Rows,
			Status:     result.Status(),
		}
	}
	if runErr != nil {
		summary.Status = schema.RunFailed
	}
	if err := store.EndRun(runID, now, summary); err != nil {
		logger.Warn("failed to finalize run tracking", zap.Int64("run_id", runID), zap.Error(err))
	}
}
