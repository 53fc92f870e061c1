package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/huangsam/cgmprep/internal/contract"
	"github.com/huangsam/cgmprep/internal/metrics"
	"github.com/huangsam/cgmprep/schema"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Pipeline cleans a run of consecutive day sheets into one feature table.
type Pipeline struct {
	Reader  contract.SheetReader
	Config  *contract.Config  // nil means contract.DefaultConfig
	Logger  *zap.Logger       // optional
	Metrics *metrics.Recorder // optional
}

// dayState is the Stage 1 state of one day that was read successfully.
type dayState struct {
	sheet  string
	table  *schema.Table
	report *DayReport
	err    error
}

// Run reads days sheets starting at startSheet, cleans each one and engineers
// features on their concatenation.
//
// A sheet that cannot be read or cleaned ends the run at that day: the result keeps
// only the days before it and records the failure. If even the first day fails, the
// result has an empty table and no error is returned. Errors are returned for invalid
// arguments, cancellation and feature engineering failures.
func (p *Pipeline) Run(ctx context.Context, startSheet string, days int) (*schema.PipelineResult, error) {
	if days < 1 {
		return nil, fmt.Errorf("%w: days must be at least 1 (received %d)", schema.ErrConfig, days)
	}
	names, err := contract.SheetNames(startSheet, days)
	if err != nil {
		return nil, err
	}
	if p.Reader == nil {
		return nil, fmt.Errorf("%w: no sheet reader", schema.ErrConfig)
	}
	cfg := p.Config
	if cfg == nil {
		cfg = contract.DefaultConfig()
	}
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	// --- 1. Read sheets in order until the first one that is unavailable ---
	var states []*dayState
	var failure *schema.DayOutcome
	for i, sheet := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		table, err := p.Reader.ReadSheet(ctx, sheet)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			if !errors.Is(err, schema.ErrSourceUnavailable) {
				err = fmt.Errorf("%w: %w", schema.ErrSourceUnavailable, err)
			}
			failure = failedDay(i, sheet, err)
			break
		}
		states = append(states, &dayState{sheet: sheet, table: table, report: newDayReport()})
	}

	// --- 2. Clean each sheet, in parallel, keeping results by day index ---
	stages := daySheetStages(cfg)
	workers := max(cfg.Workers, 1)
	var g errgroup.Group
	g.SetLimit(workers)
	for _, st := range states {
		g.Go(func() error {
			st.err = runSheetStages(st.table, st.report, stages)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// --- 3. Keep the prefix before the first failing day ---
	kept := len(states)
	for i, st := range states {
		if st.err != nil {
			kept = i
			failure = failedDay(i, st.sheet, st.err)
			break
		}
	}

	result := &schema.PipelineResult{Failure: failure}
	tables := make([]*schema.Table, 0, kept)
	for i, sheet := range names {
		switch {
		case i < kept:
			st := states[i]
			tables = append(tables, st.table)
			result.Days = append(result.Days, schema.DayOutcome{
				Index:  i,
				Sheet:  sheet,
				Rows:   st.table.Len(),
				Status: schema.DayOK,
				Issues: st.report.Issues,
			})
			p.observeDay(logger, i, st)
		case failure != nil && i == failure.Index:
			result.Days = append(result.Days, *failure)
			p.Metrics.ObserveDay(schema.DayFailed)
			logger.Error("day failed",
				zap.String("sheet", failure.Sheet),
				zap.Int("day_index", failure.Index),
				zap.Error(failure.Err))
		default:
			result.Days = append(result.Days, schema.DayOutcome{Index: i, Sheet: sheet, Status: schema.DaySkipped})
			p.Metrics.ObserveDay(schema.DaySkipped)
		}
	}

	if kept == 0 {
		result.Table = schema.NewTable()
		result.Summary = Summarize(result.Table)
		result.Summary.DaysRequested = days
		p.Metrics.ObserveRun(0, time.Now())
		return result, nil
	}

	// --- 4. Concatenate in day order and engineer features once ---
	table, err := schema.Concat(tables...)
	if err != nil {
		return nil, fmt.Errorf("concatenate days: %w", err)
	}
	if err := runTableStages(table, featureTableStages(cfg)); err != nil {
		logger.Error("feature engineering failed", zap.Int("rows", table.Len()), zap.Error(err))
		return nil, err
	}

	result.Table = table
	result.Summary = Summarize(table)
	result.Summary.DaysLoaded = kept
	result.Summary.DaysRequested = days
	p.Metrics.ObserveRun(table.Len(), time.Now())
	return result, nil
}

// observeDay logs and counts one successfully cleaned day.
func (p *Pipeline) observeDay(logger *zap.Logger, index int, st *dayState) {
	logger.Info("day loaded", zap.String("sheet", st.sheet), zap.Int("day_index", index), zap.Int("rows", st.table.Len()))
	if len(st.report.Issues) > 0 {
		logger.Warn("values flagged",
			zap.String("sheet", st.sheet),
			zap.Int("day_index", index),
			zap.Strings("issues", st.report.Issues))
	}
	p.Metrics.ObserveDay(schema.DayOK)
	for column, n := range st.report.Imputed {
		p.Metrics.ObserveImputed(column, n)
	}
	for column, n := range st.report.Flagged {
		p.Metrics.ObserveFlagged(column, n)
	}
}

func failedDay(index int, sheet string, err error) *schema.DayOutcome {
	return &schema.DayOutcome{
		Index:  index,
		Sheet:  sheet,
		Status: schema.DayFailed,
		Err:    err,
		Error:  err.Error(),
	}
}
