package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/cgmprep/internal/contract"
	"github.com/huangsam/cgmprep/internal/iocache"
	"github.com/huangsam/cgmprep/internal/metrics"
	"github.com/huangsam/cgmprep/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// recordingWriter keeps what ExecuteClean hands to the output layer.
type recordingWriter struct {
	result *schema.PipelineResult
	calls  int
	err    error
}

var _ contract.ResultWriter = &recordingWriter{}

func (w *recordingWriter) WriteClean(result *schema.PipelineResult, _ *contract.Config, _ time.Duration) error {
	w.calls++
	w.result = result
	return w.err
}

func trackedRunner(reader contract.SheetReader, store *iocache.MockRunStore) Runner {
	mgr := &iocache.MockStoreManager{}
	mgr.On("GetRunStore").Return(store)
	return Runner{Reader: reader, Manager: mgr}
}

func TestRunCleanRecordsLedger(t *testing.T) {
	cfg := testConfig()
	cfg.Workbook = "export.xlsx"
	cfg.Days = 5

	store := &iocache.MockRunStore{}
	store.On("BeginRun", mock.MatchedBy(func(start schema.RunStart) bool {
		_, err := uuid.Parse(start.RunUUID)
		return err == nil &&
			start.Workbook == "export.xlsx" &&
			start.StartSheet == fiveDays[0].name &&
			start.DaysRequested == 5 &&
			start.ConfigParams["days"] == 5
	})).Return(int64(7), nil)
	store.On("RecordDay", int64(7), mock.Anything, mock.Anything).Return(nil).Times(5)
	store.On("EndRun", int64(7), mock.Anything, schema.RunSummary{
		DaysLoaded: 2,
		TotalRows:  10 + 11,
		Status:     schema.RunPartial,
	}).Return(nil)

	result, err := RunClean(context.Background(), cfg, trackedRunner(readerWithout(t, 10, 2), store))
	require.NoError(t, err)
	assert.Equal(t, schema.RunPartial, result.Status())
	store.AssertExpectations(t)

	// Days are recorded in order with their outcome
	var recorded []schema.DayStatus
	for _, call := range store.Calls {
		if call.Method == "RecordDay" {
			recorded = append(recorded, call.Arguments.Get(2).(schema.DayOutcome).Status)
		}
	}
	assert.Equal(t, []schema.DayStatus{schema.DayOK, schema.DayOK, schema.DayFailed, schema.DaySkipped, schema.DaySkipped}, recorded)
}

func TestRunCleanLedgerFailuresAreWarnings(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	cfg := testConfig()

	store := &iocache.MockRunStore{}
	store.On("BeginRun", mock.Anything).Return(int64(3), nil)
	store.On("RecordDay", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("disk full"))
	store.On("EndRun", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("disk full"))

	runner := trackedRunner(readerWithout(t, 4), store)
	runner.Logger = zap.New(core)

	result, err := RunClean(context.Background(), cfg, runner)
	require.NoError(t, err, "the ledger never fails a run")
	assert.Equal(t, schema.RunComplete, result.Status())

	assert.Equal(t, 1, logs.FilterMessage("run tracking failed for day").Len())
	assert.Equal(t, 1, logs.FilterMessage("failed to finalize run tracking").Len())
}

func TestRunCleanBeginFailureSkipsTracking(t *testing.T) {
	store := &iocache.MockRunStore{}
	store.On("BeginRun", mock.Anything).Return(int64(0), errors.New("locked"))

	result, err := RunClean(context.Background(), testConfig(), trackedRunner(readerWithout(t, 4), store))
	require.NoError(t, err)
	assert.Equal(t, 4, result.Table.Len())
	store.AssertNotCalled(t, "RecordDay", mock.Anything, mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "EndRun", mock.Anything, mock.Anything, mock.Anything)
}

func TestRunCleanMarksErrorsFailed(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := &iocache.MockRunStore{}
	store.On("BeginRun", mock.Anything).Return(int64(9), nil)
	store.On("EndRun", int64(9), mock.Anything, schema.RunSummary{Status: schema.RunFailed}).Return(nil)

	_, err := RunClean(ctx, testConfig(), trackedRunner(readerWithout(t, 4), store))
	assert.ErrorIs(t, err, context.Canceled)
	store.AssertExpectations(t)
}

func TestRunCleanWithoutTracking(t *testing.T) {
	mgr := &iocache.MockStoreManager{}
	mgr.On("GetRunStore").Return(nil)

	result, err := RunClean(context.Background(), testConfig(), Runner{Reader: readerWithout(t, 4), Manager: mgr})
	require.NoError(t, err)
	assert.Equal(t, 4, result.Table.Len())
	mgr.AssertExpectations(t)

	result, err = RunClean(context.Background(), testConfig(), Runner{Reader: readerWithout(t, 4)})
	require.NoError(t, err)
	assert.Equal(t, 4, result.Table.Len())
}

func TestRunCleanWritesMetricsTextfile(t *testing.T) {
	cfg := testConfig()
	cfg.MetricsFile = filepath.Join(t.TempDir(), "cgmprep.prom")

	runner := Runner{Reader: readerWithout(t, 4), Metrics: metrics.NewRecorder()}
	_, err := RunClean(context.Background(), cfg, runner)
	require.NoError(t, err)

	data, err := os.ReadFile(cfg.MetricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `cgmprep_pipeline_days_total{status="ok"} 1`)
	assert.Contains(t, string(data), "cgmprep_pipeline_rows_total 4")
}

func TestExecuteClean(t *testing.T) {
	writer := &recordingWriter{}
	result, err := ExecuteClean(context.Background(), testConfig(), Runner{Reader: readerWithout(t, 4)}, writer)
	require.NoError(t, err)
	assert.Equal(t, 1, writer.calls)
	assert.Same(t, result, writer.result)

	t.Run("writer failure keeps the result", func(t *testing.T) {
		writer := &recordingWriter{err: errors.New("broken pipe")}
		result, err := ExecuteClean(context.Background(), testConfig(), Runner{Reader: readerWithout(t, 4)}, writer)
		assert.ErrorContains(t, err, "write output: broken pipe")
		assert.NotNil(t, result)
	})

	t.Run("pipeline failure skips the writer", func(t *testing.T) {
		cfg := testConfig()
		cfg.Days = 0
		writer := &recordingWriter{}
		_, err := ExecuteClean(context.Background(), cfg, Runner{Reader: readerWithout(t, 4)}, writer)
		assert.ErrorIs(t, err, schema.ErrConfig)
		assert.Zero(t, writer.calls)
	})
}
