package iocache

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/cgmprep/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitStores(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	require.NoError(t, InitStores(schema.SQLiteBackend, dbPath))
	// Later calls reuse the first initialization
	require.NoError(t, InitStores(schema.DatabaseBackend("oracle"), ""))

	store := Manager.GetRunStore()
	require.NotNil(t, store)
	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", status.Backend)

	CloseStores()
	CloseStores()
}

func TestRunStoreManager_Disabled(t *testing.T) {
	mgr := &RunStoreManager{}
	assert.Nil(t, mgr.GetRunStore())
}

func TestExecuteRunsExport(t *testing.T) {
	store := newMemoryStore(t)
	start := time.Date(2021, 3, 1, 8, 0, 0, 0, time.UTC)
	runID := beginTestRun(t, store, start)
	require.NoError(t, store.RecordDay(runID, start, schema.DayOutcome{Index: 0, Sheet: "Feb 27", Rows: 288, Status: schema.DayOK}))
	require.NoError(t, store.EndRun(runID, start.Add(time.Second), schema.RunSummary{DaysLoaded: 1, TotalRows: 288, Status: schema.RunComplete}))

	base := filepath.Join(t.TempDir(), "ledger")
	require.NoError(t, ExecuteRunsExport(store, base))

	for _, suffix := range []string{".runs.parquet", ".run_days.parquet"} {
		info, err := os.Stat(base + suffix)
		require.NoError(t, err, suffix)
		assert.Positive(t, info.Size(), suffix)
	}
}

func TestExecuteRunsExport_Errors(t *testing.T) {
	t.Run("no output file", func(t *testing.T) {
		assert.ErrorContains(t, ExecuteRunsExport(&MockRunStore{}, ""), "--output-file")
	})

	t.Run("tracking disabled", func(t *testing.T) {
		assert.ErrorContains(t, ExecuteRunsExport(nil, "out"), "disabled")
	})

	t.Run("empty ledger", func(t *testing.T) {
		store := newMemoryStore(t)
		assert.ErrorContains(t, ExecuteRunsExport(store, filepath.Join(t.TempDir(), "out")), "no runs")
	})

	t.Run("status failure", func(t *testing.T) {
		store := &MockRunStore{}
		store.On("GetStatus").Return(schema.RunStoreStatus{}, errors.New("connection reset"))
		assert.ErrorContains(t, ExecuteRunsExport(store, "out"), "connection reset")
		store.AssertExpectations(t)
	})

	t.Run("day query failure", func(t *testing.T) {
		store := &MockRunStore{}
		store.On("GetStatus").Return(schema.RunStoreStatus{Backend: "mysql", TotalRuns: 1}, nil)
		store.On("GetAllRuns").Return([]schema.RunRecord{{RunID: 1}}, nil)
		store.On("GetAllDays").Return(nil, errors.New("timeout"))
		assert.ErrorContains(t, ExecuteRunsExport(store, "out"), "timeout")
		store.AssertExpectations(t)
	})
}
