package core

import (
	"context"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/huangsam/cgmprep/internal/contract"
	"github.com/huangsam/cgmprep/schema"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeReader serves day sheets from memory. Sheets not in the map are unavailable.
type fakeReader struct {
	mu     sync.Mutex
	sheets map[string]*schema.Table
	calls  []string
}

var _ contract.SheetReader = &fakeReader{}

func (r *fakeReader) ReadSheet(_ context.Context, sheet string) (*schema.Table, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, sheet)
	t, ok := r.sheets[sheet]
	if !ok {
		return nil, fmt.Errorf("%w: sheet %q not found", schema.ErrSourceUnavailable, sheet)
	}
	return t.Clone(), nil
}

// dayRows describes the raw cells of one sheet. Empty strings are missing cells.
type dayRows struct {
	glucose  []string
	trend    []string
	activity []string
	exercise []string
}

// rawDay builds a sheet as the workbook reader returns it, with readings every
// five minutes from start.
func rawDay(t *testing.T, start time.Time, rows dayRows) *schema.Table {
	t.Helper()
	n := len(rows.glucose)
	times := make([]time.Time, n)
	for i := range times {
		times[i] = start.Add(time.Duration(i) * 5 * time.Minute)
	}
	pad := func(values []string) []string {
		out := make([]string, n)
		copy(out, values)
		return out
	}

	table := schema.NewTable()
	require.NoError(t, table.SetColumn(schema.NewTimeColumn(schema.TimeColumn, times)))
	require.NoError(t, table.SetColumn(stringColumn(schema.GlucoseColumn, pad(rows.glucose))))
	require.NoError(t, table.SetColumn(stringColumn(schema.TrendColumn, pad(rows.trend))))
	require.NoError(t, table.SetColumn(stringColumn(schema.ActivityColumn, pad(rows.activity))))
	require.NoError(t, table.SetColumn(stringColumn(schema.ExerciseColumn, pad(rows.exercise))))
	return table
}

// simpleDay is a sheet of n steady readings with no activity.
func simpleDay(t *testing.T, start time.Time, n int) *schema.Table {
	t.Helper()
	rows := dayRows{glucose: make([]string, n), trend: make([]string, n)}
	for i := range n {
		rows.glucose[i] = "6.5"
		rows.trend[i] = "→"
	}
	return rawDay(t, start, rows)
}

func stringColumn(name string, values []string) *schema.Column {
	present := make([]bool, len(values))
	for i, v := range values {
		present[i] = v != ""
	}
	return schema.NewStringColumn(name, values, present)
}

// testConfig returns a cleaning configuration with the default parameters.
func testConfig() *contract.Config {
	return &contract.Config{
		StartSheet:       "Sat Feb 27, 2021",
		Days:             1,
		SamplingInterval: 5 * time.Minute,
		OverrunThreshold: -3,
		GapMarkers:       []string{"?"},
		GlucosePrecision: 2,
		OtherActivity:    contract.DefaultOtherActivity,
		Workers:          4,
	}
}

func floatsOf(t *testing.T, table *schema.Table, name string) []float64 {
	t.Helper()
	col, ok := table.Column(name)
	require.True(t, ok, "column %q", name)
	require.Equal(t, schema.FloatKind, col.Kind, "column %q", name)
	return col.Floats()
}

var nan = math.NaN()
