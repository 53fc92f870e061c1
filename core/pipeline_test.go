package core

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/cgmprep/internal/contract"
	"github.com/huangsam/cgmprep/internal/metrics"
	"github.com/huangsam/cgmprep/schema"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// fiveDays holds the sheet names from Sat Feb 27, 2021 on, and their dates.
var fiveDays = []struct {
	name string
	date time.Time
}{
	{"Sat Feb 27, 2021", time.Date(2021, 2, 27, 0, 0, 0, 0, time.UTC)},
	{"Sun Feb 28, 2021", time.Date(2021, 2, 28, 0, 0, 0, 0, time.UTC)},
	{"Mon Mar 1, 2021", time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)},
	{"Tue Mar 2, 2021", time.Date(2021, 3, 2, 0, 0, 0, 0, time.UTC)},
	{"Wed Mar 3, 2021", time.Date(2021, 3, 3, 0, 0, 0, 0, time.UTC)},
}

// readerWithout serves all five days, each with rows readings, except the given indexes.
func readerWithout(t *testing.T, rows int, missing ...int) *fakeReader {
	t.Helper()
	r := &fakeReader{sheets: map[string]*schema.Table{}}
	for i, d := range fiveDays {
		skip := false
		for _, m := range missing {
			skip = skip || m == i
		}
		if !skip {
			r.sheets[d.name] = simpleDay(t, d.date, rows+i)
		}
	}
	return r
}

func TestPipelineRunComplete(t *testing.T) {
	reader := &fakeReader{sheets: map[string]*schema.Table{
		fiveDays[0].name: rawDay(t, fiveDays[0].date, dayRows{
			glucose:  []string{"5.0", "", "", "8.0"},
			trend:    []string{"→", "?", "?", "↑"},
			activity: []string{"Walking (15 mins)", "", "", ""},
			exercise: []string{"15", "", "", ""},
		}),
		fiveDays[1].name: rawDay(t, fiveDays[1].date, dayRows{
			glucose:  []string{"9.0", "10.5"},
			trend:    []string{"↑", "↑↑"},
			activity: []string{"", "Yoga"},
		}),
	}}
	p := &Pipeline{Reader: reader, Config: testConfig()}

	result, err := p.Run(context.Background(), fiveDays[0].name, 2)
	require.NoError(t, err)

	assert.False(t, result.Partial())
	assert.Equal(t, schema.RunComplete, result.Status())
	assert.Nil(t, result.Failure)
	assert.Equal(t, 6, result.Table.Len())
	assert.Equal(t, []string{
		schema.GlucoseColumn, schema.TrendColumn,
		schema.DayColumn, schema.MonthColumn, schema.YearColumn, schema.HoursTimeColumn, schema.WeekdayColumn,
		"Walking", "Yoga",
	}, result.Table.Names())

	assert.Equal(t, []float64{5, 6, 7, 8, 9, 10.5}, floatsOf(t, result.Table, schema.GlucoseColumn))
	assert.Equal(t, []float64{3, 4, 4, 5, 5, 6}, floatsOf(t, result.Table, schema.TrendColumn))
	assert.Equal(t, []float64{1, 1, 1, 0, 0, 0}, floatsOf(t, result.Table, "Walking"))
	assert.Equal(t, []float64{0, 0, 0, 0, 0, 1}, floatsOf(t, result.Table, "Yoga"))
	assert.Equal(t, []float64{5, 5, 5, 5, 6, 6}, floatsOf(t, result.Table, schema.WeekdayColumn))

	require.Len(t, result.Days, 2)
	assert.Equal(t, schema.DayOK, result.Days[0].Status)
	assert.Equal(t, 4, result.Days[0].Rows)
	assert.Equal(t, 2, result.Summary.DaysLoaded)
	assert.Equal(t, 2, result.Summary.DaysRequested)
	assert.Equal(t, map[string]int{"Walking": 3, "Yoga": 1}, result.Summary.ActivityRowCount)
}

func TestPipelineRunPartial(t *testing.T) {
	for _, workers := range []int{1, 4} {
		reader := readerWithout(t, 10, 2)
		cfg := testConfig()
		cfg.Workers = workers
		p := &Pipeline{Reader: reader, Config: cfg}

		result, err := p.Run(context.Background(), fiveDays[0].name, 5)
		require.NoError(t, err, "a missing day is not an error")

		assert.True(t, result.Partial())
		assert.Equal(t, schema.RunPartial, result.Status())
		assert.Equal(t, 10+11, result.Table.Len(), "exactly the rows of days 1 and 2")
		assert.Equal(t, []float64{27, 28}, uniqueFloats(floatsOf(t, result.Table, schema.DayColumn)))

		require.NotNil(t, result.Failure)
		assert.Equal(t, 2, result.Failure.Index)
		assert.Equal(t, fiveDays[2].name, result.Failure.Sheet)
		assert.ErrorIs(t, result.Failure.Err, schema.ErrSourceUnavailable)

		var statuses []schema.DayStatus
		for _, d := range result.Days {
			statuses = append(statuses, d.Status)
		}
		assert.Equal(t, []schema.DayStatus{schema.DayOK, schema.DayOK, schema.DayFailed, schema.DaySkipped, schema.DaySkipped}, statuses)
		assert.Len(t, reader.calls, 3, "enumeration stops at the first unavailable sheet")
	}
}

func TestPipelineRunCleanFailureTruncates(t *testing.T) {
	reader := readerWithout(t, 6)
	bad := simpleDay(t, fiveDays[1].date, 6)
	trend, _ := bad.Column(schema.TrendColumn)
	values, _ := trend.Strings()
	values[3] = "sideways"
	reader.sheets[fiveDays[1].name] = bad

	p := &Pipeline{Reader: reader, Config: testConfig()}
	result, err := p.Run(context.Background(), fiveDays[0].name, 4)
	require.NoError(t, err)

	assert.Equal(t, 6, result.Table.Len(), "only the day before the failure is kept")
	require.NotNil(t, result.Failure)
	assert.Equal(t, 1, result.Failure.Index)
	assert.ErrorIs(t, result.Failure.Err, schema.ErrFormat)
	var symErr *schema.TrendSymbolError
	assert.True(t, errors.As(result.Failure.Err, &symErr))
	assert.Len(t, reader.calls, 4, "every sheet is read before cleaning")
}

func TestPipelineRunFirstDayUnavailable(t *testing.T) {
	reader := readerWithout(t, 5, 0)
	p := &Pipeline{Reader: reader, Config: testConfig()}

	result, err := p.Run(context.Background(), fiveDays[0].name, 3)
	require.NoError(t, err)

	assert.Equal(t, schema.RunEmpty, result.Status())
	assert.Equal(t, 0, result.Table.Len())
	assert.Empty(t, result.Table.Names())
	require.NotNil(t, result.Failure)
	assert.Equal(t, 0, result.Failure.Index)
	assert.Equal(t, 3, result.Summary.DaysRequested)
	assert.Equal(t, 0, result.Summary.DaysLoaded)
}

func TestPipelineRunInvalidArguments(t *testing.T) {
	reader := readerWithout(t, 5)
	p := &Pipeline{Reader: reader, Config: testConfig()}

	_, err := p.Run(context.Background(), fiveDays[0].name, 0)
	assert.ErrorIs(t, err, schema.ErrConfig)

	_, err = p.Run(context.Background(), "2021-02-27", 2)
	assert.ErrorIs(t, err, schema.ErrConfig)

	assert.Empty(t, reader.calls, "no sheet is read for invalid arguments")

	_, err = (&Pipeline{}).Run(context.Background(), fiveDays[0].name, 1)
	assert.ErrorIs(t, err, schema.ErrConfig)
}

func TestPipelineRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := &Pipeline{Reader: readerWithout(t, 5), Config: testConfig()}

	_, err := p.Run(ctx, fiveDays[0].name, 2)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPipelineRunLogsFailure(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	p := &Pipeline{Reader: readerWithout(t, 5, 1), Config: testConfig(), Logger: zap.New(core)}

	_, err := p.Run(context.Background(), fiveDays[0].name, 2)
	require.NoError(t, err)

	loaded := logs.FilterMessage("day loaded").All()
	require.Len(t, loaded, 1)
	assert.Equal(t, fiveDays[0].name, loaded[0].ContextMap()["sheet"])
	assert.EqualValues(t, 5, loaded[0].ContextMap()["rows"])

	failed := logs.FilterMessage("day failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, zapcore.ErrorLevel, failed[0].Level)
	fields := failed[0].ContextMap()
	assert.Equal(t, fiveDays[1].name, fields["sheet"])
	assert.EqualValues(t, 1, fields["day_index"])
	assert.Contains(t, fields["error"], "not found")
}

func TestPipelineRunMetrics(t *testing.T) {
	rec := metrics.NewRecorder()
	reader := readerWithout(t, 4, 1)
	reader.sheets[fiveDays[0].name] = rawDay(t, fiveDays[0].date, dayRows{
		glucose: []string{"5.0", "", "7.0"},
		trend:   []string{"→", "→", "→"},
	})
	p := &Pipeline{Reader: reader, Config: testConfig(), Metrics: rec}

	_, err := p.Run(context.Background(), fiveDays[0].name, 3)
	require.NoError(t, err)

	expected := `
# HELP cgmprep_pipeline_days_total Number of requested day sheets grouped by outcome.
# TYPE cgmprep_pipeline_days_total counter
cgmprep_pipeline_days_total{status="failed"} 1
cgmprep_pipeline_days_total{status="ok"} 1
cgmprep_pipeline_days_total{status="skipped"} 1
# HELP cgmprep_pipeline_imputed_values_total Number of missing values filled by interpolation per column.
# TYPE cgmprep_pipeline_imputed_values_total counter
cgmprep_pipeline_imputed_values_total{column="mmol/L"} 1
# HELP cgmprep_pipeline_rows_total Number of rows in cleaned output tables.
# TYPE cgmprep_pipeline_rows_total counter
cgmprep_pipeline_rows_total 3
`
	err = testutil.GatherAndCompare(rec.Registry(), strings.NewReader(expected),
		"cgmprep_pipeline_days_total", "cgmprep_pipeline_imputed_values_total", "cgmprep_pipeline_rows_total")
	assert.NoError(t, err)
}

func TestSheetNamesMatchCalendar(t *testing.T) {
	names, err := contract.SheetNames(fiveDays[0].name, len(fiveDays))
	require.NoError(t, err)
	for i, d := range fiveDays {
		assert.Equal(t, d.name, names[i])
	}
}

func uniqueFloats(values []float64) []float64 {
	var out []float64
	for _, v := range values {
		if len(out) == 0 || out[len(out)-1] != v {
			out = append(out, v)
		}
	}
	return out
}

func TestPipelineRunDefaultConfig(t *testing.T) {
	reader := &fakeReader{sheets: map[string]*schema.Table{
		fiveDays[0].name: rawDay(t, fiveDays[0].date, dayRows{
			glucose:  []string{"5.0", "5.5", "", "6.5", "7.0", "7.5"},
			trend:    []string{"→", "?", "→", "→", "→", "→"},
			activity: []string{"Walking (15 mins)"},
		}),
	}}
	p := &Pipeline{Reader: reader}

	result, err := p.Run(context.Background(), fiveDays[0].name, 1)
	require.NoError(t, err)

	assert.Equal(t, schema.RunComplete, result.Status())
	assert.Equal(t, []float64{1, 1, 1, 0, 0, 0}, floatsOf(t, result.Table, "Walking"))
	assert.Equal(t, []float64{3, 3, 3, 3, 3, 3}, floatsOf(t, result.Table, schema.TrendColumn))
	assert.Equal(t, []float64{5, 5.5, 6, 6.5, 7, 7.5}, floatsOf(t, result.Table, schema.GlucoseColumn))
}
