package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/cgmprep/schema"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	r := NewRecorder()

	r.ObserveDay(schema.DayOK)
	r.ObserveDay(schema.DayOK)
	r.ObserveDay(schema.DayFailed)
	r.ObserveImputed(schema.GlucoseColumn, 3)
	r.ObserveImputed(schema.GlucoseColumn, 0)
	r.ObserveFlagged(schema.TrendColumn, 1)
	finished := time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)
	r.ObserveRun(576, finished)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.days.WithLabelValues(string(schema.DayOK))))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.days.WithLabelValues(string(schema.DayFailed))))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.imputed.WithLabelValues(schema.GlucoseColumn)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.flagged.WithLabelValues(schema.TrendColumn)))
	assert.Equal(t, 576.0, testutil.ToFloat64(r.rows))
	assert.Equal(t, float64(finished.Unix()), testutil.ToFloat64(r.lastRun))
}

func TestNilRecorder(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.ObserveDay(schema.DayOK)
		r.ObserveImputed(schema.GlucoseColumn, 1)
		r.ObserveFlagged(schema.TrendColumn, 1)
		r.ObserveRun(1, time.Now())
	})
	assert.Nil(t, r.Registry())
	assert.NoError(t, r.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")))
}

func TestWriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.ObserveDay(schema.DayOK)
	r.ObserveRun(10, time.Now())

	path := filepath.Join(t.TempDir(), "cgmprep.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `cgmprep_pipeline_days_total{status="ok"} 1`)
	assert.Contains(t, string(data), "cgmprep_pipeline_rows_total 10")
}
