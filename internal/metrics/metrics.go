// Package metrics counts pipeline activity and exports it as a prometheus textfile.
package metrics

import (
	"time"

	"github.com/huangsam/cgmprep/schema"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "cgmprep"
	subsystem = "pipeline"
)

// Recorder holds the pipeline collectors on a private registry. A nil Recorder
// discards every observation.
type Recorder struct {
	registry *prometheus.Registry

	days    *prometheus.CounterVec
	rows    prometheus.Counter
	imputed *prometheus.CounterVec
	flagged *prometheus.CounterVec
	lastRun prometheus.Gauge
}

// NewRecorder creates a Recorder with all collectors registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		days: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "days_total",
			Help:      "Number of requested day sheets grouped by outcome.",
		}, []string{"status"}),
		rows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "rows_total",
			Help:      "Number of rows in cleaned output tables.",
		}),
		imputed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "imputed_values_total",
			Help:      "Number of missing values filled by interpolation per column.",
		}, []string{"column"}),
		flagged: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "flagged_values_total",
			Help:      "Number of values outside their expected range per column.",
		}, []string{"column"}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix timestamp of the most recent finished run.",
		}),
	}
	r.registry.MustRegister(r.days, r.rows, r.imputed, r.flagged, r.lastRun)
	return r
}

// Registry exposes the underlying registry for gathering.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// ObserveDay counts one day outcome.
func (r *Recorder) ObserveDay(status schema.DayStatus) {
	if r == nil {
		return
	}
	r.days.WithLabelValues(string(status)).Inc()
}

// ObserveImputed adds n filled values for column.
func (r *Recorder) ObserveImputed(column string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.imputed.WithLabelValues(column).Add(float64(n))
}

// ObserveFlagged adds n out-of-range values for column.
func (r *Recorder) ObserveFlagged(column string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.flagged.WithLabelValues(column).Add(float64(n))
}

// ObserveRun records the final row count and the finish time of a run.
func (r *Recorder) ObserveRun(rows int, finished time.Time) {
	if r == nil {
		return
	}
	if rows > 0 {
		r.rows.Add(float64(rows))
	}
	if !finished.IsZero() {
		r.lastRun.Set(float64(finished.Unix()))
	}
}

// WriteTextfile writes all metrics in the text exposition format to path,
// for pickup by a node exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}
