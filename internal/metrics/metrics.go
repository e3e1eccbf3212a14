// Package metrics exposes pipeline and server counters to Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "rwdash"

// Recorder groups the collectors. A nil *Recorder is valid and records
// nothing, so callers never need to check.
type Recorder struct {
	rows        *prometheus.CounterVec
	records     *prometheus.CounterVec
	resolutions *prometheus.CounterVec
	runs        *prometheus.CounterVec
	duration    prometheus.Histogram
	uploads     *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_total",
			Help:      "Input rows by outcome (included, excluded_nature, no_country, no_date).",
		}, []string{"outcome"}),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_classified_total",
			Help:      "Included records by category.",
		}, []string{"category"}),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "country_resolutions_total",
			Help:      "Country name resolutions by method.",
		}, []string{"method"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_runs_total",
			Help:      "Pipeline runs by status.",
		}, []string{"status"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_duration_seconds",
			Help:      "Wall time of pipeline runs.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Uploads received by status.",
		}, []string{"status"}),
	}
	reg.MustRegister(r.rows, r.records, r.resolutions, r.runs, r.duration, r.uploads)
	return r
}

// Row counts one input row with the given outcome.
func (r *Recorder) Row(outcome string) {
	if r == nil {
		return
	}
	r.rows.WithLabelValues(outcome).Inc()
}

// Classified counts one included record under category.
func (r *Recorder) Classified(category string) {
	if r == nil {
		return
	}
	r.records.WithLabelValues(category).Inc()
}

// Resolution counts a country-name resolution.
func (r *Recorder) Resolution(method string) {
	if r == nil {
		return
	}
	r.resolutions.WithLabelValues(method).Inc()
}

// Run records a finished pipeline run.
func (r *Recorder) Run(status string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.runs.WithLabelValues(status).Inc()
	r.duration.Observe(elapsed.Seconds())
}

// Upload counts an upload attempt.
func (r *Recorder) Upload(status string) {
	if r == nil {
		return
	}
	r.uploads.WithLabelValues(status).Inc()
}
