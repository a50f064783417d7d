package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder exposes dashboard metrics through Prometheus.
type Recorder struct {
	registry     *prometheus.Registry
	passesTotal  *prometheus.CounterVec
	passDuration *prometheus.HistogramVec
	fetchErrors  *prometheus.CounterVec
	symbols      prometheus.Gauge
	httpRequests *prometheus.CounterVec
}

// New creates a Recorder backed by its own registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Recorder{
		registry: reg,
		passesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockdash_passes_total",
				Help: "Total number of computation passes by outcome",
			},
			[]string{"outcome"},
		),
		passDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stockdash_pass_duration_seconds",
				Help:    "Duration of computation passes in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
		fetchErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockdash_fetch_errors_total",
				Help: "Total number of data fetch failures",
			},
			[]string{"source"},
		),
		symbols: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "stockdash_selected_symbols",
				Help: "Number of symbols in the most recent pass",
			},
		),
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockdash_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"path", "status"},
		),
	}
}

// RecordPass records the outcome of one pass ("ok", "empty_selection", "missing_data", "error").
func (r *Recorder) RecordPass(outcome string) {
	r.passesTotal.WithLabelValues(outcome).Inc()
}

// PassCounter returns the pass counter of outcome.
func (r *Recorder) PassCounter(outcome string) prometheus.Counter {
	return r.passesTotal.WithLabelValues(outcome)
}

// RecordStage records how long a pass stage took, in seconds.
func (r *Recorder) RecordStage(stage string, seconds float64) {
	r.passDuration.WithLabelValues(stage).Observe(seconds)
}

// RecordFetchError counts a failed fetch against a data source.
func (r *Recorder) RecordFetchError(source string) {
	r.fetchErrors.WithLabelValues(source).Inc()
}

// RecordSymbols records the selection size of the latest pass.
func (r *Recorder) RecordSymbols(n int) {
	r.symbols.Set(float64(n))
}

// RecordHTTP counts a served request.
func (r *Recorder) RecordHTTP(path, status string) {
	r.httpRequests.WithLabelValues(path, status).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
