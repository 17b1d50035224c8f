package metrics

import (
	"sync"

	"PriceCast/internal/domain/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	forecasts    *prometheus.CounterVec
	negatives    *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
	lastForecast *prometheus.GaugeVec
	stage        *prometheus.HistogramVec
	latency      *prometheus.HistogramVec
}

var (
	defaultOnce sync.Once
	defaultRec  *Recorder
)

// New returns the process-wide Prometheus recorder. Collectors register with
// the default registry once.
func New() *Recorder {
	defaultOnce.Do(func() {
		defaultRec = NewWith(promauto.With(prometheus.DefaultRegisterer))
	})
	return defaultRec
}

// NewWith builds a recorder on a custom factory, e.g. a test registry.
func NewWith(f promauto.Factory) *Recorder {
	return &Recorder{
		forecasts: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pricecast_forecasts_total",
				Help: "Forecast requests by outcome",
			},
			[]string{"symbol", "outcome"},
		),
		negatives: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pricecast_negative_forecasts_total",
				Help: "Forecasts whose denormalized value is below zero",
			},
			[]string{"symbol"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pricecast_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastForecast: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "pricecast_last_forecast",
				Help: "Last forecast value for a symbol",
			},
			[]string{"symbol"},
		),
		stage: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pricecast_stage_duration_seconds",
				Help:    "Time spent in each pipeline stage",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pricecast_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordForecast counts a finished forecast request.
func (r *Recorder) RecordForecast(symbol, outcome string) {
	r.forecasts.WithLabelValues(symbol, outcome).Inc()
}

// RecordStage observes time spent in a pipeline stage.
func (r *Recorder) RecordStage(stage models.Stage, seconds float64) {
	r.stage.WithLabelValues(string(stage)).Observe(seconds)
}

// RecordLastForecast sets the last forecast value for a symbol.
func (r *Recorder) RecordLastForecast(symbol string, value float64) {
	r.lastForecast.WithLabelValues(symbol).Set(value)
}

// RecordNegativeForecast counts a forecast below zero.
func (r *Recorder) RecordNegativeForecast(symbol string) {
	r.negatives.WithLabelValues(symbol).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
