// Package metrics provides Prometheus metrics for acquisition and prediction.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Fetch outcomes
const (
	FetchOK     = "ok"
	FetchCached = "cached"
	FetchFailed = "failed"
)

// Manager owns every collector. A process normally uses the global one
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Acquisition
	fetches         *prometheus.CounterVec
	fetchDuration   prometheus.Histogram
	acquisitionKeys *prometheus.CounterVec
	recordsStored   *prometheus.CounterVec

	// Prediction
	predictions      *prometheus.CounterVec
	trainingDuration prometheus.Gauge
	testAccuracy     prometheus.Gauge
}

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // process wide registry

var globalManager = NewManager(WithPrometheusRegistry(customRegistry)) //nolint:gochecknoglobals // singleton

// NewManager creates a manager and registers its collectors
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "nbapredict",
		subsystem:        "",
		histogramBuckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.fetches = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fetches_total",
		Help:      "Documents requested, by outcome",
	}, []string{"outcome"})

	m.fetchDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fetch_duration_seconds",
		Help:      "Time spent on network fetches, excluding rate limit waits",
		Buckets:   m.histogramBuckets,
	})

	m.acquisitionKeys = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "acquisition_keys_total",
		Help:      "Team season keys reaching a terminal state, by stage and state",
	}, []string{"stage", "state"})

	m.recordsStored = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "records_stored_total",
		Help:      "Rows written to the store, by kind",
	}, []string{"kind"})

	m.predictions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "predictions_total",
		Help:      "Predictions served, by predictor",
	}, []string{"predictor"})

	m.trainingDuration = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "training_duration_seconds",
		Help:      "Duration of the most recent classifier training",
	})

	m.testAccuracy = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "model_test_accuracy",
		Help:      "Held out accuracy of the most recently trained classifier",
	})
}

// RecordFetch counts a fetch outcome
func (m *Manager) RecordFetch(outcome string) {
	m.fetches.WithLabelValues(outcome).Inc()
}

// ObserveFetchDuration records how long a network fetch took
func (m *Manager) ObserveFetchDuration(d time.Duration) {
	m.fetchDuration.Observe(d.Seconds())
}

// RecordAcquisitionKey counts a key reaching a terminal state
func (m *Manager) RecordAcquisitionKey(stage, state string) {
	m.acquisitionKeys.WithLabelValues(stage, state).Inc()
}

// RecordStored adds n rows of kind
func (m *Manager) RecordStored(kind string, n int) {
	m.recordsStored.WithLabelValues(kind).Add(float64(n))
}

// RecordPrediction counts a prediction served by predictor
func (m *Manager) RecordPrediction(predictor string) {
	m.predictions.WithLabelValues(predictor).Inc()
}

// RecordTraining records the duration and held out accuracy of a training run
func (m *Manager) RecordTraining(d time.Duration, accuracy float64) {
	m.trainingDuration.Set(d.Seconds())
	m.testAccuracy.Set(accuracy)
}

/////////////////////////////////////////////////////////////////////////
////// Global manager
/////////////////////////////////////////////////////////////////////////

// RecordFetch counts a fetch outcome on the global manager
func RecordFetch(outcome string) { globalManager.RecordFetch(outcome) }

// ObserveFetchDuration records a fetch duration on the global manager
func ObserveFetchDuration(d time.Duration) { globalManager.ObserveFetchDuration(d) }

// RecordAcquisitionKey counts a terminal key state on the global manager
func RecordAcquisitionKey(stage, state string) { globalManager.RecordAcquisitionKey(stage, state) }

// RecordStored adds stored rows on the global manager
func RecordStored(kind string, n int) { globalManager.RecordStored(kind, n) }

// RecordPrediction counts a prediction on the global manager
func RecordPrediction(predictor string) { globalManager.RecordPrediction(predictor) }

// RecordTraining records a training run on the global manager
func RecordTraining(d time.Duration, accuracy float64) { globalManager.RecordTraining(d, accuracy) }

// GetRegistry returns the registry the global manager writes to
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Handler serves the global registry in the Prometheus text format
func Handler() http.Handler {
	return promhttp.HandlerFor(customRegistry, promhttp.HandlerOpts{})
}
