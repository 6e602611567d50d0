// Package metrics provides observability for the screening module.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the screening module's Prometheus metrics.
type Metrics struct {
	SourceLatency *prometheus.HistogramVec
	SourceErrors  *prometheus.CounterVec
	Screenings    *prometheus.CounterVec
	ScreenLatency prometheus.Histogram
}

// New creates and registers all screening metrics.
func New() *Metrics {
	return &Metrics{
		SourceLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "amlgate_screening_source_duration_seconds",
			Help:    "Duration of individual list source queries",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"source"}),

		SourceErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "amlgate_screening_source_errors_total",
			Help: "List source queries that ended in an unknown outcome",
		}, []string{"source"}),

		Screenings: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "amlgate_screenings_total",
			Help: "Completed screenings by resulting risk level",
		}, []string{"level"}),

		ScreenLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "amlgate_screening_duration_seconds",
			Help:    "Duration of a full screening run including scoring",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}
}

// ObserveSourceLatency records one source query duration.
func (m *Metrics) ObserveSourceLatency(source string, d time.Duration) {
	if m != nil {
		m.SourceLatency.WithLabelValues(source).Observe(d.Seconds())
	}
}

// IncSourceError records a source query that could not answer.
func (m *Metrics) IncSourceError(source string) {
	if m != nil {
		m.SourceErrors.WithLabelValues(source).Inc()
	}
}

// IncScreening records a completed screening by level.
func (m *Metrics) IncScreening(level string) {
	if m != nil {
		m.Screenings.WithLabelValues(level).Inc()
	}
}

// ObserveScreenLatency records a full screening run duration.
func (m *Metrics) ObserveScreenLatency(d time.Duration) {
	if m != nil {
		m.ScreenLatency.Observe(d.Seconds())
	}
}
