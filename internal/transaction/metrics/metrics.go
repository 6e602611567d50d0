// Package metrics exposes Prometheus metrics for transaction processing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the transaction pipeline's Prometheus metrics.
type Metrics struct {
	Classifications *prometheus.CounterVec
	Obligations     *prometheus.CounterVec
	Rejections      *prometheus.CounterVec
	ClassifyLatency prometheus.Histogram
}

// New creates and registers all transaction metrics.
func New() *Metrics {
	return &Metrics{
		Classifications: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "amlgate_transactions_total",
			Help: "Registered transactions by classification",
		}, []string{"classification"}),

		Obligations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "amlgate_report_obligations_total",
			Help: "Reporting obligations triggered by kind",
		}, []string{"obligation"}),

		Rejections: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "amlgate_transaction_rejections_total",
			Help: "Registrations rejected before classification, by cause",
		}, []string{"cause"}),

		ClassifyLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "amlgate_transaction_classify_seconds",
			Help:    "End to end registration latency including the staleness gate",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// IncClassification records a completed classification.
func (m *Metrics) IncClassification(class, obligation string) {
	if m != nil {
		m.Classifications.WithLabelValues(class).Inc()
		m.Obligations.WithLabelValues(obligation).Inc()
	}
}

// IncRejection records a registration rejected before classification.
func (m *Metrics) IncRejection(cause string) {
	if m != nil {
		m.Rejections.WithLabelValues(cause).Inc()
	}
}

// ObserveLatency records a registration duration.
func (m *Metrics) ObserveLatency(d time.Duration) {
	if m != nil {
		m.ClassifyLatency.Observe(d.Seconds())
	}
}
