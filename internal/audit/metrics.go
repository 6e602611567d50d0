package audit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the ledger's Prometheus metrics.
type Metrics struct {
	EntriesAppended *prometheus.CounterVec
	AppendFailures  prometheus.Counter
	OutboxLag       prometheus.Gauge
}

// NewMetrics creates and registers all ledger metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		EntriesAppended: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "amlgate_audit_entries_total",
			Help: "Ledger entries appended by action",
		}, []string{"action"}),

		AppendFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "amlgate_audit_append_failures_total",
			Help: "Ledger writes that failed; each one failed a business operation",
		}),

		OutboxLag: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "amlgate_audit_outbox_pending",
			Help: "Ledger entries awaiting publication to Kafka",
		}),
	}
}

// IncEntryAppended records a successful append.
func (m *Metrics) IncEntryAppended(action string) {
	if m != nil {
		m.EntriesAppended.WithLabelValues(action).Inc()
	}
}

// IncAppendFailure records a failed append.
func (m *Metrics) IncAppendFailure() {
	if m != nil {
		m.AppendFailures.Inc()
	}
}

// SetOutboxLag records the pending outbox depth.
func (m *Metrics) SetOutboxLag(n int) {
	if m != nil {
		m.OutboxLag.Set(float64(n))
	}
}
