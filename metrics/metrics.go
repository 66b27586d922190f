package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry is the process-wide registry served on /metrics.
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Webhook tracks reconciliation outcomes per delivery.
type Webhook struct {
	deliveries *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

func NewWebhook(reg prometheus.Registerer) *Webhook {
	return &Webhook{
		deliveries: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "webhook_deliveries_total",
				Help: "Webhook deliveries by channel, event type and outcome",
			},
			[]string{"channel", "type", "outcome"},
		),
		duration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "webhook_processing_seconds",
				Help:    "Time spent reconciling a webhook delivery",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"channel"},
		),
	}
}

func (m *Webhook) Observe(channel, eventType, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.deliveries.WithLabelValues(channel, eventType, outcome).Inc()
	m.duration.WithLabelValues(channel).Observe(seconds)
}

// Ledger tracks calls made to the payment provider.
type Ledger struct {
	calls        *prometheus.HistogramVec
	breakerState *prometheus.GaugeVec
}

func NewLedger(reg prometheus.Registerer) *Ledger {
	return &Ledger{
		calls: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ledger_call_seconds",
				Help:    "Latency of payment ledger calls",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 8),
			},
			[]string{"operation", "result"},
		),
		breakerState: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ledger_breaker_state",
				Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
			},
			[]string{"name"},
		),
	}
}

func (m *Ledger) ObserveCall(operation, result string, seconds float64) {
	if m == nil {
		return
	}
	m.calls.WithLabelValues(operation, result).Observe(seconds)
}

func (m *Ledger) SetBreakerState(name string, state float64) {
	if m == nil {
		return
	}
	m.breakerState.WithLabelValues(name).Set(state)
}
