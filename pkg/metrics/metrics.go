// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

const namespace = "feedledger"

// Metrics groups every collector the API records into.
type Metrics struct {
	LedgerTransactions *prometheus.CounterVec
	LedgerAmount       *prometheus.CounterVec
	LedgerErrors       *prometheus.CounterVec
	BatchesStarted     prometheus.Counter
	BatchesCompleted   *prometheus.CounterVec
	HTTPRequests       *prometheus.CounterVec
	HTTPDuration       *prometheus.HistogramVec
}

// New registers the collectors on reg. Tests pass a fresh
// prometheus.NewRegistry() so that repeated construction never panics.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		LedgerTransactions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "transactions_total",
			Help:      "Ledger transactions posted, by type.",
		}, []string{"type"}),
		LedgerAmount: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "amount_total",
			Help:      "Absolute monetary amount posted, by transaction type.",
		}, []string{"type"}),
		LedgerErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "errors_total",
			Help:      "Failed ledger operations, by operation and error kind.",
		}, []string{"operation", "kind"}),
		BatchesStarted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "started_total",
			Help:      "Batches opened.",
		}),
		BatchesCompleted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "completed_total",
			Help:      "Batches completed, by reason (rollover or buy_back).",
		}, []string{"reason"}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests served, by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency, by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// ObserveTransaction records one posted ledger transaction.
func (m *Metrics) ObserveTransaction(txType string, amount decimal.Decimal) {
	if m == nil {
		return
	}
	m.LedgerTransactions.WithLabelValues(txType).Inc()
	f, _ := amount.Abs().Float64()
	m.LedgerAmount.WithLabelValues(txType).Add(f)
}

// ObserveError records a failed ledger operation.
func (m *Metrics) ObserveError(operation, kind string) {
	if m == nil {
		return
	}
	m.LedgerErrors.WithLabelValues(operation, kind).Inc()
}
