package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// LedgerMetrics records counters for the inventory and invoicing hot paths.
type LedgerMetrics struct {
	invoicesCreated  prometheus.Counter
	numberRetries    prometheus.Counter
	stockAppends     *prometheus.CounterVec
	stockLogDropped  prometheus.Counter
	queueDepth       prometheus.Gauge
	replayOutcomes   *prometheus.CounterVec
	txDuration       *prometheus.HistogramVec
	connectivity     prometheus.Gauge
}

// NewLedgerMetrics registers the ledger metrics on the provided registerer.
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	if reg == nil {
		return &LedgerMetrics{}
	}
	invoicesCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "invoices_created_total",
		Help: "Invoices committed with an assigned number.",
	})
	numberRetries := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "invoice_number_retries_total",
		Help: "Invoice transactions retried after a write conflict.",
	})
	stockAppends := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_transactions_appended_total",
		Help: "Stock ledger entries appended, by direction.",
	}, []string{"direction"})
	stockLogDropped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stock_log_dropped_total",
		Help: "Audit log entries dropped after exhausting retries.",
	})
	queueDepth := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "offline_queue_depth",
		Help: "Pending invoices currently held in the offline queue.",
	})
	replayOutcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "offline_replay_total",
		Help: "Offline queue replay attempts, by outcome.",
	}, []string{"outcome"})
	txDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ledger_tx_duration_seconds",
		Help:    "Duration of ledger transactions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	connectivity := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "store_connected",
		Help: "1 when the ledger store is reachable, 0 otherwise.",
	})
	reg.MustRegister(
		invoicesCreated,
		numberRetries,
		stockAppends,
		stockLogDropped,
		queueDepth,
		replayOutcomes,
		txDuration,
		connectivity,
	)
	return &LedgerMetrics{
		invoicesCreated: invoicesCreated,
		numberRetries:   numberRetries,
		stockAppends:    stockAppends,
		stockLogDropped: stockLogDropped,
		queueDepth:      queueDepth,
		replayOutcomes:  replayOutcomes,
		txDuration:      txDuration,
		connectivity:    connectivity,
	}
}

// IncInvoiceCreated increments the committed invoice counter.
func (m *LedgerMetrics) IncInvoiceCreated() {
	if m == nil || m.invoicesCreated == nil {
		return
	}
	m.invoicesCreated.Inc()
}

// IncNumberRetry increments the conflict retry counter.
func (m *LedgerMetrics) IncNumberRetry() {
	if m == nil || m.numberRetries == nil {
		return
	}
	m.numberRetries.Inc()
}

// IncStockAppend increments the ledger append counter for a direction.
func (m *LedgerMetrics) IncStockAppend(direction string) {
	if m == nil || m.stockAppends == nil {
		return
	}
	if direction == "" {
		direction = "unknown"
	}
	m.stockAppends.WithLabelValues(direction).Inc()
}

// IncStockLogDropped increments the dropped audit entry counter.
func (m *LedgerMetrics) IncStockLogDropped() {
	if m == nil || m.stockLogDropped == nil {
		return
	}
	m.stockLogDropped.Inc()
}

// SetQueueDepth records the current offline queue length.
func (m *LedgerMetrics) SetQueueDepth(n int) {
	if m == nil || m.queueDepth == nil {
		return
	}
	m.queueDepth.Set(float64(n))
}

// IncReplayOutcome increments the replay counter for the given outcome label.
func (m *LedgerMetrics) IncReplayOutcome(outcome string) {
	if m == nil || m.replayOutcomes == nil {
		return
	}
	if outcome == "" {
		outcome = "unknown"
	}
	m.replayOutcomes.WithLabelValues(outcome).Inc()
}

// ObserveTxDuration records the duration of a ledger transaction.
func (m *LedgerMetrics) ObserveTxDuration(operation string, duration time.Duration) {
	if m == nil || m.txDuration == nil {
		return
	}
	if operation == "" {
		operation = "unknown"
	}
	m.txDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// SetConnected records the connectivity monitor state.
func (m *LedgerMetrics) SetConnected(connected bool) {
	if m == nil || m.connectivity == nil {
		return
	}
	if connected {
		m.connectivity.Set(1)
		return
	}
	m.connectivity.Set(0)
}
