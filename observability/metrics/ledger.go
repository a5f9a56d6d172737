package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// LedgerMetrics tracks the state machine's commit and rejection activity.
type LedgerMetrics struct {
	blocksAppended    *prometheus.CounterVec
	rejected          *prometheus.CounterVec
	dedupHits         prometheus.Counter
	dedupPruned       prometheus.Counter
	circulatingSupply prometheus.Gauge
	logLength         prometheus.Gauge
	dedupRetained     prometheus.Gauge
}

var (
	ledgerOnce     sync.Once
	ledgerRegistry *LedgerMetrics
)

// Ledger returns the metrics registry for the ledger state machine.
func Ledger() *LedgerMetrics {
	ledgerOnce.Do(func() {
		ledgerRegistry = &LedgerMetrics{
			blocksAppended: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "ledger_blocks_appended_total",
				Help: "Count of blocks appended to the transaction log by operation.",
			}, []string{"op"}),
			rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "ledger_transactions_rejected_total",
				Help: "Count of rejected state-changing calls by reason.",
			}, []string{"reason"}),
			dedupHits: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "ledger_dedup_hits_total",
				Help: "Count of duplicate submissions answered idempotently.",
			}),
			dedupPruned: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "ledger_dedup_pruned_total",
				Help: "Count of fingerprints pruned after the retention window.",
			}),
			circulatingSupply: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "ledger_circulating_supply",
				Help: "Current circulating supply (may saturate for very large values).",
			}),
			logLength: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "ledger_log_length",
				Help: "Total transaction log length including archived blocks.",
			}),
			dedupRetained: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "ledger_dedup_retained",
				Help: "Fingerprints currently retained in the deduplication window.",
			}),
		}
		prometheus.MustRegister(
			ledgerRegistry.blocksAppended,
			ledgerRegistry.rejected,
			ledgerRegistry.dedupHits,
			ledgerRegistry.dedupPruned,
			ledgerRegistry.circulatingSupply,
			ledgerRegistry.logLength,
			ledgerRegistry.dedupRetained,
		)
	})
	return ledgerRegistry
}

// BlockAppended records a committed block by operation kind.
func (m *LedgerMetrics) BlockAppended(op string) {
	if m == nil {
		return
	}
	m.blocksAppended.WithLabelValues(op).Inc()
}

// Rejected records a rejected state-changing call.
func (m *LedgerMetrics) Rejected(reason string) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(reason).Inc()
}

// DedupHit records a duplicate submission answered with the original index.
func (m *LedgerMetrics) DedupHit() {
	if m == nil {
		return
	}
	m.dedupHits.Inc()
}

// DedupPruned records fingerprints evicted after the retention window.
func (m *LedgerMetrics) DedupPruned(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.dedupPruned.Add(float64(count))
}

// SetCirculatingSupply publishes the current circulating supply.
func (m *LedgerMetrics) SetCirculatingSupply(supply float64) {
	if m == nil {
		return
	}
	m.circulatingSupply.Set(supply)
}

// SetLogLength publishes the current total log length.
func (m *LedgerMetrics) SetLogLength(length uint64) {
	if m == nil {
		return
	}
	m.logLength.Set(float64(length))
}

// SetDedupRetained publishes the current dedup cache size.
func (m *LedgerMetrics) SetDedupRetained(size int) {
	if m == nil {
		return
	}
	m.dedupRetained.Set(float64(size))
}
