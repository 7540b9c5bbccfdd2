package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

// LedgerMetrics counts inventory movements applied and reversed by the ledger.
type LedgerMetrics struct {
	applied  *prometheus.CounterVec
	reversed *prometheus.CounterVec
	realized *prometheus.CounterVec
}

// NewLedgerMetrics registers the ledger metrics on the provided registerer.
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	if reg == nil {
		return &LedgerMetrics{}
	}
	applied := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_transactions_applied_total",
		Help: "Transactions applied to an asset position.",
	}, []string{"regime", "type"})
	reversed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_transactions_reversed_total",
		Help: "Transactions reversed on deletion.",
	}, []string{"regime", "type"})
	realized := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_realized_pnl_events_total",
		Help: "Disposals that realized a profit or loss.",
	}, []string{"outcome"})
	reg.MustRegister(applied, reversed, realized)
	return &LedgerMetrics{
		applied:  applied,
		reversed: reversed,
		realized: realized,
	}
}

// IncApplied increments the applied counter for the regime and transaction type.
func (m *LedgerMetrics) IncApplied(regime, txType string) {
	if m == nil || m.applied == nil {
		return
	}
	m.applied.WithLabelValues(normalizeLabel(regime), normalizeLabel(txType)).Inc()
}

// IncReversed increments the reversal counter for the regime and transaction type.
func (m *LedgerMetrics) IncReversed(regime, txType string) {
	if m == nil || m.reversed == nil {
		return
	}
	m.reversed.WithLabelValues(normalizeLabel(regime), normalizeLabel(txType)).Inc()
}

// ObserveRealized records the sign of a realized P&L amount.
func (m *LedgerMetrics) ObserveRealized(pnl decimal.Decimal) {
	if m == nil || m.realized == nil {
		return
	}
	outcome := "flat"
	switch pnl.Sign() {
	case 1:
		outcome = "gain"
	case -1:
		outcome = "loss"
	}
	m.realized.WithLabelValues(outcome).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
