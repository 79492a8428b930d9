package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// LedgerMetrics records stock ledger adjustment outcomes.
type LedgerMetrics struct {
	adjustments *prometheus.CounterVec
	clamps      *prometheus.CounterVec
	missingRows prometheus.Counter
}

// NewLedgerMetrics registers the ledger metrics on the provided registerer.
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	if reg == nil {
		return &LedgerMetrics{}
	}
	adjustments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_adjustments_total",
		Help: "Stock ledger adjustments by direction.",
	}, []string{"direction"})
	clamps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_clamps_total",
		Help: "Decrements clamped to zero instead of going negative.",
	}, []string{"reason"})
	missingRows := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stock_decrement_missing_rows_total",
		Help: "Decrements targeting a stock row that does not exist.",
	})
	reg.MustRegister(adjustments, clamps, missingRows)
	return &LedgerMetrics{
		adjustments: adjustments,
		clamps:      clamps,
		missingRows: missingRows,
	}
}

// IncAdjustment counts one ledger adjustment in the given direction.
func (m *LedgerMetrics) IncAdjustment(direction string) {
	if m == nil || m.adjustments == nil {
		return
	}
	m.adjustments.WithLabelValues(normalizeLabel(direction)).Inc()
}

// IncClamp counts a decrement that was clamped at zero.
func (m *LedgerMetrics) IncClamp(reason string) {
	if m == nil || m.clamps == nil {
		return
	}
	m.clamps.WithLabelValues(normalizeLabel(reason)).Inc()
}

// IncMissingRow counts a decrement against an absent stock row.
func (m *LedgerMetrics) IncMissingRow() {
	if m == nil || m.missingRows == nil {
		return
	}
	m.missingRows.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
