package receipt

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts receipt outcomes and line results.
type Metrics struct {
	receipts *prometheus.CounterVec
	lines    *prometheus.CounterVec
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// NewMetrics registers the receipt collectors. A nil registerer uses the default
// Prometheus registerer.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		defaultOnce.Do(func() {
			defaultMetrics = buildMetrics(prometheus.DefaultRegisterer)
		})
		return defaultMetrics
	}
	return buildMetrics(registerer)
}

func buildMetrics(registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		receipts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "odyssey_receipts_total",
			Help: "Warehouse receipt submissions by outcome.",
		}, []string{"outcome"}),
		lines: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "odyssey_receipt_lines_total",
			Help: "Warehouse receipt lines by status and reason.",
		}, []string{"status", "reason"}),
	}
	registerer.MustRegister(m.receipts, m.lines)
	return m
}

func (m *Metrics) observeReceipt(outcome string) {
	if m == nil {
		return
	}
	m.receipts.WithLabelValues(outcome).Inc()
}

func (m *Metrics) observeLines(results []LineResult) {
	if m == nil {
		return
	}
	for _, res := range results {
		m.lines.WithLabelValues(string(res.Status), res.Reason).Inc()
	}
}
