package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the ledger's Prometheus collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	EntrySaves      *prometheus.CounterVec
	CascadeModified prometheus.Counter
	CascadeFailures prometheus.Counter
	CascadeDuration prometheus.Histogram
	ImportRows      *prometheus.CounterVec
	DigestsSent     prometheus.Counter
	ChainWarnings   prometheus.Counter
}

// NewMetrics registers the ledger collectors with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		EntrySaves: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "royalty",
			Name:      "entry_saves_total",
			Help:      "Monthly entry saves by outcome.",
		}, []string{"outcome"}),
		CascadeModified: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "royalty",
			Name:      "cascade_modified_entries_total",
			Help:      "Entries rewritten by outstanding-balance cascades.",
		}),
		CascadeFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "royalty",
			Name:      "cascade_failures_total",
			Help:      "Cascades halted by a persistence error.",
		}),
		CascadeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "royalty",
			Name:      "cascade_duration_seconds",
			Help:      "Time spent walking a client's financial year.",
			Buckets:   prometheus.DefBuckets,
		}),
		ImportRows: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "royalty",
			Name:      "import_rows_total",
			Help:      "Workbook rows processed by sheet and outcome.",
		}, []string{"sheet", "outcome"}),
		DigestsSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "royalty",
			Name:      "digests_sent_total",
			Help:      "Outstanding digests delivered.",
		}),
		ChainWarnings: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "royalty",
			Name:      "chain_warnings_total",
			Help:      "Saves whose explicit opening balance disagrees with the previous month.",
		}),
	}
}

func (m *Metrics) entrySaved(outcome string) {
	if m == nil {
		return
	}
	m.EntrySaves.WithLabelValues(outcome).Inc()
}

func (m *Metrics) cascadeObserved(seconds float64, modified int, failed bool) {
	if m == nil {
		return
	}
	m.CascadeDuration.Observe(seconds)
	m.CascadeModified.Add(float64(modified))
	if failed {
		m.CascadeFailures.Inc()
	}
}

func (m *Metrics) importRow(sheet, outcome string) {
	if m == nil {
		return
	}
	m.ImportRows.WithLabelValues(sheet, outcome).Inc()
}

func (m *Metrics) digestSent() {
	if m == nil {
		return
	}
	m.DigestsSent.Inc()
}

func (m *Metrics) chainWarning() {
	if m == nil {
		return
	}
	m.ChainWarnings.Inc()
}
