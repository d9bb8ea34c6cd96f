package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the engine's Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	LedgerMovements        *prometheus.CounterVec
	LedgerVolume           *prometheus.CounterVec
	LoanTransitions        *prometheus.CounterVec
	ScheduleFailures       prometheus.Counter
	InstallmentsMarkedLate prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		LedgerMovements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coopfin",
			Name:      "ledger_movements_total",
			Help:      "Ledger entries written, by category and direction.",
		}, []string{"category", "direction"}),
		LedgerVolume: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coopfin",
			Name:      "ledger_volume_minor_units_total",
			Help:      "Sum of ledger entry amounts in minor units, by category.",
		}, []string{"category"}),
		LoanTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coopfin",
			Name:      "loan_transitions_total",
			Help:      "Loan lifecycle transitions, by source and target status.",
		}, []string{"from", "to"}),
		ScheduleFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "coopfin",
			Name:      "schedule_generation_failures_total",
			Help:      "Disbursed loans left without a schedule and flagged for regeneration.",
		}),
		InstallmentsMarkedLate: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "coopfin",
			Name:      "installments_marked_late_total",
			Help:      "Late-fee applications to installments.",
		}),
	}
	reg.MustRegister(
		m.LedgerMovements,
		m.LedgerVolume,
		m.LoanTransitions,
		m.ScheduleFailures,
		m.InstallmentsMarkedLate,
		collectors.NewGoCollector(),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Nil-safe recorders so the engine runs without metrics in tests.

func (m *Metrics) ObserveMovement(category, direction string, amount int64) {
	if m == nil {
		return
	}
	m.LedgerMovements.WithLabelValues(category, direction).Inc()
	m.LedgerVolume.WithLabelValues(category).Add(float64(amount))
}

func (m *Metrics) ObserveTransition(from, to string) {
	if m == nil {
		return
	}
	m.LoanTransitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) ObserveScheduleFailure() {
	if m == nil {
		return
	}
	m.ScheduleFailures.Inc()
}

func (m *Metrics) ObserveLateMark() {
	if m == nil {
		return
	}
	m.InstallmentsMarkedLate.Inc()
}
