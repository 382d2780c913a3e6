package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the reservation engine.
//
// All metrics are prefixed with "sofra_":
//   - sofra_eligibility_checks_total{outcome} - evaluations by verdict (allowed/refused)
//   - sofra_eligibility_rule_failures_total{rule} - failing predicates
//   - sofra_ledger_fallbacks_total{check} - legacy ledger errors treated as fail-open
//   - sofra_bookings_created_total - bookings persisted
//   - sofra_booking_conflicts_total - reservations refused by the stay restriction backstop
//   - sofra_booking_status_changes_total{status} - admin and job status transitions
type Metrics struct {
	EligibilityChecks *prometheus.CounterVec
	RuleFailures      *prometheus.CounterVec
	LedgerFallbacks   *prometheus.CounterVec
	BookingsCreated   prometheus.Counter
	BookingConflicts  prometheus.Counter
	StatusChanges     *prometheus.CounterVec
}

// New registers the metrics on reg. Pass prometheus.DefaultRegisterer in
// production and a fresh prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		EligibilityChecks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sofra_eligibility_checks_total",
			Help: "Total number of reservation eligibility evaluations",
		}, []string{"outcome"}),
		RuleFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sofra_eligibility_rule_failures_total",
			Help: "Total number of failed eligibility rules",
		}, []string{"rule"}),
		LedgerFallbacks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sofra_ledger_fallbacks_total",
			Help: "Legacy ledger errors answered with the permissive default",
		}, []string{"check"}),
		BookingsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "sofra_bookings_created_total",
			Help: "Total number of bookings created",
		}),
		BookingConflicts: f.NewCounter(prometheus.CounterOpts{
			Name: "sofra_booking_conflicts_total",
			Help: "Reservations refused because the stay was already booked",
		}),
		StatusChanges: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sofra_booking_status_changes_total",
			Help: "Booking status transitions by target status",
		}, []string{"status"}),
	}
}

// The helpers below are nil-safe so services can run without metrics.

func (m *Metrics) ObserveEligibility(allowed bool, failed []string) {
	if m == nil {
		return
	}
	outcome := "refused"
	if allowed {
		outcome = "allowed"
	}
	m.EligibilityChecks.WithLabelValues(outcome).Inc()
	for _, rule := range failed {
		m.RuleFailures.WithLabelValues(rule).Inc()
	}
}

func (m *Metrics) LedgerFallback(check string) {
	if m == nil {
		return
	}
	m.LedgerFallbacks.WithLabelValues(check).Inc()
}

func (m *Metrics) BookingCreated() {
	if m == nil {
		return
	}
	m.BookingsCreated.Inc()
}

func (m *Metrics) BookingConflict() {
	if m == nil {
		return
	}
	m.BookingConflicts.Inc()
}

func (m *Metrics) StatusChanged(status string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.StatusChanges.WithLabelValues(status).Add(float64(n))
}
