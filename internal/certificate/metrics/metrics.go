package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for certificate operations.
// All methods are safe on a nil receiver so services can run without metrics.
type Metrics struct {
	IssuanceOutcomes     *prometheus.CounterVec
	IssuanceLatency      prometheus.Histogram
	ProviderErrors       *prometheus.CounterVec
	Regenerations        *prometheus.CounterVec
	CallbacksApplied     *prometheus.CounterVec
	CallbacksRejected    *prometheus.CounterVec
	ReconcileTransitions *prometheus.CounterVec
}

// New registers certificate collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		IssuanceOutcomes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "certifier_issuance_outcomes_total",
			Help: "Issuance attempts by outcome (issued, error, notpassing, restricted, unchanged, busy)",
		}, []string{"outcome"}),
		IssuanceLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "certifier_issuance_latency_seconds",
			Help:    "Latency of Add including the credential provider call",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		ProviderErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "certifier_credential_provider_errors_total",
			Help: "Credential provider failures by operation and category",
		}, []string{"op", "category"}),
		Regenerations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "certifier_regenerations_total",
			Help: "Regeneration attempts by result (updated, unchanged, failed)",
		}, []string{"result"}),
		CallbacksApplied: f.NewCounterVec(prometheus.CounterOpts{
			Name: "certifier_callbacks_applied_total",
			Help: "Provider callbacks applied, labeled by course and resulting status",
		}, []string{"course_id", "status"}),
		CallbacksRejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "certifier_callbacks_rejected_total",
			Help: "Provider callbacks rejected, labeled by reason",
		}, []string{"reason"}),
		ReconcileTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "certifier_reconcile_transitions_total",
			Help: "Records moved to downloadable by bulk reconciliation, labeled by course",
		}, []string{"course_id"}),
	}
}

func (m *Metrics) IncIssuance(outcome string) {
	if m == nil {
		return
	}
	m.IssuanceOutcomes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveIssuanceLatency(start time.Time) {
	if m == nil {
		return
	}
	m.IssuanceLatency.Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncProviderError(op, category string) {
	if m == nil {
		return
	}
	m.ProviderErrors.WithLabelValues(op, category).Inc()
}

func (m *Metrics) IncRegeneration(result string) {
	if m == nil {
		return
	}
	m.Regenerations.WithLabelValues(result).Inc()
}

func (m *Metrics) IncCallbackApplied(courseID, status string) {
	if m == nil {
		return
	}
	m.CallbacksApplied.WithLabelValues(courseID, status).Inc()
}

func (m *Metrics) IncCallbackRejected(reason string) {
	if m == nil {
		return
	}
	m.CallbacksRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) AddReconciled(courseID string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.ReconcileTransitions.WithLabelValues(courseID).Add(float64(n))
}
