package metrics

import "github.com/prometheus/client_golang/prometheus"

// AdmissionMetrics counts adoption applications created by the pipeline.
type AdmissionMetrics struct {
	created *prometheus.CounterVec
}

// NewAdmissionMetrics registers the admission counters.
func NewAdmissionMetrics(reg prometheus.Registerer) *AdmissionMetrics {
	if reg == nil {
		return &AdmissionMetrics{}
	}
	created := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "adoptions_created_total",
		Help:      "Adoption applications created, by entry path and initial status.",
	}, []string{"path", "status"})
	reg.MustRegister(created)
	return &AdmissionMetrics{created: created}
}

// IncCreated records one application created through path ("single" or "cart").
func (a *AdmissionMetrics) IncCreated(path, status string) {
	if a == nil || a.created == nil {
		return
	}
	a.created.WithLabelValues(normalizeLabel(path), normalizeLabel(status)).Inc()
}
