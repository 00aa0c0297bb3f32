package metrics

import "github.com/prometheus/client_golang/prometheus"

// SubmissionMetrics exposes counters/histograms for the booking workflow.
type SubmissionMetrics struct {
	submissionsTotal *prometheus.CounterVec
	forwardTotal     *prometheus.CounterVec
	forwardLatency   *prometheus.HistogramVec
	rejectedTotal    *prometheus.CounterVec
}

func NewSubmissionMetrics(reg prometheus.Registerer) *SubmissionMetrics {
	m := &SubmissionMetrics{
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mch",
			Subsystem: "booking",
			Name:      "submissions_total",
			Help:      "Total dispatched appointment submissions by outcome",
		}, []string{"outcome"}),
		forwardTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mch",
			Subsystem: "booking",
			Name:      "forward_total",
			Help:      "Total forwarder calls by target and outcome",
		}, []string{"target", "outcome"}),
		forwardLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "mch",
			Subsystem: "booking",
			Name:      "forward_latency_seconds",
			Help:      "Latency of each forwarder call",
			Buckets:   prometheus.DefBuckets,
		}, []string{"target"}),
		rejectedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mch",
			Subsystem: "booking",
			Name:      "validation_rejected_total",
			Help:      "Total submissions rejected before dispatch, by reason",
		}, []string{"kind"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submissionsTotal, m.forwardTotal, m.forwardLatency, m.rejectedTotal)
	return m
}

func (m *SubmissionMetrics) ObserveSubmission(success bool) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(outcome(success)).Inc()
}

func (m *SubmissionMetrics) ObserveForward(target string, success bool, seconds float64) {
	if m == nil {
		return
	}
	m.forwardTotal.WithLabelValues(target, outcome(success)).Inc()
	m.forwardLatency.WithLabelValues(target).Observe(seconds)
}

func (m *SubmissionMetrics) ObserveRejected(kind string) {
	if m == nil {
		return
	}
	m.rejectedTotal.WithLabelValues(kind).Inc()
}

func outcome(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
