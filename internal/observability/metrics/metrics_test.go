package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestSubmissionMetricsCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewSubmissionMetrics(reg)

	m.ObserveSubmission(true)
	m.ObserveSubmission(false)
	m.ObserveSubmission(false)
	m.ObserveForward("notification", false, 0.2)
	m.ObserveRejected("invalid_phone")

	if got := testutil.ToFloat64(m.submissionsTotal.WithLabelValues("failure")); got != 2 {
		t.Fatalf("expected 2 failed submissions, got %v", got)
	}
	if got := testutil.ToFloat64(m.forwardTotal.WithLabelValues("notification", "failure")); got != 1 {
		t.Fatalf("expected 1 failed notification forward, got %v", got)
	}
	if got := testutil.ToFloat64(m.rejectedTotal.WithLabelValues("invalid_phone")); got != 1 {
		t.Fatalf("expected 1 rejected submission, got %v", got)
	}
}

func TestSubmissionMetricsLatencyHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewSubmissionMetrics(reg)
	m.ObserveForward("storage", true, 0.5)
	m.ObserveForward("storage", true, 1.5)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	var hist *dto.Histogram
	for _, mf := range families {
		if mf.GetName() == "mch_booking_forward_latency_seconds" {
			hist = mf.GetMetric()[0].GetHistogram()
		}
	}
	if hist == nil {
		t.Fatalf("latency histogram not registered")
	}
	if hist.GetSampleCount() != 2 {
		t.Fatalf("expected 2 samples, got %d", hist.GetSampleCount())
	}
	if hist.GetSampleSum() != 2.0 {
		t.Fatalf("expected sample sum 2.0, got %v", hist.GetSampleSum())
	}
}

func TestSubmissionMetricsNilSafe(t *testing.T) {
	var m *SubmissionMetrics
	m.ObserveSubmission(true)
	m.ObserveForward("storage", false, 0.1)
	m.ObserveRejected("consent_required")
}
