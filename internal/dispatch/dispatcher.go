// Package dispatch sends a validated appointment to the notification and
// storage forwarders at the same time and reduces both outcomes to one.
package dispatch

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/kpphospital/mch-appointments/internal/appointment"
	"github.com/kpphospital/mch-appointments/internal/fanout"
	"github.com/kpphospital/mch-appointments/internal/observability/metrics"
	"github.com/kpphospital/mch-appointments/internal/upstream"
	"github.com/kpphospital/mch-appointments/pkg/logging"
)

// ErrSubmissionFailed is the only failure callers see. The per-forwarder
// reasons are logged, never returned.
var ErrSubmissionFailed = errors.New("dispatch: submission failed")

const (
	TargetNotification = "notification"
	TargetStorage      = "storage"
)

var dispatchTracer = otel.Tracer("mch.internal.dispatch")

// Forwarder delivers one request to one downstream service.
type Forwarder interface {
	Forward(ctx context.Context, req appointment.Request) error
}

// Dispatcher fans a request out to both forwarders. There is no retry and no
// idempotency key: resubmitting after a partial failure repeats both calls.
type Dispatcher struct {
	notifier Forwarder
	storage  Forwarder
	metrics  *metrics.SubmissionMetrics
	logger   *logging.Logger
}

// New creates a dispatcher.
func New(notifier, storage Forwarder, m *metrics.SubmissionMetrics, logger *logging.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.Default()
	}
	return &Dispatcher{
		notifier: notifier,
		storage:  storage,
		metrics:  m,
		logger:   logger,
	}
}

// Submit issues both calls concurrently and waits for both to settle. It
// returns a submission ID for log correlation and nil only when both
// forwarders succeeded.
func (d *Dispatcher) Submit(ctx context.Context, req appointment.Request) (string, error) {
	submissionID := uuid.NewString()
	ctx, span := dispatchTracer.Start(ctx, "dispatch.submit")
	defer span.End()
	span.SetAttributes(
		attribute.String("mch.submission_id", submissionID),
		attribute.String("mch.service", req.Service),
	)

	results := fanout.Run(ctx,
		fanout.Call{Name: TargetNotification, Fn: func(ctx context.Context) error { return d.notifier.Forward(ctx, req) }},
		fanout.Call{Name: TargetStorage, Fn: func(ctx context.Context) error { return d.storage.Forward(ctx, req) }},
	)

	log := d.logger.With("submission_id", submissionID)
	for _, r := range results {
		d.metrics.ObserveForward(r.Name, r.OK(), r.Duration.Seconds())
		if r.OK() {
			log.Info("dispatch: forward succeeded", "target", r.Name, "duration_ms", r.Duration.Milliseconds())
			continue
		}
		log.Error("dispatch: forward failed",
			"target", r.Name,
			"error", r.Err,
			"transport", upstream.IsTransport(r.Err),
			"upstream_status", upstream.StatusCode(r.Err),
			"duration_ms", r.Duration.Milliseconds(),
		)
	}

	ok := results.OK()
	d.metrics.ObserveSubmission(ok)
	if ok {
		log.Info("dispatch: submission succeeded")
		return submissionID, nil
	}

	failed := results.Failed()
	if len(failed) < len(results) {
		// One side already took effect and nothing undoes it.
		log.Warn("dispatch: partial success", "failed_target", failed[0].Name)
	}
	span.RecordError(results.Err())
	span.SetStatus(codes.Error, "submission failed")
	return submissionID, ErrSubmissionFailed
}
