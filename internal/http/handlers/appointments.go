package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/kpphospital/mch-appointments/internal/appointment"
	"github.com/kpphospital/mch-appointments/internal/form"
	"github.com/kpphospital/mch-appointments/internal/observability/metrics"
	"github.com/kpphospital/mch-appointments/pkg/logging"
)

// Submitter dispatches a validated appointment request.
type Submitter interface {
	Submit(ctx context.Context, req appointment.Request) (string, error)
}

// SubmitResponse is the JSON reply from POST /api/appointments.
type SubmitResponse struct {
	Success      bool   `json:"success"`
	SubmissionID string `json:"submissionId,omitempty"`
	Error        string `json:"error,omitempty"`
	Message      string `json:"message,omitempty"`
}

// AppointmentsHandler validates submissions and hands them to the dispatcher.
type AppointmentsHandler struct {
	policy    *appointment.Policy
	submitter Submitter
	metrics   *metrics.SubmissionMetrics
	now       func() time.Time
	logger    *logging.Logger
}

// NewAppointmentsHandler creates the submission endpoint handler.
func NewAppointmentsHandler(policy *appointment.Policy, submitter Submitter, m *metrics.SubmissionMetrics, now func() time.Time, logger *logging.Logger) *AppointmentsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &AppointmentsHandler{policy: policy, submitter: submitter, metrics: m, now: now, logger: logger}
}

// Submit handles POST /api/appointments requests
func (h *AppointmentsHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var sub appointment.Submission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		h.logger.Error("failed to decode submission", "error", err)
		jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := appointment.ValidateSubmission(sub, h.policy, h.now()); err != nil {
		var ve *appointment.ValidationError
		if !errors.As(err, &ve) {
			h.logger.Error("unexpected validation error", "error", err)
			jsonError(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		h.metrics.ObserveRejected(string(ve.Kind))
		h.logger.Info("submission rejected", "kind", ve.Kind, "field", ve.Field)
		writeJSON(w, http.StatusUnprocessableEntity, SubmitResponse{Error: string(ve.Kind), Message: ve.Reason})
		return
	}

	id, err := h.submitter.Submit(r.Context(), sub.Request)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, SubmitResponse{SubmissionID: id, Message: form.SubmissionFailedMessage})
		return
	}
	writeJSON(w, http.StatusCreated, SubmitResponse{Success: true, SubmissionID: id})
}
