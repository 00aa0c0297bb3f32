package notify

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kpphospital/mch-appointments/internal/appointment"
	"github.com/kpphospital/mch-appointments/internal/upstream"
	"github.com/kpphospital/mch-appointments/pkg/logging"
)

// Response is the JSON body returned by the notification endpoint.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Handler exposes the forwarder as POST /api/notify.
type Handler struct {
	forwarder *Forwarder
	logger    *logging.Logger
}

// NewHandler creates a notification handler.
func NewHandler(forwarder *Forwarder, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{forwarder: forwarder, logger: logger}
}

// Notify handles POST /api/notify requests
func (h *Handler) Notify(w http.ResponseWriter, r *http.Request) {
	if !h.forwarder.Configured() {
		h.logger.Error("notify: LINE credentials not configured")
		writeJSON(w, http.StatusInternalServerError, Response{Message: "Line API credentials are not configured on the server."})
		return
	}

	var req appointment.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("notify: failed to decode request", "error", err)
		writeJSON(w, http.StatusInternalServerError, Response{Message: "Internal Server Error"})
		return
	}

	err := h.forwarder.Forward(r.Context(), req)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, Response{Success: true, Message: "Notification sent successfully."})
	case errors.Is(err, ErrNotConfigured):
		writeJSON(w, http.StatusInternalServerError, Response{Message: "Line API credentials are not configured on the server."})
	case upstream.StatusCode(err) != 0:
		h.logger.Error("notify: line rejected message", "error", err)
		writeJSON(w, upstream.StatusCode(err), Response{Message: "Failed to send Line message."})
	default:
		h.logger.Error("notify: forward failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, Response{Message: "Internal Server Error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
