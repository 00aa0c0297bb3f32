package storage

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kpphospital/mch-appointments/internal/appointment"
	"github.com/kpphospital/mch-appointments/internal/upstream"
	"github.com/kpphospital/mch-appointments/pkg/logging"
)

// SaveResponse is returned on a successful append.
type SaveResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

// ErrorResponse is returned on any failure. Details never carries upstream text.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Handler exposes the forwarder as POST /api/save-to-sheet.
type Handler struct {
	forwarder *Forwarder
	logger    *logging.Logger
}

// NewHandler creates a storage handler.
func NewHandler(forwarder *Forwarder, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{forwarder: forwarder, logger: logger}
}

// Save handles POST /api/save-to-sheet requests
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	var req appointment.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("storage: failed to decode request", "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Failed to submit to Google Sheet.", Details: "invalid request body"})
		return
	}

	data, err := h.forwarder.Save(r.Context(), req)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Failed to submit to Google Sheet.", Details: failureDetail(err)})
		return
	}
	writeJSON(w, http.StatusOK, SaveResponse{Success: true, Data: data})
}

func failureDetail(err error) string {
	switch {
	case upstream.IsTransport(err):
		return "spreadsheet service unreachable"
	case upstream.StatusCode(err) != 0:
		return "spreadsheet service rejected the request"
	case errors.Is(err, ErrNotSuccess):
		return "spreadsheet service reported an error"
	default:
		return "unexpected spreadsheet response"
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
