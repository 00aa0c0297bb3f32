package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/kpphospital/mch-appointments/internal/appointment"
)

// WindowResponse describes the bookable range for a service.
type WindowResponse struct {
	Service     string `json:"service"`
	Start       string `json:"start"`
	End         string `json:"end"`
	SlotMinutes int    `json:"slotMinutes"`
}

// SlotsResponse lists the admissible start times on a date.
type SlotsResponse struct {
	Service string   `json:"service"`
	Date    string   `json:"date"`
	Slots   []string `json:"slots"`
}

// ScheduleHandler answers schedule queries so clients can render pickers
// that match the server-side policy.
type ScheduleHandler struct {
	policy *appointment.Policy
	now    func() time.Time
}

// NewScheduleHandler creates a schedule handler.
func NewScheduleHandler(policy *appointment.Policy, now func() time.Time) *ScheduleHandler {
	if now == nil {
		now = time.Now
	}
	return &ScheduleHandler{policy: policy, now: now}
}

// Window handles GET /api/schedule/window
func (h *ScheduleHandler) Window(w http.ResponseWriter, r *http.Request) {
	service, ok := serviceParam(r)
	if !ok {
		jsonError(w, "unknown service", http.StatusBadRequest)
		return
	}
	win := h.policy.WindowFor(service)
	writeJSON(w, http.StatusOK, WindowResponse{
		Service:     string(service),
		Start:       win.StartClock(),
		End:         win.EndClock(),
		SlotMinutes: appointment.SlotMinutes,
	})
}

// Slots handles GET /api/schedule/slots
func (h *ScheduleHandler) Slots(w http.ResponseWriter, r *http.Request) {
	service, ok := serviceParam(r)
	if !ok {
		jsonError(w, "unknown service", http.StatusBadRequest)
		return
	}
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	slots, err := h.policy.Slots(date, service, h.now())
	if err != nil {
		jsonError(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, SlotsResponse{Service: string(service), Date: date, Slots: slots})
}

// serviceParam reads ?service=. Empty is allowed and means the default window.
func serviceParam(r *http.Request) (appointment.Service, bool) {
	service := appointment.Service(strings.TrimSpace(r.URL.Query().Get("service")))
	if service == "" {
		return service, true
	}
	return service, service.Valid()
}
