package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/kpphospital/mch-appointments/internal/appointment"
)

func TestScheduleWindow(t *testing.T) {
	h := NewScheduleHandler(appointment.NewPolicy(ict), fixedNow)
	rec := httptest.NewRecorder()
	target := "/api/schedule/window?service=" + url.QueryEscape("พัฒนาการเด็ก")

	h.Window(rec, httptest.NewRequest(http.MethodGet, target, nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp WindowResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Start != "13:00" || resp.End != "15:30" || resp.SlotMinutes != 30 {
		t.Fatalf("unexpected window %+v", resp)
	}
}

func TestScheduleWindowDefaultsToMorning(t *testing.T) {
	h := NewScheduleHandler(appointment.NewPolicy(ict), fixedNow)
	rec := httptest.NewRecorder()

	h.Window(rec, httptest.NewRequest(http.MethodGet, "/api/schedule/window", nil))

	var resp WindowResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Start != "09:00" || resp.End != "11:30" {
		t.Fatalf("unexpected window %+v", resp)
	}
}

func TestScheduleRejectsUnknownService(t *testing.T) {
	h := NewScheduleHandler(appointment.NewPolicy(ict), fixedNow)
	rec := httptest.NewRecorder()

	h.Slots(rec, httptest.NewRequest(http.MethodGet, "/api/schedule/slots?service=dentist&date=2026-10-21", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestScheduleSlots(t *testing.T) {
	h := NewScheduleHandler(appointment.NewPolicy(ict), fixedNow)
	rec := httptest.NewRecorder()
	target := "/api/schedule/slots?date=2026-10-24&service=" + url.QueryEscape("ฝากครรภ์")

	h.Slots(rec, httptest.NewRequest(http.MethodGet, target, nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp SlotsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Slots) != 0 {
		t.Fatalf("expected no slots on a Saturday, got %v", resp.Slots)
	}
}

func TestScheduleSlotsBadDate(t *testing.T) {
	h := NewScheduleHandler(appointment.NewPolicy(ict), fixedNow)
	rec := httptest.NewRecorder()

	h.Slots(rec, httptest.NewRequest(http.MethodGet, "/api/schedule/slots?date=tomorrow", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
