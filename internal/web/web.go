// Package web serves the server-rendered booking form. Every request replays
// the posted fields through form.Machine, so the page only renders state.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"slices"
	"time"

	"github.com/kpphospital/mch-appointments/internal/appointment"
	"github.com/kpphospital/mch-appointments/internal/form"
	"github.com/kpphospital/mch-appointments/pkg/logging"
)

//go:embed templates/*.html
var templateFS embed.FS

// Clinic is the footer and header copy.
type Clinic struct {
	Name    string
	Unit    string
	Address string
}

// DefaultClinic is the hospital the form books for.
var DefaultClinic = Clinic{
	Name:    "โรงพยาบาลชุมชนเทศบาลเมืองกำแพงเพชร",
	Unit:    "งานส่งเสริมสุขภาพแม่และเด็ก",
	Address: "35 ซ.2 ถ.ราชดำเนิน 1 ต.ในเมือง อ.เมือง จ.กำแพงเพชร 62000",
}

type option struct {
	Value    string
	Selected bool
}

type page struct {
	Title    string
	Clinic   Clinic
	Model    form.Model
	Services []option
	Slots    []option
	Window   string
	MinDate  string
	Summary  form.Summary
}

// Handler renders the form pages.
type Handler struct {
	machine   *form.Machine
	submitter form.Submitter
	clinic    Clinic
	now       func() time.Time
	logger    *logging.Logger
	pages     map[string]*template.Template
}

// NewHandler parses the embedded templates.
func NewHandler(machine *form.Machine, submitter form.Submitter, clinic Clinic, now func() time.Time, logger *logging.Logger) (*Handler, error) {
	if machine == nil {
		machine = form.NewMachine(nil, now)
	}
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = logging.Default()
	}
	pages := make(map[string]*template.Template)
	for _, name := range []string{"form", "success", "notfound", "privacy"} {
		tmpl, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("web: parse %s template: %w", name, err)
		}
		pages[name] = tmpl
	}
	return &Handler{
		machine:   machine,
		submitter: submitter,
		clinic:    clinic,
		now:       now,
		logger:    logger,
		pages:     pages,
	}, nil
}

// Form renders a blank booking form.
func (h *Handler) Form(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, http.StatusOK, form.Initial())
}

// Post applies the posted fields. action=refresh re-renders with updated
// slots; anything else submits.
func (h *Handler) Post(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.logger.Warn("web: parse form failed", "error", err)
		h.renderForm(w, http.StatusBadRequest, form.Initial())
		return
	}

	model := form.Initial()
	for _, field := range form.Fields {
		model, _ = h.machine.Update(model, form.FieldChanged{Field: field, Value: r.PostFormValue(string(field))})
	}
	model, _ = h.machine.Update(model, form.ConsentChanged{Consent: r.PostFormValue("consent") != ""})

	if r.PostFormValue("action") == "refresh" {
		h.renderForm(w, http.StatusOK, model)
		return
	}

	model = h.machine.Submit(r.Context(), model, h.submitter)
	switch model.State {
	case form.Succeeded:
		h.render(w, http.StatusOK, "success", page{
			Title:   "ลงทะเบียนสำเร็จ",
			Clinic:  h.clinic,
			Model:   model,
			Summary: h.machine.Summarize(model),
		})
	case form.Failed:
		h.renderForm(w, http.StatusBadGateway, model)
	default:
		h.renderForm(w, http.StatusUnprocessableEntity, model)
	}
}

// New resets the form after a completed booking.
func (h *Handler) New(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/appointments", http.StatusSeeOther)
}

// Privacy renders the privacy notice linked from the consent box.
func (h *Handler) Privacy(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "privacy", page{Title: "นโยบายความเป็นส่วนตัว", Clinic: h.clinic})
}

// NotFound renders the 404 page.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusNotFound, "notfound", page{Title: "ไม่พบหน้า", Clinic: h.clinic})
}

func (h *Handler) renderForm(w http.ResponseWriter, status int, model form.Model) {
	policy := h.machine.Policy()
	service := model.Request.ServiceValue()
	now := h.now()

	services := make([]option, 0, len(appointment.Services))
	for _, s := range appointment.Services {
		services = append(services, option{Value: string(s), Selected: model.Request.Service == string(s)})
	}

	h.render(w, status, "form", page{
		Title:    "ลงทะเบียนนัดหมาย",
		Clinic:   h.clinic,
		Model:    model,
		Services: services,
		Slots:    h.slotOptions(model.Request, now),
		Window:   policy.WindowFor(service).String(),
		MinDate:  now.In(policy.Location()).Format("2006-01-02"),
	})
}

// slotOptions lists the bookable times for the chosen date, or the whole
// window grid when no usable date is set yet.
func (h *Handler) slotOptions(req appointment.Request, now time.Time) []option {
	policy := h.machine.Policy()
	service := req.ServiceValue()

	var clocks []string
	if req.AppointmentDate != "" {
		if slots, err := policy.Slots(req.AppointmentDate, service, now); err == nil {
			clocks = slots
		}
	}
	if clocks == nil {
		win := policy.WindowFor(service)
		for m := win.Start; m <= win.End; m += appointment.SlotMinutes {
			clocks = append(clocks, fmt.Sprintf("%02d:%02d", m/60, m%60))
		}
	}
	if req.AppointmentTime != "" && !slices.Contains(clocks, req.AppointmentTime) {
		clocks = append([]string{req.AppointmentTime}, clocks...)
	}

	opts := make([]option, 0, len(clocks))
	for _, c := range clocks {
		opts = append(opts, option{Value: c, Selected: c == req.AppointmentTime})
	}
	return opts
}

func (h *Handler) render(w http.ResponseWriter, status int, name string, data page) {
	var buf bytes.Buffer
	if err := h.pages[name].ExecuteTemplate(&buf, "layout", data); err != nil {
		h.logger.Error("web: render failed", "page", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
