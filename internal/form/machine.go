// Package form models the booking form as an explicit state machine so the
// view layer never holds workflow logic.
package form

import (
	"context"
	"errors"
	"time"

	"github.com/kpphospital/mch-appointments/internal/appointment"
)

// State is where the form is in the submission workflow.
type State int

const (
	Editing State = iota
	Submitting
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Editing:
		return "editing"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Field names match the request's JSON keys.
type Field string

const (
	FieldFirstName       Field = "firstName"
	FieldLastName        Field = "lastName"
	FieldPhone           Field = "phone"
	FieldNationalID      Field = "nationalId"
	FieldAppointmentDate Field = "appointmentDate"
	FieldAppointmentTime Field = "appointmentTime"
	FieldService         Field = "service"
	FieldNotes           Field = "notes"
)

// Fields lists every editable field. Service comes last so a time entered in
// the same batch is re-checked against the chosen service.
var Fields = []Field{
	FieldFirstName, FieldLastName, FieldPhone, FieldNationalID,
	FieldAppointmentDate, FieldAppointmentTime, FieldNotes, FieldService,
}

// Event drives a transition.
type Event interface{ event() }

// FieldChanged sets one field.
type FieldChanged struct {
	Field Field
	Value string
}

// ConsentChanged ticks or clears the privacy-consent box.
type ConsentChanged struct{ Consent bool }

// SubmitRequested asks to send the current request.
type SubmitRequested struct{}

// SubmissionSettled reports the dispatcher's outcome.
type SubmissionSettled struct{ Err error }

// ResetRequested returns to a blank form.
type ResetRequested struct{}

func (FieldChanged) event()      {}
func (ConsentChanged) event()    {}
func (SubmitRequested) event()   {}
func (SubmissionSettled) event() {}
func (ResetRequested) event()    {}

// Messages shown to the patient.
const (
	SubmissionFailedMessage = "เกิดข้อผิดพลาดในการลงทะเบียน กรุณาลองใหม่อีกครั้ง"
	TimeClearedNotice       = "เวลานัดหมายที่เลือกไว้อยู่นอกช่วงเวลาของบริการนี้ กรุณาเลือกเวลาใหม่"
)

// Model is the complete, immutable view state. Transitions return a new value.
type Model struct {
	State   State
	Request appointment.Request
	Consent bool
	Error   string
	Notice  string
}

// Initial is the blank form.
func Initial() Model {
	return Model{State: Editing}
}

// Busy reports whether inputs should be disabled.
func (m Model) Busy() bool { return m.State == Submitting }

// CanSubmit reports whether the submit control should be enabled.
func (m Model) CanSubmit() bool {
	return (m.State == Editing || m.State == Failed) && m.Consent
}

// Submitter dispatches a validated request.
type Submitter interface {
	Submit(ctx context.Context, req appointment.Request) (string, error)
}

// Machine applies events to models using the clinic's schedule policy.
type Machine struct {
	policy *appointment.Policy
	now    func() time.Time
}

// NewMachine creates a machine. A nil clock means time.Now.
func NewMachine(policy *appointment.Policy, now func() time.Time) *Machine {
	if policy == nil {
		policy = appointment.NewPolicy(nil)
	}
	if now == nil {
		now = time.Now
	}
	return &Machine{policy: policy, now: now}
}

// Policy returns the schedule policy the machine validates against.
func (m *Machine) Policy() *appointment.Policy { return m.policy }

// Update applies ev to model. The second result is true when the caller must
// now dispatch the request and feed back a SubmissionSettled event.
func (m *Machine) Update(model Model, ev Event) (Model, bool) {
	switch e := ev.(type) {
	case FieldChanged:
		if model.State != Editing && model.State != Failed {
			return model, false
		}
		model.State = Editing
		model.Error = ""
		model.Notice = ""
		model.Request = m.setField(model.Request, e.Field, e.Value, &model.Notice)
		return model, false

	case ConsentChanged:
		if model.State != Editing && model.State != Failed {
			return model, false
		}
		model.Consent = e.Consent
		return model, false

	case SubmitRequested:
		if model.State != Editing && model.State != Failed {
			return model, false
		}
		sub := appointment.Submission{Request: model.Request, Consent: model.Consent}
		if err := appointment.ValidateSubmission(sub, m.policy, m.now()); err != nil {
			model.State = Editing
			model.Error = reasonOf(err)
			return model, false
		}
		model.State = Submitting
		model.Error = ""
		return model, true

	case SubmissionSettled:
		if model.State != Submitting {
			return model, false
		}
		if e.Err != nil {
			model.State = Failed
			model.Error = SubmissionFailedMessage
			return model, false
		}
		model.State = Succeeded
		return model, false

	case ResetRequested:
		if model.State == Submitting {
			return model, false
		}
		return Initial(), false
	}
	return model, false
}

// Submit runs SubmitRequested and, when validation passes, dispatches and
// applies the settled outcome.
func (m *Machine) Submit(ctx context.Context, model Model, submitter Submitter) Model {
	next, dispatch := m.Update(model, SubmitRequested{})
	if !dispatch {
		return next
	}
	_, err := submitter.Submit(ctx, next.Request)
	settled, _ := m.Update(next, SubmissionSettled{Err: err})
	return settled
}

// Summary is the confirmation shown after success.
type Summary struct {
	FullName string
	Service  string
	When     string
}

// Summarize renders the success summary for model.
func (m *Machine) Summarize(model Model) Summary {
	s := Summary{FullName: model.Request.FullName(), Service: model.Request.Service}
	if at, err := m.policy.ParseSlot(model.Request.AppointmentDate, model.Request.AppointmentTime); err == nil {
		s.When = appointment.FormatLongDateTime(at, m.policy.Location())
	}
	return s
}

func (m *Machine) setField(req appointment.Request, field Field, value string, notice *string) appointment.Request {
	switch field {
	case FieldFirstName:
		req.FirstName = value
	case FieldLastName:
		req.LastName = value
	case FieldPhone:
		req.Phone = value
	case FieldNationalID:
		req.NationalID = value
	case FieldAppointmentDate:
		req.AppointmentDate = value
	case FieldAppointmentTime:
		req.AppointmentTime = value
	case FieldNotes:
		req.Notes = value
	case FieldService:
		req.Service = value
		if req.AppointmentTime != "" && !m.policy.TimeAllowed(req.AppointmentTime, req.ServiceValue()) {
			req.AppointmentTime = ""
			*notice = TimeClearedNotice
		}
	}
	return req
}

func reasonOf(err error) string {
	var ve *appointment.ValidationError
	if errors.As(err, &ve) {
		return ve.Reason
	}
	return SubmissionFailedMessage
}
