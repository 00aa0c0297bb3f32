package appointment

import "strings"

// Service is one of the clinic services a patient can book.
type Service string

const (
	ServiceAntenatal        Service = "ฝากครรภ์"
	ServiceFamilyPlanning   Service = "วางแผนครอบครัว"
	ServiceChildDevelopment Service = "พัฒนาการเด็ก"
)

// Services lists the bookable services in display order.
var Services = []Service{ServiceAntenatal, ServiceFamilyPlanning, ServiceChildDevelopment}

// Valid reports whether s is a bookable service.
func (s Service) Valid() bool {
	for _, known := range Services {
		if s == known {
			return true
		}
	}
	return false
}

// Request is the appointment payload forwarded to both the notification and
// storage services. Field names are part of the wire contract.
type Request struct {
	FirstName       string `json:"firstName" validate:"filled"`
	LastName        string `json:"lastName" validate:"filled"`
	Phone           string `json:"phone" validate:"filled,thai_phone"`
	NationalID      string `json:"nationalId" validate:"filled,national_id"`
	AppointmentDate string `json:"appointmentDate" validate:"filled,iso_date"`
	AppointmentTime string `json:"appointmentTime" validate:"filled,clock"`
	Service         string `json:"service" validate:"filled,clinic_service"`
	Notes           string `json:"notes"`
}

// Submission wraps a request with the privacy-consent flag collected by the
// form. Consent is not forwarded upstream.
type Submission struct {
	Request
	Consent bool `json:"consent"`
}

// FullName joins the trimmed first and last names.
func (r Request) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(r.FirstName) + " " + strings.TrimSpace(r.LastName))
}

// ServiceValue returns the service as a typed value.
func (r Request) ServiceValue() Service {
	return Service(strings.TrimSpace(r.Service))
}

// IsZero reports whether every field still holds its default.
func (r Request) IsZero() bool {
	return r == Request{}
}

// NotesOrDash returns the notes, or "-" when none were given.
func (r Request) NotesOrDash() string {
	return orDash(r.Notes)
}

// NationalIDOrDash returns the national ID, or "-" when empty.
func (r Request) NationalIDOrDash() string {
	return orDash(r.NationalID)
}

func orDash(v string) string {
	if strings.TrimSpace(v) == "" {
		return "-"
	}
	return v
}
