package appointment

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"

	// SlotMinutes is the booking granularity.
	SlotMinutes = 30
)

// time.Parse accepts a one-digit hour for "15", so the wire shapes are
// checked before parsing.
var (
	datePattern  = regexp.MustCompile(`^[0-9]{4}-[0-9]{2}-[0-9]{2}$`)
	clockPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
)

// Schedule rejections. Check wraps them in a *ValidationError.
var (
	ErrSlotInPast     = errors.New("appointment: slot is in the past")
	ErrSlotWeekend    = errors.New("appointment: clinic is closed on weekends")
	ErrSlotOutside    = errors.New("appointment: slot is outside the service window")
	ErrSlotMisaligned = errors.New("appointment: slot is not on a 30 minute boundary")
)

// Window is an inclusive daily range expressed in minutes after midnight.
type Window struct {
	Start int
	End   int
}

var (
	morningWindow   = Window{Start: 9 * 60, End: 11*60 + 30}
	afternoonWindow = Window{Start: 13 * 60, End: 15*60 + 30}
)

// Contains reports whether minutes falls inside the window, bounds included.
func (w Window) Contains(minutes int) bool {
	return minutes >= w.Start && minutes <= w.End
}

// StartClock renders the opening bound as HH:MM.
func (w Window) StartClock() string { return formatClock(w.Start) }

// EndClock renders the closing bound as HH:MM.
func (w Window) EndClock() string { return formatClock(w.End) }

func (w Window) String() string {
	return w.StartClock() + "-" + w.EndClock()
}

// Policy decides which dates and times may be booked. All evaluation happens
// in the clinic's location.
type Policy struct {
	location *time.Location
}

// NewPolicy builds a policy for the clinic location. A nil location means
// Asia/Bangkok, falling back to UTC when tzdata is unavailable.
func NewPolicy(loc *time.Location) *Policy {
	if loc == nil {
		loc = ClinicLocation("Asia/Bangkok")
	}
	return &Policy{location: loc}
}

// ClinicLocation returns the *time.Location for a timezone name.
// Falls back to UTC if the name is invalid or empty.
func ClinicLocation(timezone string) *time.Location {
	if timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Location returns the clinic location used by the policy.
func (p *Policy) Location() *time.Location {
	return p.location
}

// WindowFor returns the bookable time range for a service. Child development
// runs in the afternoon; every other service, including an unset one, runs in
// the morning.
func (p *Policy) WindowFor(service Service) Window {
	if service == ServiceChildDevelopment {
		return afternoonWindow
	}
	return morningWindow
}

// Admissible reports why at cannot be booked for service, or nil if it can.
func (p *Policy) Admissible(at time.Time, service Service, now time.Time) error {
	local := at.In(p.location)
	if local.Before(now) {
		return ErrSlotInPast
	}
	switch local.Weekday() {
	case time.Saturday, time.Sunday:
		return ErrSlotWeekend
	}
	minutes := local.Hour()*60 + local.Minute()
	if local.Second() != 0 || local.Nanosecond() != 0 || minutes%SlotMinutes != 0 {
		return ErrSlotMisaligned
	}
	if !p.WindowFor(service).Contains(minutes) {
		return ErrSlotOutside
	}
	return nil
}

// TimeAllowed reports whether an HH:MM clock value sits inside the service
// window on the slot grid, ignoring the date.
func (p *Policy) TimeAllowed(clock string, service Service) bool {
	minutes, err := parseClock(clock)
	if err != nil {
		return false
	}
	return minutes%SlotMinutes == 0 && p.WindowFor(service).Contains(minutes)
}

// Slots lists the admissible HH:MM start times on date for service. Past
// slots and weekend dates yield an empty list.
func (p *Policy) Slots(date string, service Service, now time.Time) ([]string, error) {
	date = strings.TrimSpace(date)
	if !datePattern.MatchString(date) {
		return nil, fmt.Errorf("appointment: date %q is not YYYY-MM-DD", date)
	}
	day, err := time.ParseInLocation(dateLayout, date, p.location)
	if err != nil {
		return nil, fmt.Errorf("appointment: parse date %q: %w", date, err)
	}
	w := p.WindowFor(service)
	slots := []string{}
	for m := w.Start; m <= w.End; m += SlotMinutes {
		at := day.Add(time.Duration(m) * time.Minute)
		if p.Admissible(at, service, now) == nil {
			slots = append(slots, formatClock(m))
		}
	}
	return slots, nil
}

// ParseSlot combines a YYYY-MM-DD date and HH:MM clock in the clinic location.
func (p *Policy) ParseSlot(date, clock string) (time.Time, error) {
	date, clock = strings.TrimSpace(date), strings.TrimSpace(clock)
	raw := date + " " + clock
	if !datePattern.MatchString(date) || !clockPattern.MatchString(clock) {
		return time.Time{}, fmt.Errorf("appointment: slot %q is not YYYY-MM-DD HH:MM", raw)
	}
	at, err := time.ParseInLocation(dateLayout+" "+clockLayout, raw, p.location)
	if err != nil {
		return time.Time{}, fmt.Errorf("appointment: parse slot %q: %w", raw, err)
	}
	return at, nil
}

// Check applies the schedule policy to a request's date, time and service.
func (p *Policy) Check(req Request, now time.Time) error {
	at, err := p.ParseSlot(req.AppointmentDate, req.AppointmentTime)
	if err != nil {
		return newValidationError(KindInvalidSchedule, "appointmentDate")
	}
	if err := p.Admissible(at, req.ServiceValue(), now); err != nil {
		return newValidationError(KindInvalidSchedule, "appointmentTime")
	}
	return nil
}

func parseClock(v string) (int, error) {
	if !clockPattern.MatchString(v) {
		return 0, fmt.Errorf("clock %q is not HH:MM", v)
	}
	t, err := time.Parse(clockLayout, v)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
