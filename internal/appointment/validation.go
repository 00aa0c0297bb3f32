package appointment

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var (
	phonePattern      = regexp.MustCompile(`^[0-9]{9,10}$`)
	nationalIDPattern = regexp.MustCompile(`^[0-9]{13}$`)
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("filled", validateFilled)
	validate.RegisterValidation("thai_phone", validatePhone)
	validate.RegisterValidation("national_id", validateNationalID)
	validate.RegisterValidation("clinic_service", validateService)
	validate.RegisterValidation("iso_date", validateDate)
	validate.RegisterValidation("clock", validateClock)
}

// tagPriority orders failures so the patient always sees the most basic
// problem first.
var tagPriority = []struct {
	tag  string
	kind ErrorKind
}{
	{"filled", KindMissingRequiredField},
	{"thai_phone", KindInvalidPhone},
	{"national_id", KindInvalidNationalID},
	{"clinic_service", KindInvalidService},
	{"iso_date", KindInvalidSchedule},
	{"clock", KindInvalidSchedule},
}

// Validate checks the field-level rules in priority order: required fields,
// phone shape, national ID shape, the service enum, then the date and time
// shapes. It returns nil or a
// *ValidationError carrying the first failure.
func Validate(req Request) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	for _, p := range tagPriority {
		for _, fe := range fieldErrs {
			if fe.Tag() == p.tag {
				return newValidationError(p.kind, fe.Field())
			}
		}
	}
	return newValidationError(KindMissingRequiredField, fieldErrs[0].Field())
}

// ValidateSubmission runs every server-side check on a submission: the field
// rules, the schedule policy evaluated at now, then the consent gate.
func ValidateSubmission(sub Submission, policy *Policy, now time.Time) error {
	if err := Validate(sub.Request); err != nil {
		return err
	}
	if err := policy.Check(sub.Request, now); err != nil {
		return err
	}
	if !sub.Consent {
		return newValidationError(KindConsentRequired, "consent")
	}
	return nil
}

// NormalizeDigits strips dashes and whitespace from a phone or ID value.
func NormalizeDigits(v string) string {
	return strings.Map(func(r rune) rune {
		if r == '-' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, v)
}

func validateFilled(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func validatePhone(fl validator.FieldLevel) bool {
	return phonePattern.MatchString(NormalizeDigits(fl.Field().String()))
}

func validateNationalID(fl validator.FieldLevel) bool {
	return nationalIDPattern.MatchString(NormalizeDigits(fl.Field().String()))
}

func validateService(fl validator.FieldLevel) bool {
	return Service(strings.TrimSpace(fl.Field().String())).Valid()
}

func validateDate(fl validator.FieldLevel) bool {
	return datePattern.MatchString(strings.TrimSpace(fl.Field().String()))
}

func validateClock(fl validator.FieldLevel) bool {
	return clockPattern.MatchString(strings.TrimSpace(fl.Field().String()))
}
