package appointment

import "fmt"

// ErrorKind classifies a validation failure.
type ErrorKind string

const (
	KindMissingRequiredField ErrorKind = "missing_required_field"
	KindInvalidPhone         ErrorKind = "invalid_phone"
	KindInvalidNationalID    ErrorKind = "invalid_national_id"
	KindInvalidService       ErrorKind = "invalid_service"
	KindInvalidSchedule      ErrorKind = "invalid_schedule"
	KindConsentRequired      ErrorKind = "consent_required"
)

var kindMessages = map[ErrorKind]string{
	KindMissingRequiredField: "กรุณากรอกข้อมูลที่จำเป็นให้ครบถ้วน",
	KindInvalidPhone:         "กรุณากรอกเบอร์โทรศัพท์ให้ถูกต้อง",
	KindInvalidNationalID:    "กรุณากรอกเลขบัตรประชาชน 13 หลักให้ถูกต้อง",
	KindInvalidService:       "กรุณาเลือกประเภทบริการให้ถูกต้อง",
	KindInvalidSchedule:      "กรุณาเลือกวันและเวลานัดหมายในช่วงเวลาที่เปิดให้บริการ",
	KindConsentRequired:      "กรุณายอมรับนโยบายความเป็นส่วนตัวก่อนลงทะเบียน",
}

// ValidationError is returned when a request is rejected before dispatch.
// Reason is safe to show to the patient.
type ValidationError struct {
	Kind   ErrorKind
	Reason string
	Field  string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("appointment: %s (%s): %s", e.Kind, e.Field, e.Reason)
	}
	return fmt.Sprintf("appointment: %s: %s", e.Kind, e.Reason)
}

// Is matches any *ValidationError with the same kind.
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func newValidationError(kind ErrorKind, field string) *ValidationError {
	return &ValidationError{Kind: kind, Reason: kindMessages[kind], Field: field}
}

// Sentinels for errors.Is checks.
var (
	ErrMissingRequiredField = &ValidationError{Kind: KindMissingRequiredField}
	ErrInvalidPhone         = &ValidationError{Kind: KindInvalidPhone}
	ErrInvalidNationalID    = &ValidationError{Kind: KindInvalidNationalID}
	ErrInvalidService       = &ValidationError{Kind: KindInvalidService}
	ErrInvalidSchedule      = &ValidationError{Kind: KindInvalidSchedule}
	ErrConsentRequired      = &ValidationError{Kind: KindConsentRequired}
)
