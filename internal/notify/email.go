package notify

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/kpphospital/mch-appointments/internal/appointment"
	"github.com/kpphospital/mch-appointments/pkg/logging"
)

const defaultFromName = "งานส่งเสริมสุขภาพแม่และเด็ก"

// EmailSender defines the interface for sending emails.
// Implementations can be swapped (SendGrid, SES) without changing callers.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// EmailMessage represents an email to be sent.
type EmailMessage struct {
	To      string
	ToName  string
	Subject string
	Body    string // Plain text body
	HTML    string // Optional HTML body
}

// SendGridSender sends emails via SendGrid API.
type SendGridSender struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
	logger    *logging.Logger
}

// SendGridConfig holds configuration for SendGrid.
type SendGridConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
}

// NewSendGridSender creates a new SendGrid email sender. It returns nil when
// no API key is configured.
func NewSendGridSender(cfg SendGridConfig, logger *logging.Logger) *SendGridSender {
	if cfg.APIKey == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.FromName == "" {
		cfg.FromName = defaultFromName
	}
	return &SendGridSender{
		client:    sendgrid.NewSendClient(cfg.APIKey),
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		logger:    logger,
	}
}

// Send sends an email via SendGrid.
func (s *SendGridSender) Send(ctx context.Context, msg EmailMessage) error {
	if s.client == nil {
		return fmt.Errorf("notify: sendgrid client not configured")
	}

	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(msg.ToName, msg.To)

	htmlBody := msg.HTML
	if htmlBody == "" {
		htmlBody = msg.Body
	}
	message := mail.NewSingleEmail(from, msg.Subject, to, msg.Body, htmlBody)

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		s.logger.Error("sendgrid send failed", "error", err, "to", msg.To)
		return fmt.Errorf("notify: sendgrid send failed: %w", err)
	}

	if response.StatusCode >= 400 {
		s.logger.Error("sendgrid returned error status", "status", response.StatusCode, "body", response.Body, "to", msg.To)
		return fmt.Errorf("notify: sendgrid returned status %d", response.StatusCode)
	}

	s.logger.Info("email sent via sendgrid", "to", msg.To, "subject", msg.Subject, "status", response.StatusCode)
	return nil
}

// StubEmailSender is a no-op sender for testing or when email is disabled.
type StubEmailSender struct {
	logger *logging.Logger
}

// NewStubEmailSender creates a stub email sender that logs but doesn't send.
func NewStubEmailSender(logger *logging.Logger) *StubEmailSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &StubEmailSender{logger: logger}
}

// Send logs the email but doesn't actually send it.
func (s *StubEmailSender) Send(ctx context.Context, msg EmailMessage) error {
	s.logger.Info("stub email sender: would send email", "to", msg.To, "subject", msg.Subject)
	return nil
}

// BuildRegistrationEmail renders the staff copy of a new registration.
func BuildRegistrationEmail(req appointment.Request) (subject, text, htmlBody string) {
	subject = "มีผู้ลงทะเบียนใหม่: " + req.FullName()

	rows := [][2]string{
		{"ชื่อ-นามสกุล", req.FullName()},
		{"เลขบัตรประชาชน", req.NationalIDOrDash()},
		{"เบอร์โทร", req.Phone},
		{"บริการ", req.Service},
		{"วันที่นัด", req.AppointmentDate},
		{"เวลา", req.AppointmentTime},
		{"หมายเหตุ", req.NotesOrDash()},
	}

	var tb, hb strings.Builder
	tb.WriteString("มีผู้ลงทะเบียนใหม่ค่ะ\n\n")
	hb.WriteString(`<div style="font-family: sans-serif; max-width: 600px;">`)
	hb.WriteString(`<h2 style="color: ` + headerColor + `;">💖 มีผู้ลงทะเบียนใหม่ค่ะ</h2>`)
	hb.WriteString(`<table style="border-collapse: collapse; margin: 20px 0;">`)
	for _, row := range rows {
		fmt.Fprintf(&tb, "%s: %s\n", row[0], row[1])
		fmt.Fprintf(&hb, `<tr><td style="padding: 8px; color: %s;">%s</td><td style="padding: 8px;">%s</td></tr>`,
			labelColor, html.EscapeString(row[0]), html.EscapeString(row[1]))
	}
	hb.WriteString(`</table><p style="color: #6b7280; font-size: 12px;">` + defaultFromName + `</p></div>`)
	tb.WriteString("\n" + defaultFromName)
	return subject, tb.String(), hb.String()
}
