package notify

import (
	"context"
	"fmt"

	"github.com/kpphospital/mch-appointments/internal/appointment"
	"github.com/kpphospital/mch-appointments/pkg/logging"
)

// Forwarder delivers a registration to clinic staff. LINE is the channel of
// record; an email copy is optional and best effort.
type Forwarder struct {
	line       *LineClient
	email      EmailSender
	recipients []string
	logger     *logging.Logger
}

// NewForwarder creates a notification forwarder. A nil line client leaves the
// forwarder unconfigured so every Forward call fails with ErrNotConfigured.
func NewForwarder(line *LineClient, email EmailSender, recipients []string, logger *logging.Logger) *Forwarder {
	if logger == nil {
		logger = logging.Default()
	}
	return &Forwarder{
		line:       line,
		email:      email,
		recipients: recipients,
		logger:     logger,
	}
}

// Configured reports whether a LINE client is available.
func (f *Forwarder) Configured() bool {
	return f != nil && f.line != nil
}

// Forward pushes req to the staff LINE group. It makes no network call when
// LINE is not configured.
func (f *Forwarder) Forward(ctx context.Context, req appointment.Request) error {
	if !f.Configured() {
		return ErrNotConfigured
	}
	if err := f.line.Push(ctx, req); err != nil {
		return fmt.Errorf("notify: line push: %w", err)
	}
	f.copyByEmail(ctx, req)
	return nil
}

func (f *Forwarder) copyByEmail(ctx context.Context, req appointment.Request) {
	if f.email == nil || len(f.recipients) == 0 {
		return
	}
	subject, text, html := BuildRegistrationEmail(req)
	for _, recipient := range f.recipients {
		msg := EmailMessage{To: recipient, Subject: subject, Body: text, HTML: html}
		if err := f.email.Send(ctx, msg); err != nil {
			f.logger.Warn("notify: email copy failed", "error", err, "to", recipient)
			continue
		}
		f.logger.Debug("notify: email copy sent", "to", recipient)
	}
}
