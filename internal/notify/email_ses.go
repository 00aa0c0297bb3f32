package notify

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/kpphospital/mch-appointments/pkg/logging"
)

// sesMessageKind tags every copy so bounces can be filtered per feature in
// the SES configuration set.
const sesMessageKind = "appointment-registration"

// SESAPI is the subset of the SES v2 client used by SESSender.
type SESAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESConfig holds configuration for AWS SES.
type SESConfig struct {
	FromEmail string
	FromName  string
	// ConfigurationSet routes delivery events; empty uses the account default.
	ConfigurationSet string
}

// SESSender delivers the staff copy of a registration through SES.
type SESSender struct {
	client SESAPI
	from   string
	cfgSet string
	logger *logging.Logger
}

// NewSESSender returns nil without a client so callers can treat SES as an
// optional channel.
func NewSESSender(client SESAPI, cfg SESConfig, logger *logging.Logger) *SESSender {
	if client == nil {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	name := strings.TrimSpace(cfg.FromName)
	if name == "" {
		name = defaultFromName
	}
	// mail.Address encodes the Thai display name as RFC 2047.
	from := (&mail.Address{Name: name, Address: strings.TrimSpace(cfg.FromEmail)}).String()
	return &SESSender{
		client: client,
		from:   from,
		cfgSet: strings.TrimSpace(cfg.ConfigurationSet),
		logger: logger,
	}
}

// Send delivers msg. A message with neither body is rejected before any call.
func (s *SESSender) Send(ctx context.Context, msg EmailMessage) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("notify: SES client not configured")
	}
	if strings.TrimSpace(msg.To) == "" {
		return fmt.Errorf("notify: SES copy has no recipient")
	}
	if msg.Body == "" && msg.HTML == "" {
		return fmt.Errorf("notify: SES copy to %s has no body", msg.To)
	}

	out, err := s.client.SendEmail(ctx, s.input(msg))
	if err != nil {
		s.logger.Error("registration copy via SES failed", "error", err, "to", msg.To)
		return fmt.Errorf("notify: SES send failed: %w", err)
	}

	s.logger.Info("registration copy sent via SES", "to", msg.To, "message_id", aws.ToString(out.MessageId))
	return nil
}

func (s *SESSender) input(msg EmailMessage) *sesv2.SendEmailInput {
	to := msg.To
	if msg.ToName != "" {
		to = (&mail.Address{Name: msg.ToName, Address: msg.To}).String()
	}

	body := &types.Body{}
	if msg.Body != "" {
		body.Text = utf8Content(msg.Body)
	}
	if msg.HTML != "" {
		body.Html = utf8Content(msg.HTML)
	}

	in := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.from),
		Destination:      &types.Destination{ToAddresses: []string{to}},
		Content: &types.EmailContent{
			Simple: &types.Message{Subject: utf8Content(msg.Subject), Body: body},
		},
		EmailTags: []types.MessageTag{{Name: aws.String("kind"), Value: aws.String(sesMessageKind)}},
	}
	if s.cfgSet != "" {
		in.ConfigurationSetName = aws.String(s.cfgSet)
	}
	return in
}

func utf8Content(data string) *types.Content {
	return &types.Content{Data: aws.String(data), Charset: aws.String("UTF-8")}
}

var _ EmailSender = (*SESSender)(nil)
