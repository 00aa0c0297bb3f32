package bootstrap

import (
	"context"
	"errors"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	appconfig "github.com/kpphospital/mch-appointments/internal/config"
	"github.com/kpphospital/mch-appointments/internal/notify"
	"github.com/kpphospital/mch-appointments/pkg/logging"
)

// AWSConfigLoader resolves SDK configuration for the SES sender.
type AWSConfigLoader func(ctx context.Context, cfg *appconfig.Config) (aws.Config, error)

// BuildEmailSender selects the email copy provider. A nil sender comes back
// with the reason when email copies are disabled.
func BuildEmailSender(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, loadAWS AWSConfigLoader) (notify.EmailSender, string, string) {
	if len(cfg.NotifyEmailRecipients) == 0 {
		return nil, "", "no recipients"
	}

	provider := strings.ToLower(strings.TrimSpace(cfg.EmailProvider))
	switch provider {
	case "", "sendgrid":
		sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger)
		if sender == nil {
			return nil, "sendgrid", "missing SENDGRID_API_KEY"
		}
		return sender, "sendgrid", ""
	case "ses":
		if strings.TrimSpace(cfg.SESFromEmail) == "" {
			return nil, "ses", "missing SES_FROM_EMAIL"
		}
		if loadAWS == nil {
			return nil, "ses", "no aws config loader"
		}
		awsCfg, err := loadAWS(ctx, cfg)
		if err != nil {
			logger.Error("failed to load AWS config", "error", err)
			return nil, "ses", "aws config: " + err.Error()
		}
		sender := notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail:        cfg.SESFromEmail,
			FromName:         cfg.SESFromName,
			ConfigurationSet: cfg.SESConfigurationSet,
		}, logger)
		return sender, "ses", ""
	case "stub", "log":
		return notify.NewStubEmailSender(logger), "stub", ""
	default:
		return nil, provider, "unknown EMAIL_PROVIDER"
	}
}

// BuildNotifier wires the LINE push client and the optional email copy. A
// missing LINE credential leaves the forwarder unconfigured rather than
// failing startup.
func BuildNotifier(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, loadAWS AWSConfigLoader) *notify.Forwarder {
	if logger == nil {
		logger = logging.Default()
	}

	line, err := notify.NewLineClient(notify.LineConfig{
		Endpoint:    cfg.LineMessagingAPI,
		AccessToken: cfg.LineChannelAccessToken,
		GroupID:     cfg.LineGroupID,
		Timeout:     cfg.OutboundTimeout,
		Location:    locationFor(cfg),
		Logger:      logger,
	})
	switch {
	case errors.Is(err, notify.ErrNotConfigured):
		logger.Warn("LINE credentials not configured; notifications will fail")
		line = nil
	case err != nil:
		logger.Error("failed to create LINE client", "error", err)
		line = nil
	}

	email, provider, reason := BuildEmailSender(ctx, cfg, logger, loadAWS)
	if email == nil {
		if provider != "" {
			logger.Warn("email copies disabled", "provider", provider, "reason", reason)
		}
		return notify.NewForwarder(line, nil, nil, logger)
	}
	logger.Info("email copies enabled", "provider", provider, "recipients", len(cfg.NotifyEmailRecipients))
	return notify.NewForwarder(line, email, cfg.NotifyEmailRecipients, logger)
}
