package bootstrap

import (
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	appconfig "github.com/wolfman30/connectient/internal/config"
	"github.com/wolfman30/connectient/internal/notify"
	"github.com/wolfman30/connectient/internal/practices"
	"github.com/wolfman30/connectient/pkg/logging"
)

// BuildEmailSender selects the mail transport named by EMAIL_PROVIDER. It
// falls back to the stub sender, with a reason, when the chosen transport is
// missing credentials.
func BuildEmailSender(cfg *appconfig.Config, awsCfg *aws.Config, logger *logging.Logger) (notify.EmailSender, string, string) {
	if logger == nil {
		logger = logging.Default()
	}
	stub := notify.NewStubEmailSender(logger)
	if cfg == nil {
		return stub, "stub", "missing config"
	}

	switch strings.ToLower(strings.TrimSpace(cfg.EmailProvider)) {
	case "sendgrid":
		sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.MailFromEmail,
			FromName:  cfg.MailFromName,
		}, logger)
		if sender == nil {
			return stub, "stub", "SENDGRID_API_KEY not set"
		}
		return sender, "sendgrid", ""
	case "ses":
		if awsCfg == nil {
			return stub, "stub", "aws config unavailable"
		}
		sender := notify.NewSESSender(sesv2.NewFromConfig(*awsCfg), notify.SESConfig{
			FromEmail: cfg.MailFromEmail,
			FromName:  cfg.MailFromName,
		}, logger)
		return sender, "ses", ""
	case "smtp":
		sender := notify.NewSMTPSender(notify.SMTPConfig{
			Host:      cfg.SMTPHost,
			Port:      cfg.SMTPPort,
			FromEmail: cfg.MailFromEmail,
			FromName:  cfg.MailFromName,
		}, logger)
		if sender == nil {
			return stub, "stub", "SMTP_HOST not set"
		}
		return sender, "smtp", ""
	case "", "stub":
		return stub, "stub", ""
	default:
		return stub, "stub", "unknown EMAIL_PROVIDER " + cfg.EmailProvider
	}
}

// BuildLogoResolver presigns practice logos from LOGO_BUCKET when set, and
// otherwise serves stored logo values as-is.
func BuildLogoResolver(cfg *appconfig.Config, awsCfg *aws.Config, logger *logging.Logger) practices.LogoResolver {
	if cfg == nil || awsCfg == nil || strings.TrimSpace(cfg.LogoBucket) == "" {
		return practices.StaticLogoResolver{}
	}
	client := s3.NewFromConfig(*awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.AWSEndpointOverride != ""
	})
	return practices.NewS3LogoResolver(client, cfg.LogoBucket, cfg.LogoURLTTL, logger)
}
