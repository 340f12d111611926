package notify

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/wolfman30/connectient/pkg/logging"
)

// sendgridPost delivers a v3 mail payload and reports the HTTP status.
type sendgridPost func(ctx context.Context, message *mail.SGMailV3) (status int, body string, err error)

// SendGridSender sends through the SendGrid v3 mail API.
type SendGridSender struct {
	post   sendgridPost
	from   Mailbox
	logger *logging.Logger
}

// SendGridConfig holds configuration for SendGrid.
type SendGridConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
}

// NewSendGridSender returns nil when no API key is configured.
func NewSendGridSender(cfg SendGridConfig, logger *logging.Logger) *SendGridSender {
	if cfg.APIKey == "" {
		return nil
	}
	client := sendgrid.NewSendClient(cfg.APIKey)
	return newSendGridSender(func(ctx context.Context, message *mail.SGMailV3) (int, string, error) {
		resp, err := client.SendWithContext(ctx, message)
		if err != nil {
			return 0, "", err
		}
		return resp.StatusCode, resp.Body, nil
	}, newMailbox(cfg.FromEmail, cfg.FromName), logger)
}

func newSendGridSender(post sendgridPost, from Mailbox, logger *logging.Logger) *SendGridSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &SendGridSender{post: post, from: from, logger: logger}
}

// Send delivers msg. Any status of 400 or above is a failure.
func (s *SendGridSender) Send(ctx context.Context, msg EmailMessage) error {
	if err := msg.validate(); err != nil {
		return err
	}

	html := msg.HTML
	if html == "" {
		html = msg.Body
	}
	message := mail.NewSingleEmail(
		mail.NewEmail(s.from.Name, s.from.Email),
		msg.Subject,
		mail.NewEmail(msg.ToName, msg.To),
		msg.Body,
		html,
	)
	if msg.ReplyTo != "" {
		message.SetReplyTo(mail.NewEmail("", msg.ReplyTo))
	}
	if msg.Category != "" {
		message.AddCategories(msg.Category)
	}

	status, body, err := s.post(ctx, message)
	if err != nil {
		s.logger.Error("sendgrid send failed", "error", err, "category", msg.Category)
		return fmt.Errorf("notify: sendgrid send: %w", err)
	}
	if status >= 400 {
		s.logger.Error("sendgrid rejected message", "status", status, "body", body, "category", msg.Category)
		return fmt.Errorf("notify: sendgrid returned status %d", status)
	}

	s.logger.Info("email sent", "transport", "sendgrid", "category", msg.Category, "status", status)
	return nil
}

var _ EmailSender = (*SendGridSender)(nil)
