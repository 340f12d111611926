package notify

import (
	"context"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strings"

	"github.com/google/uuid"

	"github.com/wolfman30/connectient/pkg/logging"
)

type smtpSendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPSender sends email through an unauthenticated SMTP relay such as
// Mailpit in local development.
type SMTPSender struct {
	addr   string
	from   Mailbox
	send   smtpSendFunc
	logger *logging.Logger
}

// SMTPConfig holds configuration for the SMTP relay.
type SMTPConfig struct {
	Host      string
	Port      string
	FromEmail string
	FromName  string
}

// NewSMTPSender creates an SMTP sender.
func NewSMTPSender(cfg SMTPConfig, logger *logging.Logger) *SMTPSender {
	if strings.TrimSpace(cfg.Host) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &SMTPSender{
		addr:   net.JoinHostPort(strings.TrimSpace(cfg.Host), strings.TrimSpace(cfg.Port)),
		from:   newMailbox(cfg.FromEmail, cfg.FromName),
		send:   smtp.SendMail,
		logger: logger,
	}
}

// Send delivers msg through the relay. net/smtp has no context support, so
// ctx is only checked before dialing.
func (s *SMTPSender) Send(ctx context.Context, msg EmailMessage) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("notify: smtp send cancelled: %w", err)
	}
	if err := msg.validate(); err != nil {
		return err
	}
	raw := buildMIMEMessage(s.from, msg)
	if err := s.send(s.addr, nil, s.from.Email, []string{msg.To}, []byte(raw)); err != nil {
		s.logger.Error("smtp send failed", "error", err, "addr", s.addr, "category", msg.Category)
		return fmt.Errorf("notify: smtp send: %w", err)
	}
	s.logger.Info("email sent", "transport", "smtp", "category", msg.Category)
	return nil
}

func buildMIMEMessage(from Mailbox, msg EmailMessage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from.Address())
	if msg.ToName != "" {
		fmt.Fprintf(&b, "To: %s <%s>\r\n", mime.QEncoding.Encode("utf-8", msg.ToName), msg.To)
	} else {
		fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	}
	if msg.ReplyTo != "" {
		fmt.Fprintf(&b, "Reply-To: %s\r\n", msg.ReplyTo)
	}
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	if msg.Category != "" {
		fmt.Fprintf(&b, "X-Connectient-Category: %s\r\n", msg.Category)
	}
	b.WriteString("MIME-Version: 1.0\r\n")

	if msg.HTML == "" {
		b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
		b.WriteString(msg.Body)
		b.WriteString("\r\n")
		return b.String()
	}

	boundary := "connectient-" + uuid.NewString()
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)
	fmt.Fprintf(&b, "--%s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n", boundary, msg.Body)
	fmt.Fprintf(&b, "--%s\r\nContent-Type: text/html; charset=utf-8\r\n\r\n%s\r\n", boundary, msg.HTML)
	fmt.Fprintf(&b, "--%s--\r\n", boundary)
	return b.String()
}

var _ EmailSender = (*SMTPSender)(nil)
