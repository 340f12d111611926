package notify

import (
	"context"
	"fmt"
	"mime"
	"strings"

	"github.com/wolfman30/connectient/pkg/logging"
)

const defaultFromName = "Connectient"

// EmailSender hands a rendered message to a mail transport.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// EmailMessage is one rendered notification.
type EmailMessage struct {
	To      string
	ToName  string
	ReplyTo string
	Subject string
	Body    string // plain text
	HTML    string // optional

	// Category names the template that produced the message. Transports
	// attach it as a tag for delivery reporting.
	Category string
}

func (m EmailMessage) validate() error {
	if strings.TrimSpace(m.To) == "" {
		return fmt.Errorf("notify: message has no recipient")
	}
	if strings.TrimSpace(m.Subject) == "" {
		return fmt.Errorf("notify: message to %s has no subject", m.To)
	}
	return nil
}

// Mailbox is the sending identity shared by every transport.
type Mailbox struct {
	Email string
	Name  string
}

func newMailbox(email, name string) Mailbox {
	name = strings.TrimSpace(name)
	if name == "" {
		name = defaultFromName
	}
	return Mailbox{Email: strings.TrimSpace(email), Name: name}
}

// Address renders the mailbox as an RFC 5322 address.
func (m Mailbox) Address() string {
	return fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", m.Name), m.Email)
}

// StubEmailSender logs messages instead of sending them. It backs local runs
// and deployments without a configured provider.
type StubEmailSender struct {
	logger *logging.Logger
}

// NewStubEmailSender creates a stub email sender.
func NewStubEmailSender(logger *logging.Logger) *StubEmailSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &StubEmailSender{logger: logger}
}

// Send logs the message.
func (s *StubEmailSender) Send(_ context.Context, msg EmailMessage) error {
	if err := msg.validate(); err != nil {
		return err
	}
	s.logger.Info("email not sent (stub transport)", "to", msg.To, "subject", msg.Subject, "category", msg.Category)
	return nil
}
