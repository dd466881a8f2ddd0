// Package notify sends duty reminder emails.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/erazemk/labstock/internal/config"
)

// ErrNotConfigured is returned when no SMTP server is set up.
var ErrNotConfigured = errors.New("email is not configured")

// Message is one HTML email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Mailer delivers messages. Delivery is best effort.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer sends mail through an SMTP server with STARTTLS and PLAIN auth.
type SMTPMailer struct {
	cfg config.SMTPConfig
}

// NewSMTPMailer returns a mailer for cfg. It is returned even when cfg is
// incomplete; Send then fails with ErrNotConfigured.
func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

// Send delivers msg. The context bounds dialing and the whole SMTP exchange.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if !m.cfg.Enabled() {
		return ErrNotConfigured
	}

	out, err := buildMessage(m.cfg.SenderName, m.cfg.SenderAddr, msg)
	if err != nil {
		return err
	}

	username := m.cfg.Username
	if username == "" {
		username = m.cfg.SenderAddr
	}
	client, err := mail.NewClient(m.cfg.Host,
		mail.WithPort(m.cfg.Port),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(username),
		mail.WithPassword(m.cfg.Password),
		mail.WithTimeout(time.Minute),
	)
	if err != nil {
		return fmt.Errorf("creating SMTP client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, out); err != nil {
		return fmt.Errorf("sending to %s: %w", msg.To, err)
	}
	return nil
}

// buildMessage renders an HTML message from the configured sender.
func buildMessage(senderName, senderAddr string, msg Message) (*mail.Msg, error) {
	m := mail.NewMsg()
	from := m.From
	if senderName != "" {
		from = func(addr string) error { return m.FromFormat(senderName, addr) }
	}
	if err := from(senderAddr); err != nil {
		return nil, fmt.Errorf("setting sender %q: %w", senderAddr, err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("parsing recipient %q: %w", msg.To, err)
	}
	m.Subject(msg.Subject)
	m.SetDate()
	m.SetBodyString(mail.TypeTextHTML, msg.HTML)
	return m, nil
}
