// Package mailer delivers rendered notes by SMTP. Delivery is best effort:
// one attempt, one error, no queue.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wneessen/go-mail"
)

// ErrNotConfigured is returned when no SMTP server is set.
var ErrNotConfigured = errors.New("smtp server not configured")

// Encryption modes for the SMTP connection.
const (
	EncryptionSTARTTLS = "STARTTLS"
	EncryptionSSL      = "SSL"
	EncryptionNone     = "NONE"
)

// DefaultFrom is the sender address used when no SMTP user or explicit
// from address is configured.
const DefaultFrom = "alexa@local.test"

// Message is what the skill hands to a transport.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers a message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Config describes the SMTP relay.
type Config struct {
	Server     string
	Port       int
	User       string
	Password   string
	Encryption string
	From       string
	Timeout    time.Duration
}

// SMTPSender sends through an SMTP relay, one connection per message.
type SMTPSender struct {
	cfg Config
}

// NewSMTPSender validates cfg and returns a sender. An empty server yields
// ErrNotConfigured so callers can tell "not set up" from "broken".
func NewSMTPSender(cfg Config) (*SMTPSender, error) {
	cfg.Server = strings.TrimSpace(cfg.Server)
	if cfg.Server == "" {
		return nil, ErrNotConfigured
	}
	cfg.User = strings.TrimSpace(cfg.User)
	cfg.Password = strings.TrimSpace(cfg.Password)
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	cfg.Encryption = strings.ToUpper(strings.TrimSpace(cfg.Encryption))
	switch cfg.Encryption {
	case "":
		cfg.Encryption = EncryptionSTARTTLS
	case EncryptionSTARTTLS, EncryptionSSL, EncryptionNone:
	default:
		return nil, fmt.Errorf("smtp encryption %q: want STARTTLS, SSL or NONE", cfg.Encryption)
	}
	return &SMTPSender{cfg: cfg}, nil
}

// From returns the envelope sender: the configured address, else the SMTP
// user, else DefaultFrom.
func (s *SMTPSender) From() string {
	switch {
	case s.cfg.From != "":
		return s.cfg.From
	case s.cfg.User != "":
		return s.cfg.User
	default:
		return DefaultFrom
	}
}

// Send delivers msg.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	m, err := s.build(msg)
	if err != nil {
		return err
	}
	client, err := mail.NewClient(s.cfg.Server, s.options()...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("smtp send to %s: %w", msg.To, err)
	}
	return nil
}

func (s *SMTPSender) build(msg Message) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(s.From()); err != nil {
		return nil, fmt.Errorf("smtp from %q: %w", s.From(), err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("smtp to %q: %w", msg.To, err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Body)
	return m, nil
}

func (s *SMTPSender) options() []mail.Option {
	var opts []mail.Option
	switch s.cfg.Encryption {
	case EncryptionSSL:
		opts = append(opts, mail.WithSSL())
	case EncryptionSTARTTLS:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	case EncryptionNone:
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}
	// Auth only when both halves are present.
	if s.cfg.User != "" && s.cfg.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.User),
			mail.WithPassword(s.cfg.Password),
		)
	}
	// Port last so no policy option overrides it.
	opts = append(opts, mail.WithTimeout(s.cfg.Timeout), mail.WithPort(s.cfg.Port))
	return opts
}
