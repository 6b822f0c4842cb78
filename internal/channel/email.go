package channel

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
)

// SMTPConfig holds the mail server and sender settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string // defaults to Username
	FromName string
}

// SMTP dials authenticated STARTTLS sessions.
type SMTP struct {
	cfg SMTPConfig
}

// NewSMTP creates an SMTP dialer.
func NewSMTP(cfg SMTPConfig) *SMTP {
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &SMTP{cfg: cfg}
}

// mailSender is the part of *mail.Client used by a session.
type mailSender interface {
	Send(messages ...*mail.Msg) error
	Close() error
}

// Dial connects and authenticates. The returned session reuses the connection for every message.
func (s *SMTP) Dial(ctx context.Context) (EmailSession, error) {
	client, err := mail.NewClient(s.cfg.Host,
		mail.WithPort(s.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.cfg.Username),
		mail.WithPassword(s.cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return nil, &LoginError{Channel: Email, Message: "invalid client configuration", Cause: err}
	}
	if err := client.DialWithContext(ctx); err != nil {
		return nil, &LoginError{Channel: Email, Message: fmt.Sprintf("failed to connect to %s:%d", s.cfg.Host, s.cfg.Port), Cause: err}
	}
	return &smtpSession{client: client, from: s.cfg.From, fromName: s.cfg.FromName}, nil
}

type smtpSession struct {
	client   mailSender
	from     string
	fromName string
}

func (s *smtpSession) Send(ctx context.Context, recipient, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return &SendError{Channel: Email, Recipient: recipient, Cause: err}
	}
	msg, err := newMessage(s.from, s.fromName, recipient, subject, body)
	if err != nil {
		return &SendError{Channel: Email, Recipient: recipient, Step: "compose", Cause: err}
	}
	if err := s.client.Send(msg); err != nil {
		return &SendError{Channel: Email, Recipient: recipient, Step: "deliver", Cause: err}
	}
	return nil
}

func (s *smtpSession) Close() error {
	return s.client.Close()
}

// newMessage builds a plain-text message.
func newMessage(from, fromName, to, subject, body string) (*mail.Msg, error) {
	m := mail.NewMsg()
	if fromName != "" {
		if err := m.FromFormat(fromName, from); err != nil {
			return nil, fmt.Errorf("invalid sender: %w", err)
		}
	} else if err := m.From(from); err != nil {
		return nil, fmt.Errorf("invalid sender: %w", err)
	}
	if err := m.To(to); err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	m.Subject(subject)
	m.SetBodyString(mail.TypeTextPlain, body)
	return m, nil
}
