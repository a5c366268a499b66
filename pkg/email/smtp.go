package email

import (
	"context"
	"errors"
	"fmt"
	"time"

	"contact-mail-backend/config"

	"github.com/wneessen/go-mail"
)

// SMTPRelay is the primary transport: an authenticated SMTP session.
type SMTPRelay struct {
	enabled  bool
	host     string
	port     int
	username string
	password string
	secure   string
	timeout  time.Duration
}

// NewSMTPRelay creates the relay from the mail configuration.
func NewSMTPRelay(cfg config.MailConfig) *SMTPRelay {
	username := cfg.SMTPUser
	if username == "" {
		username = cfg.MailFrom
	}
	return &SMTPRelay{
		enabled:  cfg.SMTPEnabled,
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: username,
		password: cfg.SMTPPass,
		secure:   cfg.SMTPSecure,
		timeout:  cfg.SMTPTimeout,
	}
}

func (r *SMTPRelay) Name() string { return NameSMTP }

// Available checks if the relay has the minimum configuration to dial
func (r *SMTPRelay) Available() bool {
	return r.enabled && r.host != ""
}

func (r *SMTPRelay) clientOptions() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(r.port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(r.username),
		mail.WithPassword(r.password),
	}
	if r.timeout > 0 {
		opts = append(opts, mail.WithTimeout(r.timeout))
	}
	switch r.secure {
	case "ssl":
		opts = append(opts, mail.WithSSL())
	case "tls":
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	default:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	return opts
}

// Open dials and authenticates once; the session is reused for every
// message of the request.
func (r *SMTPRelay) Open(ctx context.Context) (Session, Result) {
	if !r.Available() {
		return nil, Fail(ReasonUnavailable, errors.New("smtp relay not configured"))
	}
	client, err := mail.NewClient(r.host, r.clientOptions()...)
	if err != nil {
		return nil, Fail(ReasonInvalid, fmt.Errorf("smtp client: %w", err))
	}
	if err := client.DialWithContext(ctx); err != nil {
		return nil, Fail(ReasonConnect, fmt.Errorf("smtp dial %s:%d: %w", r.host, r.port, err))
	}
	return &smtpSession{client: client}, Ok()
}

type smtpSession struct {
	client *mail.Client
}

func (s *smtpSession) Send(_ context.Context, msg *Message) Result {
	m, err := buildMsg(msg)
	if err != nil {
		return Fail(ReasonInvalid, err)
	}
	if err := s.client.Send(m); err != nil {
		return Fail(ReasonRejected, err)
	}
	return Ok()
}

func (s *smtpSession) Close() error {
	return s.client.Close()
}

// buildMsg converts a Message into a go-mail message with a fresh set of
// recipients, so a reused session never leaks addresses between messages.
func buildMsg(msg *Message) (*mail.Msg, error) {
	m := mail.NewMsg(mail.WithCharset(mail.CharsetUTF8), mail.WithEncoding(mail.EncodingB64))

	if err := m.FromFormat(msg.From.Name, msg.From.Email); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", msg.From.Email, err)
	}
	for _, a := range msg.To {
		if err := addRecipient(m.AddTo, m.AddToFormat, a); err != nil {
			return nil, err
		}
	}
	for _, a := range msg.Cc {
		if err := addRecipient(m.AddCc, m.AddCcFormat, a); err != nil {
			return nil, err
		}
	}
	for _, a := range msg.Bcc {
		if err := addRecipient(m.AddBcc, m.AddBccFormat, a); err != nil {
			return nil, err
		}
	}
	if msg.ReplyTo.Email != "" {
		if err := m.ReplyToFormat(msg.ReplyTo.Name, msg.ReplyTo.Email); err != nil {
			return nil, fmt.Errorf("invalid reply-to %q: %w", msg.ReplyTo.Email, err)
		}
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextHTML, msg.HTMLBody)
	return m, nil
}

func addRecipient(add func(string) error, addFormat func(string, string) error, a Address) error {
	var err error
	if a.Name == "" {
		err = add(a.Email)
	} else {
		err = addFormat(a.Name, a.Email)
	}
	if err != nil {
		return fmt.Errorf("invalid recipient %q: %w", a.Email, err)
	}
	return nil
}
