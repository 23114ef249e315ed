package mailer

import (
	"context"
	"errors"
	"fmt"

	"github.com/mrmbilling/royalty-ledger/internal/config"
	"github.com/rs/zerolog/log"
	"github.com/wneessen/go-mail"
)

// ErrNoRecipients is returned when a message has nobody to go to
var ErrNoRecipients = errors.New("message has no recipients")

// Message is an outgoing email with a plain-text body and an optional HTML alternative
type Message struct {
	To      []string
	Subject string
	Text    string
	HTML    string
}

// Mailer delivers email
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer delivers email through an SMTP relay
type SMTPMailer struct {
	client *mail.Client
	from   string
}

// NewSMTPMailer creates an SMTPMailer. Authentication is used only when a username is configured.
func NewSMTPMailer(cfg config.SMTPConfig) (*SMTPMailer, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}
	return &SMTPMailer{client: client, from: cfg.From}, nil
}

// Send builds and delivers msg
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return ErrNoRecipients
	}

	out := mail.NewMsg()
	if err := out.From(m.from); err != nil {
		return fmt.Errorf("invalid sender: %w", err)
	}
	if err := out.To(msg.To...); err != nil {
		return fmt.Errorf("invalid recipient: %w", err)
	}
	out.Subject(msg.Subject)
	out.SetBodyString(mail.TypeTextPlain, msg.Text)
	if msg.HTML != "" {
		out.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	}

	if err := m.client.DialAndSendWithContext(ctx, out); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}

	log.Info().
		Strs("to", msg.To).
		Str("subject", msg.Subject).
		Msg("Mail sent")
	return nil
}
