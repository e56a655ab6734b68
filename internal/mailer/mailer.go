// Package mailer delivers transactional email through a configured provider.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"alcyxob/gym-portal/internal/config"
)

// Message is one outbound email.
type Message struct {
	To      string
	ToName  string
	Subject string
	HTML    string
	Text    string // optional plain-text alternative
}

// Sender is the interface for sending emails via an external provider.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

var ErrNotConfigured = errors.New("mailer: no API key configured")

// New picks the provider named in cfg.Provider. Without an API key it returns
// a sender that refuses to deliver, so plan requests stay untouched.
func New(cfg config.EmailConfig) (Sender, error) {
	from := cfg.From
	if cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", cfg.FromName, cfg.From)
	}
	if cfg.APIKey == "" {
		return disabledSender{}, nil
	}
	switch strings.ToLower(cfg.Provider) {
	case "", "resend":
		log.Printf("INFO: Email provider: resend (from %s)", cfg.From)
		return NewResendSender(cfg.APIKey, from), nil
	case "sendgrid":
		log.Printf("INFO: Email provider: sendgrid (from %s)", cfg.From)
		return NewSendGridSender(cfg.APIKey, cfg.FromName, cfg.From), nil
	case "log", "noop":
		return NewLogSender(), nil
	default:
		return nil, fmt.Errorf("mailer: unknown provider %q", cfg.Provider)
	}
}

type disabledSender struct{}

func (disabledSender) Send(context.Context, Message) error {
	return ErrNotConfigured
}
