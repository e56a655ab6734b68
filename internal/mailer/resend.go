package mailer

import (
	"context"
	"fmt"
	"log"

	"github.com/resend/resend-go/v2"
)

// ResendSender sends emails via the Resend API.
type ResendSender struct {
	client *resend.Client
	from   string
}

func NewResendSender(apiKey, from string) *ResendSender {
	return &ResendSender{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

func (s *ResendSender) Send(ctx context.Context, msg Message) error {
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	}
	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		log.Printf("ERROR: Resend delivery to %s failed: %v", msg.To, err)
		return fmt.Errorf("resend send failed: %w", err)
	}
	log.Printf("INFO: Resend accepted message %s for %s", sent.Id, msg.To)
	return nil
}
