package mailer

import (
	"context"
	"fmt"
	"log"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridSender sends emails via the SendGrid v3 API.
type SendGridSender struct {
	client   *sendgrid.Client
	fromName string
	from     string
}

func NewSendGridSender(apiKey, fromName, from string) *SendGridSender {
	return &SendGridSender{
		client:   sendgrid.NewSendClient(apiKey),
		fromName: fromName,
		from:     from,
	}
}

func (s *SendGridSender) Send(ctx context.Context, msg Message) error {
	from := mail.NewEmail(s.fromName, s.from)
	to := mail.NewEmail(msg.ToName, msg.To)
	message := mail.NewSingleEmail(from, msg.Subject, to, msg.Text, msg.HTML)

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		log.Printf("ERROR: SendGrid delivery to %s failed: %v", msg.To, err)
		return fmt.Errorf("sendgrid send failed: %w", err)
	}
	if response.StatusCode >= 300 {
		log.Printf("ERROR: SendGrid rejected message for %s: status %d: %s", msg.To, response.StatusCode, response.Body)
		return fmt.Errorf("sendgrid send failed: status %d", response.StatusCode)
	}
	log.Printf("INFO: SendGrid accepted message for %s (status %d)", msg.To, response.StatusCode)
	return nil
}
