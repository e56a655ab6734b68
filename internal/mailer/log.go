package mailer

import (
	"context"
	"log"
)

// LogSender logs messages instead of delivering them. For local development.
type LogSender struct{}

func NewLogSender() *LogSender {
	return &LogSender{}
}

func (s *LogSender) Send(_ context.Context, msg Message) error {
	log.Printf("INFO: [mail] to=%s subject=%q (%d bytes html)", msg.To, msg.Subject, len(msg.HTML))
	return nil
}
