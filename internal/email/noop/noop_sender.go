package noop

import (
	"context"
	"log"

	"tripfolio/internal/port"
)

type noopSender struct{}

// NewNoopSender creates a no-op EmailSender that logs messages to stdout.
// Used in development and when no email provider is configured.
func NewNoopSender() port.EmailSender {
	return &noopSender{}
}

func (s *noopSender) Send(_ context.Context, msg port.EmailMessage) error {
	log.Printf("[NOOP EMAIL] to=%s subject=%q body=%q", msg.To, msg.Subject, msg.TextBody)
	return nil
}
