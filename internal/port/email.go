package port

import "context"

// EmailMessage is a plain transactional email.
type EmailMessage struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// EmailSender abstracts transactional email delivery.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}
