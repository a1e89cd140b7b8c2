package email

import "context"

// Message is one outgoing email. DedupeKey keeps the outbox from queuing the
// same logical email twice.
type Message struct {
	To        string
	From      string
	Subject   string
	Text      string
	HTML      string
	DedupeKey string
}

// EmailSender provides a testable abstraction over SES delivery.
type EmailSender interface {
	Send(ctx context.Context, msg Message) error
}
