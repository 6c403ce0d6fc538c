// internal/mailer/mailer.go
package mailer

import "context"

// Identity is the impersonated mailbox an email goes out as.
type Identity struct {
	Name  string
	Email string
}

// Attachment is a file attached to an outgoing email.
type Attachment struct {
	Filename string
	Content  []byte
}

// Result is the provider's answer for one send. Expected delivery failures
// (rejected recipient, quota, transient provider errors) come back here
// with Success false; the error return is reserved for mailer misuse such
// as unreadable credentials.
type Result struct {
	Success   bool
	MessageID string
	Error     string
}

type Mailer interface {
	Send(ctx context.Context, from Identity, to, subject, htmlBody string, attachments []Attachment) (Result, error)
}
