// internal/mailer/disabled.go
package mailer

import "context"

// DisabledMailer stands in when no Gmail credentials are configured. Every
// send fails softly, so dry-run campaigns still work end to end.
type DisabledMailer struct{}

func (DisabledMailer) Send(ctx context.Context, from Identity, to, subject, htmlBody string, attachments []Attachment) (Result, error) {
	return Result{Error: "mailer not configured"}, nil
}

var _ Mailer = DisabledMailer{}
