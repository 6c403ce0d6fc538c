// internal/mailer/gmail.go
package mailer

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2/google"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// GmailMailer sends through the Gmail API using a service account with
// domain-wide delegation, impersonating the sender's mailbox per call.
type GmailMailer struct {
	credentials []byte
	timeout     time.Duration
}

func NewGmailMailer(credentialsJSON []byte, timeout time.Duration) *GmailMailer {
	return &GmailMailer{credentials: credentialsJSON, timeout: timeout}
}

func (m *GmailMailer) Send(ctx context.Context, from Identity, to, subject, htmlBody string, attachments []Attachment) (Result, error) {
	conf, err := google.JWTConfigFromJSON(m.credentials, gmail.GmailSendScope)
	if err != nil {
		return Result{}, fmt.Errorf("parse gmail credentials: %w", err)
	}
	conf.Subject = from.Email

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	svc, err := gmail.NewService(ctx, option.WithHTTPClient(conf.Client(ctx)))
	if err != nil {
		return Result{Error: err.Error()}, nil
	}

	raw := BuildMIME(from, to, subject, htmlBody, attachments)
	msg := &gmail.Message{
		Raw: base64.URLEncoding.WithPadding(base64.NoPadding).EncodeToString(raw),
	}

	res, err := svc.Users.Messages.Send(from.Email, msg).Context(ctx).Do()
	if err != nil {
		return Result{Error: err.Error()}, nil
	}
	return Result{Success: true, MessageID: res.Id}, nil
}

// BuildMIME assembles a multipart/mixed message with an HTML body and
// base64 attachments.
func BuildMIME(from Identity, to, subject, htmlBody string, attachments []Attachment) []byte {
	boundary := fmt.Sprintf("boundary_%d", time.Now().UnixNano())

	var b strings.Builder
	fromHeader := from.Email
	if from.Name != "" {
		fromHeader = fmt.Sprintf("%s <%s>", from.Name, from.Email)
	}

	lines := []string{
		"From: " + fromHeader,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		fmt.Sprintf("Content-Type: multipart/mixed; boundary=%q", boundary),
		"",
		"--" + boundary,
		`Content-Type: text/html; charset="UTF-8"`,
		"Content-Transfer-Encoding: 7bit",
		"",
		htmlBody,
	}
	b.WriteString(strings.Join(lines, "\r\n"))

	for _, att := range attachments {
		b.WriteString("\r\n--" + boundary + "\r\n")
		b.WriteString(fmt.Sprintf("Content-Type: application/octet-stream; name=%q\r\n", att.Filename))
		b.WriteString("Content-Transfer-Encoding: base64\r\n")
		b.WriteString(fmt.Sprintf("Content-Disposition: attachment; filename=%q\r\n", att.Filename))
		b.WriteString("\r\n")
		b.WriteString(base64.StdEncoding.EncodeToString(att.Content))
	}
	b.WriteString("\r\n--" + boundary + "--")

	return []byte(b.String())
}

var _ Mailer = (*GmailMailer)(nil)
