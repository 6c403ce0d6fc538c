package mailer_test

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/truesoulcoder/crm-admin-sub000/internal/mailer"
)

func TestBuildMIMEBody(t *testing.T) {
	msg := string(mailer.BuildMIME(
		mailer.Identity{Name: "Chris Phillips", Email: "chris@truesoulpartners.com"},
		"owner@example.com",
		"Offer for 1412 Cedar Springs Rd",
		"<p>Hello</p>",
		nil,
	))

	assert.Contains(t, msg, "From: Chris Phillips <chris@truesoulpartners.com>\r\n")
	assert.Contains(t, msg, "To: owner@example.com\r\n")
	assert.Contains(t, msg, "Subject: Offer for 1412 Cedar Springs Rd\r\n")
	assert.Contains(t, msg, "MIME-Version: 1.0\r\n")
	assert.Contains(t, msg, `Content-Type: text/html; charset="UTF-8"`)
	assert.Contains(t, msg, "<p>Hello</p>")
	assert.True(t, strings.HasSuffix(msg, "--"), "message should end with the closing boundary")
}

func TestBuildMIMENoDisplayName(t *testing.T) {
	msg := string(mailer.BuildMIME(
		mailer.Identity{Email: "chris@truesoulpartners.com"},
		"owner@example.com", "Hi", "<p>Hi</p>", nil,
	))
	assert.Contains(t, msg, "From: chris@truesoulpartners.com\r\n")
}

func TestBuildMIMEAttachment(t *testing.T) {
	pdfBytes := []byte("%PDF-1.4 fake content")
	msg := string(mailer.BuildMIME(
		mailer.Identity{Email: "chris@truesoulpartners.com"},
		"owner@example.com",
		"Offer enclosed",
		"<p>See attached.</p>",
		[]mailer.Attachment{{Filename: "letter-of-intent.pdf", Content: pdfBytes}},
	))

	assert.Contains(t, msg, `Content-Disposition: attachment; filename="letter-of-intent.pdf"`)
	assert.Contains(t, msg, "Content-Transfer-Encoding: base64")
	assert.Contains(t, msg, base64.StdEncoding.EncodeToString(pdfBytes))

	// Both parts share the boundary declared in the outer header.
	start := strings.Index(msg, "boundary=")
	require.Greater(t, start, 0)
	boundary := strings.Trim(strings.SplitN(msg[start+len("boundary="):], "\r\n", 2)[0], `"`)
	assert.Equal(t, 3, strings.Count(msg, "--"+boundary), "two opening markers plus the closing one")
}

func TestDisabledMailerRefusesToSend(t *testing.T) {
	var m mailer.Mailer = mailer.DisabledMailer{}
	res, err := m.Send(context.Background(),mailer.Identity{Email: "x@truesoulpartners.com"}, "owner@example.com", "Hi", "<p>Hi</p>", nil)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Error)
}
