package mail

import (
	"bytes"
	"context"
	"testing"

	"github.com/shashiranjanraj/storefront/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPicksBackend(t *testing.T) {
	assert.IsType(t, &LogMailer{}, New(config.MailConfig{Backend: "local"}))
	assert.IsType(t, &SMTPMailer{}, New(config.MailConfig{Backend: "cloud", SMTPHost: "smtp.example.com", SMTPPort: 587}))
}

func TestSendRequiresRecipient(t *testing.T) {
	err := (&LogMailer{}).Send(context.Background(), Message{Subject: "hi"})
	assert.ErrorIs(t, err, ErrNoRecipient)

	err = NewSMTPMailer(config.MailConfig{SMTPHost: "localhost", SMTPPort: 25}).Send(context.Background(), Message{})
	assert.ErrorIs(t, err, ErrNoRecipient)
}

func TestBuildWritesAlternativeParts(t *testing.T) {
	cfg := config.MailConfig{FromAddress: "shop@example.com", FromName: "Storefront"}
	gm := build(cfg, Message{
		To:      []string{"buyer@example.com"},
		Subject: "Order #1",
		Text:    "plain body",
		HTML:    "<p>html body</p>",
	})

	var buf bytes.Buffer
	_, err := gm.WriteTo(&buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Subject: Order #1")
	assert.Contains(t, out, "buyer@example.com")
	assert.Contains(t, out, "text/plain")
	assert.Contains(t, out, "text/html")
}
