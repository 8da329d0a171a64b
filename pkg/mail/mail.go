// Package mail sends email. Two backends exist: "cloud" delivers over SMTP
// with gomail, "local" writes the message to the log and sends nothing.
//
//	m := mail.New(config.Mail())
//	err := m.Send(ctx, mail.Message{To: []string{"buyer@example.com"}, Subject: "...", HTML: "..."})
package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strings"

	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"gopkg.in/gomail.v2"
)

// ErrNoRecipient is returned for a message without a To address.
var ErrNoRecipient = errors.New("mail: no recipient")

// Message is one outbound email. HTML is optional; when set, Text becomes
// the plain-text alternative.
type Message struct {
	To      []string
	CC      []string
	BCC     []string
	Subject string
	Text    string
	HTML    string
}

// Mailer delivers a Message.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New picks the backend named in cfg.
func New(cfg config.MailConfig) Mailer {
	if cfg.Backend == "cloud" {
		return NewSMTPMailer(cfg)
	}
	return &LogMailer{From: cfg.FromAddress}
}

// SMTPMailer delivers through an SMTP relay.
type SMTPMailer struct {
	cfg    config.MailConfig
	dialer *gomail.Dialer
}

func NewSMTPMailer(cfg config.MailConfig) *SMTPMailer {
	d := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
	d.SSL = cfg.SMTPSSL
	d.TLSConfig = &tls.Config{ServerName: cfg.SMTPHost, MinVersion: tls.VersionTLS12}
	return &SMTPMailer{cfg: cfg, dialer: d}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return ErrNoRecipient
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	gm := build(m.cfg, msg)
	if err := m.dialer.DialAndSend(gm); err != nil {
		return fmt.Errorf("mail: send to %s: %w", strings.Join(msg.To, ","), err)
	}
	logger.WithCtx(ctx).Info("mail: sent", "to", msg.To, "subject", msg.Subject)
	return nil
}

func build(cfg config.MailConfig, msg Message) *gomail.Message {
	gm := gomail.NewMessage()
	gm.SetAddressHeader("From", cfg.FromAddress, cfg.FromName)
	gm.SetHeader("To", msg.To...)
	if len(msg.CC) > 0 {
		gm.SetHeader("Cc", msg.CC...)
	}
	if len(msg.BCC) > 0 {
		gm.SetHeader("Bcc", msg.BCC...)
	}
	gm.SetHeader("Subject", msg.Subject)

	switch {
	case msg.HTML != "" && msg.Text != "":
		gm.SetBody("text/plain", msg.Text)
		gm.AddAlternative("text/html", msg.HTML)
	case msg.HTML != "":
		gm.SetBody("text/html", msg.HTML)
	default:
		gm.SetBody("text/plain", msg.Text)
	}
	return gm
}

// LogMailer writes messages to the log. It is the development backend.
type LogMailer struct {
	From string
}

func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return ErrNoRecipient
	}
	logger.WithCtx(ctx).Info("mail: local backend, not delivered",
		"from", m.From, "to", msg.To, "subject", msg.Subject, "body", msg.Text)
	return nil
}
