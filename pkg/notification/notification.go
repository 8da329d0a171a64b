// Package notification routes a message to the channels it asks for.
//
// Define a notification:
//
//	type OrderShipped struct{ Email string }
//	func (n *OrderShipped) Via() []string { return []string{"mail"} }
//	func (n *OrderShipped) ToMail() notification.MailData {
//	    return notification.MailData{Subject: "Shipped", Text: "..."}
//	}
//
// Send:
//
//	d := notification.NewDispatcher(config.Mail())
//	err := d.Send(ctx, "buyer@example.com", &OrderShipped{})
package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/mail"
)

// MailData carries the data needed to send an email notification.
type MailData struct {
	To      string // overrides the notifiable address if set
	Subject string
	HTML    string
	Text    string
}

// Notification is the interface every notification must satisfy.
type Notification interface {
	// Via returns the channel names: "mail" or "log".
	Via() []string
}

// Mailable is implemented by notifications that support the mail channel.
type Mailable interface {
	ToMail() MailData
}

// Loggable is implemented by notifications that support the log channel.
type Loggable interface {
	ToLog() (msg string, args []any)
}

// Dispatcher owns the transports a notification can travel over.
type Dispatcher struct {
	mailer mail.Mailer
}

// NewDispatcher builds the mail transport from cfg.
func NewDispatcher(cfg config.MailConfig) *Dispatcher {
	return &Dispatcher{mailer: mail.New(cfg)}
}

// NewDispatcherWithMailer is used when the transport is built elsewhere.
func NewDispatcherWithMailer(m mail.Mailer) *Dispatcher {
	return &Dispatcher{mailer: m}
}

// Send delivers n on every channel it names. Failures on one channel do not
// stop the others; all of them are returned joined.
func (d *Dispatcher) Send(ctx context.Context, address string, n Notification) error {
	var errs []error
	for _, channel := range n.Via() {
		if err := d.dispatch(ctx, address, channel, n); err != nil {
			logger.WithCtx(ctx).Error("notification: channel failed", "channel", channel, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (d *Dispatcher) dispatch(ctx context.Context, address, channel string, n Notification) error {
	switch channel {
	case "mail":
		m, ok := n.(Mailable)
		if !ok {
			return fmt.Errorf("notification: %T does not implement Mailable", n)
		}
		data := m.ToMail()
		to := data.To
		if to == "" {
			to = address
		}
		return d.mailer.Send(ctx, mail.Message{
			To:      []string{to},
			Subject: data.Subject,
			Text:    data.Text,
			HTML:    data.HTML,
		})

	case "log":
		l, ok := n.(Loggable)
		if !ok {
			return fmt.Errorf("notification: %T does not implement Loggable", n)
		}
		msg, args := l.ToLog()
		logger.WithCtx(ctx).Info(msg, args...)
		return nil

	default:
		return fmt.Errorf("notification: unknown channel %q", channel)
	}
}
