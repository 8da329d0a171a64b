// Package jobs holds the background jobs the storefront queues.
package jobs

import (
	"bytes"
	"context"
	"fmt"
	htmltemplate "html/template"
	"strconv"
	"text/template"
	"time"

	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/notification"
	"github.com/shashiranjanraj/storefront/pkg/queue"
)

const orderConfirmationJob = "send_order_confirmation"

// ConfirmationLine is one purchased line as it appears in the mail.
type ConfirmationLine struct {
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	Subtotal  int64  `json:"subtotal"`
}

// SendOrderConfirmation mails the buyer a summary of a committed order.
// All fields are copied at dispatch time so the job never reads the
// database.
type SendOrderConfirmation struct {
	ShopName string             `json:"shop_name"`
	OrderID  uint               `json:"order_id"`
	Email    string             `json:"email"`
	FullName string             `json:"full_name"`
	Lines    []ConfirmationLine `json:"lines"`
	Subtotal int64              `json:"subtotal"`
	Discount int64              `json:"discount"`
	Total    int64              `json:"total"`
	PlacedAt time.Time          `json:"placed_at"`

	dispatcher *notification.Dispatcher
	rendered   *notification.MailData
}

func (j *SendOrderConfirmation) JobName() string { return orderConfirmationJob }

func (j *SendOrderConfirmation) Handle(ctx context.Context) error {
	if j.dispatcher == nil {
		return fmt.Errorf("jobs: %s has no dispatcher", orderConfirmationJob)
	}
	data, err := j.render()
	if err != nil {
		return err
	}
	j.rendered = &data
	return j.dispatcher.Send(ctx, j.Email, j)
}

func (j *SendOrderConfirmation) Via() []string { return []string{"mail", "log"} }

func (j *SendOrderConfirmation) ToMail() notification.MailData {
	if j.rendered != nil {
		return *j.rendered
	}
	data, err := j.render()
	if err != nil {
		logger.L.Error("jobs: confirmation mail render failed", "order_id", j.OrderID, "error", err)
	}
	return data
}

func (j *SendOrderConfirmation) render() (notification.MailData, error) {
	data := notification.MailData{
		Subject: fmt.Sprintf("[%s] Order #%d confirmation", j.ShopName, j.OrderID),
	}
	var text, html bytes.Buffer
	if err := textTmpl.Execute(&text, j); err != nil {
		return data, fmt.Errorf("jobs: render text body for order %d: %w", j.OrderID, err)
	}
	if err := htmlTmpl.Execute(&html, j); err != nil {
		return data, fmt.Errorf("jobs: render html body for order %d: %w", j.OrderID, err)
	}
	data.Text = text.String()
	data.HTML = html.String()
	return data, nil
}

func (j *SendOrderConfirmation) ToLog() (string, []any) {
	return "order confirmation sent", []any{"order_id", j.OrderID, "total", j.Total}
}

// Register makes the job runnable by workers. Every process that runs
// workers must call it.
func Register(d *notification.Dispatcher) {
	queue.Register(orderConfirmationJob, func() queue.Job {
		return &SendOrderConfirmation{dispatcher: d}
	})
}

// OrderNotifier hands committed orders to the queue.
type OrderNotifier struct {
	shopName string
}

func NewOrderNotifier(cfg config.MailConfig) *OrderNotifier {
	return &OrderNotifier{shopName: cfg.FromName}
}

func (n *OrderNotifier) OrderPlaced(ctx context.Context, msg services.OrderPlaced) error {
	return queue.Dispatch(ctx, NewSendOrderConfirmation(n.shopName, msg))
}

// NewSendOrderConfirmation builds the job payload from a placed order.
func NewSendOrderConfirmation(shopName string, msg services.OrderPlaced) *SendOrderConfirmation {
	lines := make([]ConfirmationLine, 0, len(msg.Lines))
	for _, l := range msg.Lines {
		lines = append(lines, ConfirmationLine{
			Name:      l.Name,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
			Subtotal:  l.Subtotal(),
		})
	}
	return &SendOrderConfirmation{
		ShopName: shopName,
		OrderID:  msg.OrderID,
		Email:    msg.Email,
		FullName: msg.LastName + " " + msg.FirstName,
		Lines:    lines,
		Subtotal: msg.Subtotal,
		Discount: msg.Discount,
		Total:    msg.Total,
		PlacedAt: msg.PlacedAt,
	}
}

// yen renders an amount as ¥1,234.
func yen(v int64) string {
	s := strconv.FormatInt(v, 10)
	neg := v < 0
	if neg {
		s = s[1:]
	}
	var out []byte
	for i := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	if neg {
		return "-¥" + string(out)
	}
	return "¥" + string(out)
}

var funcs = map[string]any{"yen": yen}

var textTmpl = template.Must(template.New("text").Funcs(funcs).Parse(
	`{{.FullName}} 様

Thank you for your order at {{.ShopName}}.

Order #{{.OrderID}}
{{range .Lines}}
  {{.Name}}  {{yen .UnitPrice}} x {{.Quantity}} = {{yen .Subtotal}}{{end}}

Subtotal: {{yen .Subtotal}}
{{- if .Discount}}
Discount: -{{yen .Discount}}{{end}}
Total:    {{yen .Total}}
`))

var htmlTmpl = htmltemplate.Must(htmltemplate.New("html").Funcs(funcs).Parse(
	`<p>{{.FullName}} 様</p>
<p>Thank you for your order at {{.ShopName}}.</p>
<h2>Order #{{.OrderID}}</h2>
<table>
<tr><th>Item</th><th>Price</th><th>Qty</th><th>Subtotal</th></tr>
{{range .Lines}}<tr><td>{{.Name}}</td><td>{{yen .UnitPrice}}</td><td>{{.Quantity}}</td><td>{{yen .Subtotal}}</td></tr>
{{end}}</table>
<p>Subtotal: {{yen .Subtotal}}</p>
{{if .Discount}}<p>Discount: -{{yen .Discount}}</p>
{{end}}<p><strong>Total: {{yen .Total}}</strong></p>
`))
