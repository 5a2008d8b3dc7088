package services

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/HSouheill/storefront_backend/config"
	"github.com/HSouheill/storefront_backend/models"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Mailer sends transactional e-mails.
type Mailer interface {
	SendOrderConfirmation(order *models.Order) error
}

// messageSender is the part of gomail.Dialer the mailer uses.
type messageSender interface {
	DialAndSend(m ...*gomail.Message) error
}

type SMTPMailer struct {
	sender   messageSender
	from     string
	siteName string
	baseURL  string
}

// NewSMTPMailer returns nil when SMTP is not configured; callers treat a nil
// Mailer as "mail disabled".
func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	if cfg.SMTPUser == "" || cfg.FromEmail == "" {
		return nil
	}
	return &SMTPMailer{
		sender:   gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass),
		from:     cfg.FromEmail,
		siteName: cfg.SiteName,
		baseURL:  cfg.BaseURL,
	}
}

var orderConfirmationTmpl = template.Must(template.New("order").Parse(`<h2>Thank you for your order, {{.Order.Customer.FullName}}!</h2>
<p>Your order <strong>{{.Order.OrderNumber}}</strong> has been received and is {{.Order.Status.Display}}.</p>
<table cellpadding="6">
<tr><th align="left">Item</th><th>Qty</th><th align="right">Total</th></tr>
{{range .Order.Items}}<tr><td>{{.Name}}</td><td align="center">{{.Quantity}}</td><td align="right">{{printf "%.2f" .Total}}</td></tr>
{{end}}<tr><td colspan="2">Subtotal</td><td align="right">{{printf "%.2f" .Order.Subtotal}}</td></tr>
<tr><td colspan="2">Delivery</td><td align="right">{{printf "%.2f" .Order.DeliveryFee}}</td></tr>
<tr><td colspan="2"><strong>Total</strong></td><td align="right"><strong>{{printf "%.2f" .Order.Total}}</strong></td></tr>
</table>
<p>Payment: {{.Order.PaymentMethod}}</p>
<p>Track your order at <a href="{{.TrackURL}}">{{.TrackURL}}</a></p>
<p>{{.SiteName}}</p>`))

// RenderOrderConfirmation builds the subject and HTML body for order.
func (m *SMTPMailer) RenderOrderConfirmation(order *models.Order) (string, string, error) {
	var body bytes.Buffer
	err := orderConfirmationTmpl.Execute(&body, map[string]interface{}{
		"Order":    order,
		"SiteName": m.siteName,
		"TrackURL": TrackingURL(m.baseURL, order.OrderNumber),
	})
	if err != nil {
		return "", "", fmt.Errorf("render order confirmation: %w", err)
	}
	subject := fmt.Sprintf("%s - Order %s confirmed", m.siteName, order.OrderNumber)
	return subject, body.String(), nil
}

func (m *SMTPMailer) SendOrderConfirmation(order *models.Order) error {
	subject, body, err := m.RenderOrderConfirmation(order)
	if err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", order.Customer.Email)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	if err := m.sender.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// TrackingURL is the public tracking page of an order.
func TrackingURL(baseURL, orderNumber string) string {
	return fmt.Sprintf("%s/track?orderNumber=%s", baseURL, orderNumber)
}

// SendAsync mails the confirmation in the background and only logs failures.
func SendAsync(mailer Mailer, logger *zap.Logger, order *models.Order) {
	if mailer == nil {
		return
	}
	go func() {
		if err := mailer.SendOrderConfirmation(order); err != nil {
			logger.Warn("order confirmation mail failed",
				zap.String("orderNumber", order.OrderNumber),
				zap.Error(err))
		}
	}()
}
