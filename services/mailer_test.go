package services

import (
	"bytes"
	"errors"
	"testing"

	"github.com/HSouheill/storefront_backend/config"
	"github.com/HSouheill/storefront_backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type recordingSender struct {
	sent []*gomail.Message
	err  error
}

func (r *recordingSender) DialAndSend(m ...*gomail.Message) error {
	r.sent = append(r.sent, m...)
	return r.err
}

func testOrder() *models.Order {
	return &models.Order{
		OrderNumber: "ORD-LX1-ABCDE",
		Customer: models.Customer{
			FullName: "<b>Sam</b>",
			Email:    "sam@example.com",
		},
		Items:         []models.OrderItem{{Name: "Phone", Quantity: 2, Total: 998}},
		Subtotal:      998,
		DeliveryFee:   250,
		Total:         1248,
		PaymentMethod: models.DefaultPaymentMethod,
		Status:        models.StatusPending,
	}
}

func TestNewSMTPMailerDisabledWithoutCredentials(t *testing.T) {
	assert.Nil(t, NewSMTPMailer(&config.Config{}))
	assert.NotNil(t, NewSMTPMailer(&config.Config{SMTPUser: "u", FromEmail: "shop@example.com"}))
}

func TestSendOrderConfirmation(t *testing.T) {
	sender := &recordingSender{}
	m := &SMTPMailer{sender: sender, from: "shop@example.com", siteName: "Shop", baseURL: "https://shop.test"}

	require.NoError(t, m.SendOrderConfirmation(testOrder()))
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	assert.Equal(t, []string{"sam@example.com"}, msg.GetHeader("To"))
	assert.Equal(t, []string{"Shop - Order ORD-LX1-ABCDE confirmed"}, msg.GetHeader("Subject"))

	_, body, err := m.RenderOrderConfirmation(testOrder())
	require.NoError(t, err)
	assert.Contains(t, body, "&lt;b&gt;Sam&lt;/b&gt;")
	assert.Contains(t, body, "1248.00")
	assert.Contains(t, body, "Order Placed")
	assert.Contains(t, body, "https://shop.test/track?orderNumber=ORD-LX1-ABCDE")

	var raw bytes.Buffer
	_, err = msg.WriteTo(&raw)
	require.NoError(t, err)
	assert.Contains(t, raw.String(), "text/html")
}

func TestSendOrderConfirmationWrapsSenderError(t *testing.T) {
	boom := errors.New("smtp down")
	m := &SMTPMailer{sender: &recordingSender{err: boom}, from: "shop@example.com"}
	assert.ErrorIs(t, m.SendOrderConfirmation(testOrder()), boom)
}
