package services

import (
	"github.com/HSouheill/storefront_backend/models"
	"github.com/shopspring/decimal"
)

// PricingPolicy holds the delivery rules applied at checkout.
type PricingPolicy struct {
	DeliveryFee           decimal.Decimal
	FreeDeliveryThreshold decimal.Decimal
}

func NewPricingPolicy(deliveryFee, freeDeliveryThreshold float64) PricingPolicy {
	return PricingPolicy{
		DeliveryFee:           decimal.NewFromFloat(deliveryFee),
		FreeDeliveryThreshold: decimal.NewFromFloat(freeDeliveryThreshold),
	}
}

// Totals is the money summary of an order
type Totals struct {
	Subtotal    decimal.Decimal
	DeliveryFee decimal.Decimal
	Total       decimal.Decimal
}

// LineTotal is price times quantity rounded to cents.
func LineTotal(price float64, quantity int) decimal.Decimal {
	return decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}

// Compute fills each item's Total and returns the order totals. Delivery is
// free once the subtotal reaches the threshold; a zero threshold disables it.
func (p PricingPolicy) Compute(items []models.OrderItem) Totals {
	subtotal := decimal.Zero
	for i := range items {
		line := LineTotal(items[i].Price, items[i].Quantity)
		items[i].Total = line.InexactFloat64()
		subtotal = subtotal.Add(line)
	}

	fee := p.DeliveryFee
	if len(items) == 0 || (p.FreeDeliveryThreshold.IsPositive() && subtotal.GreaterThanOrEqual(p.FreeDeliveryThreshold)) {
		fee = decimal.Zero
	}

	return Totals{
		Subtotal:    subtotal,
		DeliveryFee: fee,
		Total:       subtotal.Add(fee),
	}
}

// Apply copies the totals onto an order.
func (t Totals) Apply(order *models.Order) {
	order.Subtotal = t.Subtotal.InexactFloat64()
	order.DeliveryFee = t.DeliveryFee.InexactFloat64()
	order.Total = t.Total.InexactFloat64()
}
