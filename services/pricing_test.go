package services

import (
	"testing"

	"github.com/HSouheill/storefront_backend/models"
	"github.com/stretchr/testify/assert"
)

func TestPricingCompute(t *testing.T) {
	policy := NewPricingPolicy(250, 5000)

	tests := []struct {
		name     string
		items    []models.OrderItem
		subtotal float64
		fee      float64
		total    float64
	}{
		{
			name:     "below threshold pays delivery",
			items:    []models.OrderItem{{Price: 0.1, Quantity: 3}, {Price: 19.99, Quantity: 2}},
			subtotal: 40.28,
			fee:      250,
			total:    290.28,
		},
		{
			name:     "threshold reached ships free",
			items:    []models.OrderItem{{Price: 2500, Quantity: 2}},
			subtotal: 5000,
			fee:      0,
			total:    5000,
		},
		{
			name:  "empty cart",
			items: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			totals := policy.Compute(tt.items)
			assert.Equal(t, tt.subtotal, totals.Subtotal.InexactFloat64())
			assert.Equal(t, tt.fee, totals.DeliveryFee.InexactFloat64())
			assert.Equal(t, tt.total, totals.Total.InexactFloat64())
		})
	}
}

func TestPricingFillsLineTotals(t *testing.T) {
	items := []models.OrderItem{{Price: 0.1, Quantity: 3}}
	NewPricingPolicy(0, 0).Compute(items)
	assert.Equal(t, 0.3, items[0].Total)

	var order models.Order
	NewPricingPolicy(10, 0).Compute(items).Apply(&order)
	assert.Equal(t, 0.3, order.Subtotal)
	assert.Equal(t, float64(10), order.DeliveryFee)
	assert.Equal(t, 10.3, order.Total)
}
