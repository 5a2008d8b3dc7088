package models

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrUnknownOrderStatus = errors.New("unknown order status")

// OrderStatus is the linear fulfilment state of an order
type OrderStatus string

const (
	StatusPending        OrderStatus = "pending"
	StatusConfirmed      OrderStatus = "confirmed"
	StatusProcessing     OrderStatus = "processing"
	StatusShipped        OrderStatus = "shipped"
	StatusOutForDelivery OrderStatus = "out-for-delivery"
	StatusDelivered      OrderStatus = "delivered"
	StatusCancelled      OrderStatus = "cancelled"
)

// statusSteps is the progress bar order; cancelled is not a step.
var statusSteps = []OrderStatus{
	StatusPending,
	StatusConfirmed,
	StatusProcessing,
	StatusShipped,
	StatusOutForDelivery,
	StatusDelivered,
}

var statusDisplay = map[OrderStatus]string{
	StatusPending:        "Order Placed",
	StatusConfirmed:      "Order Confirmed",
	StatusProcessing:     "Processing",
	StatusShipped:        "Shipped",
	StatusOutForDelivery: "Out for Delivery",
	StatusDelivered:      "Delivered",
	StatusCancelled:      "Cancelled",
}

// AllOrderStatuses lists every status, cancelled last.
func AllOrderStatuses() []OrderStatus {
	return append(append([]OrderStatus{}, statusSteps...), StatusCancelled)
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(strings.TrimSpace(s))
	if _, ok := statusDisplay[status]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownOrderStatus, s)
	}
	return status, nil
}

// Display returns the customer facing label.
func (s OrderStatus) Display() string {
	if d, ok := statusDisplay[s]; ok {
		return d
	}
	return string(s)
}

// Step returns the progress index, -1 for cancelled or unknown statuses.
func (s OrderStatus) Step() int {
	for i, step := range statusSteps {
		if step == s {
			return i
		}
	}
	return -1
}

type OrderItem struct {
	ProductID primitive.ObjectID `json:"productId" bson:"productId"`
	Name      string             `json:"name" bson:"name"`
	Price     float64            `json:"price" bson:"price"`
	Quantity  int                `json:"quantity" bson:"quantity"`
	Total     float64            `json:"total" bson:"total"`
	Image     string             `json:"image,omitempty" bson:"image,omitempty"`
}

type Customer struct {
	FullName   string `json:"fullName" bson:"fullName" form:"fullName" validate:"required"`
	Email      string `json:"email" bson:"email" form:"email" validate:"required,email"`
	Phone      string `json:"phone" bson:"phone" form:"phone" validate:"required"`
	Address    string `json:"address" bson:"address" form:"address" validate:"required"`
	City       string `json:"city" bson:"city" form:"city" validate:"required"`
	PostalCode string `json:"postalCode,omitempty" bson:"postalCode,omitempty" form:"postalCode"`
}

type StatusChange struct {
	Status    OrderStatus `json:"status" bson:"status"`
	Note      string      `json:"note" bson:"note"`
	UpdatedAt time.Time   `json:"updatedAt" bson:"updatedAt"`
}

type Order struct {
	ID                primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	OrderNumber       string             `json:"orderNumber" bson:"orderNumber"`
	Customer          Customer           `json:"customer" bson:"customer"`
	Items             []OrderItem        `json:"items" bson:"items"`
	Subtotal          float64            `json:"subtotal" bson:"subtotal"`
	DeliveryFee       float64            `json:"deliveryFee" bson:"deliveryFee"`
	Total             float64            `json:"total" bson:"total"`
	PaymentMethod     string             `json:"paymentMethod" bson:"paymentMethod"`
	Status            OrderStatus        `json:"status" bson:"status"`
	StatusHistory     []StatusChange     `json:"statusHistory" bson:"statusHistory"`
	Notes             string             `json:"notes,omitempty" bson:"notes,omitempty"`
	TrackingNumber    string             `json:"trackingNumber,omitempty" bson:"trackingNumber,omitempty"`
	EstimatedDelivery *time.Time         `json:"estimatedDelivery,omitempty" bson:"estimatedDelivery,omitempty"`
	CreatedAt         time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt" bson:"updatedAt"`
}

const DefaultPaymentMethod = "Cash on Delivery"

// CartLine is one product and quantity submitted at checkout
type CartLine struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"min=1"`
}

type PlaceOrderRequest struct {
	Customer  Customer   `json:"customer" validate:"required"`
	Items     []CartLine `json:"items" validate:"required,min=1,dive"`
	Notes     string     `json:"notes"`
	Subscribe bool       `json:"subscribe"`
}

type UpdateOrderStatusRequest struct {
	Status            string `json:"status" form:"status" validate:"required"`
	Note              string `json:"note" form:"note"`
	TrackingNumber    string `json:"trackingNumber" form:"trackingNumber"`
	EstimatedDelivery string `json:"estimatedDelivery" form:"estimatedDelivery"`
}

// OrderTracking is the public view of an order
type OrderTracking struct {
	OrderNumber       string         `json:"orderNumber"`
	Status            OrderStatus    `json:"status"`
	StatusDisplay     string         `json:"statusDisplay"`
	Step              int            `json:"step"`
	StatusHistory     []StatusChange `json:"statusHistory"`
	TrackingNumber    string         `json:"trackingNumber,omitempty"`
	EstimatedDelivery *time.Time     `json:"estimatedDelivery,omitempty"`
	Total             float64        `json:"total"`
	CreatedAt         time.Time      `json:"createdAt"`
}

func (o *Order) Tracking() OrderTracking {
	return OrderTracking{
		OrderNumber:       o.OrderNumber,
		Status:            o.Status,
		StatusDisplay:     o.Status.Display(),
		Step:              o.Status.Step(),
		StatusHistory:     o.StatusHistory,
		TrackingNumber:    o.TrackingNumber,
		EstimatedDelivery: o.EstimatedDelivery,
		Total:             o.Total,
		CreatedAt:         o.CreatedAt,
	}
}

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// GenerateOrderNumber returns ORD-<base36 millis>-<5 random base36 chars>,
// upper-cased.
func GenerateOrderNumber(now time.Time) (string, error) {
	suffix := make([]byte, 5)
	for i := range suffix {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(base36))))
		if err != nil {
			return "", err
		}
		suffix[i] = base36[n.Int64()]
	}
	ts := strconv.FormatInt(now.UnixMilli(), 36)
	return strings.ToUpper(fmt.Sprintf("ORD-%s-%s", ts, suffix)), nil
}

// OrdersPageSize is the admin order list page size.
const OrdersPageSize = 20

// OrderFilter selects a page of the admin order list. An empty Status means
// every status.
type OrderFilter struct {
	Status OrderStatus
	Search string
	Page   int
	Limit  int
}

// OrderList is one page of orders plus the per-status totals.
type OrderList struct {
	Orders     []Order           `json:"orders"`
	Counts     map[string]int64  `json:"counts"`
	Pagination Pagination        `json:"pagination"`
	Filters    map[string]string `json:"filters"`
}
