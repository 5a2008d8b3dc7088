package websocket

import (
	"context"
	"encoding/json"
	"time"

	"github.com/HSouheill/storefront_backend/models"
	"go.uber.org/zap"
)

// Notification types pushed to the admin order feed
const (
	NotificationTypeConnected     = "connected"
	NotificationTypeNewOrder      = "new_order"
	NotificationTypeStatusChanged = "order_status_changed"
)

// Notification represents a message sent over WebSocket
type Notification struct {
	Type    string      `json:"type"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// OrderSummary is the order payload of a notification.
type OrderSummary struct {
	ID          string             `json:"id"`
	OrderNumber string             `json:"orderNumber"`
	Customer    string             `json:"customer"`
	Total       float64            `json:"total"`
	Items       int                `json:"items"`
	Status      models.OrderStatus `json:"status"`
	CreatedAt   time.Time          `json:"createdAt"`
}

func summarize(order *models.Order) OrderSummary {
	items := 0
	for _, item := range order.Items {
		items += item.Quantity
	}
	return OrderSummary{
		ID:          order.ID.Hex(),
		OrderNumber: order.OrderNumber,
		Customer:    order.Customer.FullName,
		Total:       order.Total,
		Items:       items,
		Status:      order.Status,
		CreatedAt:   order.CreatedAt,
	}
}

// Hub fans order events out to every connected admin.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
	logger     *zap.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run starts the hub's event loop. It returns when ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			return
		case client := <-h.register:
			h.clients[client] = true
			h.logger.Debug("order feed client connected", zap.String("username", client.username), zap.Int("clients", len(h.clients)))
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// too slow to keep up, drop it
					delete(h.clients, client)
					close(client.send)
				}
			}
		}
	}
}

// Publish queues n for every client. It never blocks the caller; when the
// queue is full the notification is dropped.
func (h *Hub) Publish(n Notification) {
	message, err := json.Marshal(n)
	if err != nil {
		h.logger.Error("encoding notification", zap.String("type", n.Type), zap.Error(err))
		return
	}
	select {
	case h.broadcast <- message:
	default:
		h.logger.Warn("order feed queue full, notification dropped", zap.String("type", n.Type))
	}
}

// NotifyNewOrder tells connected admins about a placed order.
func (h *Hub) NotifyNewOrder(order *models.Order) {
	h.Publish(Notification{
		Type:    NotificationTypeNewOrder,
		Message: "New order " + order.OrderNumber,
		Data:    summarize(order),
	})
}

// NotifyStatusChange tells connected admins an order moved on.
func (h *Hub) NotifyStatusChange(order *models.Order) {
	h.Publish(Notification{
		Type:    NotificationTypeStatusChanged,
		Message: "Order " + order.OrderNumber + " is now " + order.Status.Display(),
		Data:    summarize(order),
	})
}
