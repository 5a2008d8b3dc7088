package websocket

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/HSouheill/storefront_backend/models"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func startFeed(t *testing.T) (*Hub, *websocket.Conn) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := NewHub(zap.NewNop())
	go hub.Run(ctx)

	e := echo.New()
	e.GET("/ws/orders", func(c echo.Context) error {
		return HandleOrderFeed(hub, "admin", c)
	})
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/orders"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	var welcome Notification
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	require.NoError(t, conn.ReadJSON(&welcome))
	assert.Equal(t, NotificationTypeConnected, welcome.Type)
	return hub, conn
}

func TestNewOrderIsBroadcast(t *testing.T) {
	hub, conn := startFeed(t)

	order := &models.Order{
		ID:          primitive.NewObjectID(),
		OrderNumber: "ORD-ABC-12345",
		Customer:    models.Customer{FullName: "Jane Doe"},
		Items:       []models.OrderItem{{Quantity: 2}, {Quantity: 1}},
		Total:       120.5,
		Status:      models.StatusPending,
	}
	hub.NotifyNewOrder(order)

	var got struct {
		Type string       `json:"type"`
		Data OrderSummary `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, NotificationTypeNewOrder, got.Type)
	assert.Equal(t, "ORD-ABC-12345", got.Data.OrderNumber)
	assert.Equal(t, "Jane Doe", got.Data.Customer)
	assert.Equal(t, 3, got.Data.Items)
	assert.Equal(t, order.ID.Hex(), got.Data.ID)
}

func TestPublishNeverBlocks(t *testing.T) {
	hub := NewHub(zap.NewNop())
	order := &models.Order{OrderNumber: "ORD-X"}

	done := make(chan struct{})
	go func() {
		for i := 0; i < cap(hub.broadcast)+10; i++ {
			hub.NotifyNewOrder(order)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publishing without a running hub blocked")
	}
}

func TestSameOrigin(t *testing.T) {
	req := httptest.NewRequest("GET", "http://shop.example/ws/orders", nil)
	assert.True(t, sameOrigin(req))

	req.Header.Set("Origin", "http://shop.example")
	assert.True(t, sameOrigin(req))

	req.Header.Set("Origin", "http://evil.example")
	assert.False(t, sameOrigin(req))
}
