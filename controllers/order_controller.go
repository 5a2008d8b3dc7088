package controllers

import (
	"bytes"
	"errors"
	"image/png"
	"net/http"

	"github.com/HSouheill/storefront_backend/middleware"
	"github.com/HSouheill/storefront_backend/models"
	"github.com/HSouheill/storefront_backend/services"
	"github.com/HSouheill/storefront_backend/websocket"
	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const qrSize = 200

type OrderController struct {
	orders  *services.OrderService
	hub     *websocket.Hub
	pages   *ShopController
	baseURL string
	logger  *zap.Logger
}

func NewOrderController(orders *services.OrderService, hub *websocket.Hub, pages *ShopController, baseURL string, logger *zap.Logger) *OrderController {
	return &OrderController{
		orders:  orders,
		hub:     hub,
		pages:   pages,
		baseURL: baseURL,
		logger:  logger,
	}
}

// PlaceOrder turns a checkout submission into a pending cash-on-delivery
// order.
func (oc *OrderController) PlaceOrder(c echo.Context) error {
	var req models.PlaceOrderRequest
	if err := c.Bind(&req); err != nil {
		return failure(c, http.StatusBadRequest, "Invalid order data")
	}
	if c.Echo().Validator != nil {
		if err := c.Validate(&req); err != nil {
			return failure(c, http.StatusBadRequest, "Please fill in all required fields")
		}
	}

	order, err := oc.orders.PlaceOrder(c.Request().Context(), req)
	if err != nil {
		return respondError(c, oc.logger, err, "Failed to place order")
	}

	oc.logger.Info("order placed",
		zap.String("orderNumber", order.OrderNumber),
		zap.Float64("total", order.Total),
		zap.Int("items", len(order.Items)))
	return success(c, http.StatusCreated, "Order placed successfully", map[string]interface{}{
		"orderId":     order.ID.Hex(),
		"orderNumber": order.OrderNumber,
		"total":       order.Total,
		"trackingUrl": services.TrackingURL(oc.baseURL, order.OrderNumber),
	})
}

type trackData struct {
	Query    string
	NotFound bool
	Tracking *models.OrderTracking
}

// TrackPage renders the tracking form and, when a number is given, the
// order's progress.
func (oc *OrderController) TrackPage(c echo.Context) error {
	data := trackData{Query: c.QueryParam("orderNumber")}
	if data.Query != "" {
		order, err := oc.orders.Track(c.Request().Context(), data.Query)
		switch {
		case err == nil:
			tracking := order.Tracking()
			data.Tracking = &tracking
		case errors.Is(err, services.ErrOrderNotFound):
			data.NotFound = true
		default:
			return oc.pages.renderError(c, http.StatusInternalServerError, "Error tracking order", err)
		}
	}
	return oc.pages.render(c, http.StatusOK, "track", services.SeoDefaults{Title: "Track Order", Robots: "noindex, nofollow"}, data)
}

func (oc *OrderController) TrackOrder(c echo.Context) error {
	order, err := oc.orders.Track(c.Request().Context(), c.Param("orderNumber"))
	if err != nil {
		return respondError(c, oc.logger, err, "Failed to track order")
	}
	return success(c, http.StatusOK, "", order.Tracking())
}

// TrackingQRCode serves a PNG QR code pointing at the order's tracking page.
func (oc *OrderController) TrackingQRCode(c echo.Context) error {
	order, err := oc.orders.Track(c.Request().Context(), c.Param("orderNumber"))
	if err != nil {
		return respondError(c, oc.logger, err, "Failed to track order")
	}

	qrCode, err := qr.Encode(services.TrackingURL(oc.baseURL, order.OrderNumber), qr.M, qr.Auto)
	if err != nil {
		return serverError(c, oc.logger, err, "Failed to generate QR code")
	}
	qrCode, err = barcode.Scale(qrCode, qrSize, qrSize)
	if err != nil {
		return serverError(c, oc.logger, err, "Failed to generate QR code")
	}

	buffer := new(bytes.Buffer)
	if err := png.Encode(buffer, qrCode); err != nil {
		return serverError(c, oc.logger, err, "Failed to generate QR code")
	}
	c.Response().Header().Set("Cache-Control", "public, max-age=86400")
	return c.Blob(http.StatusOK, "image/png", buffer.Bytes())
}

// ListOrders is the admin order list: status filter, search and page.
func (oc *OrderController) ListOrders(c echo.Context) error {
	list, err := oc.orders.List(c.Request().Context(), c.QueryParam("status"), c.QueryParam("search"), pageParam(c))
	if err != nil {
		return respondError(c, oc.logger, err, "Failed to fetch orders")
	}
	return success(c, http.StatusOK, "", list)
}

func (oc *OrderController) GetOrder(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return failure(c, http.StatusBadRequest, "Invalid order ID")
	}
	order, err := oc.orders.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, oc.logger, err, "Failed to fetch order")
	}
	return success(c, http.StatusOK, "", map[string]interface{}{
		"order":    order,
		"statuses": models.AllOrderStatuses(),
	})
}

func (oc *OrderController) UpdateOrderStatus(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return failure(c, http.StatusBadRequest, "Invalid order ID")
	}

	var req models.UpdateOrderStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return failure(c, http.StatusBadRequest, "Status is required")
	}

	order, err := oc.orders.UpdateStatus(c.Request().Context(), id, req)
	if err != nil {
		return respondError(c, oc.logger, err, "Failed to update order status")
	}
	oc.logger.Info("order status updated",
		zap.String("orderNumber", order.OrderNumber),
		zap.String("status", string(order.Status)),
		zap.String("by", usernameOf(c)))
	return success(c, http.StatusOK, "Order status updated successfully", order)
}

func (oc *OrderController) DeleteOrder(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return failure(c, http.StatusBadRequest, "Invalid order ID")
	}
	if err := oc.orders.Delete(c.Request().Context(), id); err != nil {
		return respondError(c, oc.logger, err, "Failed to delete order")
	}
	return success(c, http.StatusOK, "Order deleted successfully", nil)
}

// OrderFeed upgrades an admin session to the live order websocket.
func (oc *OrderController) OrderFeed(c echo.Context) error {
	return websocket.HandleOrderFeed(oc.hub, usernameOf(c), c)
}

func usernameOf(c echo.Context) string {
	username, _ := c.Get(middleware.ContextUsername).(string)
	return username
}
