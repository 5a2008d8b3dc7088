package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/HSouheill/storefront_backend/models"
	"github.com/HSouheill/storefront_backend/services"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type NewsletterController struct {
	newsletters *services.NewsletterService
	logger      *zap.Logger
	now         func() time.Time
}

func NewNewsletterController(newsletters *services.NewsletterService, logger *zap.Logger) *NewsletterController {
	return &NewsletterController{newsletters: newsletters, logger: logger, now: time.Now}
}

// Subscribe is the public signup form.
func (nc *NewsletterController) Subscribe(c echo.Context) error {
	return nc.subscribe(c, models.SourceWebsite, "Thank you for subscribing!")
}

// AddSubscriber lets an admin add an address by hand.
func (nc *NewsletterController) AddSubscriber(c echo.Context) error {
	return nc.subscribe(c, models.SourceAdmin, "Subscriber added successfully")
}

func (nc *NewsletterController) subscribe(c echo.Context, source, message string) error {
	var req models.SubscribeRequest
	if err := c.Bind(&req); err != nil {
		return failure(c, http.StatusBadRequest, "Invalid request body")
	}

	n, err := nc.newsletters.Subscribe(c.Request().Context(), req.Email, source)
	if err != nil {
		return respondError(c, nc.logger, err, "Failed to subscribe")
	}
	return success(c, http.StatusOK, message, n)
}

func (nc *NewsletterController) ListSubscribers(c echo.Context) error {
	status := c.QueryParam("status")
	search := c.QueryParam("search")

	subscribers, pagination, stats, err := nc.newsletters.List(c.Request().Context(), status, search, pageParam(c))
	if err != nil {
		return serverError(c, nc.logger, err, "Failed to fetch subscribers")
	}
	return success(c, http.StatusOK, "", map[string]interface{}{
		"subscribers": subscribers,
		"pagination":  pagination,
		"stats":       stats,
		"filters":     map[string]string{"status": status, "search": search},
	})
}

func (nc *NewsletterController) ToggleSubscriber(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return failure(c, http.StatusBadRequest, "Invalid subscriber ID")
	}
	n, err := nc.newsletters.Toggle(c.Request().Context(), id)
	if err != nil {
		return respondError(c, nc.logger, err, "Failed to update subscriber")
	}
	return success(c, http.StatusOK, "Subscriber updated successfully", n)
}

func (nc *NewsletterController) DeleteSubscriber(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return failure(c, http.StatusBadRequest, "Invalid subscriber ID")
	}
	if err := nc.newsletters.Delete(c.Request().Context(), id); err != nil {
		return respondError(c, nc.logger, err, "Failed to delete subscriber")
	}
	return success(c, http.StatusOK, "Subscriber deleted successfully", nil)
}

// ExportSubscribers answers the subscribers matching ?status= as a CSV
// download.
func (nc *NewsletterController) ExportSubscribers(c echo.Context) error {
	var buf bytes.Buffer
	if err := nc.newsletters.ExportCSV(c.Request().Context(), &buf, c.QueryParam("status")); err != nil {
		return serverError(c, nc.logger, err, "Failed to export subscribers")
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=newsletter-subscribers-%s.csv", nc.now().Format("2006-01-02")))
	return c.Blob(http.StatusOK, "text/csv", buf.Bytes())
}
