package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/HSouheill/storefront_backend/models"
	"github.com/HSouheill/storefront_backend/repositories"
	"github.com/HSouheill/storefront_backend/services"
	"github.com/HSouheill/storefront_backend/utils"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var errInvalidID = errors.New("invalid id")

// parseID reads a hex object id from the named path parameter.
func parseID(c echo.Context, name string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		return primitive.NilObjectID, errInvalidID
	}
	return id, nil
}

func pageParam(c echo.Context) int {
	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func success(c echo.Context, code int, message string, data interface{}) error {
	return c.JSON(code, models.Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func failure(c echo.Context, code int, message string) error {
	return c.JSON(code, models.Response{
		Success: false,
		Message: message,
	})
}

// bindAndValidate binds the request body into req and runs the validator
// registered on the echo instance, if any.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return err
	}
	if c.Echo().Validator == nil {
		return nil
	}
	return c.Validate(req)
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errInvalidID),
		errors.Is(err, services.ErrInvalidCategory),
		errors.Is(err, services.ErrParentNotFound),
		errors.Is(err, services.ErrCycleDetected),
		errors.Is(err, services.ErrHasChildren),
		errors.Is(err, services.ErrInvalidProduct),
		errors.Is(err, services.ErrUnknownSection),
		errors.Is(err, services.ErrEmptyCart),
		errors.Is(err, services.ErrProductUnavailable),
		errors.Is(err, services.ErrInsufficientStock),
		errors.Is(err, services.ErrInvalidOrderRequest),
		errors.Is(err, services.ErrInvalidAnnouncement),
		errors.Is(err, services.ErrAnnouncementLimit),
		errors.Is(err, services.ErrInvalidEmail),
		errors.Is(err, services.ErrInvalidBrand),
		errors.Is(err, services.ErrInvalidSeoData),
		errors.Is(err, services.ErrDefaultPage),
		errors.Is(err, models.ErrUnknownFieldType),
		errors.Is(err, models.ErrInvalidMetadata),
		errors.Is(err, models.ErrUnknownOrderStatus),
		errors.Is(err, models.ErrInvalidRobots),
		errors.Is(err, utils.ErrUnsupportedImage):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrCategoryNotFound),
		errors.Is(err, services.ErrProductNotFound),
		errors.Is(err, services.ErrUnknownOffer),
		errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, services.ErrPageNotFound),
		errors.Is(err, services.ErrAnnouncementNotFound),
		errors.Is(err, services.ErrSubscriberNotFound),
		errors.Is(err, services.ErrBrandNotFound),
		errors.Is(err, repositories.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrPageExists),
		errors.Is(err, repositories.ErrDuplicateSlug),
		errors.Is(err, repositories.ErrDuplicateKey):
		return http.StatusConflict
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrInvalidSession):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrTooManyAttempts):
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

// respondError answers err with its mapped status. Server errors are logged
// and hidden behind fallback.
func respondError(c echo.Context, logger *zap.Logger, err error, fallback string) error {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		return serverError(c, logger, err, fallback)
	}
	if errors.Is(err, services.ErrHasChildren) {
		return failure(c, code, "Cannot delete category with subcategories")
	}
	return failure(c, code, err.Error())
}

// serverError logs err and answers 500 with message.
func serverError(c echo.Context, logger *zap.Logger, err error, message string) error {
	logger.Error(message,
		zap.String("method", c.Request().Method),
		zap.String("path", c.Path()),
		zap.Error(err))
	return failure(c, http.StatusInternalServerError, message)
}
