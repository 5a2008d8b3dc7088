package controllers

import (
	"net/http"

	"github.com/HSouheill/storefront_backend/models"
	"github.com/HSouheill/storefront_backend/services"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type AnnouncementController struct {
	announcements *services.AnnouncementService
	logger        *zap.Logger
}

func NewAnnouncementController(announcements *services.AnnouncementService, logger *zap.Logger) *AnnouncementController {
	return &AnnouncementController{announcements: announcements, logger: logger}
}

func (ac *AnnouncementController) ListAnnouncements(c echo.Context) error {
	list, err := ac.announcements.List(c.Request().Context())
	if err != nil {
		return serverError(c, ac.logger, err, "Failed to fetch announcements")
	}
	return success(c, http.StatusOK, "", map[string]interface{}{
		"announcements": list,
		"canAddMore":    len(list) < models.MaxAnnouncements,
	})
}

// ActiveAnnouncements feeds the storefront banner.
func (ac *AnnouncementController) ActiveAnnouncements(c echo.Context) error {
	list, err := ac.announcements.Active(c.Request().Context())
	if err != nil {
		return serverError(c, ac.logger, err, "Failed to fetch announcements")
	}
	return success(c, http.StatusOK, "", list)
}

func (ac *AnnouncementController) CreateAnnouncement(c echo.Context) error {
	var req models.AnnouncementRequest
	if err := c.Bind(&req); err != nil {
		return failure(c, http.StatusBadRequest, "Invalid request body")
	}

	a, err := ac.announcements.Create(c.Request().Context(), req)
	if err != nil {
		return respondError(c, ac.logger, err, "Failed to create announcement")
	}
	return success(c, http.StatusCreated, "Announcement created successfully", a)
}

func (ac *AnnouncementController) UpdateAnnouncement(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return failure(c, http.StatusBadRequest, "Invalid announcement ID")
	}
	var req models.AnnouncementRequest
	if err := c.Bind(&req); err != nil {
		return failure(c, http.StatusBadRequest, "Invalid request body")
	}

	a, err := ac.announcements.Update(c.Request().Context(), id, req)
	if err != nil {
		return respondError(c, ac.logger, err, "Failed to update announcement")
	}
	return success(c, http.StatusOK, "Announcement updated successfully", a)
}

func (ac *AnnouncementController) DeleteAnnouncement(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return failure(c, http.StatusBadRequest, "Invalid announcement ID")
	}
	if err := ac.announcements.Delete(c.Request().Context(), id); err != nil {
		return respondError(c, ac.logger, err, "Failed to delete announcement")
	}
	return success(c, http.StatusOK, "Announcement deleted successfully", nil)
}
