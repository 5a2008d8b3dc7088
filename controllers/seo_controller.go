package controllers

import (
	"net/http"

	"github.com/HSouheill/storefront_backend/models"
	"github.com/HSouheill/storefront_backend/services"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type SeoController struct {
	seo    *services.SeoService
	logger *zap.Logger
}

func NewSeoController(seo *services.SeoService, logger *zap.Logger) *SeoController {
	return &SeoController{seo: seo, logger: logger}
}

// Dashboard lists every page, seeding the default pages first.
func (sc *SeoController) Dashboard(c echo.Context) error {
	ctx := c.Request().Context()
	if err := sc.seo.EnsureDefaultPages(ctx); err != nil {
		return serverError(c, sc.logger, err, "Failed to load pages")
	}
	pages, err := sc.seo.ListPages(ctx)
	if err != nil {
		return serverError(c, sc.logger, err, "Failed to load pages")
	}
	return success(c, http.StatusOK, "", map[string]interface{}{
		"pages":        pages,
		"defaultPages": services.DefaultPages,
	})
}

// GetPageSeo returns the stored SEO fields of a page or its defaults.
func (sc *SeoController) GetPageSeo(c echo.Context) error {
	page, err := sc.seo.GetPageSeo(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return serverError(c, sc.logger, err, "Failed to load page")
	}
	return success(c, http.StatusOK, "", page)
}

func (sc *SeoController) CreatePage(c echo.Context) error {
	var req models.CreatePageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return failure(c, http.StatusBadRequest, "Page slug and name are required")
	}

	page, err := sc.seo.CreatePage(c.Request().Context(), req)
	if err != nil {
		return respondError(c, sc.logger, err, "Failed to create page")
	}
	return success(c, http.StatusCreated, "Page created successfully", page)
}

func (sc *SeoController) UpdatePage(c echo.Context) error {
	var req models.PageSeoRequest
	if err := bindAndValidate(c, &req); err != nil {
		return failure(c, http.StatusBadRequest, "Invalid SEO data: "+err.Error())
	}

	slug := c.Param("slug")
	page, err := sc.seo.UpdatePage(c.Request().Context(), slug, req)
	if err != nil {
		return respondError(c, sc.logger, err, "Failed to update page")
	}
	sc.logger.Info("page seo updated", zap.String("slug", slug), zap.String("by", usernameOf(c)))
	return success(c, http.StatusOK, "SEO settings updated successfully", page)
}

func (sc *SeoController) DeletePage(c echo.Context) error {
	if err := sc.seo.DeletePage(c.Request().Context(), c.Param("slug")); err != nil {
		return respondError(c, sc.logger, err, "Failed to delete page")
	}
	return success(c, http.StatusOK, "Page deleted successfully", nil)
}
