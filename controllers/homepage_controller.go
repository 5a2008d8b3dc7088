package controllers

import (
	"net/http"
	"strings"

	"github.com/HSouheill/storefront_backend/models"
	"github.com/HSouheill/storefront_backend/services"
	"github.com/HSouheill/storefront_backend/utils"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const carouselImageDir = "carousel"

// HomepageController manages which products the home page sections show.
type HomepageController struct {
	products *services.ProductService
	images   *utils.ImageStore
	logger   *zap.Logger
}

func NewHomepageController(products *services.ProductService, images *utils.ImageStore, logger *zap.Logger) *HomepageController {
	return &HomepageController{products: products, images: images, logger: logger}
}

// Sections lists the current members of every section, inactive products
// included, plus the active products that can be added.
func (hc *HomepageController) Sections(c echo.Context) error {
	ctx := c.Request().Context()
	sections := map[string]models.ProductFilter{
		"carousel":               {WithCarousel: true},
		models.SectionNewOffers:  {Flag: "isNewOffer"},
		models.SectionBestOffers: {Flag: "isBestOffer"},
		models.SectionFeatured:   {Flag: "isFeatured"},
		"allProducts":            {ActiveOnly: true},
	}

	data := make(map[string][]models.Product, len(sections))
	for name, filter := range sections {
		products, err := hc.products.List(ctx, filter)
		if err != nil {
			return serverError(c, hc.logger, err, "Error loading homepage sections")
		}
		data[name] = products
	}
	return success(c, http.StatusOK, "", data)
}

// AddToCarousel sets a product's carousel image from a URL or an upload.
func (hc *HomepageController) AddToCarousel(c echo.Context) error {
	var req models.CarouselRequest
	if err := bindAndValidate(c, &req); err != nil {
		return failure(c, http.StatusBadRequest, "Product is required")
	}
	id, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		return failure(c, http.StatusBadRequest, "Invalid product ID")
	}

	image := strings.TrimSpace(req.CarouselImage)
	if fh, err := c.FormFile("carouselImage"); err == nil {
		saved, err := hc.images.SaveMultipart(fh, carouselImageDir)
		if err != nil {
			return respondError(c, hc.logger, err, "Failed to save carousel image")
		}
		image = saved.URL
	}
	if image == "" {
		return failure(c, http.StatusBadRequest, "Carousel image is required")
	}

	if err := hc.products.SetCarouselImage(c.Request().Context(), id, image); err != nil {
		return respondError(c, hc.logger, err, "Failed to update carousel")
	}
	return success(c, http.StatusOK, "Product added to carousel", nil)
}

func (hc *HomepageController) RemoveFromCarousel(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return failure(c, http.StatusBadRequest, "Invalid product ID")
	}
	if err := hc.products.SetCarouselImage(c.Request().Context(), id, ""); err != nil {
		return respondError(c, hc.logger, err, "Failed to update carousel")
	}
	return success(c, http.StatusOK, "Product removed from carousel", nil)
}

// ToggleSection adds a product to a section, or removes it when action is
// "remove".
func (hc *HomepageController) ToggleSection(c echo.Context) error {
	var req models.SectionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return failure(c, http.StatusBadRequest, "Section is required")
	}
	id, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		return failure(c, http.StatusBadRequest, "Invalid product ID")
	}

	if err := hc.products.SetSection(c.Request().Context(), id, req.Section, req.Action != "remove"); err != nil {
		return respondError(c, hc.logger, err, "Failed to update section")
	}
	return success(c, http.StatusOK, "Section updated", nil)
}

func (hc *HomepageController) RemoveFromSection(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return failure(c, http.StatusBadRequest, "Invalid product ID")
	}
	var req models.SectionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return failure(c, http.StatusBadRequest, "Section is required")
	}

	if err := hc.products.SetSection(c.Request().Context(), id, req.Section, false); err != nil {
		return respondError(c, hc.logger, err, "Failed to update section")
	}
	return success(c, http.StatusOK, "Product removed from section", nil)
}
