package controllers

import (
	"fmt"
	"net/http"

	"github.com/HSouheill/storefront_backend/models"
	"github.com/HSouheill/storefront_backend/services"
	"github.com/HSouheill/storefront_backend/utils"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const brandImageDir = "brands"

type BrandController struct {
	brands *services.BrandService
	images *utils.ImageStore
	logger *zap.Logger
}

func NewBrandController(brands *services.BrandService, images *utils.ImageStore, logger *zap.Logger) *BrandController {
	return &BrandController{brands: brands, images: images, logger: logger}
}

// ListBrands returns every brand with its product count.
func (bc *BrandController) ListBrands(c echo.Context) error {
	brands, err := bc.brands.List(c.Request().Context(), true)
	if err != nil {
		return serverError(c, bc.logger, err, "Failed to fetch brands")
	}
	return success(c, http.StatusOK, "", brands)
}

// ActiveBrands is the public brand strip.
func (bc *BrandController) ActiveBrands(c echo.Context) error {
	brands, err := bc.brands.Active(c.Request().Context())
	if err != nil {
		return serverError(c, bc.logger, err, "Failed to fetch brands")
	}
	return success(c, http.StatusOK, "", brands)
}

func (bc *BrandController) GetBrand(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return failure(c, http.StatusBadRequest, "Invalid brand ID")
	}
	brand, err := bc.brands.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, bc.logger, err, "Failed to fetch brand")
	}
	return success(c, http.StatusOK, "", brand)
}

// bindBrand reads the brand fields and stores any uploaded backgroundImage
// or logo file, replacing the submitted URLs.
func (bc *BrandController) bindBrand(c echo.Context) (models.BrandRequest, error) {
	var req models.BrandRequest
	if err := bindAndValidate(c, &req); err != nil {
		return req, fmt.Errorf("%w: name is required", services.ErrInvalidBrand)
	}

	for field, target := range map[string]*string{
		"backgroundImage": &req.BackgroundImage,
		"logo":            &req.Logo,
	} {
		fh, err := c.FormFile(field)
		if err != nil {
			continue
		}
		saved, err := bc.images.SaveMultipart(fh, brandImageDir)
		if err != nil {
			return req, err
		}
		*target = saved.URL
	}
	return req, nil
}

func (bc *BrandController) CreateBrand(c echo.Context) error {
	req, err := bc.bindBrand(c)
	if err != nil {
		return respondError(c, bc.logger, err, "Failed to save brand image")
	}

	brand, err := bc.brands.Create(c.Request().Context(), req)
	if err != nil {
		return respondError(c, bc.logger, err, "Failed to create brand")
	}
	return success(c, http.StatusCreated, "Brand created successfully", brand)
}

func (bc *BrandController) UpdateBrand(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return failure(c, http.StatusBadRequest, "Invalid brand ID")
	}
	req, err := bc.bindBrand(c)
	if err != nil {
		return respondError(c, bc.logger, err, "Failed to save brand image")
	}

	brand, err := bc.brands.Update(c.Request().Context(), id, req)
	if err != nil {
		return respondError(c, bc.logger, err, "Failed to update brand")
	}
	return success(c, http.StatusOK, "Brand updated successfully", brand)
}

// DeleteBrand removes the brand and detaches it from its products.
func (bc *BrandController) DeleteBrand(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return failure(c, http.StatusBadRequest, "Invalid brand ID")
	}
	ctx := c.Request().Context()

	brand, err := bc.brands.Get(ctx, id)
	if err != nil {
		return respondError(c, bc.logger, err, "Failed to delete brand")
	}
	detached, err := bc.brands.Delete(ctx, id)
	if err != nil {
		return respondError(c, bc.logger, err, "Failed to delete brand")
	}

	for _, url := range []string{brand.BackgroundImage, brand.Logo} {
		if url == "" {
			continue
		}
		if err := bc.images.Remove(url); err != nil {
			bc.logger.Warn("failed to remove brand image", zap.String("url", url), zap.Error(err))
		}
	}
	return success(c, http.StatusOK, "Brand deleted successfully", map[string]int64{"productsUpdated": detached})
}
