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

const productImageDir = "products"

type ProductController struct {
	products   *services.ProductService
	categories *services.CategoryService
	images     *utils.ImageStore
	logger     *zap.Logger
}

func NewProductController(products *services.ProductService, categories *services.CategoryService, images *utils.ImageStore, logger *zap.Logger) *ProductController {
	return &ProductController{
		products:   products,
		categories: categories,
		images:     images,
		logger:     logger,
	}
}

// ListProducts returns active products, optionally limited to a category
// (by id or slug) and everything below it.
func (pc *ProductController) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()

	var (
		products []models.Product
		err      error
	)
	if category := strings.TrimSpace(c.QueryParam("category")); category != "" {
		id, parseErr := primitive.ObjectIDFromHex(category)
		if parseErr != nil {
			found, findErr := pc.categories.GetBySlug(ctx, category)
			if findErr != nil {
				return respondError(c, pc.logger, findErr, "Failed to fetch products")
			}
			id = found.ID
		}
		products, err = pc.products.InCategoryTree(ctx, id, services.ShopListLimit)
	} else {
		products, err = pc.products.List(ctx, models.ProductFilter{ActiveOnly: true, Limit: services.ShopListLimit})
	}
	if err != nil {
		return serverError(c, pc.logger, err, "Failed to fetch products")
	}

	views, err := pc.products.Views(ctx, products)
	if err != nil {
		return serverError(c, pc.logger, err, "Failed to fetch products")
	}
	return success(c, http.StatusOK, "", views)
}

// GetProduct returns an active product with its category and the attributes
// its metadata is typed against.
func (pc *ProductController) GetProduct(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return failure(c, http.StatusBadRequest, "Invalid product ID")
	}
	ctx := c.Request().Context()

	product, err := pc.products.Get(ctx, id)
	if err != nil {
		return respondError(c, pc.logger, err, "Failed to fetch product")
	}
	if !product.IsActive {
		return failure(c, http.StatusNotFound, services.ErrProductNotFound.Error())
	}
	return pc.productDetail(c, product)
}

func (pc *ProductController) productDetail(c echo.Context, product *models.Product) error {
	ctx := c.Request().Context()
	view, err := pc.products.View(ctx, product)
	if err != nil {
		return serverError(c, pc.logger, err, "Failed to fetch product")
	}
	attrs, err := pc.categories.InheritedAttributes(ctx, product.Category)
	if err != nil {
		return serverError(c, pc.logger, err, "Failed to fetch product")
	}
	return success(c, http.StatusOK, "", map[string]interface{}{
		"product":    view,
		"attributes": attrs,
	})
}

// BatchProducts returns the active products of a cart. Unknown or malformed
// ids are skipped.
func (pc *ProductController) BatchProducts(c echo.Context) error {
	var req models.BatchRequest
	if err := c.Bind(&req); err != nil {
		return failure(c, http.StatusBadRequest, "Invalid request body")
	}

	products, err := pc.products.Batch(c.Request().Context(), req.IDs)
	if err != nil {
		return serverError(c, pc.logger, err, "Failed to fetch products")
	}
	return success(c, http.StatusOK, "", products)
}

// AdminListProducts lists every product, inactive ones included.
func (pc *ProductController) AdminListProducts(c echo.Context) error {
	ctx := c.Request().Context()
	filter := models.ProductFilter{Search: c.QueryParam("search")}
	if category := c.QueryParam("category"); category != "" {
		id, err := primitive.ObjectIDFromHex(category)
		if err != nil {
			return failure(c, http.StatusBadRequest, "Invalid category ID")
		}
		filter.CategoryIDs = []primitive.ObjectID{id}
	}

	products, err := pc.products.List(ctx, filter)
	if err != nil {
		return serverError(c, pc.logger, err, "Failed to fetch products")
	}
	views, err := pc.products.Views(ctx, products)
	if err != nil {
		return serverError(c, pc.logger, err, "Failed to fetch products")
	}
	return success(c, http.StatusOK, "", views)
}

func (pc *ProductController) AdminGetProduct(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return failure(c, http.StatusBadRequest, "Invalid product ID")
	}
	product, err := pc.products.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, pc.logger, err, "Failed to fetch product")
	}
	return pc.productDetail(c, product)
}

// bindProduct reads a JSON body or a multipart form. Form metadata arrives
// as metadata[key] fields.
func bindProduct(c echo.Context) (models.ProductRequest, error) {
	var req models.ProductRequest
	if err := bindAndValidate(c, &req); err != nil {
		return req, err
	}
	if req.Metadata != nil {
		return req, nil
	}

	params, err := c.FormParams()
	if err != nil {
		return req, nil
	}
	for key, values := range params {
		if !strings.HasPrefix(key, "metadata[") || !strings.HasSuffix(key, "]") || len(values) == 0 {
			continue
		}
		if req.Metadata == nil {
			req.Metadata = map[string]string{}
		}
		req.Metadata[strings.TrimSuffix(strings.TrimPrefix(key, "metadata["), "]")] = values[0]
	}
	return req, nil
}

// CreateProduct saves a product and any images uploaded with it.
func (pc *ProductController) CreateProduct(c echo.Context) error {
	req, err := bindProduct(c)
	if err != nil {
		return failure(c, http.StatusBadRequest, "Name, price and category are required")
	}
	ctx := c.Request().Context()

	product, err := pc.products.Create(ctx, req)
	if err != nil {
		return respondError(c, pc.logger, err, "Failed to create product")
	}

	saved, err := pc.saveUploads(c)
	if err != nil {
		return respondError(c, pc.logger, err, "Failed to save product images")
	}
	if len(saved) > 0 {
		images, thumbs := splitSaved(saved)
		if err := pc.products.AddImages(ctx, product.ID, images, thumbs); err != nil {
			return serverError(c, pc.logger, err, "Failed to save product images")
		}
		product.Images = append(product.Images, images...)
		product.Thumbnails = append(product.Thumbnails, thumbs...)
	}

	pc.logger.Info("product created", zap.String("id", product.ID.Hex()), zap.String("slug", product.Slug))
	return success(c, http.StatusCreated, "Product created successfully", product)
}

func (pc *ProductController) UpdateProduct(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return failure(c, http.StatusBadRequest, "Invalid product ID")
	}
	req, err := bindProduct(c)
	if err != nil {
		return failure(c, http.StatusBadRequest, "Name, price and category are required")
	}

	product, err := pc.products.Update(c.Request().Context(), id, req)
	if err != nil {
		return respondError(c, pc.logger, err, "Failed to update product")
	}
	return success(c, http.StatusOK, "Product updated successfully", product)
}

// DeleteProduct removes the product and then its image files.
func (pc *ProductController) DeleteProduct(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return failure(c, http.StatusBadRequest, "Invalid product ID")
	}
	ctx := c.Request().Context()

	product, err := pc.products.Get(ctx, id)
	if err != nil {
		return respondError(c, pc.logger, err, "Failed to delete product")
	}
	if err := pc.products.Delete(ctx, id); err != nil {
		return respondError(c, pc.logger, err, "Failed to delete product")
	}

	for _, url := range append(product.Images, product.Thumbnails...) {
		if err := pc.images.Remove(url); err != nil {
			pc.logger.Warn("failed to remove product image", zap.String("url", url), zap.Error(err))
		}
	}
	return success(c, http.StatusOK, "Product deleted successfully", nil)
}

// UploadImages appends the multipart "images" files to a product.
func (pc *ProductController) UploadImages(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return failure(c, http.StatusBadRequest, "Invalid product ID")
	}

	saved, err := pc.saveUploads(c)
	if err != nil {
		return respondError(c, pc.logger, err, "Failed to save product images")
	}
	if len(saved) == 0 {
		return failure(c, http.StatusBadRequest, "No images uploaded")
	}

	images, thumbs := splitSaved(saved)
	if err := pc.products.AddImages(c.Request().Context(), id, images, thumbs); err != nil {
		return respondError(c, pc.logger, err, "Failed to save product images")
	}
	return success(c, http.StatusOK, "Images uploaded successfully", map[string]interface{}{
		"images":     images,
		"thumbnails": thumbs,
	})
}

func (pc *ProductController) saveUploads(c echo.Context) ([]utils.SavedImage, error) {
	form, err := c.MultipartForm()
	if err != nil {
		// not a multipart request
		return nil, nil
	}

	var saved []utils.SavedImage
	for _, fh := range form.File["images"] {
		img, err := pc.images.SaveMultipart(fh, productImageDir)
		if err != nil {
			return saved, err
		}
		saved = append(saved, img)
	}
	return saved, nil
}

func splitSaved(saved []utils.SavedImage) ([]string, []string) {
	images := make([]string, 0, len(saved))
	thumbs := make([]string, 0, len(saved))
	for _, s := range saved {
		images = append(images, s.URL)
		thumbs = append(thumbs, s.ThumbnailURL)
	}
	return images, thumbs
}
