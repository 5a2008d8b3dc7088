package controllers

import (
	"net/http"

	"github.com/HSouheill/storefront_backend/models"
	"github.com/HSouheill/storefront_backend/services"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type CategoryController struct {
	categories *services.CategoryService
	logger     *zap.Logger
}

func NewCategoryController(categories *services.CategoryService, logger *zap.Logger) *CategoryController {
	return &CategoryController{categories: categories, logger: logger}
}

// ListCategories returns every category in depth-first order with its
// indentation level.
func (cc *CategoryController) ListCategories(c echo.Context) error {
	flat, err := cc.categories.Flatten(c.Request().Context(), nil)
	if err != nil {
		return serverError(c, cc.logger, err, "Failed to fetch categories")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":    true,
		"categories": flat,
	})
}

// GetCategoryTree returns the nested hierarchy used by navigation menus.
func (cc *CategoryController) GetCategoryTree(c echo.Context) error {
	nodes, err := cc.categories.Nested(c.Request().Context(), nil)
	if err != nil {
		return serverError(c, cc.logger, err, "Failed to fetch categories")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":    true,
		"categories": nodes,
	})
}

// GetCategoryAttributes returns the attributes visible from a category, the
// ancestors' first. An unknown id yields an empty list.
func (cc *CategoryController) GetCategoryAttributes(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return failure(c, http.StatusBadRequest, "Invalid category ID")
	}

	attrs, err := cc.categories.InheritedAttributes(c.Request().Context(), id)
	if err != nil {
		return serverError(c, cc.logger, err, "Failed to fetch category attributes")
	}
	if attrs == nil {
		attrs = []models.ResolvedAttribute{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":    true,
		"attributes": attrs,
	})
}

// GetCategory returns one category with its breadcrumb and the attributes it
// inherits, for the admin edit form.
func (cc *CategoryController) GetCategory(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return failure(c, http.StatusBadRequest, "Invalid category ID")
	}
	ctx := c.Request().Context()

	category, err := cc.categories.Get(ctx, id)
	if err != nil {
		return respondError(c, cc.logger, err, "Failed to fetch category")
	}
	ancestors, err := cc.categories.Ancestors(ctx, id)
	if err != nil {
		return serverError(c, cc.logger, err, "Failed to fetch category")
	}
	attrs, err := cc.categories.InheritedAttributes(ctx, id)
	if err != nil {
		return serverError(c, cc.logger, err, "Failed to fetch category")
	}

	return success(c, http.StatusOK, "", map[string]interface{}{
		"category":   category,
		"ancestors":  ancestors,
		"attributes": attrs,
	})
}

func (cc *CategoryController) CreateCategory(c echo.Context) error {
	var req models.CategoryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return failure(c, http.StatusBadRequest, "Category name is required")
	}

	category, err := cc.categories.Create(c.Request().Context(), req)
	if err != nil {
		return respondError(c, cc.logger, err, "Failed to create category")
	}
	cc.logger.Info("category created", zap.String("id", category.ID.Hex()), zap.String("slug", category.Slug))
	return success(c, http.StatusCreated, "Category created successfully", category)
}

// UpdateCategory replaces the category's fields. The attribute list is
// replaced as a whole.
func (cc *CategoryController) UpdateCategory(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return failure(c, http.StatusBadRequest, "Invalid category ID")
	}

	var req models.CategoryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return failure(c, http.StatusBadRequest, "Category name is required")
	}

	category, err := cc.categories.Update(c.Request().Context(), id, req)
	if err != nil {
		return respondError(c, cc.logger, err, "Failed to update category")
	}
	return success(c, http.StatusOK, "Category updated successfully", category)
}

func (cc *CategoryController) DeleteCategory(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return failure(c, http.StatusBadRequest, "Invalid category ID")
	}

	if err := cc.categories.Delete(c.Request().Context(), id); err != nil {
		return respondError(c, cc.logger, err, "Failed to delete category")
	}
	cc.logger.Info("category deleted", zap.String("id", id.Hex()))
	return success(c, http.StatusOK, "Category deleted successfully", nil)
}
