package routes

import (
	"github.com/HSouheill/storefront_backend/controllers"
	"github.com/labstack/echo/v4"
)

// RegisterCategoryRoutes sets up the public category API and the admin CRUD.
func RegisterCategoryRoutes(e *echo.Echo, categoryController *controllers.CategoryController, requireAdmin echo.MiddlewareFunc) {
	categories := e.Group("/api/categories")
	categories.GET("", categoryController.ListCategories)
	categories.GET("/tree", categoryController.GetCategoryTree)
	categories.GET("/:id/attributes", categoryController.GetCategoryAttributes)

	adminCategories := e.Group("/admin/categories", requireAdmin)
	adminCategories.GET("", categoryController.ListCategories)
	adminCategories.GET("/:id", categoryController.GetCategory)
	adminCategories.POST("", categoryController.CreateCategory)
	adminCategories.PUT("/:id", categoryController.UpdateCategory)
	adminCategories.DELETE("/:id", categoryController.DeleteCategory)
}
