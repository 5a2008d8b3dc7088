package routes

import (
	"github.com/HSouheill/storefront_backend/controllers"
	"github.com/labstack/echo/v4"
)

// RegisterSeoRoutes sets up the SEO panel, which only the seo realm may use.
func RegisterSeoRoutes(e *echo.Echo, seoController *controllers.SeoController, requireSeo echo.MiddlewareFunc) {
	seo := e.Group("/admin/seo-panel", requireSeo)
	seo.GET("", seoController.Dashboard)
	seo.GET("/api/:slug", seoController.GetPageSeo)
	seo.POST("/pages", seoController.CreatePage)
	seo.POST("/edit/:slug", seoController.UpdatePage)
	seo.PUT("/pages/:slug", seoController.UpdatePage)
	seo.DELETE("/pages/:slug", seoController.DeletePage)
}
