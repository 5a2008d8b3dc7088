package routes

import (
	"net/http"

	"github.com/HSouheill/storefront_backend/controllers"
	"github.com/HSouheill/storefront_backend/middleware"
	"github.com/HSouheill/storefront_backend/models"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Controllers bundles every handler set the router mounts.
type Controllers struct {
	Auth          *controllers.AuthController
	Categories    *controllers.CategoryController
	Products      *controllers.ProductController
	Shop          *controllers.ShopController
	Orders        *controllers.OrderController
	Seo           *controllers.SeoController
	Announcements *controllers.AnnouncementController
	Newsletters   *controllers.NewsletterController
	Brands        *controllers.BrandController
	Homepage      *controllers.HomepageController
}

// SetupRoutes registers every route group. Admin and SEO groups are guarded
// by their own session realm.
func SetupRoutes(e *echo.Echo, c Controllers, auth middleware.SessionAuthenticator, uploadDir string, logger *zap.Logger) {
	e.Match([]string{http.MethodGet, http.MethodHead}, "/health", func(ctx echo.Context) error {
		return ctx.JSON(http.StatusOK, map[string]string{"status": "healthy"})
	})

	requireAdmin := middleware.RequireSession(auth, models.RealmAdmin, logger)
	requireSeo := middleware.RequireSession(auth, models.RealmSeo, logger)

	RegisterFileRoutes(e, uploadDir)
	RegisterAuthRoutes(e, c.Auth)
	RegisterCategoryRoutes(e, c.Categories, requireAdmin)
	RegisterAPIRoutes(e, c)
	RegisterAdminRoutes(e, c, requireAdmin)
	RegisterSeoRoutes(e, c.Seo, requireSeo)

	// the catch-all product paths go last so static prefixes keep priority
	RegisterShopRoutes(e, c)
}
