package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RegisterAdminRoutes sets up the back-office API. Every route requires an
// admin session.
func RegisterAdminRoutes(e *echo.Echo, c Controllers, requireAdmin echo.MiddlewareFunc) {
	admin := e.Group("/admin", requireAdmin)
	admin.GET("", func(ctx echo.Context) error {
		return ctx.Redirect(http.StatusFound, "/admin/orders")
	})

	products := admin.Group("/products")
	products.GET("", c.Products.AdminListProducts)
	products.GET("/:id", c.Products.AdminGetProduct)
	products.POST("", c.Products.CreateProduct)
	products.PUT("/:id", c.Products.UpdateProduct)
	products.DELETE("/:id", c.Products.DeleteProduct)
	products.POST("/:id/images", c.Products.UploadImages)

	orders := admin.Group("/orders")
	orders.GET("", c.Orders.ListOrders)
	orders.GET("/:id", c.Orders.GetOrder)
	orders.PUT("/:id/status", c.Orders.UpdateOrderStatus)
	orders.DELETE("/:id", c.Orders.DeleteOrder)

	brands := admin.Group("/brands")
	brands.GET("", c.Brands.ListBrands)
	brands.GET("/:id", c.Brands.GetBrand)
	brands.POST("", c.Brands.CreateBrand)
	brands.PUT("/:id", c.Brands.UpdateBrand)
	brands.DELETE("/:id", c.Brands.DeleteBrand)

	announcements := admin.Group("/announcements")
	announcements.GET("", c.Announcements.ListAnnouncements)
	announcements.POST("", c.Announcements.CreateAnnouncement)
	announcements.PUT("/:id", c.Announcements.UpdateAnnouncement)
	announcements.DELETE("/:id", c.Announcements.DeleteAnnouncement)

	newsletters := admin.Group("/newsletters")
	newsletters.GET("", c.Newsletters.ListSubscribers)
	newsletters.POST("", c.Newsletters.AddSubscriber)
	newsletters.GET("/export", c.Newsletters.ExportSubscribers)
	newsletters.POST("/:id/toggle", c.Newsletters.ToggleSubscriber)
	newsletters.DELETE("/:id", c.Newsletters.DeleteSubscriber)

	homepage := admin.Group("/homepage")
	homepage.GET("", c.Homepage.Sections)
	homepage.POST("/carousel/add", c.Homepage.AddToCarousel)
	homepage.POST("/carousel/:id/remove", c.Homepage.RemoveFromCarousel)
	homepage.POST("/section/toggle", c.Homepage.ToggleSection)
	homepage.POST("/section/:id/remove", c.Homepage.RemoveFromSection)

	// live feed of new orders and status changes
	e.GET("/ws/orders", c.Orders.OrderFeed, requireAdmin)
}
