package routes

import (
	"github.com/labstack/echo/v4"
)

// RegisterAPIRoutes sets up the public JSON endpoints used by the shop
// front end.
func RegisterAPIRoutes(e *echo.Echo, c Controllers) {
	api := e.Group("/api")
	api.GET("/products", c.Products.ListProducts)
	api.GET("/products/:id", c.Products.GetProduct)
	api.POST("/products/batch", c.Products.BatchProducts)
	api.GET("/orders/track/:orderNumber", c.Orders.TrackOrder)
	api.GET("/announcements", c.Announcements.ActiveAnnouncements)
	api.GET("/brands", c.Brands.ActiveBrands)
}

// RegisterShopRoutes sets up the rendered storefront pages.
func RegisterShopRoutes(e *echo.Echo, c Controllers) {
	e.GET("/", c.Shop.Home)
	e.GET("/shop", c.Shop.Shop)
	e.GET("/search", c.Shop.Search)
	e.GET("/cart", c.Shop.Cart)
	e.GET("/checkout", c.Shop.Checkout)
	e.GET("/offers/:type", c.Shop.Offers)
	e.GET("/product/:slug", c.Shop.Product)

	e.GET("/category/:slug", c.Shop.Category)
	e.GET("/category/:parent/:slug", c.Shop.Category)
	e.GET("/category/:grandparent/:parent/:slug", c.Shop.Category)

	e.POST("/checkout/place-order", c.Orders.PlaceOrder)
	e.GET("/track", c.Orders.TrackPage)
	e.GET("/track/:orderNumber/qr.png", c.Orders.TrackingQRCode)
	e.POST("/newsletter/subscribe", c.Newsletters.Subscribe)

	// SEO friendly product paths: /<category slugs>/<product slug>
	e.GET("/:cat1/:productSlug", c.Shop.ProductByPath)
	e.GET("/:cat1/:cat2/:productSlug", c.Shop.ProductByPath)
	e.GET("/:cat1/:cat2/:cat3/:productSlug", c.Shop.ProductByPath)
}
