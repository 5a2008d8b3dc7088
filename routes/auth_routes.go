package routes

import (
	"github.com/HSouheill/storefront_backend/controllers"
	"github.com/HSouheill/storefront_backend/models"
	"github.com/labstack/echo/v4"
)

// RegisterAuthRoutes sets up the login and logout endpoints of both realms.
func RegisterAuthRoutes(e *echo.Echo, authController *controllers.AuthController) {
	e.GET("/admin/login", authController.LoginPage(models.RealmAdmin))
	e.POST("/admin/login", authController.Login(models.RealmAdmin))
	e.GET("/admin/logout", authController.Logout(models.RealmAdmin))
	e.POST("/admin/logout", authController.Logout(models.RealmAdmin))

	e.GET("/admin/seo-login", authController.LoginPage(models.RealmSeo))
	e.POST("/admin/seo-login", authController.Login(models.RealmSeo))
	e.GET("/admin/seo-logout", authController.Logout(models.RealmSeo))
	e.POST("/admin/seo-logout", authController.Logout(models.RealmSeo))
}
