package routes

import (
	"github.com/labstack/echo/v4"
)

// RegisterFileRoutes serves uploaded images. Upload URLs are /uploads/...
// relative to uploadDir.
func RegisterFileRoutes(e *echo.Echo, uploadDir string) {
	e.Static("/uploads", uploadDir)
}
