package router

import (
	"github.com/labstack/echo/v4"

	"persianconnect/internal/adapter/api/handler"
	"persianconnect/internal/adapter/api/middleware"
)

// SetupAdminRouter initializes admin routes, all gated on the admin role
func SetupAdminRouter(e *echo.Echo, adminHandler *handler.AdminHandler, authMiddleware *middleware.AuthMiddleware, adminMiddleware *middleware.AdminMiddleware) {
	admin := e.Group("/admin")
	admin.Use(authMiddleware.Authenticate)
	admin.Use(adminMiddleware.AdminOnly)

	admin.GET("/stats", adminHandler.GetStats)

	admin.GET("/users", adminHandler.ListUsers)
	admin.PUT("/users/:id/status", adminHandler.SetUserStatus)
	admin.PUT("/users/:id/role", adminHandler.SetUserRole)

	admin.GET("/ads", adminHandler.ListListings)
	admin.PUT("/ads/:id/status", adminHandler.ModerateListing)
	admin.DELETE("/ads/:id", adminHandler.DeleteListing)
}
