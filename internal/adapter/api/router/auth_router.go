package router

import (
	"github.com/labstack/echo/v4"

	"persianconnect/internal/adapter/api/handler"
	"persianconnect/internal/adapter/api/middleware"
)

// SetupAuthRouter initializes auth routes
func SetupAuthRouter(e *echo.Echo, authHandler *handler.AuthHandler, authMiddleware *middleware.AuthMiddleware) {
	// Public routes
	e.POST("/auth/signup", authHandler.Signup)
	e.POST("/auth/signin", authHandler.Signin)

	// Protected routes
	protected := e.Group("/auth")
	protected.Use(authMiddleware.Authenticate)

	protected.GET("/profile", authHandler.GetProfile)
	protected.PUT("/profile", authHandler.UpdateProfile)
}
