package router

import (
	"github.com/labstack/echo/v4"

	"persianconnect/internal/adapter/api/handler"
	"persianconnect/internal/adapter/api/middleware"
)

// SetupListingRouter initializes ad listing routes
func SetupListingRouter(e *echo.Echo, listingHandler *handler.ListingHandler, authMiddleware *middleware.AuthMiddleware) {
	ads := e.Group("/ads")
	ads.Use(authMiddleware.Authenticate)

	ads.GET("", listingHandler.ListListings)
	ads.GET("/:id", listingHandler.GetListing)
	ads.POST("", listingHandler.CreateListing)
	ads.PUT("/:id", listingHandler.UpdateListing)
	ads.POST("/:id/boost", listingHandler.BoostListing)
	ads.POST("/:id/unboost", listingHandler.UnboostListing)

	e.GET("/users/me/ads", listingHandler.MyListings, authMiddleware.Authenticate)
}
