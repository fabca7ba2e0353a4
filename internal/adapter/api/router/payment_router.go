package router

import (
	"github.com/labstack/echo/v4"

	"persianconnect/internal/adapter/api/handler"
	"persianconnect/internal/adapter/api/middleware"
)

// SetupPaymentRouter initializes payment routes
func SetupPaymentRouter(e *echo.Echo, paymentHandler *handler.PaymentHandler, authMiddleware *middleware.AuthMiddleware, adminMiddleware *middleware.AdminMiddleware) {
	payments := e.Group("/payments")
	payments.Use(authMiddleware.Authenticate)

	payments.POST("/create-checkout-session", paymentHandler.CreateCheckoutSession)
	payments.POST("/create-boost-session", paymentHandler.CreateBoostSession)
	payments.POST("/verify-session", paymentHandler.VerifySession)
	payments.POST("/handle-failure", paymentHandler.HandleFailure)
	payments.POST("/cleanup-expired", paymentHandler.CleanupExpired, adminMiddleware.AdminOnly)

	// Stripe calls this directly; authenticity comes from the event
	// signature, not a bearer token.
	e.POST("/stripe/webhook", paymentHandler.StripeWebhook)
}
