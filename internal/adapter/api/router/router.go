package router

import (
	"github.com/labstack/echo/v4"

	"persianconnect/internal/adapter/api/handler"
	"persianconnect/internal/adapter/api/middleware"
)

type Handlers struct {
	Auth      *handler.AuthHandler
	Listing   *handler.ListingHandler
	Payment   *handler.PaymentHandler
	Chat      *handler.ChatHandler
	Admin     *handler.AdminHandler
	Health    *handler.HealthHandler
	WebSocket *handler.WebSocketHandler
}

func Setup(e *echo.Echo, h Handlers, authMiddleware *middleware.AuthMiddleware, adminMiddleware *middleware.AdminMiddleware) {
	SetupAuthRouter(e, h.Auth, authMiddleware)
	SetupListingRouter(e, h.Listing, authMiddleware)
	SetupPaymentRouter(e, h.Payment, authMiddleware, adminMiddleware)
	SetupChatRouter(e, h.Chat, authMiddleware)
	SetupAdminRouter(e, h.Admin, authMiddleware, adminMiddleware)
	SetupHealthRouter(e, h.Health)
	SetupWebSocketRouter(e, h.WebSocket)
}
