package router

import (
	"github.com/labstack/echo/v4"

	"persianconnect/internal/adapter/api/handler"
)

// SetupWebSocketRouter initializes the WebSocket endpoint. Authentication
// happens inside the handler via the token query parameter.
func SetupWebSocketRouter(e *echo.Echo, wsHandler *handler.WebSocketHandler) {
	e.GET("/ws", wsHandler.Connect)
}
