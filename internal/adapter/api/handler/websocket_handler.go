package handler

import (
	"net/http"

	gorilla "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"persianconnect/internal/infrastructure/websocket"
	"persianconnect/internal/usecase"
	"persianconnect/pkg/errors"
	"persianconnect/pkg/logger"
	"persianconnect/pkg/response"
)

var upgrader = gorilla.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin checks are handled by the CORS layer in front of us.
		return true
	},
}

type WebSocketHandler struct {
	manager     *websocket.Manager
	authUseCase *usecase.AuthUseCase
}

func NewWebSocketHandler(manager *websocket.Manager, authUseCase *usecase.AuthUseCase) *WebSocketHandler {
	return &WebSocketHandler{
		manager:     manager,
		authUseCase: authUseCase,
	}
}

// Connect upgrades the request to a WebSocket connection. Browsers cannot
// set an Authorization header on the upgrade request, so the ID token is
// passed as a query parameter instead.
func (h *WebSocketHandler) Connect(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return response.Error(c, errors.Unauthorized("Missing token", nil))
	}

	user, err := h.authUseCase.Authenticate(c.Request().Context(), token)
	if err != nil {
		return response.Error(c, err)
	}
	if user.Blocked {
		return response.Error(c, errors.Forbidden("Account is blocked", nil))
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed: %v", err)
		return err
	}

	client := &websocket.Client{
		UserID: user.ID,
		Conn:   conn,
		Send:   make(chan []byte, 256),
	}

	h.manager.Register <- client

	go client.WritePump()
	go client.ReadPump(h.manager)

	return nil
}
