package router

import (
	"github.com/labstack/echo/v4"

	"persianconnect/internal/adapter/api/handler"
	"persianconnect/internal/adapter/api/middleware"
)

// SetupChatRouter initializes chat routes
func SetupChatRouter(e *echo.Echo, chatHandler *handler.ChatHandler, authMiddleware *middleware.AuthMiddleware) {
	chats := e.Group("/messages/chats")
	chats.Use(authMiddleware.Authenticate)

	chats.GET("", chatHandler.ListChats)
	chats.GET("/:id", chatHandler.GetChat)
	chats.POST("", chatHandler.CreateChat)
	chats.POST("/:id/messages", chatHandler.SendMessage)
	chats.POST("/:id/read", chatHandler.MarkRead)
}
