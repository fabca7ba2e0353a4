package handler

import (
	"github.com/labstack/echo/v4"

	"persianconnect/internal/usecase"
	"persianconnect/pkg/errors"
	"persianconnect/pkg/response"
)

type ChatHandler struct {
	chatUseCase *usecase.ChatUseCase
}

func NewChatHandler(chatUseCase *usecase.ChatUseCase) *ChatHandler {
	return &ChatHandler{
		chatUseCase: chatUseCase,
	}
}

type createChatRequest struct {
	SellerID  string `json:"sellerId" validate:"required"`
	ListingID string `json:"listingId" validate:"required"`
	Message   string `json:"message"`
}

func (h *ChatHandler) CreateChat(c echo.Context) error {
	var req createChatRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	uid := c.Get("uid").(string)

	chat, err := h.chatUseCase.CreateChat(c.Request().Context(), uid, usecase.CreateChatInput{
		SellerID:       req.SellerID,
		ListingID:      req.ListingID,
		InitialMessage: req.Message,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessMessage(c, "Chat ready", chat)
}

func (h *ChatHandler) ListChats(c echo.Context) error {
	uid := c.Get("uid").(string)

	chats, err := h.chatUseCase.ListChats(c.Request().Context(), uid)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, chats)
}

func (h *ChatHandler) GetChat(c echo.Context) error {
	uid := c.Get("uid").(string)

	detail, err := h.chatUseCase.GetChat(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, detail)
}

type sendMessageRequest struct {
	Content string `json:"content" validate:"required"`
}

func (h *ChatHandler) SendMessage(c echo.Context) error {
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	uid := c.Get("uid").(string)

	message, err := h.chatUseCase.SendMessage(c.Request().Context(), uid, c.Param("id"), req.Content)
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessMessage(c, "Message sent", message)
}

func (h *ChatHandler) MarkRead(c echo.Context) error {
	uid := c.Get("uid").(string)

	updated, err := h.chatUseCase.MarkRead(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessMessage(c, "Messages marked as read", map[string]int{"updated": updated})
}
