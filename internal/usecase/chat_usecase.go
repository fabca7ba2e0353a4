package usecase

import (
	"context"
	"encoding/json"
	"time"

	"persianconnect/internal/domain/entity"
	"persianconnect/internal/domain/repository"
	"persianconnect/internal/infrastructure/ratelimit"
	ws "persianconnect/internal/infrastructure/websocket"
	"persianconnect/pkg/errors"
	"persianconnect/pkg/logger"
)

// ChatUseCase creates and deduplicates conversation threads keyed by the
// unordered participant pair plus listing, appends messages and tracks read
// state.
type ChatUseCase struct {
	chatRepo    repository.ChatRepository
	userRepo    repository.UserRepository
	listingRepo repository.ListingRepository
	wsManager   *ws.Manager
	rateLimiter *ratelimit.RateLimiter
}

func NewChatUseCase(
	chatRepo repository.ChatRepository,
	userRepo repository.UserRepository,
	listingRepo repository.ListingRepository,
	wsManager *ws.Manager,
) *ChatUseCase {
	return &ChatUseCase{
		chatRepo:    chatRepo,
		userRepo:    userRepo,
		listingRepo: listingRepo,
		wsManager:   wsManager,
		rateLimiter: ratelimit.NewRateLimiter(),
	}
}

type CreateChatInput struct {
	SellerID       string
	ListingID      string
	InitialMessage string
}

// CreateChat returns the existing chat for (buyer, seller, listing) if one
// exists, otherwise creates it. Two concurrent creations can still race past
// the scan; the pair+listing lookup keeps subsequent calls converging on
// whichever record won.
func (uc *ChatUseCase) CreateChat(ctx context.Context, buyerID string, input CreateChatInput) (*entity.Chat, error) {
	if !uc.rateLimiter.Allow(buyerID, "create_chat") {
		return nil, errors.TooManyRequests("Too many chats created, slow down")
	}

	if buyerID == input.SellerID {
		return nil, errors.BadRequest("You cannot start a chat with yourself", nil)
	}

	seller, err := uc.userRepo.GetByID(ctx, input.SellerID)
	if err != nil {
		return nil, errors.NotFound("Recipient", err)
	}

	listing, err := uc.listingRepo.GetByID(ctx, input.ListingID)
	if err != nil {
		return nil, err
	}

	chat, err := uc.chatRepo.FindByParticipants(ctx, buyerID, input.SellerID, input.ListingID)
	if err != nil && !errors.Is(err, "NOT_FOUND") {
		return nil, err
	}

	if chat == nil || errors.Is(err, "NOT_FOUND") {
		buyerName := ""
		if buyer, berr := uc.userRepo.GetByID(ctx, buyerID); berr == nil {
			buyerName = displayName(buyer)
		}

		chat = &entity.Chat{
			BuyerID:      buyerID,
			SellerID:     input.SellerID,
			ListingID:    input.ListingID,
			BuyerName:    buyerName,
			SellerName:   displayName(seller),
			ListingTitle: listing.Title,
		}
		if err := uc.chatRepo.Create(ctx, chat); err != nil {
			return nil, err
		}
	}

	if input.InitialMessage != "" {
		if _, err := uc.SendMessage(ctx, buyerID, chat.ID, input.InitialMessage); err != nil {
			logger.Warn("Failed to send initial message in chat %s: %v", chat.ID, err)
		}
	}

	return chat, nil
}

func displayName(user *entity.User) string {
	if user.Name != "" {
		return user.Name
	}
	return user.Username
}

// ListChats returns the caller's chats, most recently active first. A
// storage failure degrades to an empty list.
func (uc *ChatUseCase) ListChats(ctx context.Context, userID string) ([]*entity.Chat, error) {
	chats, err := uc.chatRepo.ListByUser(ctx, userID)
	if err != nil {
		logger.Error("Chat scan failed for %s, returning empty result: %v", userID, err)
		return []*entity.Chat{}, nil
	}
	if chats == nil {
		chats = []*entity.Chat{}
	}
	return chats, nil
}

type ChatDetail struct {
	Chat     *entity.Chat      `json:"chat"`
	Messages []*entity.Message `json:"messages"`
}

func (uc *ChatUseCase) GetChat(ctx context.Context, userID, chatID string) (*ChatDetail, error) {
	chat, err := uc.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasParticipant(userID) {
		return nil, errors.Forbidden("You are not a participant of this chat", nil)
	}

	messages, err := uc.chatRepo.ListMessages(ctx, chatID)
	if err != nil {
		logger.Error("Message scan failed for chat %s: %v", chatID, err)
		messages = []*entity.Message{}
	}

	return &ChatDetail{Chat: chat, Messages: messages}, nil
}

// SendMessage appends a message from a chat participant and refreshes the
// chat's last-message snapshot.
func (uc *ChatUseCase) SendMessage(ctx context.Context, senderID, chatID, content string) (*entity.Message, error) {
	if !uc.rateLimiter.Allow(senderID, "send_message") {
		return nil, errors.TooManyRequests("Too many messages, slow down")
	}

	if content == "" {
		return nil, errors.BadRequest("Message content is required", nil)
	}

	chat, err := uc.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasParticipant(senderID) {
		return nil, errors.Forbidden("You are not a participant of this chat", nil)
	}

	message := &entity.Message{
		ChatID:     chatID,
		SenderID:   senderID,
		ReceiverID: chat.OtherParticipant(senderID),
		Content:    content,
		CreatedAt:  time.Now(),
	}
	if err := uc.chatRepo.CreateMessage(ctx, message); err != nil {
		return nil, err
	}

	chat.LastMessage = snippet(content)
	chat.LastMessageAt = message.CreatedAt
	if err := uc.chatRepo.Update(ctx, chat); err != nil {
		logger.Warn("Failed to update chat snapshot %s: %v", chatID, err)
	}

	uc.notify(message)
	return message, nil
}

func snippet(content string) string {
	const max = 120
	if len(content) <= max {
		return content
	}
	return content[:max]
}

// notify pushes the message to the receiver's websocket if connected.
func (uc *ChatUseCase) notify(message *entity.Message) {
	if uc.wsManager == nil {
		return
	}

	payload, err := json.Marshal(map[string]interface{}{
		"type": "message",
		"data": message,
	})
	if err != nil {
		return
	}
	uc.wsManager.SendToUser(message.ReceiverID, payload)
}

// MarkRead flips isRead on every message addressed to the caller in the chat
// and returns how many were updated.
func (uc *ChatUseCase) MarkRead(ctx context.Context, userID, chatID string) (int, error) {
	chat, err := uc.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return 0, err
	}
	if !chat.HasParticipant(userID) {
		return 0, errors.Forbidden("You are not a participant of this chat", nil)
	}

	messages, err := uc.chatRepo.ListMessages(ctx, chatID)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, message := range messages {
		if message.ReceiverID != userID || message.IsRead {
			continue
		}
		message.IsRead = true
		if err := uc.chatRepo.UpdateMessage(ctx, message); err != nil {
			logger.Warn("Failed to mark message %s read: %v", message.ID, err)
			continue
		}
		updated++
	}

	return updated, nil
}
