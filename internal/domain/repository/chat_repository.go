package repository

import (
	"context"

	"persianconnect/internal/domain/entity"
)

type ChatRepository interface {
	Create(ctx context.Context, chat *entity.Chat) error
	GetByID(ctx context.Context, id string) (*entity.Chat, error)
	Update(ctx context.Context, chat *entity.Chat) error
	ListByUser(ctx context.Context, userID string) ([]*entity.Chat, error)
	FindByParticipants(ctx context.Context, a, b, listingID string) (*entity.Chat, error)

	CreateMessage(ctx context.Context, message *entity.Message) error
	UpdateMessage(ctx context.Context, message *entity.Message) error
	ListMessages(ctx context.Context, chatID string) ([]*entity.Message, error)
}
