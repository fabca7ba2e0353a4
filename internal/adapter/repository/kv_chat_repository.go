package repository

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"persianconnect/internal/domain/entity"
	"persianconnect/internal/domain/repository"
	"persianconnect/internal/infrastructure/kv"
	"persianconnect/pkg/errors"
)

type kvChatRepository struct {
	store kv.Store
}

func NewKVChatRepository(store kv.Store) repository.ChatRepository {
	return &kvChatRepository{
		store: store,
	}
}

func (r *kvChatRepository) Create(ctx context.Context, chat *entity.Chat) error {
	if chat.ID == "" {
		chat.ID = uuid.New().String()
	}

	now := time.Now()
	chat.CreatedAt = now
	chat.UpdatedAt = now
	if chat.LastMessageAt.IsZero() {
		chat.LastMessageAt = now
	}

	data, err := json.Marshal(chat)
	if err != nil {
		return errors.Internal("Failed to encode chat", err)
	}
	if err := r.store.Set(ctx, chatKey(chat.ID), data); err != nil {
		return errors.Internal("Failed to store chat", err)
	}
	return nil
}

func (r *kvChatRepository) GetByID(ctx context.Context, id string) (*entity.Chat, error) {
	data, err := r.store.Get(ctx, chatKey(id))
	if err != nil {
		if stderrors.Is(err, kv.ErrNotFound) {
			return nil, errors.NotFound("Chat", err)
		}
		return nil, errors.Internal("Failed to get chat", err)
	}

	var chat entity.Chat
	if err := json.Unmarshal(data, &chat); err != nil {
		return nil, errors.Internal("Failed to decode chat", err)
	}
	return &chat, nil
}

func (r *kvChatRepository) Update(ctx context.Context, chat *entity.Chat) error {
	chat.UpdatedAt = time.Now()

	data, err := json.Marshal(chat)
	if err != nil {
		return errors.Internal("Failed to encode chat", err)
	}
	if err := r.store.Set(ctx, chatKey(chat.ID), data); err != nil {
		return errors.Internal("Failed to update chat", err)
	}
	return nil
}

func (r *kvChatRepository) ListByUser(ctx context.Context, userID string) ([]*entity.Chat, error) {
	items, err := r.store.GetByPrefix(ctx, chatKeyPrefix)
	if err != nil {
		return nil, errors.Internal("Failed to scan chats", err)
	}

	var chats []*entity.Chat
	for _, item := range items {
		var chat entity.Chat
		if err := json.Unmarshal(item.Value, &chat); err != nil {
			continue
		}
		if chat.HasParticipant(userID) {
			chats = append(chats, &chat)
		}
	}

	sort.Slice(chats, func(i, j int) bool {
		return chats[i].LastMessageAt.After(chats[j].LastMessageAt)
	})
	return chats, nil
}

// FindByParticipants matches on the unordered participant pair plus listing
// id, which is how duplicate threads are detected under concurrent creation.
func (r *kvChatRepository) FindByParticipants(ctx context.Context, a, b, listingID string) (*entity.Chat, error) {
	items, err := r.store.GetByPrefix(ctx, chatKeyPrefix)
	if err != nil {
		return nil, errors.Internal("Failed to scan chats", err)
	}

	for _, item := range items {
		var chat entity.Chat
		if err := json.Unmarshal(item.Value, &chat); err != nil {
			continue
		}
		if chat.SamePair(a, b) && chat.ListingID == listingID {
			return &chat, nil
		}
	}
	return nil, errors.NotFound("Chat", nil)
}

func (r *kvChatRepository) CreateMessage(ctx context.Context, message *entity.Message) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}

	data, err := json.Marshal(message)
	if err != nil {
		return errors.Internal("Failed to encode message", err)
	}
	if err := r.store.Set(ctx, messageKey(message.ChatID, message.ID), data); err != nil {
		return errors.Internal("Failed to store message", err)
	}
	return nil
}

func (r *kvChatRepository) UpdateMessage(ctx context.Context, message *entity.Message) error {
	data, err := json.Marshal(message)
	if err != nil {
		return errors.Internal("Failed to encode message", err)
	}
	if err := r.store.Set(ctx, messageKey(message.ChatID, message.ID), data); err != nil {
		return errors.Internal("Failed to update message", err)
	}
	return nil
}

func (r *kvChatRepository) ListMessages(ctx context.Context, chatID string) ([]*entity.Message, error) {
	items, err := r.store.GetByPrefix(ctx, messageKeyPrefix+chatID+":")
	if err != nil {
		return nil, errors.Internal("Failed to scan messages", err)
	}

	messages := make([]*entity.Message, 0, len(items))
	for _, item := range items {
		var message entity.Message
		if err := json.Unmarshal(item.Value, &message); err != nil {
			continue
		}
		messages = append(messages, &message)
	}

	sort.Slice(messages, func(i, j int) bool {
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})
	return messages, nil
}
