package repository

import (
	"context"

	"persianconnect/internal/domain/entity"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	GetByID(ctx context.Context, id string) (*entity.Payment, error)
	GetBySessionID(ctx context.Context, sessionID string) (*entity.Payment, error)
	GetByListingID(ctx context.Context, listingID string) (*entity.Payment, error)
	Update(ctx context.Context, payment *entity.Payment) error
	List(ctx context.Context) ([]*entity.Payment, error)
}
