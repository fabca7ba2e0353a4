package repository

import (
	"context"

	"persianconnect/internal/domain/entity"
)

type ListingRepository interface {
	Create(ctx context.Context, listing *entity.Listing) error
	GetByID(ctx context.Context, id string) (*entity.Listing, error)
	Update(ctx context.Context, listing *entity.Listing) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*entity.Listing, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*entity.Listing, error)
}
