package repository

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/google/uuid"

	"persianconnect/internal/domain/entity"
	"persianconnect/internal/domain/repository"
	"persianconnect/internal/infrastructure/kv"
	"persianconnect/pkg/errors"
	"persianconnect/pkg/logger"
)

type kvListingRepository struct {
	store kv.Store
}

func NewKVListingRepository(store kv.Store) repository.ListingRepository {
	return &kvListingRepository{
		store: store,
	}
}

func (r *kvListingRepository) Create(ctx context.Context, listing *entity.Listing) error {
	if listing.ID == "" {
		listing.ID = uuid.New().String()
	}

	now := time.Now()
	listing.CreatedAt = now
	listing.UpdatedAt = now

	data, err := json.Marshal(listing)
	if err != nil {
		return errors.Internal("Failed to encode listing", err)
	}

	if err := r.store.Set(ctx, listingKey(listing.ID), data); err != nil {
		return errors.Internal("Failed to store listing", err)
	}
	if err := r.store.Set(ctx, listingByOwnerKey(listing.OwnerID, listing.ID), []byte(listing.ID)); err != nil {
		return errors.Internal("Failed to store listing owner index", err)
	}

	return nil
}

func (r *kvListingRepository) GetByID(ctx context.Context, id string) (*entity.Listing, error) {
	data, err := r.store.Get(ctx, listingKey(id))
	if err != nil {
		if stderrors.Is(err, kv.ErrNotFound) {
			return nil, errors.NotFound("Listing", err)
		}
		return nil, errors.Internal("Failed to get listing", err)
	}

	var listing entity.Listing
	if err := json.Unmarshal(data, &listing); err != nil {
		return nil, errors.Internal("Failed to decode listing", err)
	}
	return &listing, nil
}

func (r *kvListingRepository) Update(ctx context.Context, listing *entity.Listing) error {
	listing.UpdatedAt = time.Now()

	data, err := json.Marshal(listing)
	if err != nil {
		return errors.Internal("Failed to encode listing", err)
	}
	if err := r.store.Set(ctx, listingKey(listing.ID), data); err != nil {
		return errors.Internal("Failed to update listing", err)
	}
	return nil
}

func (r *kvListingRepository) Delete(ctx context.Context, id string) error {
	listing, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := r.store.Delete(ctx, listingKey(id)); err != nil {
		return errors.Internal("Failed to delete listing", err)
	}
	if err := r.store.Delete(ctx, listingByOwnerKey(listing.OwnerID, id)); err != nil {
		logger.Warn("Failed to delete owner index for listing %s: %v", id, err)
	}
	return nil
}

func (r *kvListingRepository) List(ctx context.Context) ([]*entity.Listing, error) {
	items, err := r.store.GetByPrefix(ctx, listingKeyPrefix)
	if err != nil {
		return nil, errors.Internal("Failed to scan listings", err)
	}

	listings := make([]*entity.Listing, 0, len(items))
	for _, item := range items {
		var listing entity.Listing
		if err := json.Unmarshal(item.Value, &listing); err != nil {
			logger.Warn("Skipping undecodable listing record %s: %v", item.Key, err)
			continue
		}
		listings = append(listings, &listing)
	}
	return listings, nil
}

func (r *kvListingRepository) ListByOwner(ctx context.Context, ownerID string) ([]*entity.Listing, error) {
	items, err := r.store.GetByPrefix(ctx, listingByOwnerPrefix+ownerID+":")
	if err != nil {
		return nil, errors.Internal("Failed to scan owner index", err)
	}

	keys := make([]string, 0, len(items))
	for _, item := range items {
		keys = append(keys, listingKey(string(item.Value)))
	}

	values, err := r.store.MultiGet(ctx, keys)
	if err != nil {
		return nil, errors.Internal("Failed to load listings for owner", err)
	}

	listings := make([]*entity.Listing, 0, len(values))
	for _, value := range values {
		if value == nil {
			continue
		}
		var listing entity.Listing
		if err := json.Unmarshal(value, &listing); err != nil {
			continue
		}
		listings = append(listings, &listing)
	}
	return listings, nil
}
