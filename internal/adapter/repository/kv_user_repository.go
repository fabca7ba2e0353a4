package repository

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"strings"

	"persianconnect/internal/domain/entity"
	"persianconnect/internal/domain/repository"
	"persianconnect/internal/infrastructure/kv"
	"persianconnect/pkg/errors"
)

type kvUserRepository struct {
	store kv.Store
}

func NewKVUserRepository(store kv.Store) repository.UserRepository {
	return &kvUserRepository{
		store: store,
	}
}

func (r *kvUserRepository) Create(ctx context.Context, user *entity.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return errors.Internal("Failed to encode user", err)
	}

	if err := r.store.Set(ctx, userKey(user.ID), data); err != nil {
		return errors.Internal("Failed to store user", err)
	}

	// Lookup keys resolve the globally unique email and username back to the
	// identity id. Written after the record; a crash in between leaves a
	// profile reachable by id only, which the synchronizer repairs on the
	// next request.
	email := strings.ToLower(user.Email)
	if err := r.store.Set(ctx, userByEmailKey(email), []byte(user.ID)); err != nil {
		return errors.Internal("Failed to store email lookup", err)
	}
	if err := r.store.Set(ctx, userByUsernameKey(user.Username), []byte(user.ID)); err != nil {
		return errors.Internal("Failed to store username lookup", err)
	}

	return nil
}

func (r *kvUserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	data, err := r.store.Get(ctx, userKey(id))
	if err != nil {
		if stderrors.Is(err, kv.ErrNotFound) {
			return nil, errors.NotFound("User", err)
		}
		return nil, errors.Internal("Failed to get user", err)
	}

	var user entity.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, errors.Internal("Failed to decode user", err)
	}
	return &user, nil
}

func (r *kvUserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	id, err := r.store.Get(ctx, userByEmailKey(strings.ToLower(email)))
	if err != nil {
		if stderrors.Is(err, kv.ErrNotFound) {
			return nil, errors.NotFound("User", err)
		}
		return nil, errors.Internal("Failed to resolve email lookup", err)
	}
	return r.GetByID(ctx, string(id))
}

func (r *kvUserRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	id, err := r.store.Get(ctx, userByUsernameKey(username))
	if err != nil {
		if stderrors.Is(err, kv.ErrNotFound) {
			return nil, errors.NotFound("User", err)
		}
		return nil, errors.Internal("Failed to resolve username lookup", err)
	}
	return r.GetByID(ctx, string(id))
}

func (r *kvUserRepository) Update(ctx context.Context, user *entity.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return errors.Internal("Failed to encode user", err)
	}
	if err := r.store.Set(ctx, userKey(user.ID), data); err != nil {
		return errors.Internal("Failed to update user", err)
	}
	return nil
}

func (r *kvUserRepository) Delete(ctx context.Context, id string) error {
	user, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := r.store.Delete(ctx, userKey(id)); err != nil {
		return errors.Internal("Failed to delete user", err)
	}
	r.store.Delete(ctx, userByEmailKey(strings.ToLower(user.Email)))
	r.store.Delete(ctx, userByUsernameKey(user.Username))
	return nil
}

func (r *kvUserRepository) List(ctx context.Context) ([]*entity.User, error) {
	items, err := r.store.GetByPrefix(ctx, userKeyPrefix)
	if err != nil {
		return nil, errors.Internal("Failed to scan users", err)
	}

	users := make([]*entity.User, 0, len(items))
	for _, item := range items {
		var user entity.User
		if err := json.Unmarshal(item.Value, &user); err != nil {
			continue
		}
		users = append(users, &user)
	}
	return users, nil
}
