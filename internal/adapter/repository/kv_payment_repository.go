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

type kvPaymentRepository struct {
	store kv.Store
}

func NewKVPaymentRepository(store kv.Store) repository.PaymentRepository {
	return &kvPaymentRepository{
		store: store,
	}
}

func (r *kvPaymentRepository) Create(ctx context.Context, payment *entity.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}

	now := time.Now()
	payment.CreatedAt = now
	payment.UpdatedAt = now

	data, err := json.Marshal(payment)
	if err != nil {
		return errors.Internal("Failed to encode payment", err)
	}
	if err := r.store.Set(ctx, paymentKey(payment.ID), data); err != nil {
		return errors.Internal("Failed to store payment", err)
	}
	return nil
}

func (r *kvPaymentRepository) GetByID(ctx context.Context, id string) (*entity.Payment, error) {
	data, err := r.store.Get(ctx, paymentKey(id))
	if err != nil {
		if stderrors.Is(err, kv.ErrNotFound) {
			return nil, errors.NotFound("Payment", err)
		}
		return nil, errors.Internal("Failed to get payment", err)
	}

	var payment entity.Payment
	if err := json.Unmarshal(data, &payment); err != nil {
		return nil, errors.Internal("Failed to decode payment", err)
	}
	return &payment, nil
}

// GetBySessionID falls back to a full prefix scan; used only when the
// gateway callback carries no usable client reference.
func (r *kvPaymentRepository) GetBySessionID(ctx context.Context, sessionID string) (*entity.Payment, error) {
	payments, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	for _, payment := range payments {
		if payment.SessionID == sessionID {
			return payment, nil
		}
	}
	return nil, errors.NotFound("Payment", nil)
}

func (r *kvPaymentRepository) GetByListingID(ctx context.Context, listingID string) (*entity.Payment, error) {
	payments, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	for _, payment := range payments {
		if payment.ListingID == listingID {
			return payment, nil
		}
	}
	return nil, errors.NotFound("Payment", nil)
}

func (r *kvPaymentRepository) Update(ctx context.Context, payment *entity.Payment) error {
	payment.UpdatedAt = time.Now()

	data, err := json.Marshal(payment)
	if err != nil {
		return errors.Internal("Failed to encode payment", err)
	}
	if err := r.store.Set(ctx, paymentKey(payment.ID), data); err != nil {
		return errors.Internal("Failed to update payment", err)
	}
	return nil
}

func (r *kvPaymentRepository) List(ctx context.Context) ([]*entity.Payment, error) {
	items, err := r.store.GetByPrefix(ctx, paymentKeyPrefix)
	if err != nil {
		return nil, errors.Internal("Failed to scan payments", err)
	}

	payments := make([]*entity.Payment, 0, len(items))
	for _, item := range items {
		var payment entity.Payment
		if err := json.Unmarshal(item.Value, &payment); err != nil {
			logger.Warn("Skipping undecodable payment record %s: %v", item.Key, err)
			continue
		}
		payments = append(payments, &payment)
	}
	return payments, nil
}
