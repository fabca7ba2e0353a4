package usecase

import (
	"context"
	"fmt"
	"time"

	"persianconnect/internal/domain/entity"
	"persianconnect/internal/domain/repository"
	"persianconnect/internal/domain/service"
	"persianconnect/pkg/errors"
	"persianconnect/pkg/logger"
)

// Payments stuck in pending_payment older than this are swept away.
const pendingPaymentMaxAge = time.Hour

// PaymentUseCase creates checkout sessions and reconciles completion from
// two independent paths: client-driven verification and the gateway webhook.
// Both converge on confirm, whose status guard makes the transition
// idempotent.
type PaymentUseCase struct {
	paymentRepo repository.PaymentRepository
	listingRepo repository.ListingRepository
	gateway     service.PaymentGateway

	adPostingPrice int64
	adBoostPrice   int64
	currency       string
	successURL     string
	cancelURL      string
}

func NewPaymentUseCase(
	paymentRepo repository.PaymentRepository,
	listingRepo repository.ListingRepository,
	gateway service.PaymentGateway,
	adPostingPrice, adBoostPrice int64,
	currency, successURL, cancelURL string,
) *PaymentUseCase {
	return &PaymentUseCase{
		paymentRepo:    paymentRepo,
		listingRepo:    listingRepo,
		gateway:        gateway,
		adPostingPrice: adPostingPrice,
		adBoostPrice:   adBoostPrice,
		currency:       currency,
		successURL:     successURL,
		cancelURL:      cancelURL,
	}
}

// PriceFor returns the expected total for a payment type in minor units.
func (uc *PaymentUseCase) PriceFor(paymentType entity.PaymentType) (int64, error) {
	switch paymentType {
	case entity.PaymentAdPosting:
		return uc.adPostingPrice, nil
	case entity.PaymentAdBoost:
		return uc.adBoostPrice, nil
	case entity.PaymentAdPostingWithBoost:
		return uc.adPostingPrice + uc.adBoostPrice, nil
	}
	return 0, errors.BadRequest("Unknown payment type", nil)
}

type CreateCheckoutInput struct {
	ListingID   string
	Type        entity.PaymentType
	TotalAmount int64
	Currency    string
}

type CheckoutResult struct {
	Payment     *entity.Payment `json:"payment"`
	SessionID   string          `json:"sessionId"`
	CheckoutURL string          `json:"checkoutUrl"`
}

// CreateCheckoutSession validates the requested total against the price
// table before any gateway traffic, records a pending payment and hands the
// caller a hosted checkout URL.
func (uc *PaymentUseCase) CreateCheckoutSession(ctx context.Context, user *entity.User, input CreateCheckoutInput) (*CheckoutResult, error) {
	expected, err := uc.PriceFor(input.Type)
	if err != nil {
		return nil, err
	}
	if input.TotalAmount != expected {
		return nil, errors.BadRequest(
			fmt.Sprintf("Total amount %d does not match expected price %d", input.TotalAmount, expected), nil)
	}

	listing, err := uc.listingRepo.GetByID(ctx, input.ListingID)
	if err != nil {
		return nil, err
	}
	if listing.OwnerID != user.ID {
		return nil, errors.Forbidden("You can only pay for your own listings", nil)
	}

	currency := input.Currency
	if currency == "" {
		currency = uc.currency
	}

	payment := &entity.Payment{
		UserID:    user.ID,
		ListingID: listing.ID,
		Amount:    expected,
		Currency:  currency,
		Type:      input.Type,
		Status:    entity.PaymentPending,
	}
	if err := uc.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}

	session, err := uc.gateway.CreateCheckoutSession(ctx, service.CheckoutParams{
		PaymentID:     payment.ID,
		Amount:        expected,
		Currency:      currency,
		Description:   checkoutDescription(input.Type, listing.Title),
		CustomerEmail: user.Email,
		SuccessURL:    uc.successURL,
		CancelURL:     uc.cancelURL,
	})
	if err != nil {
		return nil, errors.Upstream("Payment gateway is unavailable", err)
	}

	payment.SessionID = session.ID
	if err := uc.paymentRepo.Update(ctx, payment); err != nil {
		// The webhook can still locate the payment through the client
		// reference embedded in the session.
		logger.Error("Failed to store session id on payment %s: %v", payment.ID, err)
	}

	return &CheckoutResult{
		Payment:     payment,
		SessionID:   session.ID,
		CheckoutURL: session.URL,
	}, nil
}

func checkoutDescription(paymentType entity.PaymentType, title string) string {
	switch paymentType {
	case entity.PaymentAdBoost:
		return fmt.Sprintf("Boost listing: %s", title)
	case entity.PaymentAdPostingWithBoost:
		return fmt.Sprintf("Post and boost listing: %s", title)
	default:
		return fmt.Sprintf("Post listing: %s", title)
	}
}

// VerifySession is the client-driven confirmation path: re-query the gateway
// and, if the session is paid, run the confirmation transition. Calling it
// again after completion is a no-op.
func (uc *PaymentUseCase) VerifySession(ctx context.Context, user *entity.User, sessionID string) (*entity.Payment, error) {
	session, err := uc.gateway.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return nil, errors.Upstream("Failed to query payment gateway", err)
	}

	payment, err := uc.locatePayment(ctx, session.ClientReferenceID, sessionID)
	if err != nil {
		return nil, err
	}
	if payment.UserID != user.ID && !user.IsAdmin() {
		return nil, errors.Forbidden("This payment belongs to another user", nil)
	}

	if !session.Paid() {
		return nil, errors.BadRequest("Payment has not been completed", nil)
	}

	return uc.confirm(ctx, payment)
}

// HandleWebhook is the gateway-driven confirmation path. Redelivery of the
// same event must not double-apply side effects.
func (uc *PaymentUseCase) HandleWebhook(ctx context.Context, payload []byte, signatureHeader string) error {
	event, err := uc.gateway.ParseWebhookEvent(payload, signatureHeader)
	if err != nil {
		return errors.BadRequest("Invalid webhook payload", err)
	}

	if event.Type != "checkout.session.completed" {
		logger.Debug("Ignoring webhook event type %s", event.Type)
		return nil
	}
	if event.PaymentStatus != "paid" {
		logger.Info("Webhook session %s not paid (%s), ignoring", event.SessionID, event.PaymentStatus)
		return nil
	}

	payment, err := uc.locatePayment(ctx, event.ClientReferenceID, event.SessionID)
	if err != nil {
		// Ack anyway; retrying a webhook for a payment we cannot find will
		// never succeed.
		logger.Error("Webhook for unknown payment (session %s): %v", event.SessionID, err)
		return nil
	}

	_, err = uc.confirm(ctx, payment)
	return err
}

// locatePayment resolves via the embedded client reference first and falls
// back to a scan for the stored session id.
func (uc *PaymentUseCase) locatePayment(ctx context.Context, clientReference, sessionID string) (*entity.Payment, error) {
	if clientReference != "" {
		payment, err := uc.paymentRepo.GetByID(ctx, clientReference)
		if err == nil {
			return payment, nil
		}
		if !errors.Is(err, "NOT_FOUND") {
			return nil, err
		}
	}
	return uc.paymentRepo.GetBySessionID(ctx, sessionID)
}

// confirm is the single idempotent completion transition shared by both
// confirmation paths. The guard is the payment status itself: anything not
// pending has already been decided and is left alone.
func (uc *PaymentUseCase) confirm(ctx context.Context, payment *entity.Payment) (*entity.Payment, error) {
	if payment.Status == entity.PaymentCompleted {
		return payment, nil
	}
	if payment.Terminal() {
		logger.Warn("Ignoring confirmation for payment %s in terminal state %s", payment.ID, payment.Status)
		return payment, nil
	}

	now := time.Now()
	payment.Status = entity.PaymentCompleted
	payment.CompletedAt = &now
	if err := uc.paymentRepo.Update(ctx, payment); err != nil {
		return nil, err
	}

	listing, err := uc.listingRepo.GetByID(ctx, payment.ListingID)
	if err != nil {
		logger.Error("Payment %s completed but listing %s missing: %v", payment.ID, payment.ListingID, err)
		return payment, nil
	}

	listing.PaymentStatus = entity.ListingPaymentCompleted
	if listing.Status == entity.ListingPendingPayment {
		listing.Status = entity.ListingPublished
	}
	if payment.IncludesBoost() {
		until := now.Add(defaultBoostWindow)
		listing.Featured = true
		listing.FeaturedUntil = &until
	}

	if err := uc.listingRepo.Update(ctx, listing); err != nil {
		logger.Error("Failed to publish listing %s after payment %s: %v", listing.ID, payment.ID, err)
	}

	logger.Info("Payment %s confirmed, listing %s now %s", payment.ID, listing.ID, listing.Status)
	return payment, nil
}

type HandleFailureInput struct {
	PaymentID string
	SessionID string
}

// HandleFailure processes a client-reported cancellation: the payment is
// marked failed and a listing still waiting on it is removed rather than
// left dangling.
func (uc *PaymentUseCase) HandleFailure(ctx context.Context, user *entity.User, input HandleFailureInput) (*entity.Payment, error) {
	var payment *entity.Payment
	var err error
	if input.PaymentID != "" {
		payment, err = uc.paymentRepo.GetByID(ctx, input.PaymentID)
	} else {
		payment, err = uc.paymentRepo.GetBySessionID(ctx, input.SessionID)
	}
	if err != nil {
		return nil, err
	}

	if payment.UserID != user.ID && !user.IsAdmin() {
		return nil, errors.Forbidden("This payment belongs to another user", nil)
	}

	if payment.Status == entity.PaymentPending {
		payment.Status = entity.PaymentFailed
		if err := uc.paymentRepo.Update(ctx, payment); err != nil {
			return nil, err
		}
	}

	listing, err := uc.listingRepo.GetByID(ctx, payment.ListingID)
	if err == nil && listing.Status == entity.ListingPendingPayment {
		if err := uc.listingRepo.Delete(ctx, listing.ID); err != nil {
			logger.Error("Failed to remove unpaid listing %s: %v", listing.ID, err)
		}
	}

	return payment, nil
}

// CleanupExpired sweeps listings stuck in pending_payment past the age
// threshold, deleting them and expiring any associated pending payment. Safe
// against concurrent traffic: each listing is re-read and re-checked right
// before acting.
func (uc *PaymentUseCase) CleanupExpired(ctx context.Context) (int, error) {
	listings, err := uc.listingRepo.List(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-pendingPaymentMaxAge)
	removed := 0

	for _, candidate := range listings {
		if candidate.Status != entity.ListingPendingPayment || candidate.CreatedAt.After(cutoff) {
			continue
		}

		// A payment may have completed between the scan and now.
		current, err := uc.listingRepo.GetByID(ctx, candidate.ID)
		if err != nil || current.Status != entity.ListingPendingPayment {
			continue
		}

		if err := uc.listingRepo.Delete(ctx, current.ID); err != nil {
			logger.Error("Cleanup failed to delete listing %s: %v", current.ID, err)
			continue
		}
		removed++

		payment, err := uc.paymentRepo.GetByListingID(ctx, current.ID)
		if err == nil && payment.Status == entity.PaymentPending {
			payment.Status = entity.PaymentExpired
			if err := uc.paymentRepo.Update(ctx, payment); err != nil {
				logger.Error("Cleanup failed to expire payment %s: %v", payment.ID, err)
			}
		}
	}

	return removed, nil
}
