package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"persianconnect/internal/domain/entity"
	"persianconnect/internal/domain/service"
)

func newPaymentUseCase(r *repos, gateway *fakeGateway) *PaymentUseCase {
	return NewPaymentUseCase(
		r.payments, r.listings, gateway,
		200, 100, "usd",
		"https://example.com/success", "https://example.com/cancel",
	)
}

func seedPendingListing(t *testing.T, r *repos, owner *entity.User) *entity.Listing {
	t.Helper()
	uc := NewListingUseCase(r.listings)
	listing, err := uc.Create(context.Background(), owner, CreateListingInput{
		Title: "Bike", Description: "d", Category: "misc",
	})
	require.NoError(t, err)
	return listing
}

func TestPriceFor(t *testing.T) {
	uc := newPaymentUseCase(newRepos(), newFakeGateway())

	posting, err := uc.PriceFor(entity.PaymentAdPosting)
	require.NoError(t, err)
	assert.Equal(t, int64(200), posting)

	boost, err := uc.PriceFor(entity.PaymentAdBoost)
	require.NoError(t, err)
	assert.Equal(t, int64(100), boost)

	combined, err := uc.PriceFor(entity.PaymentAdPostingWithBoost)
	require.NoError(t, err)
	assert.Equal(t, int64(300), combined)

	_, err = uc.PriceFor(entity.PaymentType("bogus"))
	assert.True(t, isCode(err, "VALIDATION_ERROR"))
}

func TestCreateCheckoutSessionRejectsAmountMismatchBeforeGateway(t *testing.T) {
	ctx := context.Background()
	r := newRepos()
	gateway := newFakeGateway()
	uc := newPaymentUseCase(r, gateway)

	owner := r.seedUser(ctx, "u1", "seller@example.com", "seller", entity.RoleUser)
	listing := seedPendingListing(t, r, owner)

	_, err := uc.CreateCheckoutSession(ctx, owner, CreateCheckoutInput{
		ListingID:   listing.ID,
		Type:        entity.PaymentAdPosting,
		TotalAmount: 250,
	})
	require.Error(t, err)
	assert.True(t, isCode(err, "VALIDATION_ERROR"))
	assert.Zero(t, gateway.createCalls)
}

func TestCreateCheckoutSessionRejectsForeignListing(t *testing.T) {
	ctx := context.Background()
	r := newRepos()
	uc := newPaymentUseCase(r, newFakeGateway())

	owner := r.seedUser(ctx, "u1", "seller@example.com", "seller", entity.RoleUser)
	stranger := r.seedUser(ctx, "u2", "other@example.com", "other", entity.RoleUser)
	listing := seedPendingListing(t, r, owner)

	_, err := uc.CreateCheckoutSession(ctx, stranger, CreateCheckoutInput{
		ListingID:   listing.ID,
		Type:        entity.PaymentAdPosting,
		TotalAmount: 200,
	})
	require.Error(t, err)
	assert.True(t, isCode(err, "FORBIDDEN"))
}

func TestCreateCheckoutSessionRecordsPendingPayment(t *testing.T) {
	ctx := context.Background()
	r := newRepos()
	gateway := newFakeGateway()
	uc := newPaymentUseCase(r, gateway)

	owner := r.seedUser(ctx, "u1", "seller@example.com", "seller", entity.RoleUser)
	listing := seedPendingListing(t, r, owner)

	result, err := uc.CreateCheckoutSession(ctx, owner, CreateCheckoutInput{
		ListingID:   listing.ID,
		Type:        entity.PaymentAdPostingWithBoost,
		TotalAmount: 300,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, gateway.createCalls)
	assert.NotEmpty(t, result.CheckoutURL)
	assert.Equal(t, entity.PaymentPending, result.Payment.Status)
	assert.Equal(t, int64(300), result.Payment.Amount)

	stored, err := r.payments.GetBySessionID(ctx, result.SessionID)
	require.NoError(t, err)
	assert.Equal(t, result.Payment.ID, stored.ID)
}

func TestVerifySessionRequiresPaidSession(t *testing.T) {
	ctx := context.Background()
	r := newRepos()
	gateway := newFakeGateway()
	uc := newPaymentUseCase(r, gateway)

	owner := r.seedUser(ctx, "u1", "seller@example.com", "seller", entity.RoleUser)
	listing := seedPendingListing(t, r, owner)

	result, err := uc.CreateCheckoutSession(ctx, owner, CreateCheckoutInput{
		ListingID:   listing.ID,
		Type:        entity.PaymentAdPosting,
		TotalAmount: 200,
	})
	require.NoError(t, err)

	_, err = uc.VerifySession(ctx, owner, result.SessionID)
	require.Error(t, err)
	assert.True(t, isCode(err, "VALIDATION_ERROR"))

	stored, err := r.payments.GetByID(ctx, result.Payment.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentPending, stored.Status)
}

func TestVerifySessionPublishesListing(t *testing.T) {
	ctx := context.Background()
	r := newRepos()
	gateway := newFakeGateway()
	uc := newPaymentUseCase(r, gateway)

	owner := r.seedUser(ctx, "u1", "seller@example.com", "seller", entity.RoleUser)
	listing := seedPendingListing(t, r, owner)

	result, err := uc.CreateCheckoutSession(ctx, owner, CreateCheckoutInput{
		ListingID:   listing.ID,
		Type:        entity.PaymentAdPosting,
		TotalAmount: 200,
	})
	require.NoError(t, err)
	gateway.markPaid(result.SessionID)

	payment, err := uc.VerifySession(ctx, owner, result.SessionID)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentCompleted, payment.Status)
	require.NotNil(t, payment.CompletedAt)

	published, err := r.listings.GetByID(ctx, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ListingPublished, published.Status)
	assert.Equal(t, entity.ListingPaymentCompleted, published.PaymentStatus)
	assert.False(t, published.Featured)
}

func TestConfirmationIsIdempotentAcrossBothPaths(t *testing.T) {
	ctx := context.Background()
	r := newRepos()
	gateway := newFakeGateway()
	uc := newPaymentUseCase(r, gateway)

	owner := r.seedUser(ctx, "u1", "seller@example.com", "seller", entity.RoleUser)
	listing := seedPendingListing(t, r, owner)

	result, err := uc.CreateCheckoutSession(ctx, owner, CreateCheckoutInput{
		ListingID:   listing.ID,
		Type:        entity.PaymentAdPostingWithBoost,
		TotalAmount: 300,
	})
	require.NoError(t, err)
	gateway.markPaid(result.SessionID)

	first, err := uc.VerifySession(ctx, owner, result.SessionID)
	require.NoError(t, err)
	firstCompletedAt := *first.CompletedAt

	boosted, err := r.listings.GetByID(ctx, listing.ID)
	require.NoError(t, err)
	require.True(t, boosted.Featured)
	firstFeaturedUntil := *boosted.FeaturedUntil

	time.Sleep(5 * time.Millisecond)

	// Webhook redelivery for the already-confirmed payment.
	err = uc.HandleWebhook(ctx, webhookPayload(&service.WebhookEvent{
		ID:                "evt_1",
		Type:              "checkout.session.completed",
		SessionID:         result.SessionID,
		ClientReferenceID: result.Payment.ID,
		PaymentStatus:     "paid",
	}), "sig")
	require.NoError(t, err)

	// And a second client verification on top.
	second, err := uc.VerifySession(ctx, owner, result.SessionID)
	require.NoError(t, err)
	assert.True(t, firstCompletedAt.Equal(*second.CompletedAt))

	after, err := r.listings.GetByID(ctx, listing.ID)
	require.NoError(t, err)
	assert.True(t, firstFeaturedUntil.Equal(*after.FeaturedUntil), "boost window must not be extended by redelivery")
}

func TestHandleWebhookConfirmsViaClientReference(t *testing.T) {
	ctx := context.Background()
	r := newRepos()
	gateway := newFakeGateway()
	uc := newPaymentUseCase(r, gateway)

	owner := r.seedUser(ctx, "u1", "seller@example.com", "seller", entity.RoleUser)
	listing := seedPendingListing(t, r, owner)

	result, err := uc.CreateCheckoutSession(ctx, owner, CreateCheckoutInput{
		ListingID:   listing.ID,
		Type:        entity.PaymentAdPosting,
		TotalAmount: 200,
	})
	require.NoError(t, err)

	err = uc.HandleWebhook(ctx, webhookPayload(&service.WebhookEvent{
		ID:                "evt_1",
		Type:              "checkout.session.completed",
		SessionID:         result.SessionID,
		ClientReferenceID: result.Payment.ID,
		PaymentStatus:     "paid",
	}), "sig")
	require.NoError(t, err)

	payment, err := r.payments.GetByID(ctx, result.Payment.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentCompleted, payment.Status)

	published, err := r.listings.GetByID(ctx, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ListingPublished, published.Status)
}

func TestHandleWebhookIgnoresIrrelevantEvents(t *testing.T) {
	ctx := context.Background()
	uc := newPaymentUseCase(newRepos(), newFakeGateway())

	err := uc.HandleWebhook(ctx, webhookPayload(&service.WebhookEvent{
		ID:            "evt_1",
		Type:          "payment_intent.created",
		PaymentStatus: "paid",
	}), "sig")
	assert.NoError(t, err)

	err = uc.HandleWebhook(ctx, webhookPayload(&service.WebhookEvent{
		ID:            "evt_2",
		Type:          "checkout.session.completed",
		SessionID:     "cs_unknown",
		PaymentStatus: "unpaid",
	}), "sig")
	assert.NoError(t, err)
}

func TestHandleWebhookAcksUnknownPayment(t *testing.T) {
	ctx := context.Background()
	uc := newPaymentUseCase(newRepos(), newFakeGateway())

	// A retry would never succeed, so the event is acknowledged.
	err := uc.HandleWebhook(ctx, webhookPayload(&service.WebhookEvent{
		ID:                "evt_1",
		Type:              "checkout.session.completed",
		SessionID:         "cs_unknown",
		ClientReferenceID: "missing-payment",
		PaymentStatus:     "paid",
	}), "sig")
	assert.NoError(t, err)
}

func TestHandleFailureRemovesUnpaidListing(t *testing.T) {
	ctx := context.Background()
	r := newRepos()
	gateway := newFakeGateway()
	uc := newPaymentUseCase(r, gateway)

	owner := r.seedUser(ctx, "u1", "seller@example.com", "seller", entity.RoleUser)
	listing := seedPendingListing(t, r, owner)

	result, err := uc.CreateCheckoutSession(ctx, owner, CreateCheckoutInput{
		ListingID:   listing.ID,
		Type:        entity.PaymentAdPosting,
		TotalAmount: 200,
	})
	require.NoError(t, err)

	payment, err := uc.HandleFailure(ctx, owner, HandleFailureInput{PaymentID: result.Payment.ID})
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentFailed, payment.Status)

	_, err = r.listings.GetByID(ctx, listing.ID)
	assert.True(t, isCode(err, "NOT_FOUND"))
}

func TestHandleFailureLeavesPublishedListingAlone(t *testing.T) {
	ctx := context.Background()
	r := newRepos()
	gateway := newFakeGateway()
	uc := newPaymentUseCase(r, gateway)

	owner := r.seedUser(ctx, "u1", "seller@example.com", "seller", entity.RoleUser)
	listing := seedPendingListing(t, r, owner)

	result, err := uc.CreateCheckoutSession(ctx, owner, CreateCheckoutInput{
		ListingID:   listing.ID,
		Type:        entity.PaymentAdPosting,
		TotalAmount: 200,
	})
	require.NoError(t, err)
	gateway.markPaid(result.SessionID)
	_, err = uc.VerifySession(ctx, owner, result.SessionID)
	require.NoError(t, err)

	// A stale failure report after completion must not unpublish anything.
	payment, err := uc.HandleFailure(ctx, owner, HandleFailureInput{SessionID: result.SessionID})
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentCompleted, payment.Status)

	published, err := r.listings.GetByID(ctx, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ListingPublished, published.Status)
}

func TestCleanupExpiredSweepsOnlyOldPendingListings(t *testing.T) {
	ctx := context.Background()
	r := newRepos()
	gateway := newFakeGateway()
	uc := newPaymentUseCase(r, gateway)

	owner := r.seedUser(ctx, "u1", "seller@example.com", "seller", entity.RoleUser)

	stale := seedPendingListing(t, r, owner)
	stale.CreatedAt = time.Now().Add(-2 * time.Hour)
	require.NoError(t, r.listings.Update(ctx, stale))

	staleResult, err := uc.CreateCheckoutSession(ctx, owner, CreateCheckoutInput{
		ListingID:   stale.ID,
		Type:        entity.PaymentAdPosting,
		TotalAmount: 200,
	})
	require.NoError(t, err)

	fresh := seedPendingListing(t, r, owner)
	fresh.CreatedAt = time.Now().Add(-10 * time.Minute)
	require.NoError(t, r.listings.Update(ctx, fresh))

	published := seedPendingListing(t, r, owner)
	published.CreatedAt = time.Now().Add(-2 * time.Hour)
	published.Status = entity.ListingPublished
	require.NoError(t, r.listings.Update(ctx, published))

	removed, err := uc.CleanupExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = r.listings.GetByID(ctx, stale.ID)
	assert.True(t, isCode(err, "NOT_FOUND"))

	_, err = r.listings.GetByID(ctx, fresh.ID)
	assert.NoError(t, err, "a 10-minute-old pending listing must survive the sweep")

	_, err = r.listings.GetByID(ctx, published.ID)
	assert.NoError(t, err)

	expired, err := r.payments.GetByID(ctx, staleResult.Payment.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentExpired, expired.Status)
}
