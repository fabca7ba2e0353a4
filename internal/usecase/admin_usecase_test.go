package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"persianconnect/internal/domain/entity"
)

func TestStatsAggregatesCompletedPaymentsOnly(t *testing.T) {
	ctx := context.Background()
	r := newRepos()
	uc := NewAdminUseCase(r.users, r.listings, r.payments)

	r.seedUser(ctx, "u1", "a@example.com", "a", entity.RoleUser)
	r.seedUser(ctx, "u2", "b@example.com", "b", entity.RoleAdmin)

	listingUC := NewListingUseCase(r.listings)
	owner, _ := r.users.GetByID(ctx, "u1")
	_, err := listingUC.Create(ctx, owner, CreateListingInput{
		Title: "Bike", Description: "d", Category: "vehicles", Country: "DE",
	})
	require.NoError(t, err)

	completedAt := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	require.NoError(t, r.payments.Create(ctx, &entity.Payment{
		UserID:      "u1",
		ListingID:   "l1",
		Amount:      200,
		Currency:    "usd",
		Type:        entity.PaymentAdPosting,
		Status:      entity.PaymentCompleted,
		CompletedAt: &completedAt,
	}))
	require.NoError(t, r.payments.Create(ctx, &entity.Payment{
		UserID:      "u1",
		ListingID:   "l1",
		Amount:      100,
		Currency:    "usd",
		Type:        entity.PaymentAdBoost,
		Status:      entity.PaymentCompleted,
		CompletedAt: &completedAt,
	}))
	require.NoError(t, r.payments.Create(ctx, &entity.Payment{
		UserID:    "u1",
		ListingID: "l2",
		Amount:    300,
		Currency:  "usd",
		Type:      entity.PaymentAdPostingWithBoost,
		Status:    entity.PaymentPending,
	}))

	stats, err := uc.Stats(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(2), stats.TotalUsers)
	assert.Equal(t, int64(1), stats.TotalListings)
	assert.Equal(t, int64(300), stats.TotalRevenue, "pending payments are not revenue")
	assert.Equal(t, int64(1), stats.ListingsByStatus["pending_payment"])
	assert.Equal(t, int64(1), stats.ListingsByCategory["vehicles"])
	assert.Equal(t, int64(1), stats.ListingsByCountry["DE"])
	assert.Equal(t, int64(300), stats.RevenueByDay["2026-08-28"])
	assert.Equal(t, int64(200), stats.RevenueByType["ad_posting"])
	assert.Equal(t, int64(100), stats.RevenueByType["ad_boost"])
}

func TestListUsersFiltersBySubstring(t *testing.T) {
	ctx := context.Background()
	r := newRepos()
	uc := NewAdminUseCase(r.users, r.listings, r.payments)

	r.seedUser(ctx, "u1", "sara@example.com", "sara_shop", entity.RoleUser)
	r.seedUser(ctx, "u2", "reza@example.com", "reza", entity.RoleUser)

	matches, total, err := uc.ListUsers(ctx, "SARA", 20, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, matches, 1)
	assert.Equal(t, "u1", matches[0].ID)

	all, total, err := uc.ListUsers(ctx, "", 20, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, all, 2)

	paged, total, err := uc.ListUsers(ctx, "", 1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, paged, 1)
}

func TestListListingsFiltersByStatus(t *testing.T) {
	ctx := context.Background()
	r := newRepos()
	uc := NewAdminUseCase(r.users, r.listings, r.payments)

	owner := r.seedUser(ctx, "u1", "a@example.com", "a", entity.RoleUser)
	listingUC := NewListingUseCase(r.listings)

	pending, err := listingUC.Create(ctx, owner, CreateListingInput{Title: "Pending", Description: "d", Category: "misc"})
	require.NoError(t, err)

	published, err := listingUC.Create(ctx, owner, CreateListingInput{Title: "Published", Description: "d", Category: "misc"})
	require.NoError(t, err)
	published.Status = entity.ListingPublished
	require.NoError(t, r.listings.Update(ctx, published))

	// The admin console sees listings in every state.
	all, total, err := uc.ListListings(ctx, "", 20, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, all, 2)

	onlyPending, total, err := uc.ListListings(ctx, entity.ListingPendingPayment, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, onlyPending, 1)
	assert.Equal(t, pending.ID, onlyPending[0].ID)
}

func TestSetUserRoleBlocksSelfDemotion(t *testing.T) {
	ctx := context.Background()
	r := newRepos()
	uc := NewAdminUseCase(r.users, r.listings, r.payments)

	admin := r.seedUser(ctx, "a1", "admin@example.com", "admin", entity.RoleAdmin)
	target := r.seedUser(ctx, "u1", "user@example.com", "user", entity.RoleUser)

	_, err := uc.SetUserRole(ctx, admin, admin.ID, entity.RoleUser)
	require.Error(t, err)
	assert.True(t, isCode(err, "VALIDATION_ERROR"))

	_, err = uc.SetUserRole(ctx, admin, target.ID, entity.Role("superuser"))
	require.Error(t, err)
	assert.True(t, isCode(err, "VALIDATION_ERROR"))

	promoted, err := uc.SetUserRole(ctx, admin, target.ID, entity.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, promoted.Role)
}

func TestSetUserBlockedProtectsAdminsAndSelf(t *testing.T) {
	ctx := context.Background()
	r := newRepos()
	uc := NewAdminUseCase(r.users, r.listings, r.payments)

	admin := r.seedUser(ctx, "a1", "admin@example.com", "admin", entity.RoleAdmin)
	other := r.seedUser(ctx, "a2", "other@example.com", "other", entity.RoleAdmin)
	target := r.seedUser(ctx, "u1", "user@example.com", "user", entity.RoleUser)

	_, err := uc.SetUserBlocked(ctx, admin, admin.ID, true)
	require.Error(t, err)
	assert.True(t, isCode(err, "VALIDATION_ERROR"))

	_, err = uc.SetUserBlocked(ctx, admin, other.ID, true)
	require.Error(t, err)
	assert.True(t, isCode(err, "VALIDATION_ERROR"))

	blocked, err := uc.SetUserBlocked(ctx, admin, target.ID, true)
	require.NoError(t, err)
	assert.True(t, blocked.Blocked)

	unblocked, err := uc.SetUserBlocked(ctx, admin, target.ID, false)
	require.NoError(t, err)
	assert.False(t, unblocked.Blocked)
}
