package usecase

import (
	"context"
	"sort"
	"strings"
	"time"

	"persianconnect/internal/domain/entity"
	"persianconnect/internal/domain/repository"
	"persianconnect/pkg/errors"
	"persianconnect/pkg/logger"
)

// AdminUseCase provides rollups and moderation actions. Role gating happens
// at the transport boundary (admin middleware); the self-targeting rules
// live here because they need both actor and target.
type AdminUseCase struct {
	userRepo    repository.UserRepository
	listingRepo repository.ListingRepository
	paymentRepo repository.PaymentRepository
}

func NewAdminUseCase(
	userRepo repository.UserRepository,
	listingRepo repository.ListingRepository,
	paymentRepo repository.PaymentRepository,
) *AdminUseCase {
	return &AdminUseCase{
		userRepo:    userRepo,
		listingRepo: listingRepo,
		paymentRepo: paymentRepo,
	}
}

type AdminStats struct {
	TotalUsers    int64 `json:"totalUsers"`
	TotalListings int64 `json:"totalListings"`
	TotalRevenue  int64 `json:"totalRevenue"`

	ListingsByStatus   map[string]int64 `json:"listingsByStatus"`
	ListingsByCategory map[string]int64 `json:"listingsByCategory"`
	ListingsByCountry  map[string]int64 `json:"listingsByCountry"`

	RevenueByDay  map[string]int64 `json:"revenueByDay"`
	RevenueByType map[string]int64 `json:"revenueByType"`
}

// Stats aggregates counts and revenue by scanning the flat store. Each scan
// degrades independently so one failing prefix does not blank the whole
// dashboard.
func (uc *AdminUseCase) Stats(ctx context.Context) (*AdminStats, error) {
	stats := &AdminStats{
		ListingsByStatus:   make(map[string]int64),
		ListingsByCategory: make(map[string]int64),
		ListingsByCountry:  make(map[string]int64),
		RevenueByDay:       make(map[string]int64),
		RevenueByType:      make(map[string]int64),
	}

	users, err := uc.userRepo.List(ctx)
	if err != nil {
		logger.Error("Stats: user scan failed: %v", err)
	}
	stats.TotalUsers = int64(len(users))

	listings, err := uc.listingRepo.List(ctx)
	if err != nil {
		logger.Error("Stats: listing scan failed: %v", err)
	}
	stats.TotalListings = int64(len(listings))
	for _, listing := range listings {
		stats.ListingsByStatus[string(listing.Status)]++
		if listing.Category != "" {
			stats.ListingsByCategory[listing.Category]++
		}
		if listing.Country != "" {
			stats.ListingsByCountry[listing.Country]++
		}
	}

	payments, err := uc.paymentRepo.List(ctx)
	if err != nil {
		logger.Error("Stats: payment scan failed: %v", err)
	}
	for _, payment := range payments {
		if payment.Status != entity.PaymentCompleted {
			continue
		}
		stats.TotalRevenue += payment.Amount
		stats.RevenueByType[string(payment.Type)] += payment.Amount

		day := payment.CreatedAt.UTC().Format("2006-01-02")
		if payment.CompletedAt != nil {
			day = payment.CompletedAt.UTC().Format("2006-01-02")
		}
		stats.RevenueByDay[day] += payment.Amount
	}

	return stats, nil
}

// ListUsers searches profiles by username/email substring with offset/limit
// pagination over the scanned, sorted set.
func (uc *AdminUseCase) ListUsers(ctx context.Context, query string, limit, offset int) ([]*entity.User, int64, error) {
	users, err := uc.userRepo.List(ctx)
	if err != nil {
		logger.Error("User scan failed, returning empty result: %v", err)
		return []*entity.User{}, 0, nil
	}

	query = strings.ToLower(query)
	var filtered []*entity.User
	for _, user := range users {
		if query != "" &&
			!strings.Contains(strings.ToLower(user.Username), query) &&
			!strings.Contains(strings.ToLower(user.Email), query) {
			continue
		}
		filtered = append(filtered, user)
	}

	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})

	total := int64(len(filtered))
	if offset < 0 {
		offset = 0
	}
	if offset >= len(filtered) {
		return []*entity.User{}, total, nil
	}
	end := len(filtered)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return filtered[offset:end], total, nil
}

// ListListings returns listings of any status for the admin console.
func (uc *AdminUseCase) ListListings(ctx context.Context, status entity.ListingStatus, limit, offset int) ([]*entity.Listing, int64, error) {
	listings, err := uc.listingRepo.List(ctx)
	if err != nil {
		logger.Error("Listing scan failed, returning empty result: %v", err)
		return []*entity.Listing{}, 0, nil
	}

	var filtered []*entity.Listing
	for _, listing := range listings {
		if status != "" && listing.Status != status {
			continue
		}
		filtered = append(filtered, listing)
	}

	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})

	total := int64(len(filtered))
	if offset < 0 {
		offset = 0
	}
	if offset >= len(filtered) {
		return []*entity.Listing{}, total, nil
	}
	end := len(filtered)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return filtered[offset:end], total, nil
}

// SetUserRole promotes or demotes a user. An admin cannot demote themselves.
func (uc *AdminUseCase) SetUserRole(ctx context.Context, actor *entity.User, targetID string, role entity.Role) (*entity.User, error) {
	if role != entity.RoleUser && role != entity.RoleAdmin {
		return nil, errors.BadRequest("Role must be user or admin", nil)
	}
	if actor.ID == targetID && role != entity.RoleAdmin {
		return nil, errors.BadRequest("You cannot demote yourself", nil)
	}

	target, err := uc.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	target.Role = role
	target.UpdatedAt = time.Now()
	if err := uc.userRepo.Update(ctx, target); err != nil {
		return nil, err
	}
	return target, nil
}

// SetUserBlocked blocks or unblocks a user. Admins cannot be blocked and a
// caller cannot block themselves.
func (uc *AdminUseCase) SetUserBlocked(ctx context.Context, actor *entity.User, targetID string, blocked bool) (*entity.User, error) {
	if actor.ID == targetID {
		return nil, errors.BadRequest("You cannot block yourself", nil)
	}

	target, err := uc.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if blocked && target.IsAdmin() {
		return nil, errors.BadRequest("Admins cannot be blocked", nil)
	}

	target.Blocked = blocked
	target.UpdatedAt = time.Now()
	if err := uc.userRepo.Update(ctx, target); err != nil {
		return nil, err
	}
	return target, nil
}
