package usecase

import (
	"context"
	"sort"
	"time"

	"persianconnect/internal/domain/entity"
	"persianconnect/internal/domain/repository"
	"persianconnect/pkg/errors"
	"persianconnect/pkg/logger"
)

const (
	listingLifetime    = 30 * 24 * time.Hour
	defaultBoostWindow = 7 * 24 * time.Hour
)

// ListingUseCase owns the ad lifecycle: creation, payment-gated publication,
// edits, boost expiry, moderation and deletion.
type ListingUseCase struct {
	listingRepo repository.ListingRepository
}

func NewListingUseCase(listingRepo repository.ListingRepository) *ListingUseCase {
	return &ListingUseCase{
		listingRepo: listingRepo,
	}
}

type CreateListingInput struct {
	Title         string
	TitleFa       string
	Description   string
	DescriptionFa string
	Category      string
	Subcategory   string
	Price         int64
	Currency      string
	Negotiable    bool
	Country       string
	City          string
	Images        []string
}

// Create starts a listing in pending_payment, invisible to public queries
// until its payment completes. Admin authors bypass payment entirely.
func (uc *ListingUseCase) Create(ctx context.Context, actor *entity.User, input CreateListingInput) (*entity.Listing, error) {
	if input.Title == "" || input.Description == "" || input.Category == "" {
		return nil, errors.BadRequest("Title, description and category are required", nil)
	}

	now := time.Now()
	listing := &entity.Listing{
		OwnerID:       actor.ID,
		Title:         input.Title,
		TitleFa:       input.TitleFa,
		Description:   input.Description,
		DescriptionFa: input.DescriptionFa,
		Category:      input.Category,
		Subcategory:   input.Subcategory,
		Price:         input.Price,
		Currency:      input.Currency,
		Negotiable:    input.Negotiable,
		Country:       input.Country,
		City:          input.City,
		Images:        input.Images,
		Status:        entity.ListingPendingPayment,
		PaymentStatus: entity.ListingPaymentPending,
		ExpiresAt:     now.Add(listingLifetime),
	}

	if actor.IsAdmin() {
		listing.Status = entity.ListingApproved
		listing.PaymentStatus = entity.ListingPaymentCompleted
	}

	if err := uc.listingRepo.Create(ctx, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

type ListingFilter struct {
	Category     string
	Country      string
	City         string
	FeaturedOnly bool
	Limit        int
	Offset       int
}

// List runs the public query: only approved/published listings, lazily
// un-featuring anything whose boost window has passed, featured first, then
// newest first. A storage failure degrades to an empty page.
func (uc *ListingUseCase) List(ctx context.Context, filter ListingFilter) ([]*entity.Listing, int64, error) {
	all, err := uc.listingRepo.List(ctx)
	if err != nil {
		logger.Error("Listing scan failed, returning empty result: %v", err)
		return []*entity.Listing{}, 0, nil
	}

	now := time.Now()
	var filtered []*entity.Listing
	for _, listing := range all {
		if !listing.PubliclyVisible() {
			continue
		}

		uc.repairFeatured(ctx, listing, now)

		if filter.Category != "" && listing.Category != filter.Category {
			continue
		}
		if filter.Country != "" && listing.Country != filter.Country {
			continue
		}
		if filter.City != "" && listing.City != filter.City {
			continue
		}
		if filter.FeaturedOnly && !listing.Featured {
			continue
		}
		filtered = append(filtered, listing)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		if filtered[i].Featured != filtered[j].Featured {
			return filtered[i].Featured
		}
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})

	total := int64(len(filtered))
	page := paginate(filtered, filter.Offset, filter.Limit)
	return page, total, nil
}

// repairFeatured clears an expired boost on read. Best effort: a failed
// write just means the next scan repairs it again.
func (uc *ListingUseCase) repairFeatured(ctx context.Context, listing *entity.Listing, now time.Time) {
	if !listing.Featured || listing.FeaturedActive(now) {
		return
	}

	listing.Featured = false
	listing.FeaturedUntil = nil
	if err := uc.listingRepo.Update(ctx, listing); err != nil {
		logger.Warn("Failed to clear expired boost on listing %s: %v", listing.ID, err)
	}
}

func paginate(listings []*entity.Listing, offset, limit int) []*entity.Listing {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(listings) {
		return []*entity.Listing{}
	}
	end := len(listings)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return listings[offset:end]
}

// GetByID returns the listing and bumps its view counter. The increment is a
// read-modify-write over a non-transactional store; concurrent views can
// lose a count, which is accepted.
func (uc *ListingUseCase) GetByID(ctx context.Context, id string) (*entity.Listing, error) {
	listing, err := uc.listingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	uc.repairFeatured(ctx, listing, time.Now())

	listing.Views++
	if err := uc.listingRepo.Update(ctx, listing); err != nil {
		logger.Warn("Failed to persist view count for listing %s: %v", id, err)
	}

	return listing, nil
}

// ListByOwner returns every listing of the owner regardless of status.
func (uc *ListingUseCase) ListByOwner(ctx context.Context, ownerID string) ([]*entity.Listing, error) {
	listings, err := uc.listingRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		logger.Error("Owner listing scan failed for %s, returning empty result: %v", ownerID, err)
		return []*entity.Listing{}, nil
	}

	sort.Slice(listings, func(i, j int) bool {
		return listings[i].CreatedAt.After(listings[j].CreatedAt)
	})
	return listings, nil
}

type UpdateListingInput struct {
	Title         string
	TitleFa       string
	Description   string
	DescriptionFa string
	Category      string
	Subcategory   string
	Price         int64
	Currency      string
	Negotiable    bool
	Country       string
	City          string
	Images        []string

	// Status is honored for admin callers only.
	Status entity.ListingStatus
}

// Update edits a listing. Identity, ownership, timestamps, view count and
// payment/feature state are preserved no matter what the caller sends.
// Non-admin edits land back in approved without re-moderation.
func (uc *ListingUseCase) Update(ctx context.Context, actor *entity.User, id string, input UpdateListingInput) (*entity.Listing, error) {
	listing, err := uc.listingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if listing.OwnerID != actor.ID && !actor.IsAdmin() {
		return nil, errors.Forbidden("You can only edit your own listings", nil)
	}

	listing.Title = input.Title
	listing.TitleFa = input.TitleFa
	listing.Description = input.Description
	listing.DescriptionFa = input.DescriptionFa
	listing.Category = input.Category
	listing.Subcategory = input.Subcategory
	listing.Price = input.Price
	listing.Currency = input.Currency
	listing.Negotiable = input.Negotiable
	listing.Country = input.Country
	listing.City = input.City
	listing.Images = input.Images

	if actor.IsAdmin() && input.Status != "" {
		if !validStatus(input.Status) {
			return nil, errors.BadRequest("Invalid listing status", nil)
		}
		listing.Status = input.Status
	} else if !actor.IsAdmin() {
		listing.Status = entity.ListingApproved
	}

	if err := uc.listingRepo.Update(ctx, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

func validStatus(status entity.ListingStatus) bool {
	switch status {
	case entity.ListingPendingPayment, entity.ListingApproved, entity.ListingPublished,
		entity.ListingRejected, entity.ListingUnderReview:
		return true
	}
	return false
}

// Boost marks the listing featured for the given window (default 7 days).
func (uc *ListingUseCase) Boost(ctx context.Context, actorID, id string, window time.Duration) (*entity.Listing, error) {
	listing, err := uc.listingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing.OwnerID != actorID {
		return nil, errors.Forbidden("You can only boost your own listings", nil)
	}

	if window <= 0 {
		window = defaultBoostWindow
	}
	until := time.Now().Add(window)
	listing.Featured = true
	listing.FeaturedUntil = &until

	if err := uc.listingRepo.Update(ctx, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

func (uc *ListingUseCase) Unboost(ctx context.Context, actorID, id string) (*entity.Listing, error) {
	listing, err := uc.listingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing.OwnerID != actorID {
		return nil, errors.Forbidden("You can only unboost your own listings", nil)
	}

	listing.Featured = false
	listing.FeaturedUntil = nil

	if err := uc.listingRepo.Update(ctx, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

// Moderate applies an admin status decision, recording who moderated and,
// for rejections, why.
func (uc *ListingUseCase) Moderate(ctx context.Context, moderator *entity.User, id string, status entity.ListingStatus, reason string) (*entity.Listing, error) {
	switch status {
	case entity.ListingApproved, entity.ListingRejected, entity.ListingUnderReview:
	default:
		return nil, errors.BadRequest("Moderation status must be approved, rejected or under_review", nil)
	}

	listing, err := uc.listingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	listing.Status = status
	listing.ModeratedBy = moderator.ID
	if status == entity.ListingRejected {
		listing.RejectionReason = reason
	} else {
		listing.RejectionReason = ""
	}

	if err := uc.listingRepo.Update(ctx, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

// Delete hard-removes the listing together with its owner-index entry.
func (uc *ListingUseCase) Delete(ctx context.Context, id string) error {
	return uc.listingRepo.Delete(ctx, id)
}
