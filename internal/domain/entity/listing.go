package entity

import (
	"time"
)

type ListingStatus string

const (
	ListingPendingPayment ListingStatus = "pending_payment"
	ListingApproved       ListingStatus = "approved"
	ListingPublished      ListingStatus = "published"
	ListingRejected       ListingStatus = "rejected"
	ListingUnderReview    ListingStatus = "under_review"
)

type ListingPaymentStatus string

const (
	ListingPaymentPending   ListingPaymentStatus = "pending"
	ListingPaymentCompleted ListingPaymentStatus = "completed"
)

type Listing struct {
	ID            string `json:"id"`
	OwnerID       string `json:"ownerId"`
	Title         string `json:"title"`
	TitleFa       string `json:"titleFa,omitempty"`
	Description   string `json:"description"`
	DescriptionFa string `json:"descriptionFa,omitempty"`
	Category      string `json:"category"`
	Subcategory   string `json:"subcategory,omitempty"`

	Price      int64  `json:"price"`
	Currency   string `json:"currency,omitempty"`
	Negotiable bool   `json:"negotiable"`

	Country string   `json:"country,omitempty"`
	City    string   `json:"city,omitempty"`
	Images  []string `json:"images,omitempty"`

	Status        ListingStatus        `json:"status"`
	PaymentStatus ListingPaymentStatus `json:"paymentStatus"`

	Featured      bool       `json:"featured"`
	FeaturedUntil *time.Time `json:"featuredUntil,omitempty"`

	Views int64 `json:"views"`

	ModeratedBy     string `json:"moderatedBy,omitempty"`
	RejectionReason string `json:"rejectionReason,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// PubliclyVisible reports whether the listing may appear in public queries.
// A listing that has not cleared payment must never be visible.
func (l *Listing) PubliclyVisible() bool {
	return l.Status == ListingApproved || l.Status == ListingPublished
}

// FeaturedActive reports whether the boost window is still running.
func (l *Listing) FeaturedActive(now time.Time) bool {
	return l.Featured && l.FeaturedUntil != nil && l.FeaturedUntil.After(now)
}
