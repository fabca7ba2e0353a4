package entity

import (
	"time"
)

type PaymentType string

const (
	PaymentAdPosting          PaymentType = "ad_posting"
	PaymentAdPostingWithBoost PaymentType = "ad_posting_with_boost"
	PaymentAdBoost            PaymentType = "ad_boost"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentExpired   PaymentStatus = "expired"
)

type Payment struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	ListingID string `json:"listingId"`

	// Amount in minor currency units.
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`

	Type   PaymentType   `json:"type"`
	Status PaymentStatus `json:"status"`

	// Gateway checkout session reference.
	SessionID string `json:"sessionId,omitempty"`

	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// IncludesBoost reports whether the payment covers a featured window.
func (p *Payment) IncludesBoost() bool {
	return p.Type == PaymentAdPostingWithBoost || p.Type == PaymentAdBoost
}

// Terminal reports whether the payment has left the pending state. Status
// transitions only move forward, so a terminal payment is never touched again.
func (p *Payment) Terminal() bool {
	return p.Status != PaymentPending
}
