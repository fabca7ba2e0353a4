package entity

import "time"

type Chat struct {
	ID        string `json:"id"`
	BuyerID   string `json:"buyerId"`
	SellerID  string `json:"sellerId"`
	ListingID string `json:"listingId"`

	// Denormalized snapshots so chat lists render without extra lookups.
	BuyerName    string `json:"buyerName,omitempty"`
	SellerName   string `json:"sellerName,omitempty"`
	ListingTitle string `json:"listingTitle,omitempty"`

	LastMessage   string    `json:"lastMessage,omitempty"`
	LastMessageAt time.Time `json:"lastMessageAt"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HasParticipant reports whether the user is one of the two chat members.
func (c *Chat) HasParticipant(userID string) bool {
	return c.BuyerID == userID || c.SellerID == userID
}

// OtherParticipant returns the counterpart of the given participant.
func (c *Chat) OtherParticipant(userID string) string {
	if c.BuyerID == userID {
		return c.SellerID
	}
	return c.BuyerID
}

// SamePair reports whether the chat joins the same unordered participant
// pair, regardless of who initiated it.
func (c *Chat) SamePair(a, b string) bool {
	return (c.BuyerID == a && c.SellerID == b) || (c.BuyerID == b && c.SellerID == a)
}
