package service

import (
	"context"
)

// CheckoutParams describes a hosted checkout to create with the gateway.
// PaymentID travels as the client reference so the completed session can be
// mapped back to our payment record without a secondary lookup.
type CheckoutParams struct {
	PaymentID     string
	Amount        int64
	Currency      string
	Description   string
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
}

// CheckoutSession is the gateway's view of a checkout.
type CheckoutSession struct {
	ID                string
	URL               string
	ClientReferenceID string
	PaymentStatus     string
	AmountTotal       int64
	Currency          string
}

// Paid reports whether the gateway marks the session as settled.
func (s *CheckoutSession) Paid() bool {
	return s.PaymentStatus == "paid"
}

// WebhookEvent is a verified, decoded gateway callback.
type WebhookEvent struct {
	ID                string
	Type              string
	SessionID         string
	ClientReferenceID string
	PaymentStatus     string
}

// PaymentGateway is the external checkout collaborator, reachable over HTTP.
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error)
	ParseWebhookEvent(payload []byte, signatureHeader string) (*WebhookEvent, error)
}
