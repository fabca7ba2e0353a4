package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"persianconnect/pkg/logger"
)

// StripePaymentService talks to Stripe Checkout over its plain HTTP API.
type StripePaymentService struct {
	secretKey     string
	webhookSecret string
	baseURL       string
	httpClient    *http.Client
}

func NewStripePaymentService(secretKey, webhookSecret string) *StripePaymentService {
	return &StripePaymentService{
		secretKey:     secretKey,
		webhookSecret: webhookSecret,
		baseURL:       "https://api.stripe.com/v1",
		httpClient:    &http.Client{Timeout: 15 * time.Second},
	}
}

type stripeSession struct {
	ID                string `json:"id"`
	URL               string `json:"url"`
	ClientReferenceID string `json:"client_reference_id"`
	PaymentStatus     string `json:"payment_status"`
	AmountTotal       int64  `json:"amount_total"`
	Currency          string `json:"currency"`
	Error             *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (s *StripePaymentService) CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error) {
	logger.Info("Creating checkout session for payment %s, amount %d %s", params.PaymentID, params.Amount, params.Currency)

	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("client_reference_id", params.PaymentID)
	form.Set("success_url", params.SuccessURL)
	form.Set("cancel_url", params.CancelURL)
	form.Set("line_items[0][quantity]", "1")
	form.Set("line_items[0][price_data][currency]", params.Currency)
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(params.Amount, 10))
	form.Set("line_items[0][price_data][product_data][name]", params.Description)
	if params.CustomerEmail != "" {
		form.Set("customer_email", params.CustomerEmail)
	}

	session, err := s.do(ctx, http.MethodPost, "/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (s *StripePaymentService) GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	return s.do(ctx, http.MethodGet, "/checkout/sessions/"+url.PathEscape(sessionID), nil)
}

func (s *StripePaymentService) do(ctx context.Context, method, path string, body io.Reader) (*CheckoutSession, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.secretKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway request failed: %v", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read gateway response: %v", err)
	}

	var session stripeSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to parse gateway response: %v", err)
	}
	if session.Error != nil {
		return nil, fmt.Errorf("gateway error: %s", session.Error.Message)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	return &CheckoutSession{
		ID:                session.ID,
		URL:               session.URL,
		ClientReferenceID: session.ClientReferenceID,
		PaymentStatus:     session.PaymentStatus,
		AmountTotal:       session.AmountTotal,
		Currency:          session.Currency,
	}, nil
}

type stripeEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object stripeSession `json:"object"`
	} `json:"data"`
}

// ParseWebhookEvent verifies the Stripe-Signature header (t=...,v1=... with
// an HMAC-SHA256 over "<t>.<payload>") and decodes the event.
func (s *StripePaymentService) ParseWebhookEvent(payload []byte, signatureHeader string) (*WebhookEvent, error) {
	if err := s.verifySignature(payload, signatureHeader); err != nil {
		return nil, err
	}

	var event stripeEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("failed to parse webhook event: %v", err)
	}

	return &WebhookEvent{
		ID:                event.ID,
		Type:              event.Type,
		SessionID:         event.Data.Object.ID,
		ClientReferenceID: event.Data.Object.ClientReferenceID,
		PaymentStatus:     event.Data.Object.PaymentStatus,
	}, nil
}

func (s *StripePaymentService) verifySignature(payload []byte, header string) error {
	if s.webhookSecret == "" {
		logger.Warn("Webhook secret not configured; skipping signature verification")
		return nil
	}

	var timestamp string
	var signatures []string
	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			timestamp = kv[1]
		case "v1":
			signatures = append(signatures, kv[1])
		}
	}
	if timestamp == "" || len(signatures) == 0 {
		return fmt.Errorf("malformed signature header")
	}

	mac := hmac.New(sha256.New, []byte(s.webhookSecret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, sig := range signatures {
		if hmac.Equal([]byte(expected), []byte(sig)) {
			return nil
		}
	}
	return fmt.Errorf("signature mismatch")
}
