package handler

import (
	"io"

	"github.com/labstack/echo/v4"

	"persianconnect/internal/adapter/api/middleware"
	"persianconnect/internal/domain/entity"
	"persianconnect/internal/usecase"
	"persianconnect/pkg/errors"
	"persianconnect/pkg/logger"
	"persianconnect/pkg/response"
)

type PaymentHandler struct {
	paymentUseCase *usecase.PaymentUseCase
}

func NewPaymentHandler(paymentUseCase *usecase.PaymentUseCase) *PaymentHandler {
	return &PaymentHandler{
		paymentUseCase: paymentUseCase,
	}
}

type createCheckoutRequest struct {
	ListingID    string `json:"listingId" validate:"required"`
	TotalAmount  int64  `json:"totalAmount" validate:"required,gt=0"`
	Currency     string `json:"currency"`
	IncludeBoost bool   `json:"includeBoost"`
}

func (h *PaymentHandler) CreateCheckoutSession(c echo.Context) error {
	var req createCheckoutRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	user, ok := middleware.CurrentUser(c)
	if !ok {
		return response.Error(c, errors.Unauthorized("Authentication required", nil))
	}

	paymentType := entity.PaymentAdPosting
	if req.IncludeBoost {
		paymentType = entity.PaymentAdPostingWithBoost
	}

	result, err := h.paymentUseCase.CreateCheckoutSession(c.Request().Context(), user, usecase.CreateCheckoutInput{
		ListingID:   req.ListingID,
		Type:        paymentType,
		TotalAmount: req.TotalAmount,
		Currency:    req.Currency,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessMessage(c, "Checkout session created", result)
}

type createBoostRequest struct {
	ListingID   string `json:"listingId" validate:"required"`
	TotalAmount int64  `json:"totalAmount" validate:"required,gt=0"`
	Currency    string `json:"currency"`
}

func (h *PaymentHandler) CreateBoostSession(c echo.Context) error {
	var req createBoostRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	user, ok := middleware.CurrentUser(c)
	if !ok {
		return response.Error(c, errors.Unauthorized("Authentication required", nil))
	}

	result, err := h.paymentUseCase.CreateCheckoutSession(c.Request().Context(), user, usecase.CreateCheckoutInput{
		ListingID:   req.ListingID,
		Type:        entity.PaymentAdBoost,
		TotalAmount: req.TotalAmount,
		Currency:    req.Currency,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessMessage(c, "Boost checkout session created", result)
}

type verifySessionRequest struct {
	SessionID string `json:"sessionId" validate:"required"`
}

func (h *PaymentHandler) VerifySession(c echo.Context) error {
	var req verifySessionRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	user, ok := middleware.CurrentUser(c)
	if !ok {
		return response.Error(c, errors.Unauthorized("Authentication required", nil))
	}

	payment, err := h.paymentUseCase.VerifySession(c.Request().Context(), user, req.SessionID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessMessage(c, "Payment verified", payment)
}

type handleFailureRequest struct {
	PaymentID string `json:"paymentId"`
	SessionID string `json:"sessionId"`
}

func (h *PaymentHandler) HandleFailure(c echo.Context) error {
	var req handleFailureRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if req.PaymentID == "" && req.SessionID == "" {
		return response.Error(c, errors.BadRequest("paymentId or sessionId is required", nil))
	}

	user, ok := middleware.CurrentUser(c)
	if !ok {
		return response.Error(c, errors.Unauthorized("Authentication required", nil))
	}

	payment, err := h.paymentUseCase.HandleFailure(c.Request().Context(), user, usecase.HandleFailureInput{
		PaymentID: req.PaymentID,
		SessionID: req.SessionID,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessMessage(c, "Payment failure recorded", payment)
}

func (h *PaymentHandler) CleanupExpired(c echo.Context) error {
	removed, err := h.paymentUseCase.CleanupExpired(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessMessage(c, "Cleanup completed", map[string]int{"removed": removed})
}

// StripeWebhook receives gateway-signed events. It must stay idempotent
// under redelivery; the usecase's status guard takes care of that.
func (h *PaymentHandler) StripeWebhook(c echo.Context) error {
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return response.Error(c, errors.BadRequest("Failed to read webhook body", err))
	}

	signature := c.Request().Header.Get("Stripe-Signature")
	logger.Info("Received webhook from %s", c.RealIP())

	if err := h.paymentUseCase.HandleWebhook(c.Request().Context(), payload, signature); err != nil {
		return response.Error(c, err)
	}

	return response.SuccessMessage(c, "Webhook processed", nil)
}
