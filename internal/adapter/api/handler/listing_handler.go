package handler

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"persianconnect/internal/adapter/api/middleware"
	"persianconnect/internal/domain/entity"
	"persianconnect/internal/usecase"
	"persianconnect/pkg/errors"
	"persianconnect/pkg/response"
	"persianconnect/pkg/utils"
)

type ListingHandler struct {
	listingUseCase *usecase.ListingUseCase
}

func NewListingHandler(listingUseCase *usecase.ListingUseCase) *ListingHandler {
	return &ListingHandler{
		listingUseCase: listingUseCase,
	}
}

type listingRequest struct {
	Title         string   `json:"title" validate:"required"`
	TitleFa       string   `json:"titleFa"`
	Description   string   `json:"description" validate:"required"`
	DescriptionFa string   `json:"descriptionFa"`
	Category      string   `json:"category" validate:"required"`
	Subcategory   string   `json:"subcategory"`
	Price         int64    `json:"price" validate:"gte=0"`
	Currency      string   `json:"currency"`
	Negotiable    bool     `json:"negotiable"`
	Country       string   `json:"country"`
	City          string   `json:"city"`
	Images        []string `json:"images"`
	Status        string   `json:"status" validate:"omitempty,oneof=pending_payment approved published rejected under_review"`
}

func (h *ListingHandler) CreateListing(c echo.Context) error {
	var req listingRequest
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

	listing, err := h.listingUseCase.Create(c.Request().Context(), user, usecase.CreateListingInput{
		Title:         req.Title,
		TitleFa:       req.TitleFa,
		Description:   req.Description,
		DescriptionFa: req.DescriptionFa,
		Category:      req.Category,
		Subcategory:   req.Subcategory,
		Price:         req.Price,
		Currency:      req.Currency,
		Negotiable:    req.Negotiable,
		Country:       req.Country,
		City:          req.City,
		Images:        req.Images,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, listing)
}

func (h *ListingHandler) ListListings(c echo.Context) error {
	pagination := utils.GetPaginationParams(c)

	featured := false
	if v := c.QueryParam("featured"); v != "" {
		featured, _ = strconv.ParseBool(v)
	}

	listings, total, err := h.listingUseCase.List(c.Request().Context(), usecase.ListingFilter{
		Category:     c.QueryParam("category"),
		Country:      c.QueryParam("country"),
		City:         c.QueryParam("city"),
		FeaturedOnly: featured,
		Limit:        pagination.PageSize,
		Offset:       pagination.Offset,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, listings, total, pagination.Page, pagination.PageSize)
}

func (h *ListingHandler) GetListing(c echo.Context) error {
	listing, err := h.listingUseCase.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, listing)
}

func (h *ListingHandler) UpdateListing(c echo.Context) error {
	var req listingRequest
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

	listing, err := h.listingUseCase.Update(c.Request().Context(), user, c.Param("id"), usecase.UpdateListingInput{
		Title:         req.Title,
		TitleFa:       req.TitleFa,
		Description:   req.Description,
		DescriptionFa: req.DescriptionFa,
		Category:      req.Category,
		Subcategory:   req.Subcategory,
		Price:         req.Price,
		Currency:      req.Currency,
		Negotiable:    req.Negotiable,
		Country:       req.Country,
		City:          req.City,
		Images:        req.Images,
		Status:        entity.ListingStatus(req.Status),
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessMessage(c, "Listing updated", listing)
}

type boostRequest struct {
	Days int `json:"days" validate:"omitempty,gte=1,lte=90"`
}

func (h *ListingHandler) BoostListing(c echo.Context) error {
	var req boostRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	uid := c.Get("uid").(string)
	window := time.Duration(req.Days) * 24 * time.Hour

	listing, err := h.listingUseCase.Boost(c.Request().Context(), uid, c.Param("id"), window)
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessMessage(c, "Listing boosted", listing)
}

func (h *ListingHandler) UnboostListing(c echo.Context) error {
	uid := c.Get("uid").(string)

	listing, err := h.listingUseCase.Unboost(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessMessage(c, "Boost removed", listing)
}

func (h *ListingHandler) MyListings(c echo.Context) error {
	uid := c.Get("uid").(string)

	listings, err := h.listingUseCase.ListByOwner(c.Request().Context(), uid)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, listings)
}
