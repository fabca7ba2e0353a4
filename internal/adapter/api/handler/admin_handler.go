package handler

import (
	"github.com/labstack/echo/v4"

	"persianconnect/internal/adapter/api/middleware"
	"persianconnect/internal/domain/entity"
	"persianconnect/internal/usecase"
	"persianconnect/pkg/errors"
	"persianconnect/pkg/response"
	"persianconnect/pkg/utils"
)

type AdminHandler struct {
	adminUseCase   *usecase.AdminUseCase
	listingUseCase *usecase.ListingUseCase
}

func NewAdminHandler(adminUseCase *usecase.AdminUseCase, listingUseCase *usecase.ListingUseCase) *AdminHandler {
	return &AdminHandler{
		adminUseCase:   adminUseCase,
		listingUseCase: listingUseCase,
	}
}

func (h *AdminHandler) GetStats(c echo.Context) error {
	stats, err := h.adminUseCase.Stats(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, stats)
}

func (h *AdminHandler) ListUsers(c echo.Context) error {
	pagination := utils.GetPaginationParams(c)

	users, total, err := h.adminUseCase.ListUsers(
		c.Request().Context(),
		c.QueryParam("q"),
		pagination.PageSize,
		pagination.Offset,
	)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, users, total, pagination.Page, pagination.PageSize)
}

type setUserStatusRequest struct {
	Blocked bool `json:"blocked"`
}

func (h *AdminHandler) SetUserStatus(c echo.Context) error {
	var req setUserStatusRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}

	actor, ok := middleware.CurrentUser(c)
	if !ok {
		return response.Error(c, errors.Unauthorized("Authentication required", nil))
	}

	user, err := h.adminUseCase.SetUserBlocked(c.Request().Context(), actor, c.Param("id"), req.Blocked)
	if err != nil {
		return response.Error(c, err)
	}

	message := "User unblocked"
	if req.Blocked {
		message = "User blocked"
	}
	return response.SuccessMessage(c, message, user)
}

type setUserRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user admin"`
}

func (h *AdminHandler) SetUserRole(c echo.Context) error {
	var req setUserRoleRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	actor, ok := middleware.CurrentUser(c)
	if !ok {
		return response.Error(c, errors.Unauthorized("Authentication required", nil))
	}

	user, err := h.adminUseCase.SetUserRole(c.Request().Context(), actor, c.Param("id"), entity.Role(req.Role))
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessMessage(c, "Role updated", user)
}

func (h *AdminHandler) ListListings(c echo.Context) error {
	pagination := utils.GetPaginationParams(c)

	listings, total, err := h.adminUseCase.ListListings(
		c.Request().Context(),
		entity.ListingStatus(c.QueryParam("status")),
		pagination.PageSize,
		pagination.Offset,
	)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, listings, total, pagination.Page, pagination.PageSize)
}

type moderateListingRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected under_review"`
	Reason string `json:"reason"`
}

func (h *AdminHandler) ModerateListing(c echo.Context) error {
	var req moderateListingRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	actor, ok := middleware.CurrentUser(c)
	if !ok {
		return response.Error(c, errors.Unauthorized("Authentication required", nil))
	}

	listing, err := h.listingUseCase.Moderate(
		c.Request().Context(),
		actor,
		c.Param("id"),
		entity.ListingStatus(req.Status),
		req.Reason,
	)
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessMessage(c, "Listing moderated", listing)
}

func (h *AdminHandler) DeleteListing(c echo.Context) error {
	if err := h.listingUseCase.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return response.Error(c, err)
	}

	return response.SuccessMessage(c, "Listing deleted", map[string]string{"id": c.Param("id")})
}
