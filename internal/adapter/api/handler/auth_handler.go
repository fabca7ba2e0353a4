package handler

import (
	"github.com/labstack/echo/v4"

	"persianconnect/internal/adapter/api/middleware"
	"persianconnect/internal/usecase"
	"persianconnect/pkg/errors"
	"persianconnect/pkg/response"
)

type AuthHandler struct {
	authUseCase *usecase.AuthUseCase
}

func NewAuthHandler(authUseCase *usecase.AuthUseCase) *AuthHandler {
	return &AuthHandler{
		authUseCase: authUseCase,
	}
}

type signupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Username string `json:"username" validate:"omitempty,min=3,max=30"`
	Name     string `json:"name"`
}

func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	result, err := h.authUseCase.Register(c.Request().Context(), usecase.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Username: req.Username,
		Name:     req.Name,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, result)
}

type signinRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) Signin(c echo.Context) error {
	var req signinRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	result, err := h.authUseCase.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessMessage(c, "Signed in", result)
}

func (h *AuthHandler) GetProfile(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return response.Error(c, errors.Unauthorized("Authentication required", nil))
	}
	return response.Success(c, user)
}

type updateProfileRequest struct {
	Name string `json:"name"`
}

func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return response.Error(c, errors.Unauthorized("Authentication required", nil))
	}

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}

	updated, err := h.authUseCase.UpdateProfile(c.Request().Context(), user.ID, usecase.UpdateProfileInput{
		Name: req.Name,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessMessage(c, "Profile updated", updated)
}
