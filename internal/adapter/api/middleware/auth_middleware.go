package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"persianconnect/internal/usecase"
	"persianconnect/pkg/errors"
	"persianconnect/pkg/response"
)

// AuthMiddleware normalizes bearer-token extraction at the transport
// boundary and runs the identity synchronizer, so handlers only ever see a
// resolved profile with a typed role.
type AuthMiddleware struct {
	authUseCase *usecase.AuthUseCase
}

func NewAuthMiddleware(authUseCase *usecase.AuthUseCase) *AuthMiddleware {
	return &AuthMiddleware{
		authUseCase: authUseCase,
	}
}

// BearerToken extracts the credential from the Authorization header,
// returning "" when absent or malformed.
func BearerToken(c echo.Context) string {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := BearerToken(c)
		if token == "" {
			return response.Error(c, errors.Unauthorized("Authorization header is required", nil))
		}

		user, err := m.authUseCase.Authenticate(c.Request().Context(), token)
		if err != nil {
			return response.Error(c, err)
		}

		if user.Blocked {
			return response.Error(c, errors.Forbidden("Account is blocked", nil))
		}

		c.Set("uid", user.ID)
		c.Set("user", user)
		c.Set("role", user.Role)

		return next(c)
	}
}
