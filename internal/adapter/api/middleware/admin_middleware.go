package middleware

import (
	"github.com/labstack/echo/v4"

	"persianconnect/internal/domain/entity"
	"persianconnect/pkg/errors"
	"persianconnect/pkg/response"
)

// AdminMiddleware gates routes on the role resolved by AuthMiddleware. It
// never re-parses headers or re-reads the store; the synchronizer's typed
// role is the single source of truth.
type AdminMiddleware struct{}

func NewAdminMiddleware() *AdminMiddleware {
	return &AdminMiddleware{}
}

func (m *AdminMiddleware) AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		role, ok := c.Get("role").(entity.Role)
		if !ok {
			return response.Error(c, errors.Unauthorized("Authentication required", nil))
		}

		if role != entity.RoleAdmin {
			return response.Error(c, errors.Forbidden("Admin privileges required", nil))
		}

		return next(c)
	}
}

// CurrentUser returns the profile placed in the context by AuthMiddleware.
func CurrentUser(c echo.Context) (*entity.User, bool) {
	user, ok := c.Get("user").(*entity.User)
	return user, ok
}
