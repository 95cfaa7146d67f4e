package auth

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/smilecare/smilecare/internal/platform/apperr"
)

// RequireRole returns middleware that rejects callers whose role is not in
// the given set. Unlike broader RBAC schemes there is no implicit admin
// bypass; routes that admit admins list the role explicitly.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := IdentityFromContext(c.Request().Context())
			if id.Role == "" {
				return apperr.Unauthorized("authentication required")
			}
			for _, required := range roles {
				if id.Role == required {
					return next(c)
				}
			}
			return apperr.AccessDenied("required role: %s", strings.Join(roles, " or "))
		}
	}
}

// RequireStaff is shorthand for RequireRole over every non-patient role.
func RequireStaff() echo.MiddlewareFunc {
	return RequireRole(StaffRoles...)
}
