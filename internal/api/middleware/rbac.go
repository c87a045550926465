package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aniwa/aniwa-server/internal/core/domain"
)

// RequireRole gates a route behind a minimum role. The role hierarchy is
// strictly ordered, so any caller at or above min passes.
func RequireRole(min domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			roleStr, _ := c.Get("role").(string)
			role := domain.Role(roleStr)
			if !role.Valid() || !role.AtLeast(min) {
				return echo.NewHTTPError(http.StatusForbidden, "insufficient permissions")
			}
			return next(c)
		}
	}
}
