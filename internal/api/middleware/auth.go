package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/aniwa/aniwa-server/internal/api/metrics"
	"github.com/aniwa/aniwa-server/internal/pkg/token"
)

// Auth validates the bearer access token and injects the caller's identity
// into context under "user_id", "username", and "role".
func Auth(tokens *token.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims, err := tokens.VerifyAccess(parts[1])
			if err != nil {
				switch {
				case errors.Is(err, token.ErrTokenExpired):
					metrics.TokenVerificationsTotal.WithLabelValues("expired").Inc()
					return echo.NewHTTPError(http.StatusUnauthorized, "token expired")
				case errors.Is(err, token.ErrTokenWrongAudience):
					metrics.TokenVerificationsTotal.WithLabelValues("wrong_audience").Inc()
					return echo.NewHTTPError(http.StatusUnauthorized, "wrong token type")
				default:
					metrics.TokenVerificationsTotal.WithLabelValues("malformed").Inc()
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
				}
			}
			metrics.TokenVerificationsTotal.WithLabelValues("ok").Inc()

			c.Set("user_id", claims.Subject)
			c.Set("username", claims.Username)
			c.Set("role", string(claims.Role))

			return next(c)
		}
	}
}
