package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aniwa/aniwa-server/internal/core/domain"
)

// identity is the authenticated caller as injected by the Auth middleware.
type identity struct {
	UserID   string
	Username string
	Role     domain.Role
}

// ctxIdentity extracts the caller's identity and fast-fails when the Auth
// middleware did not run or the token carried no subject.
func ctxIdentity(c echo.Context) (identity, error) {
	userID, _ := c.Get("user_id").(string)
	if userID == "" {
		return identity{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}

	username, _ := c.Get("username").(string)
	roleStr, _ := c.Get("role").(string)
	return identity{
		UserID:   userID,
		Username: username,
		Role:     domain.Role(roleStr),
	}, nil
}
