package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/aniwa/aniwa-server/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// The username-change cooldown carries the remaining days in the error.
	var cooldown *domain.CooldownError
	if errors.As(err, &cooldown) {
		return http.StatusTooManyRequests, cooldown.Error()
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrInvalidRefreshToken):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, domain.ErrInsufficientPermissions),
		errors.Is(err, domain.ErrLastSiteOwner),
		errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrAnimeNotFound),
		errors.Is(err, domain.ErrEpisodeNotFound),
		errors.Is(err, domain.ErrCommentNotFound),
		errors.Is(err, domain.ErrWatchlistEntryNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrUsernameTaken),
		errors.Is(err, domain.ErrEmailTaken),
		errors.Is(err, domain.ErrDuplicateAnime),
		errors.Is(err, domain.ErrRoleConflict):
		return http.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrInvalidWatchTransition):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, domain.ErrUsernameLength),
		errors.Is(err, domain.ErrPasswordTooShort),
		errors.Is(err, domain.ErrDisplayNameTooLong),
		errors.Is(err, domain.ErrBioTooLong),
		errors.Is(err, domain.ErrInvalidRole),
		errors.Is(err, domain.ErrPasswordIncorrect),
		errors.Is(err, domain.ErrCommentEmpty),
		errors.Is(err, domain.ErrCommentTooLong):
		return http.StatusBadRequest, err.Error()
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
