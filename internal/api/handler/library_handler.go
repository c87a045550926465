package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aniwa/aniwa-server/internal/core/domain"
	"github.com/aniwa/aniwa-server/internal/core/ports"
)

// LibraryHandler serves the caller's personal library: watch progress,
// watchlist, and favorites. All routes require authentication.
type LibraryHandler struct {
	library ports.LibraryService
}

func NewLibraryHandler(library ports.LibraryService) *LibraryHandler {
	return &LibraryHandler{library: library}
}

type saveProgressRequest struct {
	PositionSeconds int  `json:"position_seconds" validate:"gte=0"`
	Completed       bool `json:"completed"`
}

type watchStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=plan_to_watch watching completed dropped"`
}

type favoriteRequest struct {
	Favorite bool `json:"favorite"`
}

// SaveProgress handles PUT /v1/library/progress/:episodeID.
//
// @Summary      Save watch progress for an episode
// @Tags         library
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        episodeID  path      string               true  "Episode ID"
// @Param        body       body      saveProgressRequest  true  "Position and completion"
// @Success      200        {object}  domain.WatchProgress
// @Failure      404        {object}  errorResponse
// @Router       /v1/library/progress/{episodeID} [put]
func (h *LibraryHandler) SaveProgress(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req saveProgressRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	progress, err := h.library.SaveProgress(c.Request().Context(), ports.SaveProgressInput{
		UserID:          id.UserID,
		EpisodeID:       c.Param("episodeID"),
		PositionSeconds: req.PositionSeconds,
		Completed:       req.Completed,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, progress)
}

// AnimeProgress handles GET /v1/library/progress/anime/:animeID.
//
// @Summary      Get per-episode progress for a series
// @Tags         library
// @Produce      json
// @Security     BearerAuth
// @Param        animeID  path     string  true  "Anime ID"
// @Success      200      {array}  domain.WatchProgress
// @Router       /v1/library/progress/anime/{animeID} [get]
func (h *LibraryHandler) AnimeProgress(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	items, err := h.library.GetAnimeProgress(c.Request().Context(), id.UserID, c.Param("animeID"))
	if err != nil {
		return err
	}
	if items == nil {
		items = []*domain.WatchProgress{}
	}
	return c.JSON(http.StatusOK, items)
}

// SetWatchStatus handles PUT /v1/library/watchlist/:animeID.
//
// @Summary      Set the watch status of a series
// @Tags         library
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        animeID  path      string              true  "Anime ID"
// @Param        body     body      watchStatusRequest  true  "New status"
// @Success      200      {object}  domain.WatchlistEntry
// @Failure      404      {object}  errorResponse
// @Failure      422      {object}  errorResponse
// @Router       /v1/library/watchlist/{animeID} [put]
func (h *LibraryHandler) SetWatchStatus(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req watchStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	entry, err := h.library.SetWatchStatus(c.Request().Context(), id.UserID, c.Param("animeID"), domain.WatchStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entry)
}

// SetFavorite handles PUT /v1/library/watchlist/:animeID/favorite.
//
// @Summary      Mark or unmark a series as favorite
// @Tags         library
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        animeID  path      string           true  "Anime ID"
// @Param        body     body      favoriteRequest  true  "Favorite flag"
// @Success      200      {object}  domain.WatchlistEntry
// @Failure      404      {object}  errorResponse
// @Router       /v1/library/watchlist/{animeID}/favorite [put]
func (h *LibraryHandler) SetFavorite(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req favoriteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	entry, err := h.library.SetFavorite(c.Request().Context(), id.UserID, c.Param("animeID"), req.Favorite)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entry)
}

// RemoveFromWatchlist handles DELETE /v1/library/watchlist/:animeID.
//
// @Summary      Remove a series from the watchlist
// @Tags         library
// @Security     BearerAuth
// @Param        animeID  path  string  true  "Anime ID"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /v1/library/watchlist/{animeID} [delete]
func (h *LibraryHandler) RemoveFromWatchlist(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	if err := h.library.RemoveFromWatchlist(c.Request().Context(), id.UserID, c.Param("animeID")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Watchlist handles GET /v1/library/watchlist with status/favorites filters.
//
// @Summary      List the caller's watchlist
// @Tags         library
// @Produce      json
// @Security     BearerAuth
// @Param        status     query    string  false  "Filter by watch status"
// @Param        favorites  query    bool    false  "Favorites only"
// @Success      200        {array}  domain.WatchlistEntry
// @Router       /v1/library/watchlist [get]
func (h *LibraryHandler) Watchlist(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	favoritesOnly := c.QueryParam("favorites") == "true"
	status := domain.WatchStatus(c.QueryParam("status"))

	items, err := h.library.ListWatchlist(c.Request().Context(), id.UserID, status, favoritesOnly)
	if err != nil {
		return err
	}
	if items == nil {
		items = []*domain.WatchlistEntry{}
	}
	return c.JSON(http.StatusOK, items)
}
