package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/aniwa/aniwa-server/internal/core/domain"
	"github.com/aniwa/aniwa-server/internal/core/ports"
)

// CatalogHandler serves the anime catalog: browsing for everyone, writes for
// curators (gated behind moderator+ by the router).
type CatalogHandler struct {
	catalog ports.CatalogService
}

func NewCatalogHandler(catalog ports.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// List handles GET /v1/anime with search, genre, year, and status filters.
//
// @Summary      Browse the catalog
// @Tags         catalog
// @Produce      json
// @Param        q       query     string  false  "Search in titles"
// @Param        genre   query     string  false  "Filter by genre"
// @Param        year    query     int     false  "Filter by year"
// @Param        status  query     string  false  "Filter by airing status"
// @Param        page    query     int     false  "Page (1-based)"
// @Param        limit   query     int     false  "Page size"
// @Success      200     {object}  listAnimeResponse
// @Router       /v1/anime [get]
func (h *CatalogHandler) List(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	year, _ := strconv.Atoi(c.QueryParam("year"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	result, err := h.catalog.ListAnime(c.Request().Context(), ports.ListAnimeFilter{
		Search: c.QueryParam("q"),
		Genre:  c.QueryParam("genre"),
		Year:   year,
		Status: c.QueryParam("status"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		return err
	}

	items := result.Items
	if items == nil {
		items = []*domain.Anime{}
	}
	return c.JSON(http.StatusOK, listAnimeResponse{
		Items:      items,
		Total:      result.Total,
		Page:       result.Page,
		Limit:      result.Limit,
		TotalPages: result.TotalPages,
	})
}

// Get handles GET /v1/anime/:id.
//
// @Summary      Get one catalog entry
// @Tags         catalog
// @Produce      json
// @Param        id   path      string  true  "Anime ID"
// @Success      200  {object}  domain.Anime
// @Failure      404  {object}  errorResponse
// @Router       /v1/anime/{id} [get]
func (h *CatalogHandler) Get(c echo.Context) error {
	anime, err := h.catalog.GetAnime(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, anime)
}

// Create handles POST /v1/anime.
//
// @Summary      Create a catalog entry
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      animeRequest  true  "Catalog entry"
// @Success      201   {object}  domain.Anime
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/anime [post]
func (h *CatalogHandler) Create(c echo.Context) error {
	var req animeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	anime, err := h.catalog.CreateAnime(c.Request().Context(), toAnimeInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, anime)
}

// Update handles PUT /v1/anime/:id.
//
// @Summary      Update a catalog entry
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string        true  "Anime ID"
// @Param        body  body      animeRequest  true  "Catalog entry"
// @Success      200   {object}  domain.Anime
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/anime/{id} [put]
func (h *CatalogHandler) Update(c echo.Context) error {
	var req animeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	anime, err := h.catalog.UpdateAnime(c.Request().Context(), c.Param("id"), toAnimeInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, anime)
}

// Delete handles DELETE /v1/anime/:id.
//
// @Summary      Delete a catalog entry
// @Tags         catalog
// @Security     BearerAuth
// @Param        id  path  string  true  "Anime ID"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /v1/anime/{id} [delete]
func (h *CatalogHandler) Delete(c echo.Context) error {
	if err := h.catalog.DeleteAnime(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ListEpisodes handles GET /v1/anime/:id/episodes, ordered by number.
//
// @Summary      List episodes of a series
// @Tags         catalog
// @Produce      json
// @Param        id   path      string  true  "Anime ID"
// @Success      200  {array}   domain.Episode
// @Failure      404  {object}  errorResponse
// @Router       /v1/anime/{id}/episodes [get]
func (h *CatalogHandler) ListEpisodes(c echo.Context) error {
	episodes, err := h.catalog.ListEpisodes(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if episodes == nil {
		episodes = []*domain.Episode{}
	}
	return c.JSON(http.StatusOK, episodes)
}

// AddEpisode handles POST /v1/anime/:id/episodes.
//
// @Summary      Add an episode
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string          true  "Anime ID"
// @Param        body  body      episodeRequest  true  "Episode"
// @Success      201   {object}  domain.Episode
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/anime/{id}/episodes [post]
func (h *CatalogHandler) AddEpisode(c echo.Context) error {
	var req episodeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	episode, err := h.catalog.AddEpisode(c.Request().Context(), ports.CreateEpisodeInput{
		AnimeID:         c.Param("id"),
		Number:          req.Number,
		Title:           req.Title,
		VideoURL:        req.VideoURL,
		DurationSeconds: req.DurationSeconds,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, episode)
}

// UpdateEpisode handles PUT /v1/episodes/:id.
//
// @Summary      Update an episode
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string          true  "Episode ID"
// @Param        body  body      episodeRequest  true  "Episode"
// @Success      200   {object}  domain.Episode
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/episodes/{id} [put]
func (h *CatalogHandler) UpdateEpisode(c echo.Context) error {
	var req episodeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	episode, err := h.catalog.UpdateEpisode(c.Request().Context(), c.Param("id"), ports.CreateEpisodeInput{
		Number:          req.Number,
		Title:           req.Title,
		VideoURL:        req.VideoURL,
		DurationSeconds: req.DurationSeconds,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, episode)
}

// DeleteEpisode handles DELETE /v1/episodes/:id.
//
// @Summary      Delete an episode
// @Tags         catalog
// @Security     BearerAuth
// @Param        id  path  string  true  "Episode ID"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /v1/episodes/{id} [delete]
func (h *CatalogHandler) DeleteEpisode(c echo.Context) error {
	if err := h.catalog.DeleteEpisode(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func toAnimeInput(req animeRequest) ports.CreateAnimeInput {
	return ports.CreateAnimeInput{
		Title:     req.Title,
		AltTitles: req.AltTitles,
		Synopsis:  req.Synopsis,
		CoverURL:  req.CoverURL,
		Genres:    req.Genres,
		Year:      req.Year,
		Status:    req.Status,
		SourceID:  req.SourceID,
	}
}
