package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/aniwa/aniwa-server/internal/core/domain"
	"github.com/aniwa/aniwa-server/internal/core/ports"
)

// CommentHandler covers posting, editing, deleting, and listing comments.
// Edit and delete need the full actor account for the ownership check, so the
// handler resolves it through the auth service.
type CommentHandler struct {
	comments ports.CommentService
	auth     ports.AuthService
}

func NewCommentHandler(comments ports.CommentService, auth ports.AuthService) *CommentHandler {
	return &CommentHandler{comments: comments, auth: auth}
}

type postCommentRequest struct {
	EpisodeID string `json:"episode_id"`
	Body      string `json:"body" validate:"required,max=2000"`
}

type editCommentRequest struct {
	Body string `json:"body" validate:"required,max=2000"`
}

type listCommentsResponse struct {
	Items []*domain.Comment `json:"items"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

// Post handles POST /v1/anime/:id/comments.
//
// @Summary      Post a comment on a series or episode
// @Tags         comments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Anime ID"
// @Param        body  body      postCommentRequest  true  "Comment"
// @Success      201   {object}  domain.Comment
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/anime/{id}/comments [post]
func (h *CommentHandler) Post(c echo.Context) error {
	actor, err := h.actor(c)
	if err != nil {
		return err
	}

	var req postCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	comment, err := h.comments.Post(c.Request().Context(), actor, ports.PostCommentInput{
		AnimeID:   c.Param("id"),
		EpisodeID: req.EpisodeID,
		Body:      req.Body,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, comment)
}

// Edit handles PUT /v1/comments/:id.
//
// @Summary      Edit a comment
// @Tags         comments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Comment ID"
// @Param        body  body      editCommentRequest  true  "New body"
// @Success      200   {object}  domain.Comment
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/comments/{id} [put]
func (h *CommentHandler) Edit(c echo.Context) error {
	actor, err := h.actor(c)
	if err != nil {
		return err
	}

	var req editCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	comment, err := h.comments.Edit(c.Request().Context(), actor, c.Param("id"), req.Body)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, comment)
}

// Delete handles DELETE /v1/comments/:id.
//
// @Summary      Delete a comment
// @Tags         comments
// @Security     BearerAuth
// @Param        id  path  string  true  "Comment ID"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/comments/{id} [delete]
func (h *CommentHandler) Delete(c echo.Context) error {
	actor, err := h.actor(c)
	if err != nil {
		return err
	}

	if err := h.comments.Delete(c.Request().Context(), actor, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// List handles GET /v1/anime/:id/comments, optionally scoped to one episode.
//
// @Summary      List comments for a series
// @Tags         comments
// @Produce      json
// @Param        id          path      string  true   "Anime ID"
// @Param        episode_id  query     string  false  "Restrict to one episode"
// @Param        page        query     int     false  "Page (1-based)"
// @Param        limit       query     int     false  "Page size"
// @Success      200         {object}  listCommentsResponse
// @Router       /v1/anime/{id}/comments [get]
func (h *CommentHandler) List(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	result, err := h.comments.List(c.Request().Context(), ports.ListCommentsFilter{
		AnimeID:   c.Param("id"),
		EpisodeID: c.QueryParam("episode_id"),
		Page:      page,
		Limit:     limit,
	})
	if err != nil {
		return err
	}

	items := result.Items
	if items == nil {
		items = []*domain.Comment{}
	}
	return c.JSON(http.StatusOK, listCommentsResponse{
		Items: items,
		Total: result.Total,
		Page:  result.Page,
		Limit: result.Limit,
	})
}

// actor resolves the caller to a full account for ownership checks.
func (h *CommentHandler) actor(c echo.Context) (*domain.User, error) {
	id, err := ctxIdentity(c)
	if err != nil {
		return nil, err
	}
	return h.auth.GetUser(c.Request().Context(), id.UserID)
}
