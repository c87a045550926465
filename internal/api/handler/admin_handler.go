package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/aniwa/aniwa-server/internal/api/metrics"
	"github.com/aniwa/aniwa-server/internal/core/domain"
	"github.com/aniwa/aniwa-server/internal/core/ports"
)

// AdminHandler covers user administration: role changes, the role audit
// trail, and user listing. Routes are gated behind admin+ by the router.
type AdminHandler struct {
	auth ports.AuthService
}

func NewAdminHandler(auth ports.AuthService) *AdminHandler {
	return &AdminHandler{auth: auth}
}

type changeRoleRequest struct {
	Role   string `json:"role"   validate:"required,oneof=user moderator admin site_owner"`
	Reason string `json:"reason" validate:"max=500"`
}

type listUsersResponse struct {
	Items []*domain.User `json:"items"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

// ChangeRole grants a new role to the target user.
//
// @Summary      Change a user's role
// @Tags         admin
// @Accept       json
// @Security     BearerAuth
// @Param        id    path  string             true  "Target user ID"
// @Param        body  body  changeRoleRequest  true  "New role and optional reason"
// @Success      204
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/admin/users/{id}/role [put]
func (h *AdminHandler) ChangeRole(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req changeRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	subjectID := c.Param("id")
	newRole := domain.Role(req.Role)
	if err := h.auth.ChangeUserRole(c.Request().Context(), id.UserID, subjectID, newRole, req.Reason); err != nil {
		return err
	}

	metrics.RoleChangesTotal.WithLabelValues(req.Role).Inc()
	return c.NoContent(http.StatusNoContent)
}

// RoleHistory returns the target user's role audit trail, newest first.
//
// @Summary      Get a user's role change history
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Target user ID"
// @Success      200  {array}   domain.RoleChangeRecord
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/admin/users/{id}/roles [get]
func (h *AdminHandler) RoleHistory(c echo.Context) error {
	records, err := h.auth.RoleHistory(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if records == nil {
		records = []domain.RoleChangeRecord{}
	}
	return c.JSON(http.StatusOK, records)
}

// ListUsers pages through the user base with optional role and search filters.
//
// @Summary      List users
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        role    query     string  false  "Filter by role"
// @Param        search  query     string  false  "Partial match on username or email"
// @Param        page    query     int     false  "Page (1-based)"
// @Param        limit   query     int     false  "Page size"
// @Success      200     {object}  listUsersResponse
// @Failure      403     {object}  errorResponse
// @Router       /v1/admin/users [get]
func (h *AdminHandler) ListUsers(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	filter := ports.ListUsersFilter{
		Role:   domain.Role(c.QueryParam("role")),
		Search: c.QueryParam("search"),
		Page:   page,
		Limit:  limit,
	}

	users, total, err := h.auth.ListUsers(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	if users == nil {
		users = []*domain.User{}
	}
	return c.JSON(http.StatusOK, listUsersResponse{
		Items: users,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	})
}
