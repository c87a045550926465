package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/aniwa/aniwa-server/internal/core/domain"
)

func asAdmin(c echo.Context) {
	c.Set("user_id", "admin_1")
	c.Set("username", "boss")
	c.Set("role", "admin")
}

func TestAdminHandler_ChangeRole(t *testing.T) {
	var gotActor, gotSubject, gotReason string
	var gotRole domain.Role
	stub := &stubAuthService{
		t: t,
		changeFn: func(ctx context.Context, actorID, subjectID string, newRole domain.Role, reason string) error {
			gotActor, gotSubject, gotRole, gotReason = actorID, subjectID, newRole, reason
			return nil
		},
	}
	handler := NewAdminHandler(stub)

	c, rec := newTestContext(t, http.MethodPut, "/v1/admin/users/u_2/role",
		`{"role":"moderator","reason":"active curator"}`)
	asAdmin(c)
	c.SetParamNames("id")
	c.SetParamValues("u_2")

	if err := handler.ChangeRole(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if gotActor != "admin_1" || gotSubject != "u_2" || gotRole != domain.RoleModerator || gotReason != "active curator" {
		t.Fatalf("unexpected args: %s %s %s %s", gotActor, gotSubject, gotRole, gotReason)
	}
}

func TestAdminHandler_ChangeRole_UnknownRoleRejected(t *testing.T) {
	stub := &stubAuthService{t: t}
	handler := NewAdminHandler(stub)

	c, _ := newTestContext(t, http.MethodPut, "/v1/admin/users/u_2/role",
		`{"role":"overlord"}`)
	asAdmin(c)
	c.SetParamNames("id")
	c.SetParamValues("u_2")

	err := handler.ChangeRole(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestAdminHandler_ChangeRole_LastOwnerPropagates(t *testing.T) {
	stub := &stubAuthService{
		t: t,
		changeFn: func(ctx context.Context, actorID, subjectID string, newRole domain.Role, reason string) error {
			return domain.ErrLastSiteOwner
		},
	}
	handler := NewAdminHandler(stub)

	c, _ := newTestContext(t, http.MethodPut, "/v1/admin/users/owner_1/role",
		`{"role":"admin"}`)
	asAdmin(c)
	c.SetParamNames("id")
	c.SetParamValues("owner_1")

	if err := handler.ChangeRole(c); !errors.Is(err, domain.ErrLastSiteOwner) {
		t.Fatalf("expected ErrLastSiteOwner to propagate, got %v", err)
	}
}

func TestAdminHandler_RoleHistory(t *testing.T) {
	granted := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	stub := &stubAuthService{
		t: t,
		historyFn: func(ctx context.Context, userID string) ([]domain.RoleChangeRecord, error) {
			if userID != "u_2" {
				t.Fatalf("unexpected user ID: %s", userID)
			}
			return []domain.RoleChangeRecord{{
				UserID:       "u_2",
				GrantedBy:    "admin_1",
				PreviousRole: domain.RoleUser,
				NewRole:      domain.RoleModerator,
				GrantedAt:    granted,
			}}, nil
		},
	}
	handler := NewAdminHandler(stub)

	c, rec := newTestContext(t, http.MethodGet, "/v1/admin/users/u_2/roles", "")
	asAdmin(c)
	c.SetParamNames("id")
	c.SetParamValues("u_2")

	if err := handler.RoleHistory(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var records []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &records); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(records) != 1 || records[0]["new_role"] != "moderator" || records[0]["granted_by"] != "admin_1" {
		t.Fatalf("unexpected payload: %+v", records)
	}
}

func TestAdminHandler_RoleHistory_EmptyIsArray(t *testing.T) {
	stub := &stubAuthService{
		t: t,
		historyFn: func(ctx context.Context, userID string) ([]domain.RoleChangeRecord, error) {
			return nil, nil
		},
	}
	handler := NewAdminHandler(stub)

	c, rec := newTestContext(t, http.MethodGet, "/v1/admin/users/u_2/roles", "")
	asAdmin(c)
	c.SetParamNames("id")
	c.SetParamValues("u_2")

	if err := handler.RoleHistory(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got := rec.Body.String(); got != "[]\n" {
		t.Fatalf("expected empty JSON array, got %q", got)
	}
}
