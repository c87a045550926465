package ports

import (
	"context"
	"time"

	"github.com/aniwa/aniwa-server/internal/core/domain"
)

// UpdateUserFields carries a partial user update; nil fields are untouched.
type UpdateUserFields struct {
	Username           *string
	PasswordHash       *string
	DisplayName        *string
	Bio                *string
	AvatarURL          *string
	LastUsernameChange *time.Time
}

// ListUsersFilter pages through the user base for the admin views.
type ListUsersFilter struct {
	Role   domain.Role // optional: filter by role
	Search string      // optional: partial match on username or email
	Page   int         // 1-based
	Limit  int         // capped at 100 by the service
}

// UserRepository is the credential store. Uniqueness of username and email is
// enforced by the store's indexes, which remain the source of truth even when
// a service-level pre-check has already passed.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// Create persists a new user and assigns its ID and timestamps.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	Update(ctx context.Context, id string, fields UpdateUserFields) (*domain.User, error)
	CountByRole(ctx context.Context, role domain.Role) (int64, error)
	// ChangeRole atomically re-checks the subject's current role, enforces the
	// last-site-owner invariant, writes the new role, and appends the audit
	// record. Either all of it becomes visible or none of it does.
	ChangeRole(ctx context.Context, record domain.RoleChangeRecord) error
	// RoleChanges returns the audit trail for one user, newest first.
	RoleChanges(ctx context.Context, userID string) ([]domain.RoleChangeRecord, error)
	List(ctx context.Context, filter ListUsersFilter) ([]*domain.User, int64, error)
}
