package ports

import (
	"context"

	"github.com/aniwa/aniwa-server/internal/core/domain"
)

// TokenPair is the credential pair handed to clients on login, registration,
// and refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// RegisterInput carries everything needed to create an account.
type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	DisplayName string // optional
}

// UpdateProfileInput is a partial profile update; nil fields are untouched.
type UpdateProfileInput struct {
	DisplayName *string
	Bio         *string
	AvatarURL   *string
}

// AuthResult pairs the resolved user with freshly issued tokens.
type AuthResult struct {
	User   *domain.User
	Tokens TokenPair
}

// AuthService is the single entry point request handlers call for everything
// touching accounts, credentials, and roles.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	// Login resolves identifier as an email first, then as a username.
	Login(ctx context.Context, identifier, password string) (*AuthResult, error)
	// Refresh re-fetches the user live from the store so role changes take
	// effect within one refresh cycle.
	Refresh(ctx context.Context, refreshToken string) (TokenPair, error)
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
	ChangeUsername(ctx context.Context, userID, newUsername string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*domain.User, error)
	ChangeUserRole(ctx context.Context, actorID, subjectID string, newRole domain.Role, reason string) error
	RoleHistory(ctx context.Context, userID string) ([]domain.RoleChangeRecord, error)
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	ListUsers(ctx context.Context, filter ListUsersFilter) ([]*domain.User, int64, error)
	// EnsureSiteOwner creates the bootstrap site_owner account when none
	// exists yet. Idempotent; called once at startup.
	EnsureSiteOwner(ctx context.Context, username, email, password string) error
	// HasPermission reports whether user carries at least the required role.
	HasPermission(user *domain.User, required domain.Role) bool
	// CanModifyContent reports whether user owns the content or is at least
	// a moderator.
	CanModifyContent(user *domain.User, contentOwnerID string) bool
}
