package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/aniwa/aniwa-server/internal/core/domain"
	"github.com/aniwa/aniwa-server/internal/core/ports"
	"github.com/aniwa/aniwa-server/internal/pkg/password"
	"github.com/aniwa/aniwa-server/internal/pkg/token"
)

const (
	usernameMinLen = 3
	usernameMaxLen = 50
	passwordMinLen = 8
	displayNameMax = 100
	bioMax         = 500

	usernameCooldown = 7 * 24 * time.Hour
)

// AuthService implements registration, login, token refresh, credential and
// profile changes, and the role-change workflow.
type AuthService struct {
	users  ports.UserRepository
	hasher *password.Hasher
	tokens *token.Manager
	logger zerolog.Logger
	now    func() time.Time
}

func NewAuthService(users ports.UserRepository, hasher *password.Hasher, tokens *token.Manager, logger zerolog.Logger) *AuthService {
	return &AuthService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		logger: logger,
		now:    time.Now,
	}
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	if len(in.Username) < usernameMinLen || len(in.Username) > usernameMaxLen {
		return nil, domain.ErrUsernameLength
	}
	if len(in.Password) < passwordMinLen {
		return nil, domain.ErrPasswordTooShort
	}
	if len(in.DisplayName) > displayNameMax {
		return nil, domain.ErrDisplayNameTooLong
	}

	// Pre-checks give friendly errors; the store's unique indexes remain the
	// source of truth under races (see Create below).
	if _, err := s.users.FindByUsername(ctx, in.Username); err == nil {
		return nil, domain.ErrUsernameTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}
	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	created, err := s.users.Create(ctx, &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		DisplayName:  in.DisplayName,
	})
	if err != nil {
		return nil, err
	}

	pair, err := s.tokens.Issue(created)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", created.ID).Str("username", created.Username).Msg("user registered")

	return &ports.AuthResult{
		User:   created,
		Tokens: ports.TokenPair{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken},
	}, nil
}

// Login resolves identifier as an email first, then as a username. Both an
// unknown identifier and a wrong password yield the same error so callers
// cannot probe for account existence.
func (s *AuthService) Login(ctx context.Context, identifier, pass string) (*ports.AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, identifier)
	if errors.Is(err, domain.ErrUserNotFound) {
		user, err = s.users.FindByUsername(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.Verify(pass, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	pair, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Msg("user logged in")

	return &ports.AuthResult{
		User:   user,
		Tokens: ports.TokenPair{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken},
	}, nil
}

// Refresh mints a new token pair from a valid refresh token. The user is
// re-fetched from the store, so a role change is reflected in the new access
// token even while older access tokens are still running out their TTL.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (ports.TokenPair, error) {
	userID, ok := s.tokens.VerifyRefresh(refreshToken)
	if !ok {
		return ports.TokenPair{}, domain.ErrInvalidRefreshToken
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return ports.TokenPair{}, domain.ErrInvalidRefreshToken
		}
		return ports.TokenPair{}, err
	}

	pair, err := s.tokens.Issue(user)
	if err != nil {
		return ports.TokenPair{}, err
	}
	return ports.TokenPair{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !s.hasher.Verify(currentPassword, user.PasswordHash) {
		return domain.ErrPasswordIncorrect
	}
	if len(newPassword) < passwordMinLen {
		return domain.ErrPasswordTooShort
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if _, err := s.users.Update(ctx, userID, ports.UpdateUserFields{PasswordHash: &hash}); err != nil {
		return err
	}

	s.logger.Info().Str("user_id", userID).Msg("password changed")
	return nil
}

// ChangeUsername enforces a rolling 7-day cooldown between changes. A change
// attempted exactly at the window boundary is allowed.
func (s *AuthService) ChangeUsername(ctx context.Context, userID, newUsername string) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user.LastUsernameChange != nil {
		elapsed := s.now().Sub(*user.LastUsernameChange)
		if elapsed < usernameCooldown {
			remaining := usernameCooldown - elapsed
			days := int((remaining + 24*time.Hour - 1) / (24 * time.Hour))
			return nil, &domain.CooldownError{DaysRemaining: days}
		}
	}

	if len(newUsername) < usernameMinLen || len(newUsername) > usernameMaxLen {
		return nil, domain.ErrUsernameLength
	}

	if existing, err := s.users.FindByUsername(ctx, newUsername); err == nil {
		if existing.ID != userID {
			return nil, domain.ErrUsernameTaken
		}
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	changedAt := s.now()
	updated, err := s.users.Update(ctx, userID, ports.UpdateUserFields{
		Username:           &newUsername,
		LastUsernameChange: &changedAt,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", userID).Str("username", newUsername).Msg("username changed")
	return updated, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID string, in ports.UpdateProfileInput) (*domain.User, error) {
	if in.DisplayName != nil && len(*in.DisplayName) > displayNameMax {
		return nil, domain.ErrDisplayNameTooLong
	}
	if in.Bio != nil && len(*in.Bio) > bioMax {
		return nil, domain.ErrBioTooLong
	}

	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}

	return s.users.Update(ctx, userID, ports.UpdateUserFields{
		DisplayName: in.DisplayName,
		Bio:         in.Bio,
		AvatarURL:   in.AvatarURL,
	})
}

// ChangeUserRole checks the hierarchy rules, then delegates the role write
// and the audit append to the repository as one atomic unit.
func (s *AuthService) ChangeUserRole(ctx context.Context, actorID, subjectID string, newRole domain.Role, reason string) error {
	actor, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		return err
	}
	subject, err := s.users.FindByID(ctx, subjectID)
	if err != nil {
		return err
	}

	lastSiteOwner := false
	if subject.Role == domain.RoleSiteOwner {
		count, err := s.users.CountByRole(ctx, domain.RoleSiteOwner)
		if err != nil {
			return err
		}
		lastSiteOwner = count <= 1
	}

	if err := domain.CanChangeRole(actor.Role, subject.Role, newRole, lastSiteOwner); err != nil {
		return err
	}

	record := domain.RoleChangeRecord{
		UserID:       subjectID,
		GrantedBy:    actorID,
		PreviousRole: subject.Role,
		NewRole:      newRole,
		Reason:       reason,
		GrantedAt:    s.now(),
	}
	if err := s.users.ChangeRole(ctx, record); err != nil {
		return err
	}

	s.logger.Info().
		Str("user_id", subjectID).
		Str("granted_by", actorID).
		Str("previous_role", string(record.PreviousRole)).
		Str("new_role", string(newRole)).
		Msg("role changed")
	return nil
}

func (s *AuthService) RoleHistory(ctx context.Context, userID string) ([]domain.RoleChangeRecord, error) {
	return s.users.RoleChanges(ctx, userID)
}

func (s *AuthService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.FindByID(ctx, userID)
}

func (s *AuthService) ListUsers(ctx context.Context, filter ports.ListUsersFilter) ([]*domain.User, int64, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	return s.users.List(ctx, filter)
}

// EnsureSiteOwner seeds the initial site_owner account. Without it a fresh
// deployment would have no one able to grant roles at all.
func (s *AuthService) EnsureSiteOwner(ctx context.Context, username, email, pass string) error {
	count, err := s.users.CountByRole(ctx, domain.RoleSiteOwner)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := s.hasher.Hash(pass)
	if err != nil {
		return err
	}
	owner, err := s.users.Create(ctx, &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleSiteOwner,
	})
	if err != nil {
		return err
	}

	s.logger.Info().Str("user_id", owner.ID).Str("username", username).Msg("site owner bootstrapped")
	return nil
}

// HasPermission reports whether user carries at least the required role.
func (s *AuthService) HasPermission(user *domain.User, required domain.Role) bool {
	return user != nil && user.Role.AtLeast(required)
}

// CanModifyContent reports whether user owns the content or is a moderator
// or above.
func (s *AuthService) CanModifyContent(user *domain.User, contentOwnerID string) bool {
	if user == nil {
		return false
	}
	return user.ID == contentOwnerID || s.HasPermission(user, domain.RoleModerator)
}
