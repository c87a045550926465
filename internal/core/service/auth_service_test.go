package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/aniwa/aniwa-server/internal/core/domain"
	"github.com/aniwa/aniwa-server/internal/core/ports"
	"github.com/aniwa/aniwa-server/internal/pkg/password"
	"github.com/aniwa/aniwa-server/internal/pkg/token"
)

// ---------------------------------------------------------------------------
// In-memory stub user repository
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	users   map[string]*domain.User
	records []domain.RoleChangeRecord
	nextID  int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	if u.LastUsernameChange != nil {
		ts := *u.LastUsernameChange
		clone.LastUsernameChange = &ts
	}
	return &clone
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := r.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	// Mirror the store's unique indexes.
	for _, u := range r.users {
		if u.Username == user.Username {
			return nil, domain.ErrUsernameTaken
		}
		if u.Email == user.Email {
			return nil, domain.ErrEmailTaken
		}
	}
	r.nextID++
	copy := cloneUser(user)
	copy.ID = fmt.Sprintf("u_%d", r.nextID)
	copy.CreatedAt = time.Now().UTC()
	copy.UpdatedAt = copy.CreatedAt
	r.users[copy.ID] = cloneUser(copy)
	return cloneUser(copy), nil
}

func (r *stubUserRepo) Update(_ context.Context, id string, fields ports.UpdateUserFields) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if fields.Username != nil {
		for _, other := range r.users {
			if other.ID != id && other.Username == *fields.Username {
				return nil, domain.ErrUsernameTaken
			}
		}
		u.Username = *fields.Username
	}
	if fields.PasswordHash != nil {
		u.PasswordHash = *fields.PasswordHash
	}
	if fields.DisplayName != nil {
		u.DisplayName = *fields.DisplayName
	}
	if fields.Bio != nil {
		u.Bio = *fields.Bio
	}
	if fields.AvatarURL != nil {
		u.AvatarURL = *fields.AvatarURL
	}
	if fields.LastUsernameChange != nil {
		ts := *fields.LastUsernameChange
		u.LastUsernameChange = &ts
	}
	u.UpdatedAt = time.Now().UTC()
	return cloneUser(u), nil
}

func (r *stubUserRepo) CountByRole(_ context.Context, role domain.Role) (int64, error) {
	var n int64
	for _, u := range r.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

func (r *stubUserRepo) ChangeRole(_ context.Context, record domain.RoleChangeRecord) error {
	u, ok := r.users[record.UserID]
	if !ok {
		return domain.ErrUserNotFound
	}
	if u.Role != record.PreviousRole {
		return domain.ErrRoleConflict
	}
	u.Role = record.NewRole
	u.UpdatedAt = time.Now().UTC()
	r.records = append(r.records, record)
	return nil
}

func (r *stubUserRepo) RoleChanges(_ context.Context, userID string) ([]domain.RoleChangeRecord, error) {
	var out []domain.RoleChangeRecord
	for i := len(r.records) - 1; i >= 0; i-- {
		if r.records[i].UserID == userID {
			out = append(out, r.records[i])
		}
	}
	return out, nil
}

func (r *stubUserRepo) List(_ context.Context, filter ports.ListUsersFilter) ([]*domain.User, int64, error) {
	var out []*domain.User
	for _, u := range r.users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		out = append(out, cloneUser(u))
	}
	return out, int64(len(out)), nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// Tests use the bcrypt minimum cost to keep hashing fast.
func newTestAuthService() (*AuthService, *stubUserRepo) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo, password.NewHasher(4), token.NewManager("test-secret", 0, 0), zerolog.Nop())
	return svc, repo
}

func mustRegister(t *testing.T, svc *AuthService, username, email, pass string) *domain.User {
	t.Helper()
	res, err := svc.Register(context.Background(), ports.RegisterInput{
		Username: username,
		Email:    email,
		Password: pass,
	})
	if err != nil {
		t.Fatalf("register %s failed: %v", username, err)
	}
	return res.User
}

func setRole(t *testing.T, repo *stubUserRepo, userID string, role domain.Role) {
	t.Helper()
	u, ok := repo.users[userID]
	if !ok {
		t.Fatalf("no such user %s", userID)
	}
	u.Role = role
}

// ---------------------------------------------------------------------------
// Registration
// ---------------------------------------------------------------------------

func TestAuthService_Register_Success(t *testing.T) {
	svc, _ := newTestAuthService()

	res, err := svc.Register(context.Background(), ports.RegisterInput{
		Username: "alice",
		Email:    "a@x.com",
		Password: "password1",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if res.User.Role != domain.RoleUser {
		t.Fatalf("expected default role user, got %s", res.User.Role)
	}
	if res.User.PasswordHash == "password1" || res.User.PasswordHash == "" {
		t.Fatalf("password not hashed")
	}
	if res.Tokens.AccessToken == "" || res.Tokens.RefreshToken == "" {
		t.Fatalf("expected token pair, got %+v", res.Tokens)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc, _ := newTestAuthService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, ports.RegisterInput{Username: "ab", Email: "a@x.com", Password: "password1"}); !errors.Is(err, domain.ErrUsernameLength) {
		t.Fatalf("short username: expected ErrUsernameLength, got %v", err)
	}
	long := make([]byte, 51)
	for i := range long {
		long[i] = 'a'
	}
	if _, err := svc.Register(ctx, ports.RegisterInput{Username: string(long), Email: "a@x.com", Password: "password1"}); !errors.Is(err, domain.ErrUsernameLength) {
		t.Fatalf("long username: expected ErrUsernameLength, got %v", err)
	}
	if _, err := svc.Register(ctx, ports.RegisterInput{Username: "alice", Email: "a@x.com", Password: "short"}); !errors.Is(err, domain.ErrPasswordTooShort) {
		t.Fatalf("short password: expected ErrPasswordTooShort, got %v", err)
	}
}

func TestAuthService_Register_Duplicates(t *testing.T) {
	svc, _ := newTestAuthService()
	ctx := context.Background()

	mustRegister(t, svc, "alice", "a@x.com", "password1")

	if _, err := svc.Register(ctx, ports.RegisterInput{Username: "alice", Email: "other@x.com", Password: "password1"}); !errors.Is(err, domain.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
	if _, err := svc.Register(ctx, ports.RegisterInput{Username: "alice2", Email: "a@x.com", Password: "password1"}); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Login
// ---------------------------------------------------------------------------

func TestAuthService_Login_ByUsernameAndEmail(t *testing.T) {
	svc, _ := newTestAuthService()
	ctx := context.Background()

	created := mustRegister(t, svc, "alice", "a@x.com", "password1")

	byName, err := svc.Login(ctx, "alice", "password1")
	if err != nil {
		t.Fatalf("login by username failed: %v", err)
	}
	byMail, err := svc.Login(ctx, "a@x.com", "password1")
	if err != nil {
		t.Fatalf("login by email failed: %v", err)
	}
	if byName.User.ID != created.ID || byMail.User.ID != created.ID {
		t.Fatalf("logins resolved different users: %s / %s / %s", created.ID, byName.User.ID, byMail.User.ID)
	}
}

func TestAuthService_Login_IndistinguishableFailures(t *testing.T) {
	svc, _ := newTestAuthService()
	ctx := context.Background()

	mustRegister(t, svc, "alice", "a@x.com", "password1")

	_, unknownErr := svc.Login(ctx, "ghost", "password1")
	_, wrongErr := svc.Login(ctx, "alice", "wrongpass")

	if !errors.Is(unknownErr, domain.ErrInvalidCredentials) || !errors.Is(wrongErr, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for both, got %v / %v", unknownErr, wrongErr)
	}
	if unknownErr.Error() != wrongErr.Error() {
		t.Fatalf("failure messages differ, leaking account existence: %q vs %q", unknownErr, wrongErr)
	}
}

// ---------------------------------------------------------------------------
// Refresh
// ---------------------------------------------------------------------------

func TestAuthService_Refresh_IssuesNewPair(t *testing.T) {
	svc, _ := newTestAuthService()
	ctx := context.Background()

	res, err := svc.Login(ctx, mustRegister(t, svc, "alice", "a@x.com", "password1").Username, "password1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	pair, err := svc.Refresh(ctx, res.Tokens.RefreshToken)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("expected fresh pair, got %+v", pair)
	}
}

func TestAuthService_Refresh_PicksUpRoleChange(t *testing.T) {
	svc, repo := newTestAuthService()
	ctx := context.Background()

	user := mustRegister(t, svc, "alice", "a@x.com", "password1")
	res, err := svc.Login(ctx, "alice", "password1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	setRole(t, repo, user.ID, domain.RoleModerator)

	pair, err := svc.Refresh(ctx, res.Tokens.RefreshToken)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	claims, err := svc.tokens.VerifyAccess(pair.AccessToken)
	if err != nil {
		t.Fatalf("verify refreshed access token: %v", err)
	}
	if claims.Role != domain.RoleModerator {
		t.Fatalf("expected refreshed role moderator, got %s", claims.Role)
	}
}

func TestAuthService_Refresh_Invalid(t *testing.T) {
	svc, repo := newTestAuthService()
	ctx := context.Background()

	if _, err := svc.Refresh(ctx, "not-a-token"); !errors.Is(err, domain.ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken, got %v", err)
	}

	// A refresh token for a since-deleted user must also fail.
	user := mustRegister(t, svc, "bob", "b@x.com", "password1")
	res, err := svc.Login(ctx, "bob", "password1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	delete(repo.users, user.ID)

	if _, err := svc.Refresh(ctx, res.Tokens.RefreshToken); !errors.Is(err, domain.ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken for deleted user, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Password change
// ---------------------------------------------------------------------------

func TestAuthService_ChangePassword(t *testing.T) {
	svc, _ := newTestAuthService()
	ctx := context.Background()

	user := mustRegister(t, svc, "alice", "a@x.com", "password1")

	if err := svc.ChangePassword(ctx, user.ID, "wrong", "newpassword"); !errors.Is(err, domain.ErrPasswordIncorrect) {
		t.Fatalf("expected ErrPasswordIncorrect, got %v", err)
	}
	if err := svc.ChangePassword(ctx, user.ID, "password1", "short"); !errors.Is(err, domain.ErrPasswordTooShort) {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}
	if err := svc.ChangePassword(ctx, "u_999", "password1", "newpassword"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	if err := svc.ChangePassword(ctx, user.ID, "password1", "newpassword"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}
	if _, err := svc.Login(ctx, "alice", "newpassword"); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
	if _, err := svc.Login(ctx, "alice", "password1"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("old password still accepted: %v", err)
	}
}

// ---------------------------------------------------------------------------
// Username change
// ---------------------------------------------------------------------------

func TestAuthService_ChangeUsername_FirstChange(t *testing.T) {
	svc, _ := newTestAuthService()
	ctx := context.Background()

	user := mustRegister(t, svc, "alice", "a@x.com", "password1")

	updated, err := svc.ChangeUsername(ctx, user.ID, "alice_v2")
	if err != nil {
		t.Fatalf("change username failed: %v", err)
	}
	if updated.Username != "alice_v2" {
		t.Fatalf("expected alice_v2, got %s", updated.Username)
	}
	if updated.LastUsernameChange == nil {
		t.Fatalf("lastUsernameChange not set")
	}
}

func TestAuthService_ChangeUsername_CooldownBoundary(t *testing.T) {
	svc, repo := newTestAuthService()
	ctx := context.Background()

	user := mustRegister(t, svc, "alice", "a@x.com", "password1")

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	changed := base.Add(-usernameCooldown + time.Second) // one second short of the window
	repo.users[user.ID].LastUsernameChange = &changed
	svc.now = func() time.Time { return base }

	_, err := svc.ChangeUsername(ctx, user.ID, "alice_v2")
	var cooldown *domain.CooldownError
	if !errors.As(err, &cooldown) {
		t.Fatalf("expected CooldownError, got %v", err)
	}
	if cooldown.DaysRemaining != 1 {
		t.Fatalf("expected 1 day remaining, got %d", cooldown.DaysRemaining)
	}

	// Exactly at the boundary the change is allowed.
	exact := base.Add(-usernameCooldown)
	repo.users[user.ID].LastUsernameChange = &exact
	if _, err := svc.ChangeUsername(ctx, user.ID, "alice_v2"); err != nil {
		t.Fatalf("change at boundary should succeed, got %v", err)
	}
}

func TestAuthService_ChangeUsername_DaysRounding(t *testing.T) {
	svc, repo := newTestAuthService()
	ctx := context.Background()

	user := mustRegister(t, svc, "alice", "a@x.com", "password1")

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	changed := base.Add(-time.Hour) // nearly the whole window remains
	repo.users[user.ID].LastUsernameChange = &changed
	svc.now = func() time.Time { return base }

	_, err := svc.ChangeUsername(ctx, user.ID, "alice_v2")
	var cooldown *domain.CooldownError
	if !errors.As(err, &cooldown) {
		t.Fatalf("expected CooldownError, got %v", err)
	}
	if cooldown.DaysRemaining != 7 {
		t.Fatalf("expected 7 days remaining, got %d", cooldown.DaysRemaining)
	}
}

func TestAuthService_ChangeUsername_TakenAndLength(t *testing.T) {
	svc, _ := newTestAuthService()
	ctx := context.Background()

	alice := mustRegister(t, svc, "alice", "a@x.com", "password1")
	mustRegister(t, svc, "bob", "b@x.com", "password1")

	if _, err := svc.ChangeUsername(ctx, alice.ID, "bob"); !errors.Is(err, domain.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
	if _, err := svc.ChangeUsername(ctx, alice.ID, "ab"); !errors.Is(err, domain.ErrUsernameLength) {
		t.Fatalf("expected ErrUsernameLength, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Profile
// ---------------------------------------------------------------------------

func TestAuthService_UpdateProfile(t *testing.T) {
	svc, _ := newTestAuthService()
	ctx := context.Background()

	user := mustRegister(t, svc, "alice", "a@x.com", "password1")

	name := "Alice A."
	bio := "watches too much anime"
	updated, err := svc.UpdateProfile(ctx, user.ID, ports.UpdateProfileInput{DisplayName: &name, Bio: &bio})
	if err != nil {
		t.Fatalf("update profile failed: %v", err)
	}
	if updated.DisplayName != name || updated.Bio != bio {
		t.Fatalf("unexpected profile: %+v", updated)
	}

	// Partial update leaves omitted fields unchanged.
	avatar := "https://cdn.example/a.png"
	updated, err = svc.UpdateProfile(ctx, user.ID, ports.UpdateProfileInput{AvatarURL: &avatar})
	if err != nil {
		t.Fatalf("partial update failed: %v", err)
	}
	if updated.DisplayName != name || updated.AvatarURL != avatar {
		t.Fatalf("partial update clobbered fields: %+v", updated)
	}

	longName := string(make([]byte, 101))
	if _, err := svc.UpdateProfile(ctx, user.ID, ports.UpdateProfileInput{DisplayName: &longName}); !errors.Is(err, domain.ErrDisplayNameTooLong) {
		t.Fatalf("expected ErrDisplayNameTooLong, got %v", err)
	}
	longBio := string(make([]byte, 501))
	if _, err := svc.UpdateProfile(ctx, user.ID, ports.UpdateProfileInput{Bio: &longBio}); !errors.Is(err, domain.ErrBioTooLong) {
		t.Fatalf("expected ErrBioTooLong, got %v", err)
	}
	if _, err := svc.UpdateProfile(ctx, "u_999", ports.UpdateProfileInput{}); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Role changes
// ---------------------------------------------------------------------------

func TestAuthService_ChangeUserRole_AuditTrail(t *testing.T) {
	svc, repo := newTestAuthService()
	ctx := context.Background()

	owner := mustRegister(t, svc, "owner", "o@x.com", "password1")
	setRole(t, repo, owner.ID, domain.RoleSiteOwner)
	user := mustRegister(t, svc, "alice", "a@x.com", "password1")

	if err := svc.ChangeUserRole(ctx, owner.ID, user.ID, domain.RoleModerator, "promoted for activity"); err != nil {
		t.Fatalf("role change failed: %v", err)
	}

	history, err := svc.RoleHistory(ctx, user.ID)
	if err != nil {
		t.Fatalf("role history failed: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected exactly one record, got %d", len(history))
	}
	rec := history[0]
	if rec.PreviousRole != domain.RoleUser || rec.NewRole != domain.RoleModerator {
		t.Fatalf("unexpected record roles: %+v", rec)
	}
	if rec.GrantedBy != owner.ID || rec.Reason != "promoted for activity" {
		t.Fatalf("unexpected record: %+v", rec)
	}

	got, _ := svc.GetUser(ctx, user.ID)
	if got.Role != domain.RoleModerator {
		t.Fatalf("role not persisted: %s", got.Role)
	}
}

func TestAuthService_ChangeUserRole_LastOwnerProtection(t *testing.T) {
	svc, repo := newTestAuthService()
	ctx := context.Background()

	owner := mustRegister(t, svc, "owner", "o@x.com", "password1")
	setRole(t, repo, owner.ID, domain.RoleSiteOwner)
	second := mustRegister(t, svc, "second", "s@x.com", "password1")

	// The only site_owner cannot be demoted, not even by themselves.
	if err := svc.ChangeUserRole(ctx, owner.ID, owner.ID, domain.RoleAdmin, ""); !errors.Is(err, domain.ErrLastSiteOwner) {
		t.Fatalf("expected ErrLastSiteOwner, got %v", err)
	}

	// Promote a second owner; the original demotion then succeeds.
	if err := svc.ChangeUserRole(ctx, owner.ID, second.ID, domain.RoleSiteOwner, "succession"); err != nil {
		t.Fatalf("promoting second owner failed: %v", err)
	}
	if err := svc.ChangeUserRole(ctx, second.ID, owner.ID, domain.RoleAdmin, ""); err != nil {
		t.Fatalf("demoting original owner should now succeed, got %v", err)
	}
}

func TestAuthService_ChangeUserRole_AdminLimits(t *testing.T) {
	svc, repo := newTestAuthService()
	ctx := context.Background()

	admin := mustRegister(t, svc, "admin", "ad@x.com", "password1")
	setRole(t, repo, admin.ID, domain.RoleAdmin)
	other := mustRegister(t, svc, "other", "ot@x.com", "password1")
	setRole(t, repo, other.ID, domain.RoleAdmin)
	user := mustRegister(t, svc, "alice", "a@x.com", "password1")

	// Admins can grant moderator and demote fellow admins.
	if err := svc.ChangeUserRole(ctx, admin.ID, user.ID, domain.RoleModerator, ""); err != nil {
		t.Fatalf("admin granting moderator failed: %v", err)
	}
	if err := svc.ChangeUserRole(ctx, admin.ID, other.ID, domain.RoleUser, ""); err != nil {
		t.Fatalf("admin demoting admin failed: %v", err)
	}

	// Admins can never create peers or owners.
	if err := svc.ChangeUserRole(ctx, admin.ID, user.ID, domain.RoleAdmin, ""); !errors.Is(err, domain.ErrInsufficientPermissions) {
		t.Fatalf("expected ErrInsufficientPermissions for admin->admin, got %v", err)
	}
	if err := svc.ChangeUserRole(ctx, admin.ID, user.ID, domain.RoleSiteOwner, ""); !errors.Is(err, domain.ErrInsufficientPermissions) {
		t.Fatalf("expected ErrInsufficientPermissions for admin->site_owner, got %v", err)
	}
}

func TestAuthService_ChangeUserRole_ActorAndSubjectMissing(t *testing.T) {
	svc, repo := newTestAuthService()
	ctx := context.Background()

	owner := mustRegister(t, svc, "owner", "o@x.com", "password1")
	setRole(t, repo, owner.ID, domain.RoleSiteOwner)

	if err := svc.ChangeUserRole(ctx, "u_999", owner.ID, domain.RoleUser, ""); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound for missing actor, got %v", err)
	}
	if err := svc.ChangeUserRole(ctx, owner.ID, "u_999", domain.RoleUser, ""); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound for missing subject, got %v", err)
	}
}

func TestAuthService_ChangeUserRole_ModeratorDenied(t *testing.T) {
	svc, repo := newTestAuthService()
	ctx := context.Background()

	mod := mustRegister(t, svc, "mod", "m@x.com", "password1")
	setRole(t, repo, mod.ID, domain.RoleModerator)
	user := mustRegister(t, svc, "alice", "a@x.com", "password1")

	if err := svc.ChangeUserRole(ctx, mod.ID, user.ID, domain.RoleModerator, ""); !errors.Is(err, domain.ErrInsufficientPermissions) {
		t.Fatalf("expected ErrInsufficientPermissions, got %v", err)
	}
	if len(repo.records) != 0 {
		t.Fatalf("denied change must not produce audit records")
	}
}

// ---------------------------------------------------------------------------
// Bootstrap and helpers
// ---------------------------------------------------------------------------

func TestAuthService_EnsureSiteOwner(t *testing.T) {
	svc, repo := newTestAuthService()
	ctx := context.Background()

	if err := svc.EnsureSiteOwner(ctx, "owner", "o@x.com", "ownerpass1"); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}
	count, _ := repo.CountByRole(ctx, domain.RoleSiteOwner)
	if count != 1 {
		t.Fatalf("expected one site owner, got %d", count)
	}

	// Second call is a no-op.
	if err := svc.EnsureSiteOwner(ctx, "owner2", "o2@x.com", "ownerpass1"); err != nil {
		t.Fatalf("idempotent bootstrap failed: %v", err)
	}
	count, _ = repo.CountByRole(ctx, domain.RoleSiteOwner)
	if count != 1 {
		t.Fatalf("bootstrap ran twice: %d owners", count)
	}

	// The bootstrapped owner can actually log in.
	if _, err := svc.Login(ctx, "owner", "ownerpass1"); err != nil {
		t.Fatalf("owner login failed: %v", err)
	}
}

func TestAuthService_Helpers(t *testing.T) {
	svc, _ := newTestAuthService()

	mod := &domain.User{ID: "u_1", Role: domain.RoleModerator}
	user := &domain.User{ID: "u_2", Role: domain.RoleUser}

	if !svc.HasPermission(mod, domain.RoleModerator) {
		t.Fatalf("moderator should satisfy moderator requirement")
	}
	if svc.HasPermission(user, domain.RoleModerator) {
		t.Fatalf("user should not satisfy moderator requirement")
	}
	if svc.HasPermission(nil, domain.RoleUser) {
		t.Fatalf("nil user should have no permissions")
	}

	if !svc.CanModifyContent(user, "u_2") {
		t.Fatalf("owner should be able to modify own content")
	}
	if svc.CanModifyContent(user, "u_1") {
		t.Fatalf("plain user should not modify others' content")
	}
	if !svc.CanModifyContent(mod, "u_2") {
		t.Fatalf("moderator should modify anyone's content")
	}
}
