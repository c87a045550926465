package domain

import (
	"errors"
	"fmt"
)

// Validation failures — reported verbatim, never retried.
var (
	ErrUsernameLength     = errors.New("username must be between 3 and 50 characters")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrDisplayNameTooLong = errors.New("display name must be at most 100 characters")
	ErrBioTooLong         = errors.New("bio must be at most 500 characters")
	ErrInvalidRole        = errors.New("unknown role")
)

// Conflicts — the caller may retry with a different value.
var (
	ErrUsernameTaken = errors.New("username already taken")
	ErrEmailTaken    = errors.New("email already registered")
	// ErrRoleConflict signals that the subject's role moved between the
	// decision and the write; the caller should re-read and retry.
	ErrRoleConflict = errors.New("role changed concurrently")
)

// Authentication failures — reported generically so account existence is
// never leaked.
var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
	ErrPasswordIncorrect   = errors.New("current password is incorrect")
)

// Authorization failures — the reason is safe to reveal.
var (
	ErrInsufficientPermissions = errors.New("insufficient permissions")
	ErrLastSiteOwner           = errors.New("cannot demote the last site owner")
)

var ErrUserNotFound = errors.New("user not found")

// CooldownError rejects a username change attempted inside the rolling
// cooldown window. DaysRemaining is the remaining whole days, rounded up.
type CooldownError struct {
	DaysRemaining int
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("username can be changed again in %d day(s)", e.DaysRemaining)
}
