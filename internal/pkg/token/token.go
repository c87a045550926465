// Package token issues and verifies the two classes of signed credentials:
// short-lived access tokens carrying identity and role, and longer-lived
// refresh tokens carrying identity only. Both are HS256 JWTs signed with a
// single process-wide secret loaded at startup; there is no key rotation or
// key-id versioning, and no server-side revocation list — compromise
// mitigation relies on the short access-token lifetime.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aniwa/aniwa-server/internal/core/domain"
)

const (
	Issuer          = "aniwa"
	AudienceAccess  = "aniwa:access"
	AudienceRefresh = "aniwa:refresh"

	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour

	// leeway absorbs clock skew between distributed verifiers.
	leeway = 30 * time.Second
)

var (
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenMalformed     = errors.New("token malformed or signature invalid")
	ErrTokenWrongAudience = errors.New("token presented to wrong audience")
)

// Pair is what login, registration, and refresh hand back to the client.
type Pair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AccessClaims is the payload of an access token. The role claim is trusted
// for the token's lifetime; refresh re-resolves it from the store.
type AccessClaims struct {
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// Manager signs and verifies token pairs.
type Manager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewManager creates a Manager. Non-positive TTLs fall back to the defaults.
func NewManager(secret string, accessTTL, refreshTTL time.Duration) *Manager {
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTTL
	}
	return &Manager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// Issue creates a fresh access/refresh pair for the given user.
func (m *Manager) Issue(user *domain.User) (Pair, error) {
	now := m.now()

	access := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessClaims{
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    Issuer,
			Audience:  jwt.ClaimStrings{AudienceAccess},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTTL)),
		},
	})
	accessToken, err := access.SignedString(m.secret)
	if err != nil {
		return Pair{}, err
	}

	// The refresh token deliberately carries no role claim; the role is
	// re-resolved live from the store on every refresh.
	refresh := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   user.ID,
		Issuer:    Issuer,
		Audience:  jwt.ClaimStrings{AudienceRefresh},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.refreshTTL)),
	})
	refreshToken, err := refresh.SignedString(m.secret)
	if err != nil {
		return Pair{}, err
	}

	return Pair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// VerifyAccess validates signature, expiry, issuer, and audience of an access
// token. Failures map to exactly one of ErrTokenExpired, ErrTokenWrongAudience,
// or ErrTokenMalformed.
func (m *Manager) VerifyAccess(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, m.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithAudience(AudienceAccess),
		jwt.WithLeeway(leeway),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenInvalidAudience):
			return nil, ErrTokenWrongAudience
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		default:
			return nil, ErrTokenMalformed
		}
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}

// VerifyRefresh validates a refresh token and returns the user ID it names.
// Any failure collapses to ok=false: an unusable refresh token is a routine
// "log in again" outcome, not an anomaly worth distinguishing.
func (m *Manager) VerifyRefresh(tokenString string) (string, bool) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, m.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithAudience(AudienceRefresh),
		jwt.WithLeeway(leeway),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return "", false
	}
	return claims.Subject, true
}

func (m *Manager) keyFunc(t *jwt.Token) (interface{}, error) {
	if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
		return nil, jwt.ErrTokenSignatureInvalid
	}
	return m.secret, nil
}
