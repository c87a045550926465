// Package password wraps bcrypt behind a small hasher type so the work
// factor is configured in exactly one place.
package password

import "golang.org/x/crypto/bcrypt"

// DefaultCost resists offline brute force while keeping interactive login
// under a second.
const DefaultCost = 12

// Hasher produces and verifies salted bcrypt digests.
type Hasher struct {
	cost int
}

// NewHasher returns a Hasher with the given bcrypt cost. Costs outside
// bcrypt's supported range fall back to DefaultCost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash returns the bcrypt digest of plaintext. The output embeds a random
// salt, so hashing the same input twice yields different digests.
func (h *Hasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches digest. A malformed digest is a
// verification failure, never an error.
func (h *Hasher) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
