package password

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Hasher hashes passwords and checks them against stored hashes.
type Hasher interface {
	// Hash returns a salted, algorithm-tagged hash of password. Two calls with
	// the same input return different strings.
	Hash(password string) (string, error)

	// Verify reports whether plain matches stored. Malformed stored values
	// report false.
	Verify(plain, stored string) bool
}

// BcryptHasher implements Hasher with bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a bcrypt hasher. Costs outside bcrypt's range fall
// back to DefaultBcryptCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt hash: %w", err)
	}
	return string(hash), nil
}

func (h *BcryptHasher) Verify(plain, stored string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(plain)) == nil
}

// weakerThan reports whether stored was produced with a lower cost than h.
func (h *BcryptHasher) weakerThan(stored string) bool {
	cost, err := bcrypt.Cost([]byte(stored))
	if err != nil {
		return true
	}
	return cost < h.cost
}

func isBcrypt(stored string) bool {
	return strings.HasPrefix(stored, "$2a$") ||
		strings.HasPrefix(stored, "$2b$") ||
		strings.HasPrefix(stored, "$2y$")
}
