package password

import (
	"fmt"
	"strings"
)

// MultiHasher hashes with the configured algorithm and verifies every
// supported stored form.
type MultiHasher struct {
	algorithm Algorithm
	bcrypt    *BcryptHasher
	argon2    *Argon2Hasher
}

// NewHasher builds a MultiHasher from cfg.
func NewHasher(cfg Config) (*MultiHasher, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("password: %w", err)
	}
	return &MultiHasher{
		algorithm: cfg.Algorithm,
		bcrypt:    NewBcryptHasher(cfg.BcryptCost),
		argon2:    NewArgon2Hasher(cfg.Argon2Time, cfg.Argon2Memory, cfg.Argon2Threads),
	}, nil
}

// Algorithm returns the algorithm new hashes are produced with.
func (m *MultiHasher) Algorithm() Algorithm {
	return m.algorithm
}

func (m *MultiHasher) Hash(password string) (string, error) {
	if m.algorithm == AlgorithmArgon2id {
		return m.argon2.Hash(password)
	}
	return m.bcrypt.Hash(password)
}

func (m *MultiHasher) Verify(plain, stored string) bool {
	switch {
	case isBcrypt(stored):
		return m.bcrypt.Verify(plain, stored)
	case strings.HasPrefix(stored, argon2Prefix):
		return m.argon2.Verify(plain, stored)
	default:
		return false
	}
}

// NeedsRehash reports whether stored should be replaced after the next
// successful login: it uses another algorithm or a cheaper setting than
// currently configured.
func (m *MultiHasher) NeedsRehash(stored string) bool {
	switch m.algorithm {
	case AlgorithmArgon2id:
		return !strings.HasPrefix(stored, argon2Prefix) || m.argon2.weakerThan(stored)
	default:
		return !isBcrypt(stored) || m.bcrypt.weakerThan(stored)
	}
}

// IsHash reports whether stored looks like a hash this package can verify.
// It does not check that the encoded parameters are valid.
func IsHash(stored string) bool {
	return isBcrypt(stored) || strings.HasPrefix(stored, argon2Prefix)
}
