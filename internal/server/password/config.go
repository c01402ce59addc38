package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Algorithm names a supported password hashing scheme.
type Algorithm string

const (
	AlgorithmBcrypt   Algorithm = "bcrypt"
	AlgorithmArgon2id Algorithm = "argon2id"
)

// DefaultBcryptCost keeps a single verification in the tens of
// milliseconds on current hardware.
const DefaultBcryptCost = 12

// Config selects the hashing algorithm and its cost parameters.
type Config struct {
	Algorithm     Algorithm
	BcryptCost    int
	Argon2Time    uint32
	Argon2Memory  uint32 // KiB
	Argon2Threads uint8
}

// ApplyDefaults fills zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Algorithm == "" {
		c.Algorithm = AlgorithmBcrypt
	}
	if c.BcryptCost == 0 {
		c.BcryptCost = DefaultBcryptCost
	}
	if c.Argon2Time == 0 {
		c.Argon2Time = 1
	}
	if c.Argon2Memory == 0 {
		c.Argon2Memory = 64 * 1024
	}
	if c.Argon2Threads == 0 {
		c.Argon2Threads = 4
	}
}

// Validate checks the configuration after defaults were applied.
func (c *Config) Validate() error {
	switch c.Algorithm {
	case AlgorithmBcrypt, AlgorithmArgon2id:
	default:
		return fmt.Errorf("unsupported password algorithm %q", c.Algorithm)
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("bcrypt cost must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, c.BcryptCost)
	}
	if c.Argon2Memory > argon2MaxMemory || c.Argon2Time > argon2MaxTime {
		return fmt.Errorf("argon2 parameters out of range: m=%d t=%d", c.Argon2Memory, c.Argon2Time)
	}
	return nil
}
