package common

import (
	"crypto/rand"
	"fmt"
)

// GenerateRandByteArray returns n bytes read from crypto/rand.
func GenerateRandByteArray(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("read random bytes: %w", err)
	}
	return b, nil
}

// WipeByteArray overwrites b with zeros. It is used to drop plaintext
// passwords read from a terminal as soon as they are hashed.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
