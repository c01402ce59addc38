package password

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	argon2Prefix  = "$argon2id$"
	argon2SaltLen = 16
	argon2KeyLen  = 32

	// Upper bounds applied to parameters read back from storage, so a
	// corrupted row cannot make Verify allocate gigabytes.
	argon2MaxMemory  = 1 << 20 // KiB, 1 GiB
	argon2MaxTime    = 64
	argon2MinKeyLen  = 16
	argon2MaxKeyLen  = 128
	argon2MaxSaltLen = 64
)

type argon2Params struct {
	time    uint32
	memory  uint32
	threads uint8
}

// Argon2Hasher implements Hasher with argon2id.
type Argon2Hasher struct {
	params argon2Params
}

// NewArgon2Hasher returns an argon2id hasher. memory is in KiB.
func NewArgon2Hasher(time, memory uint32, threads uint8) *Argon2Hasher {
	return &Argon2Hasher{params: argon2Params{time: time, memory: memory, threads: threads}}
}

func (h *Argon2Hasher) Hash(password string) (string, error) {
	salt, err := common.GenerateRandByteArray(argon2SaltLen)
	if err != nil {
		return "", fmt.Errorf("argon2 salt: %w", err)
	}

	p := h.params
	key := argon2.IDKey([]byte(password), salt, p.time, p.memory, p.threads, argon2KeyLen)

	return fmt.Sprintf("%sv=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2Prefix,
		argon2.Version,
		p.memory, p.time, p.threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func (h *Argon2Hasher) Verify(plain, stored string) bool {
	p, salt, want, ok := decodeArgon2(stored)
	if !ok {
		return false
	}
	got := argon2.IDKey([]byte(plain), salt, p.time, p.memory, p.threads, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1
}

// weakerThan reports whether stored is unreadable or uses cheaper
// parameters than h.
func (h *Argon2Hasher) weakerThan(stored string) bool {
	p, _, _, ok := decodeArgon2(stored)
	if !ok {
		return true
	}
	return p.time < h.params.time || p.memory < h.params.memory || p.threads < h.params.threads
}

// decodeArgon2 parses $argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>.
func decodeArgon2(stored string) (argon2Params, []byte, []byte, bool) {
	var p argon2Params

	parts := strings.Split(stored, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return p, nil, nil, false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return p, nil, nil, false
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.time, &p.threads); err != nil {
		return p, nil, nil, false
	}
	if p.time == 0 || p.time > argon2MaxTime || p.threads == 0 || p.memory == 0 || p.memory > argon2MaxMemory {
		return p, nil, nil, false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 || len(salt) > argon2MaxSaltLen {
		return p, nil, nil, false
	}

	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) < argon2MinKeyLen || len(key) > argon2MaxKeyLen {
		return p, nil, nil, false
	}

	return p, salt, key, true
}
