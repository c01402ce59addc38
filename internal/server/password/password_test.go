package password

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Cheap parameters keep the suite fast; production defaults are exercised
// by TestConfig_Defaults.
func testHasher(t *testing.T, alg Algorithm) *MultiHasher {
	t.Helper()
	h, err := NewHasher(Config{
		Algorithm:     alg,
		BcryptCost:    4,
		Argon2Time:    1,
		Argon2Memory:  1024,
		Argon2Threads: 1,
	})
	require.NoError(t, err)
	return h
}

func TestHashVerify_RoundTrip(t *testing.T) {
	for _, alg := range []Algorithm{AlgorithmBcrypt, AlgorithmArgon2id} {
		t.Run(string(alg), func(t *testing.T) {
			h := testHasher(t, alg)

			stored, err := h.Hash("Secr3t1")
			require.NoError(t, err)

			assert.True(t, h.Verify("Secr3t1", stored))
			assert.False(t, h.Verify("Secr3t2", stored))
			assert.False(t, h.Verify("", stored))
		})
	}
}

func TestHash_SaltedTwice(t *testing.T) {
	for _, alg := range []Algorithm{AlgorithmBcrypt, AlgorithmArgon2id} {
		t.Run(string(alg), func(t *testing.T) {
			h := testHasher(t, alg)

			a, err := h.Hash("same_password")
			require.NoError(t, err)
			b, err := h.Hash("same_password")
			require.NoError(t, err)

			assert.NotEqual(t, a, b)
			assert.True(t, h.Verify("same_password", a))
			assert.True(t, h.Verify("same_password", b))
		})
	}
}

func TestHash_SelfDescribing(t *testing.T) {
	b, err := testHasher(t, AlgorithmBcrypt).Hash("Secr3t1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(b, "$2a$04$"), b)

	a, err := testHasher(t, AlgorithmArgon2id).Hash("Secr3t1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(a, "$argon2id$v=19$m=1024,t=1,p=1$"), a)
}

func TestVerify_CrossAlgorithm(t *testing.T) {
	bc := testHasher(t, AlgorithmBcrypt)
	ar := testHasher(t, AlgorithmArgon2id)

	fromBcrypt, err := bc.Hash("legacy_pw")
	require.NoError(t, err)
	fromArgon, err := ar.Hash("modern_pw")
	require.NoError(t, err)

	assert.True(t, ar.Verify("legacy_pw", fromBcrypt))
	assert.True(t, bc.Verify("modern_pw", fromArgon))
}

func TestVerify_MalformedStoredHash(t *testing.T) {
	h := testHasher(t, AlgorithmArgon2id)

	good, err := h.Hash("Secr3t1")
	require.NoError(t, err)

	cases := map[string]string{
		"empty":            "",
		"plaintext":        "Secr3t1",
		"unknown prefix":   "$md5$abc",
		"truncated bcrypt": "$2a$10$abc",
		"bcrypt garbage":   "$2b$99$" + strings.Repeat("x", 53),
		"argon missing":    "$argon2id$v=19$m=1024,t=1,p=1$",
		"argon bad ver":    strings.Replace(good, "v=19", "v=1", 1),
		"argon zero p":     strings.Replace(good, "p=1", "p=0", 1),
		"argon huge m":     strings.Replace(good, "m=1024", "m=4294967295", 1),
		"argon bad b64":    "$argon2id$v=19$m=1024,t=1,p=1$!!!!$!!!!",
		"argon short key":  "$argon2id$v=19$m=1024,t=1,p=1$c2FsdHNhbHQ$YQ",
	}

	for name, stored := range cases {
		t.Run(name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.False(t, h.Verify("Secr3t1", stored))
			})
		})
	}
}

func TestVerify_Concurrent(t *testing.T) {
	h := testHasher(t, AlgorithmBcrypt)
	stored, err := h.Hash("Secr3t1")
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]bool, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = h.Verify("Secr3t1", stored)
		}(i)
	}
	wg.Wait()

	for i, ok := range results {
		assert.Truef(t, ok, "goroutine %d failed to verify", i)
	}
}

func TestNeedsRehash(t *testing.T) {
	bc := testHasher(t, AlgorithmBcrypt)
	ar := testHasher(t, AlgorithmArgon2id)

	bHash, err := bc.Hash("Secr3t1")
	require.NoError(t, err)
	aHash, err := ar.Hash("Secr3t1")
	require.NoError(t, err)

	assert.False(t, bc.NeedsRehash(bHash))
	assert.True(t, bc.NeedsRehash(aHash))
	assert.False(t, ar.NeedsRehash(aHash))
	assert.True(t, ar.NeedsRehash(bHash))

	stronger, err := NewHasher(Config{Algorithm: AlgorithmBcrypt, BcryptCost: 5})
	require.NoError(t, err)
	assert.True(t, stronger.NeedsRehash(bHash))
	assert.True(t, stronger.NeedsRehash("garbage"))
}

func TestConfig_Defaults(t *testing.T) {
	var c Config
	c.ApplyDefaults()

	assert.Equal(t, AlgorithmBcrypt, c.Algorithm)
	assert.Equal(t, DefaultBcryptCost, c.BcryptCost)
	assert.Equal(t, uint32(1), c.Argon2Time)
	assert.Equal(t, uint32(64*1024), c.Argon2Memory)
	assert.Equal(t, uint8(4), c.Argon2Threads)
	require.NoError(t, c.Validate())
}

func TestNewHasher_RejectsBadConfig(t *testing.T) {
	_, err := NewHasher(Config{Algorithm: "md5"})
	require.Error(t, err)

	_, err = NewHasher(Config{BcryptCost: 40})
	require.Error(t, err)
}

func TestNewBcryptHasher_CostFallback(t *testing.T) {
	assert.Equal(t, DefaultBcryptCost, NewBcryptHasher(1).cost)
	assert.Equal(t, 6, NewBcryptHasher(6).cost)
}

func TestValidatePassword(t *testing.T) {
	ok := []string{"Secr3t1", "abc_12", strings.Repeat("a", 20)}
	bad := []string{"", "short", strings.Repeat("a", 21), "has space", "dash-dash", "ünïcode1"}

	for _, p := range ok {
		assert.NoError(t, ValidatePassword(p), p)
	}
	for _, p := range bad {
		err := ValidatePassword(p)
		assert.True(t, errors.Is(err, common.ErrorValidation), p)
	}
}

func TestValidateUsername(t *testing.T) {
	assert.NoError(t, ValidateUsername("alice1"))
	assert.NoError(t, ValidateUsername("real_user"))
	assert.ErrorIs(t, ValidateUsername("abc"), common.ErrorValidation)
	assert.ErrorIs(t, ValidateUsername("this_name_is_too_long"), common.ErrorValidation)
	assert.ErrorIs(t, ValidateUsername("al ice"), common.ErrorValidation)
}

func TestIsHash(t *testing.T) {
	h := testHasher(t, AlgorithmBcrypt)
	bc, err := h.Hash("Secr3t1")
	require.NoError(t, err)

	a := testHasher(t, AlgorithmArgon2id)
	ar, err := a.Hash("Secr3t1")
	require.NoError(t, err)

	assert.True(t, IsHash(bc))
	assert.True(t, IsHash(ar))
	assert.False(t, IsHash("Secr3t1"))
	assert.False(t, IsHash(""))
	assert.False(t, IsHash("$1$md5crypt"))
}
