package config

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv(t *testing.T) {
	t.Setenv("GOPHAUTH_ADDRESS", ":6000")
	t.Setenv("GOPHAUTH_DATABASE_DSN", "postgres://env")
	t.Setenv("GOPHAUTH_MEMORY", "true")
	t.Setenv("GOPHAUTH_SECRET_KEY", testSecret)
	t.Setenv("GOPHAUTH_SIGNING_ALGORITHM", "HS384")
	t.Setenv("GOPHAUTH_TOKEN_VALIDITY", "45m")
	t.Setenv("GOPHAUTH_PASSWORD_ALGORITHM", "argon2id")
	t.Setenv("GOPHAUTH_BCRYPT_COST", "11")
	t.Setenv("GOPHAUTH_EQUALIZE_MISS_TIMING", "1")
	t.Setenv("GOPHAUTH_LOG_LEVEL", "error")
	t.Setenv("GOPHAUTH_LOG_FORMAT", "text")
	t.Setenv("GOPHAUTH_SHUTDOWN_TIMEOUT", "2s")

	cfg := defaults()
	require.NoError(t, parseEnv(cfg))

	want := defaults()
	want.EndpointAddrHTTP = ":6000"
	want.DatabaseDSN = "postgres://env"
	want.UseMemoryStore = true
	want.SecretKey = testSecret
	want.SigningAlgorithm = "HS384"
	want.AccessTokenValidityDuration = 45 * time.Minute
	want.PasswordAlgorithm = "argon2id"
	want.BcryptCost = 11
	want.EqualizeMissTiming = true
	want.LogLevel = "error"
	want.LogFormat = "text"
	want.ShutdownTimeout = 2 * time.Second

	assert.Empty(t, cmp.Diff(want, cfg))
}

func TestParseEnv_UnsetLeavesValues(t *testing.T) {
	cfg := defaults()
	require.NoError(t, parseEnv(cfg))
	assert.Empty(t, cmp.Diff(defaults(), cfg))
}

func TestParseEnv_BadValues(t *testing.T) {
	t.Run("validity", func(t *testing.T) {
		t.Setenv("GOPHAUTH_TOKEN_VALIDITY", "later")
		require.ErrorIs(t, parseEnv(defaults()), common.ErrConfiguration)
	})
	t.Run("cost", func(t *testing.T) {
		t.Setenv("GOPHAUTH_BCRYPT_COST", "high")
		require.ErrorIs(t, parseEnv(defaults()), common.ErrConfiguration)
	})
}
