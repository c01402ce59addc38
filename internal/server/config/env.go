package config

import (
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment key, e.g. GOPHAUTH_SECRET_KEY.
const EnvPrefix = "GOPHAUTH"

// parseEnv overlays GOPHAUTH_* variables that are set.
func parseEnv(config *Config) error {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	stringKeys := map[string]*string{
		"address":             &config.EndpointAddrHTTP,
		"database_dsn":        &config.DatabaseDSN,
		"secret_key":          &config.SecretKey,
		"signing_algorithm":   &config.SigningAlgorithm,
		"password_algorithm":  &config.PasswordAlgorithm,
		"log_level":           &config.LogLevel,
		"log_format":          &config.LogFormat,
		"admin_username":      &config.AdminUsername,
		"admin_email":         &config.AdminEmail,
		"admin_password_hash": &config.AdminPasswordHash,
	}
	for key, dst := range stringKeys {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}

	if v.IsSet("memory") {
		config.UseMemoryStore = v.GetBool("memory")
	}
	if v.IsSet("equalize_miss_timing") {
		config.EqualizeMissTiming = v.GetBool("equalize_miss_timing")
	}
	// Get* return zero values for unparsable input.
	if v.IsSet("bcrypt_cost") {
		cost := v.GetInt("bcrypt_cost")
		if cost == 0 {
			return fmt.Errorf("%w: %s_BCRYPT_COST must be a non-zero integer", common.ErrConfiguration, EnvPrefix)
		}
		config.BcryptCost = cost
	}
	if v.IsSet("token_validity") {
		d := v.GetDuration("token_validity")
		if d <= 0 {
			return fmt.Errorf("%w: %s_TOKEN_VALIDITY must be a positive duration", common.ErrConfiguration, EnvPrefix)
		}
		config.AccessTokenValidityDuration = d
	}
	if v.IsSet("shutdown_timeout") {
		config.ShutdownTimeout = v.GetDuration("shutdown_timeout")
	}
	return nil
}
