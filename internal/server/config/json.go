package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/flagx"
	"github.com/dmitrijs2005/gophauth/internal/timex"
)

// JsonConfig is the on-disk form of Config. Durations accept "1h" style
// strings or integer nanoseconds. Absent fields leave the current value
// untouched.
type JsonConfig struct {
	EndpointAddrHTTP            string          `json:"endpoint_addr_http"`
	DatabaseDSN                 string          `json:"database_dsn"`
	UseMemoryStore              *bool           `json:"use_memory_store"`
	SecretKey                   string          `json:"secret_key"`
	SigningAlgorithm            string          `json:"signing_algorithm"`
	AccessTokenValidityDuration *timex.Duration `json:"access_token_validity_duration"`
	PasswordAlgorithm           string          `json:"password_algorithm"`
	BcryptCost                  int             `json:"bcrypt_cost"`
	EqualizeMissTiming          *bool           `json:"equalize_miss_timing"`
	LogLevel                    string          `json:"log_level"`
	LogFormat                   string          `json:"log_format"`
	ShutdownTimeout             *timex.Duration `json:"shutdown_timeout"`
	AdminUsername               string          `json:"admin_username"`
	AdminEmail                  string          `json:"admin_email"`
	AdminPasswordHash           string          `json:"admin_password_hash"`
}

// parseJSON overlays the file named by -c / -config, if any.
func parseJSON(config *Config, args []string) error {
	path := flagx.JSONConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: read config file: %w", common.ErrConfiguration, err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("%w: parse config file %s: %w", common.ErrConfiguration, path, err)
	}

	c.apply(config)
	return nil
}

func (c *JsonConfig) apply(config *Config) {
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.SigningAlgorithm, c.SigningAlgorithm)
	setString(&config.PasswordAlgorithm, c.PasswordAlgorithm)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogFormat, c.LogFormat)
	setString(&config.AdminUsername, c.AdminUsername)
	setString(&config.AdminEmail, c.AdminEmail)
	setString(&config.AdminPasswordHash, c.AdminPasswordHash)

	if c.UseMemoryStore != nil {
		config.UseMemoryStore = *c.UseMemoryStore
	}
	if c.EqualizeMissTiming != nil {
		config.EqualizeMissTiming = *c.EqualizeMissTiming
	}
	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.ShutdownTimeout != nil {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
	if c.BcryptCost != 0 {
		config.BcryptCost = c.BcryptCost
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
