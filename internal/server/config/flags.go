package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-m          use the in-memory store instead of PostgreSQL
//	-s string   token signing secret
//	-t int      access token validity, minutes
//	-l string   log level (debug, info, warn, error)
//
// Other arguments are filtered out with flagx.FilterArgs first.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-d", "-m", "-s", "-t", "-l"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.BoolVar(&config.UseMemoryStore, "m", config.UseMemoryStore, "use in-memory store")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	validity := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: flags: %w", common.ErrConfiguration, err)
	}

	// Only override when given: a sub-minute validity from JSON would
	// otherwise be truncated.
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			config.AccessTokenValidityDuration = time.Duration(*validity) * time.Minute
		}
	})
	return nil
}
