package authctl

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/spf13/cobra"
)

type inspectOptions struct {
	secret    string
	algorithm string
	at        string
}

type inspectResult struct {
	Valid     bool        `json:"valid"`
	Kind      string      `json:"kind"`
	ExpiresAt *time.Time  `json:"expires_at,omitempty"`
	Claims    auth.Claims `json:"claims,omitempty"`
}

func newInspectCommand() *cobra.Command {
	opts := &inspectOptions{}

	cmd := &cobra.Command{
		Use:   "inspect <token>",
		Short: "Verify a token and print its claims",
		Long: "Verifies a token with the server secret and prints the claims, " +
			"or the failure kind. The secret defaults to $" + config.EnvPrefix + "_SECRET_KEY.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.secret, "secret", "s", "", "signing secret")
	cmd.Flags().StringVar(&opts.algorithm, "algorithm", "HS256", "signing algorithm")
	cmd.Flags().StringVar(&opts.at, "at", "", "verify as of this RFC 3339 time instead of now")
	return cmd
}

func runInspect(cmd *cobra.Command, opts *inspectOptions, token string) error {
	secret := opts.secret
	if secret == "" {
		secret = os.Getenv(config.EnvPrefix + "_SECRET_KEY")
	}

	now := time.Now
	if opts.at != "" {
		at, err := time.Parse(time.RFC3339, opts.at)
		if err != nil {
			return fmt.Errorf("--at: %w", err)
		}
		now = func() time.Time { return at }
	}

	issuer, err := auth.NewIssuer(auth.TokenConfig{
		Secret:    []byte(secret),
		Algorithm: opts.algorithm,
		Now:       now,
	})
	if err != nil {
		return err
	}

	claims, verr := issuer.Verify(token)
	res := inspectResult{Valid: verr == nil, Kind: auth.ErrorKind(verr), Claims: claims}
	if exp, ok := claims.ExpiresAt(); ok {
		exp = exp.UTC()
		res.ExpiresAt = &exp
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return err
	}
	return verr
}
