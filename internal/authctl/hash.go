package authctl

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/password"
	"github.com/spf13/cobra"
)

var errPasswordMismatch = errors.New("passwords do not match")

type hashOptions struct {
	algorithm string
	cost      int
	confirm   bool
	skipRules bool
}

func newHashCommand(p *prompter) *cobra.Command {
	opts := &hashOptions{}

	cmd := &cobra.Command{
		Use:   "hash",
		Short: "Read a password and print its stored hash",
		Long: "Reads a password without echo and prints the hash to store, " +
			"e.g. as admin_password_hash in the server configuration.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHash(cmd, p, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.algorithm, "algorithm", "a", string(password.AlgorithmBcrypt), "bcrypt or argon2id")
	cmd.Flags().IntVarP(&opts.cost, "cost", "c", password.DefaultBcryptCost, "bcrypt cost")
	cmd.Flags().BoolVar(&opts.confirm, "confirm", true, "ask for the password twice")
	cmd.Flags().BoolVar(&opts.skipRules, "skip-rules", false, "do not enforce the registration password rules")
	return cmd
}

func runHash(cmd *cobra.Command, p *prompter, opts *hashOptions) error {
	hasher, err := password.NewHasher(password.Config{
		Algorithm:  password.Algorithm(opts.algorithm),
		BcryptCost: opts.cost,
	})
	if err != nil {
		return err
	}

	pw, err := p.password("Password: ")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	if opts.confirm {
		again, err := p.password("Repeat password: ")
		if err != nil {
			return err
		}
		defer common.WipeByteArray(again)
		if subtle.ConstantTimeCompare(pw, again) != 1 {
			return errPasswordMismatch
		}
	}

	if !opts.skipRules {
		if err := password.ValidatePassword(string(pw)); err != nil {
			return err
		}
	}

	hash, err := hasher.Hash(string(pw))
	if err != nil {
		return fmt.Errorf("hash: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), hash)
	return err
}
