// Package services contains server-side business logic: credential
// verification against stored accounts, token issuance and registration.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// UserLookup is the part of the account store authentication needs. A lookup
// that finds nothing returns common.ErrorNotFound.
type UserLookup interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByEmailForAdmin(ctx context.Context, email string) (*models.User, error)
}

// PasswordVerifier checks a plaintext password against a stored hash.
// Malformed stored hashes must verify as false.
type PasswordVerifier interface {
	Hash(password string) (string, error)
	Verify(plain, stored string) bool
}

// Options tunes authentication behaviour.
type Options struct {
	// EqualizeMissTiming runs a hash verification against a throwaway hash
	// when the account lookup misses, so an unknown identifier costs about as
	// much as a wrong password. Off by default: a miss then returns before
	// any hashing and is measurably faster than a mismatch.
	EqualizeMissTiming bool
}

// Authenticator verifies credentials. It holds no mutable state and is safe
// for concurrent use.
type Authenticator struct {
	users     UserLookup
	hasher    PasswordVerifier
	log       logging.Logger
	metrics   metrics.Recorder
	equalize  bool
	dummyHash string
}

// NewAuthenticator wires an Authenticator. A nil logger or recorder discards
// output.
func NewAuthenticator(users UserLookup, hasher PasswordVerifier, log logging.Logger, rec metrics.Recorder, opts Options) (*Authenticator, error) {
	if log == nil {
		log = logging.Discard()
	}
	if rec == nil {
		rec = metrics.Nop{}
	}

	a := &Authenticator{
		users:    users,
		hasher:   hasher,
		log:      log,
		metrics:  rec,
		equalize: opts.EqualizeMissTiming,
	}

	if a.equalize {
		seed, err := common.GenerateRandByteArray(16)
		if err != nil {
			return nil, fmt.Errorf("dummy password: %w", err)
		}
		a.dummyHash, err = hasher.Hash(fmt.Sprintf("%x", seed))
		common.WipeByteArray(seed)
		if err != nil {
			return nil, fmt.Errorf("dummy hash: %w", err)
		}
	}
	return a, nil
}

// AuthenticateByUsername resolves the principal for a username/password
// pair. An unknown username and a wrong password both fail with
// common.ErrIncorrectEmailOrPassword.
func (a *Authenticator) AuthenticateByUsername(ctx context.Context, username, password string) (*models.Principal, error) {
	u, err := a.authenticateUsername(ctx, username, password)
	if err != nil {
		return nil, err
	}
	return u.Principal(), nil
}

// AuthenticateByEmail is the administrative variant: only accounts with the
// admin role are considered.
func (a *Authenticator) AuthenticateByEmail(ctx context.Context, email, password string) (*models.Principal, error) {
	u, err := a.authenticateAdminEmail(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return u.Principal(), nil
}

func (a *Authenticator) authenticateUsername(ctx context.Context, username, password string) (*models.User, error) {
	return a.authenticate(ctx, metrics.MethodUsername, password, func(ctx context.Context) (*models.User, error) {
		return a.users.FindByUsername(ctx, username)
	})
}

func (a *Authenticator) authenticateAdminEmail(ctx context.Context, email, password string) (*models.User, error) {
	return a.authenticate(ctx, metrics.MethodEmail, password, func(ctx context.Context) (*models.User, error) {
		return a.users.FindByEmailForAdmin(ctx, email)
	})
}

func (a *Authenticator) authenticate(ctx context.Context, method, password string, lookup func(context.Context) (*models.User, error)) (*models.User, error) {
	log := a.log.With("method", method)

	user, err := lookup(ctx)
	if err == nil && user == nil {
		err = common.ErrorNotFound
	}
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			a.metrics.Authentication(method, metrics.OutcomeError)
			log.Error(ctx, "user lookup failed", "error", err)
			return nil, fmt.Errorf("%w: user lookup: %w", common.ErrorInternal, err)
		}
		if a.equalize {
			a.hasher.Verify(password, a.dummyHash)
		}
		a.metrics.Authentication(method, metrics.OutcomeRejected)
		log.Info(ctx, "authentication rejected", "reason", "unknown account")
		return nil, common.ErrIncorrectEmailOrPassword
	}

	if !a.hasher.Verify(password, user.PasswordHash) {
		a.metrics.Authentication(method, metrics.OutcomeRejected)
		log.Info(ctx, "authentication rejected", "reason", "password mismatch", "user_id", user.ID)
		return nil, common.ErrIncorrectEmailOrPassword
	}

	a.metrics.Authentication(method, metrics.OutcomeSuccess)
	log.Debug(ctx, "authentication succeeded", "user_id", user.ID)
	return user, nil
}
