package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/password"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
	"github.com/go-playground/validator/v10"
)

// TokenTypeBearer is the token_type reported with every access token.
const TokenTypeBearer = "bearer"

// PasswordHasher is a PasswordVerifier that can also tell when a stored hash
// should be upgraded.
type PasswordHasher interface {
	PasswordVerifier
	NeedsRehash(stored string) bool
}

// TokenIssuer signs and verifies access tokens.
type TokenIssuer interface {
	Issue(claims auth.Claims) (string, error)
	Verify(token string) (auth.Claims, error)
	Validity() time.Duration
}

// LoginResult is a freshly issued access token and the identity it asserts.
type LoginResult struct {
	AccessToken string            `json:"access_token"`
	TokenType   string            `json:"token_type"`
	ExpiresIn   int64             `json:"expires_in"`
	Principal   *models.Principal `json:"user"`
}

// UserService handles registration, login and token resolution.
type UserService struct {
	repomanager repomanager.RepositoryManager
	authn       *Authenticator
	hasher      PasswordHasher
	tokens      TokenIssuer
	validate    *validator.Validate
	log         logging.Logger
	metrics     metrics.Recorder
}

// NewUserService constructs a UserService. A nil logger or recorder discards
// output.
func NewUserService(m repomanager.RepositoryManager, hasher PasswordHasher, tokens TokenIssuer, log logging.Logger, rec metrics.Recorder, opts Options) (*UserService, error) {
	if log == nil {
		log = logging.Discard()
	}
	if rec == nil {
		rec = metrics.Nop{}
	}

	authn, err := NewAuthenticator(m.Users(), hasher, log, rec, opts)
	if err != nil {
		return nil, err
	}

	return &UserService{
		repomanager: m,
		authn:       authn,
		hasher:      hasher,
		tokens:      tokens,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		log:         log,
		metrics:     rec,
	}, nil
}

// Authenticator exposes the credential checker the service uses.
func (s *UserService) Authenticator() *Authenticator {
	return s.authn
}

// Register validates the input, hashes the password and stores a new
// account with the user role.
func (s *UserService) Register(ctx context.Context, username, email, plain string) (*models.Principal, error) {
	if err := password.ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := password.ValidatePassword(plain); err != nil {
		return nil, err
	}
	if err := s.validate.Var(email, "required,email,max=30"); err != nil {
		return nil, fmt.Errorf("%w: invalid email address", common.ErrorValidation)
	}

	hash, err := s.hasher.Hash(plain)
	if err != nil {
		return nil, fmt.Errorf("%w: hash password: %w", common.ErrorInternal, err)
	}

	user := &models.User{
		UserName:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         common.RoleUser,
	}
	if err := s.createUnique(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info(ctx, "user registered", "user_id", user.ID)
	return user.Principal(), nil
}

// SeedAdmin creates an admin account from an already hashed password unless
// an account with that email exists. It reports whether an account was
// created.
func (s *UserService) SeedAdmin(ctx context.Context, username, email, storedHash string) (bool, error) {
	if !password.IsHash(storedHash) {
		return false, fmt.Errorf("%w: admin password must be a stored hash", common.ErrConfiguration)
	}

	user := &models.User{
		UserName:     username,
		Email:        email,
		PasswordHash: storedHash,
		Role:         common.RoleAdmin,
	}
	err := s.createUnique(ctx, user)
	if errors.Is(err, common.ErrorAlreadyExists) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	s.log.Info(ctx, "admin account seeded", "user_id", user.ID)
	return true, nil
}

func (s *UserService) createUnique(ctx context.Context, user *models.User) error {
	return s.repomanager.InTx(ctx, func(ctx context.Context, repo users.Repository) error {
		if err := ensureAbsent(ctx, "username", func(ctx context.Context) (*models.User, error) {
			return repo.FindByUsername(ctx, user.UserName)
		}); err != nil {
			return err
		}
		if err := ensureAbsent(ctx, "email", func(ctx context.Context) (*models.User, error) {
			return repo.FindByEmail(ctx, user.Email)
		}); err != nil {
			return err
		}

		if _, err := repo.Create(ctx, user); err != nil {
			if errors.Is(err, common.ErrorAlreadyExists) {
				return err
			}
			return fmt.Errorf("%w: create user: %w", common.ErrorInternal, err)
		}
		return nil
	})
}

func ensureAbsent(ctx context.Context, field string, find func(context.Context) (*models.User, error)) error {
	_, err := find(ctx)
	switch {
	case err == nil:
		return fmt.Errorf("%w: %s is already registered", common.ErrorAlreadyExists, field)
	case errors.Is(err, common.ErrorNotFound):
		return nil
	default:
		return fmt.Errorf("%w: find by %s: %w", common.ErrorInternal, field, err)
	}
}

// Login authenticates by username and issues an access token.
func (s *UserService) Login(ctx context.Context, username, plain string) (*LoginResult, error) {
	user, err := s.authn.authenticateUsername(ctx, username, plain)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, user, plain)
}

// AdminLogin authenticates an admin account by email and issues an access
// token.
func (s *UserService) AdminLogin(ctx context.Context, email, plain string) (*LoginResult, error) {
	user, err := s.authn.authenticateAdminEmail(ctx, email, plain)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, user, plain)
}

func (s *UserService) issue(ctx context.Context, user *models.User, plain string) (*LoginResult, error) {
	s.rehashIfNeeded(ctx, user, plain)

	token, err := s.tokens.Issue(auth.Claims{
		"sub":      user.ID,
		"username": user.UserName,
		"role":     user.Role,
	})
	if err != nil {
		s.log.Error(ctx, "token issue failed", "user_id", user.ID, "error", err)
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	return &LoginResult{
		AccessToken: token,
		TokenType:   TokenTypeBearer,
		ExpiresIn:   int64(s.tokens.Validity() / time.Second),
		Principal:   user.Principal(),
	}, nil
}

// rehashIfNeeded upgrades a stored hash after a successful login. Failures
// are logged and do not affect the login.
func (s *UserService) rehashIfNeeded(ctx context.Context, user *models.User, plain string) {
	if !s.hasher.NeedsRehash(user.PasswordHash) {
		return
	}

	hash, err := s.hasher.Hash(plain)
	if err != nil {
		s.log.Warn(ctx, "password rehash failed", "user_id", user.ID, "error", err)
		return
	}
	if err := s.repomanager.Users().UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		s.log.Warn(ctx, "password rehash not stored", "user_id", user.ID, "error", err)
		return
	}
	user.PasswordHash = hash
	s.log.Info(ctx, "password hash upgraded", "user_id", user.ID)
}

// ResolvePrincipal verifies token and loads the account named by its "sub"
// claim. Token failures wrap the auth error kinds; a subject that no longer
// exists yields common.ErrUnknownSubject. Rejections are counted but left to
// the caller to log.
func (s *UserService) ResolvePrincipal(ctx context.Context, token string) (*models.Principal, error) {
	token = strings.TrimSpace(token)

	claims, err := s.tokens.Verify(token)
	s.metrics.TokenVerification(auth.ErrorKind(err))
	if err != nil {
		return nil, err
	}

	sub := claims.Subject()
	if sub == "" {
		return nil, fmt.Errorf("%w: missing sub claim", common.ErrMalformedToken)
	}

	user, err := s.repomanager.Users().FindByID(ctx, sub)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUnknownSubject
		}
		s.log.Error(ctx, "principal lookup failed", "user_id", sub, "error", err)
		return nil, fmt.Errorf("%w: find by id: %w", common.ErrorInternal, err)
	}
	return user.Principal(), nil
}
