// Package auth issues and verifies the signed access tokens handed out
// after a successful login.
//
// Tokens are compact JWS (header.payload.signature, base64url) signed with
// an HMAC secret. They carry every claim the caller supplied plus "exp";
// nothing is stored server-side, so a token is valid exactly while its
// signature checks out and its expiry is in the future.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultValidity is the lifetime of a token when TokenConfig leaves it unset.
const DefaultValidity = time.Hour

// MinSecretLength is the shortest accepted HMAC secret, in bytes.
const MinSecretLength = 16

// Claims is the set of assertions embedded in a token.
type Claims map[string]any

// Subject returns the "sub" claim, or "" when absent or not a string.
func (c Claims) Subject() string {
	s, _ := c["sub"].(string)
	return s
}

// ExpiresAt returns the "exp" claim as a time.
func (c Claims) ExpiresAt() (time.Time, bool) {
	if v, ok := c["exp"].(int64); ok {
		return time.Unix(v, 0), true
	}
	exp, err := jwt.MapClaims(c).GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// TokenConfig is the process-wide signing configuration.
type TokenConfig struct {
	Secret    []byte
	Algorithm string        // HS256, HS384 or HS512; HS256 when empty
	Validity  time.Duration // DefaultValidity when zero
	Now       func() time.Time
}

// Issuer signs and verifies tokens. It is immutable after construction and
// safe for concurrent use.
type Issuer struct {
	secret   []byte
	method   jwt.SigningMethod
	validity time.Duration
	now      func() time.Time
	parser   *jwt.Parser
}

// NewIssuer validates cfg and returns an Issuer. Errors wrap
// common.ErrConfiguration.
func NewIssuer(cfg TokenConfig) (*Issuer, error) {
	if len(cfg.Secret) == 0 {
		return nil, fmt.Errorf("%w: token secret is empty", common.ErrConfiguration)
	}
	if len(cfg.Secret) < MinSecretLength {
		return nil, fmt.Errorf("%w: token secret must be at least %d bytes", common.ErrConfiguration, MinSecretLength)
	}

	method, err := signingMethod(cfg.Algorithm)
	if err != nil {
		return nil, err
	}

	if cfg.Validity < 0 {
		return nil, fmt.Errorf("%w: negative token validity %s", common.ErrConfiguration, cfg.Validity)
	}
	if cfg.Validity == 0 {
		cfg.Validity = DefaultValidity
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	secret := make([]byte, len(cfg.Secret))
	copy(secret, cfg.Secret)

	i := &Issuer{
		secret:   secret,
		method:   method,
		validity: cfg.Validity,
		now:      cfg.Now,
	}
	i.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithJSONNumber(),
		jwt.WithTimeFunc(i.now),
	)
	return i, nil
}

func signingMethod(alg string) (jwt.SigningMethod, error) {
	switch alg {
	case "", "HS256":
		return jwt.SigningMethodHS256, nil
	case "HS384":
		return jwt.SigningMethodHS384, nil
	case "HS512":
		return jwt.SigningMethodHS512, nil
	default:
		return nil, fmt.Errorf("%w: unsupported signing algorithm %q", common.ErrConfiguration, alg)
	}
}

// Algorithm returns the JWS "alg" value tokens are signed with.
func (i *Issuer) Algorithm() string {
	return i.method.Alg()
}

// Validity returns the lifetime given to every issued token.
func (i *Issuer) Validity() time.Duration {
	return i.validity
}

// Issue copies claims, sets "exp" to now plus the configured validity and
// returns the signed token. The caller's map is not modified.
func (i *Issuer) Issue(claims Claims) (string, error) {
	payload := make(jwt.MapClaims, len(claims)+1)
	maps.Copy(payload, claims)
	payload["exp"] = jwt.NewNumericDate(i.now().Add(i.validity))

	token, err := jwt.NewWithClaims(i.method, payload).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Verify checks the signature, algorithm and expiry of token and returns its
// claims. Failures wrap exactly one of common.ErrMalformedToken,
// common.ErrInvalidSignature or common.ErrTokenExpired.
func (i *Issuer) Verify(token string) (Claims, error) {
	claims := jwt.MapClaims{}

	_, err := i.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	})
	if err != nil {
		return nil, classify(err)
	}

	out := make(Claims, len(claims))
	for k, v := range claims {
		out[k] = fromJSONNumbers(v)
	}
	return out, nil
}

// fromJSONNumbers replaces json.Number values, including nested ones, with
// int64 when integral and float64 otherwise.
func fromJSONNumbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n
		}
		f, _ := t.Float64()
		return f
	case map[string]any:
		for k, e := range t {
			t[k] = fromJSONNumbers(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = fromJSONNumbers(e)
		}
		return t
	default:
		return v
	}
}

// classify maps a jwt parse error onto the token error taxonomy.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", common.ErrMalformedToken, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", common.ErrInvalidSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", common.ErrTokenExpired, err)
	default:
		// Missing or mistyped exp, nbf in the future and the like.
		return fmt.Errorf("%w: %v", common.ErrMalformedToken, err)
	}
}

// ErrorKind returns a stable label for a Verify error, suitable for logs and
// metric labels.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, common.ErrInvalidSignature):
		return "invalid_signature"
	case errors.Is(err, common.ErrTokenExpired):
		return "expired"
	case errors.Is(err, common.ErrMalformedToken):
		return "malformed"
	default:
		return "error"
	}
}
