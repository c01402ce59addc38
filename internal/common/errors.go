// Package common defines shared constants and sentinel errors used across
// the gophauth server and tools. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal   = errors.New("internal error")
	ErrorValidation = errors.New("validation error")

	// ErrIncorrectEmailOrPassword is the only error an authentication attempt
	// reports outward, whether the account is unknown or the password is wrong.
	ErrIncorrectEmailOrPassword = errors.New("incorrect email or password")

	// Token verification errors. They are kept apart for logs and metrics
	// but callers should not echo them to end users.
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrTokenExpired     = errors.New("token expired")
	ErrMalformedToken   = errors.New("malformed token")

	// ErrUnknownSubject is returned when a valid token names an account that
	// no longer exists.
	ErrUnknownSubject = errors.New("token subject not found")

	// ErrConfiguration marks a missing or invalid secret/algorithm. It is
	// fatal at startup.
	ErrConfiguration = errors.New("configuration error")
)
