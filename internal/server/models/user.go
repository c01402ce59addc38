// Package models holds the persistence-level records shared by the
// repositories and services.
package models

import (
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
)

// User is an account row. PasswordHash is owned by the storage layer and is
// never serialised, logged or embedded in tokens.
type User struct {
	ID           string    `json:"id"`
	UserName     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"registered_at"`
}

// IsAdmin reports whether the account may use the administrative login.
func (u *User) IsAdmin() bool {
	return u.Role == common.RoleAdmin
}

// Principal is the authenticated identity handed back to callers.
type Principal struct {
	ID       string `json:"id"`
	UserName string `json:"username"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role"`
}

// Principal returns the identity view of u.
func (u *User) Principal() *Principal {
	return &Principal{
		ID:       u.ID,
		UserName: u.UserName,
		Email:    u.Email,
		Role:     u.Role,
	}
}
