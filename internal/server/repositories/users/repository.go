// Package users provides storage for user accounts.
package users

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// Repository is the account store. Lookups that find nothing return
// common.ErrorNotFound; Create returns common.ErrorAlreadyExists when the
// username or email is taken.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// FindByEmailForAdmin only matches accounts with the admin role.
	FindByEmailForAdmin(ctx context.Context, email string) (*models.User, error)
	UpdatePasswordHash(ctx context.Context, id, hash string) error
}
