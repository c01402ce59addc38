// Package repomanager vends repository implementations for the configured
// storage backend and runs schema migrations.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
)

// RepositoryManager owns the storage backend.
type RepositoryManager interface {
	// RunMigrations brings the schema up to date.
	RunMigrations(ctx context.Context) error

	// Users returns a repository bound to the shared connection.
	Users() users.Repository

	// InTx runs fn with a repository bound to a single transaction.
	InTx(ctx context.Context, fn func(ctx context.Context, users users.Repository) error) error

	// Ping checks the backend is reachable.
	Ping(ctx context.Context) error

	Close() error
}
