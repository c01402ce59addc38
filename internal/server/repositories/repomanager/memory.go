package repomanager

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
)

// MemoryRepositoryManager keeps everything in process memory. Transactions
// are serialised, which is enough for the check-then-insert flows that use
// them.
type MemoryRepositoryManager struct {
	txMu  sync.Mutex
	users *users.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{users: users.NewMemoryRepository()}
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context) error { return nil }

func (m *MemoryRepositoryManager) Users() users.Repository {
	return m.users
}

func (m *MemoryRepositoryManager) InTx(ctx context.Context, fn func(ctx context.Context, users users.Repository) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	return fn(ctx, m.users)
}

func (m *MemoryRepositoryManager) Ping(context.Context) error { return nil }

func (m *MemoryRepositoryManager) Close() error { return nil }
