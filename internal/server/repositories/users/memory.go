package users

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/google/uuid"
)

// MemoryRepository keeps accounts in process memory. It backs the -memory
// server mode and the service tests.
type MemoryRepository struct {
	mu      sync.RWMutex
	byID    map[string]*models.User
	now     func() time.Time
	newUUID func() string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[string]*models.User),
		now:     time.Now,
		newUUID: uuid.NewString,
	}
}

func (r *MemoryRepository) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.byID {
		if u.UserName == user.UserName || u.Email == user.Email {
			return nil, common.ErrorAlreadyExists
		}
	}

	user.ID = r.newUUID()
	user.CreatedAt = r.now().UTC()

	stored := *user
	r.byID[stored.ID] = &stored

	return user, nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if u, ok := r.byID[id]; ok {
		c := *u
		return &c, nil
	}
	return nil, common.ErrorNotFound
}

func (r *MemoryRepository) FindByUsername(_ context.Context, username string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.UserName == username })
}

func (r *MemoryRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Email == email })
}

func (r *MemoryRepository) FindByEmailForAdmin(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Email == email && u.IsAdmin() })
}

func (r *MemoryRepository) UpdatePasswordHash(_ context.Context, id, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (r *MemoryRepository) find(match func(*models.User) bool) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.byID {
		if match(u) {
			c := *u
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}
