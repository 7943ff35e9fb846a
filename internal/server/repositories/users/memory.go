package users

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/google/uuid"
)

// MemoryRepository keeps records in process memory. It backs the server when
// no database DSN is configured and serves as a fake in tests.
type MemoryRepository struct {
	mu      sync.RWMutex
	byID    map[string]*models.User
	byEmail map[string]string
	now     func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[string]*models.User),
		byEmail: make(map[string]string),
		now:     time.Now,
	}
}

func clone(u *models.User) *models.User {
	c := *u
	if u.DisplayName != nil {
		name := *u.DisplayName
		c.DisplayName = &name
	}
	return &c
}

func (r *MemoryRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[user.Email]; taken {
		return nil, fmt.Errorf("email %w", common.ErrConflict)
	}

	u := clone(user)
	u.ID = uuid.NewString()
	u.CreatedAt = r.now().UTC()
	u.UpdatedAt = u.CreatedAt
	u.Active = true

	r.byID[u.ID] = u
	r.byEmail[u.Email] = u.ID

	return clone(u), nil
}

func (r *MemoryRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return clone(u), nil
}

func (r *MemoryRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return clone(r.byID[id]), nil
}

func (r *MemoryRepository) Update(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[user.ID]
	if !ok {
		return nil, common.ErrorNotFound
	}

	updated := clone(user)
	u.DisplayName = updated.DisplayName
	u.PasswordHash = updated.PasswordHash
	u.UpdatedAt = r.now().UTC()

	return clone(u), nil
}

func (r *MemoryRepository) Deactivate(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok || !u.Active {
		return common.ErrorNotFound
	}
	u.Active = false
	u.UpdatedAt = r.now().UTC()
	return nil
}
