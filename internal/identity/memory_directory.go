package identity

import (
	"context"
	"sync"

	"github.com/fjod/food_cart/internal/domain"
)

type MemoryDirectory struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

func NewMemoryDirectory(users ...domain.User) *MemoryDirectory {
	d := &MemoryDirectory{users: make(map[string]domain.User)}
	for _, u := range users {
		d.users[u.ID] = u
	}
	return d
}

func (d *MemoryDirectory) Lookup(_ context.Context, userID string) (*domain.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	u, ok := d.users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

func (d *MemoryDirectory) Upsert(_ context.Context, user domain.User) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[user.ID] = user
	return nil
}
