package repository

import (
	"context"
	"sync"
	"time"

	"github.com/fjod/food_cart/internal/domain"
)

// CleanupInterval is how often idle carts are looked for when expiry is on.
const CleanupInterval = time.Minute

// MemoryRepository keeps carts for the lifetime of the process.
type MemoryRepository struct {
	mu      sync.RWMutex
	carts   map[string]*domain.Cart
	idleTTL time.Duration

	stopCleanup chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup
}

// NewMemoryRepository creates an in-memory cart store. A positive idleTTL drops
// carts that were not updated for that long; zero keeps them forever.
func NewMemoryRepository(idleTTL time.Duration) *MemoryRepository {
	r := &MemoryRepository{
		carts:       make(map[string]*domain.Cart),
		idleTTL:     idleTTL,
		stopCleanup: make(chan struct{}),
	}
	if idleTTL > 0 {
		r.wg.Add(1)
		go r.cleanupLoop()
	}
	return r
}

func (r *MemoryRepository) cleanupLoop() {
	defer r.wg.Done()

	ticker := time.NewTicker(CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.expireIdle(time.Now())
		case <-r.stopCleanup:
			return
		}
	}
}

func (r *MemoryRepository) expireIdle(now time.Time) int {
	if r.idleTTL <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	expired := 0
	for key, cart := range r.carts {
		if now.Sub(cart.UpdatedAt) > r.idleTTL {
			delete(r.carts, key)
			expired++
		}
	}
	return expired
}

func (r *MemoryRepository) Get(_ context.Context, ownerKey string) (*domain.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cart, ok := r.carts[ownerKey]
	if !ok {
		return nil, ErrCartNotFound
	}
	return cart.Clone(), nil
}

func (r *MemoryRepository) Put(_ context.Context, cart *domain.Cart) error {
	stored := normalize(cart.Clone())
	r.mu.Lock()
	defer r.mu.Unlock()
	r.carts[cart.OwnerKey] = stored
	return nil
}

func (r *MemoryRepository) Reset(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.carts = make(map[string]*domain.Cart)
	return nil
}

func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.carts)
}

// Close stops the background cleanup.
func (r *MemoryRepository) Close() error {
	r.stopOnce.Do(func() { close(r.stopCleanup) })
	r.wg.Wait()
	return nil
}
