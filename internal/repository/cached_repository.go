package repository

import (
	"context"
	"errors"

	"github.com/fjod/food_cart/internal/cache"
	"github.com/fjod/food_cart/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// CachedRepository puts a cart cache in front of another repository. Cache
// failures are logged and never fail a request.
type CachedRepository struct {
	next  CartRepository
	cache cache.CartCache
	log   *zap.Logger
	sfg   singleflight.Group // Prevents cache stampede
}

func NewCachedRepository(next CartRepository, c cache.CartCache, log *zap.Logger) *CachedRepository {
	return &CachedRepository{next: next, cache: c, log: log}
}

func (r *CachedRepository) Get(ctx context.Context, ownerKey string) (*domain.Cart, error) {
	v, err, _ := r.sfg.Do(ownerKey, func() (interface{}, error) {
		cart, err := r.cache.Get(ctx, ownerKey)
		if err == nil {
			return normalize(cart), nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			r.log.Warn("cache get failed", zap.String("owner_key", ownerKey), zap.Error(err))
		}

		cart, err = r.next.Get(ctx, ownerKey)
		if err != nil {
			return nil, err
		}

		if err := r.cache.Set(ctx, cart); err != nil {
			r.log.Warn("cache set failed", zap.String("owner_key", ownerKey), zap.Error(err))
		}
		return cart, nil
	})
	if err != nil {
		return nil, err
	}

	// callers sharing one flight must not share one value
	return v.(*domain.Cart).Clone(), nil
}

func (r *CachedRepository) Put(ctx context.Context, cart *domain.Cart) error {
	if err := r.next.Put(ctx, cart); err != nil {
		return err
	}
	r.invalidate(ctx, cart.OwnerKey)
	return nil
}

func (r *CachedRepository) Reset(ctx context.Context) error {
	if err := r.next.Reset(ctx); err != nil {
		return err
	}
	if err := r.cache.Clear(ctx); err != nil {
		r.log.Warn("cache clear failed", zap.Error(err))
	}
	return nil
}

func (r *CachedRepository) invalidate(ctx context.Context, ownerKey string) {
	if err := r.cache.Delete(ctx, ownerKey); err != nil {
		r.log.Warn("cache delete failed", zap.String("owner_key", ownerKey), zap.Error(err))
	}
}
