package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/food_cart/internal/domain"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

type BreakerSettings struct {
	Name                string
	MaxHalfOpenRequests uint32
	Interval            time.Duration
	OpenTimeout         time.Duration
	ConsecutiveFailures uint32
}

func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		Name:                "catalog",
		MaxHalfOpenRequests: 1,
		Interval:            time.Minute,
		OpenTimeout:         10 * time.Second,
		ConsecutiveFailures: 5,
	}
}

// BreakerResolver stops calling a failing catalog for a while. Missing items
// are a normal answer and never trip it.
type BreakerResolver struct {
	next Resolver
	cb   *gobreaker.CircuitBreaker[*domain.CatalogItem]
}

func NewBreakerResolver(next Resolver, settings BreakerSettings, log *zap.Logger) *BreakerResolver {
	st := gobreaker.Settings{
		Name:        settings.Name,
		MaxRequests: settings.MaxHalfOpenRequests,
		Interval:    settings.Interval,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.ConsecutiveFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || IsLookupMiss(err) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}
	return &BreakerResolver{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[*domain.CatalogItem](st),
	}
}

func (b *BreakerResolver) Resolve(ctx context.Context, itemID string) (*domain.CatalogItem, error) {
	item, err := b.cb.Execute(func() (*domain.CatalogItem, error) {
		return b.next.Resolve(ctx, itemID)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	return item, err
}

func (b *BreakerResolver) State() gobreaker.State {
	return b.cb.State()
}
