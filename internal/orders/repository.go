package orders

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/fjod/food_cart/internal/domain"
)

const (
	EventTypeOrderPlaced = "order.placed"

	// FirstOrderNumber is the number given to the first order of a fresh process.
	FirstOrderNumber = 2001
)

var (
	ErrOrderNotFound  = errors.New("order not found")
	ErrDuplicateOrder = errors.New("order with this id already exists")
	ErrEventNotFound  = errors.New("outbox event not found")
)

// Store keeps placed orders. Saving an order also records its order.placed
// outbox event in the same step.
type Store interface {
	Save(ctx context.Context, order *domain.Order) error
	Get(ctx context.Context, id string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Order, error)
}

type OutboxEvent struct {
	ID          int64
	AggregateID string
	EventType   string
	Payload     []byte
	CreatedAt   time.Time
}

type Outbox interface {
	GetUnpublishedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkEventPublished(ctx context.Context, id int64) error
}

// Sequence hands out order numbers.
type Sequence interface {
	Next() int64
}

type CounterSequence struct {
	first int64
	n     atomic.Int64
}

// NewCounterSequence returns a sequence whose first number is first.
func NewCounterSequence(first int64) *CounterSequence {
	s := &CounterSequence{first: first}
	s.n.Store(first - 1)
	return s
}

func (s *CounterSequence) Next() int64 {
	return s.n.Add(1)
}

// Reset makes the next call to Next return the first number again.
func (s *CounterSequence) Reset() {
	s.n.Store(s.first - 1)
}

func FormatID(n int64) string {
	return fmt.Sprintf("ORD-%d", n)
}
