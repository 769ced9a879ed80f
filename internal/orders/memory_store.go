package orders

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fjod/food_cart/internal/domain"
)

// MemoryStore keeps orders and their outbox for the lifetime of the process.
type MemoryStore struct {
	mu      sync.RWMutex
	orders  map[string]*domain.Order
	events  []*OutboxEvent
	eventID int64
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		orders: make(map[string]*domain.Order),
		now:    time.Now,
	}
}

func (s *MemoryStore) Save(_ context.Context, order *domain.Order) error {
	payload, err := placedPayload(order)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.orders[order.ID]; exists {
		return ErrDuplicateOrder
	}
	s.orders[order.ID] = order.Clone()
	s.eventID++
	s.events = append(s.events, &OutboxEvent{
		ID:          s.eventID,
		AggregateID: order.ID,
		EventType:   EventTypeOrderPlaced,
		Payload:     payload,
		CreatedAt:   s.now(),
	})
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	order, ok := s.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return order.Clone(), nil
}

// ListByUser returns the user's orders, newest first.
func (s *MemoryStore) ListByUser(_ context.Context, userID string) ([]*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*domain.Order{}
	for _, order := range s.orders {
		if order.UserID == userID {
			out = append(out, order.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) GetUnpublishedEvents(_ context.Context, limit int) ([]*OutboxEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*OutboxEvent
	for _, event := range s.events {
		copied := *event
		out = append(out, &copied)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// MarkEventPublished drops the event from the outbox. Only unpublished
// events are held in memory.
func (s *MemoryStore) MarkEventPublished(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, event := range s.events {
		if event.ID == id {
			s.events = append(s.events[:i], s.events[i+1:]...)
			return nil
		}
	}
	return ErrEventNotFound
}

// Reset forgets all orders and events.
func (s *MemoryStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = make(map[string]*domain.Order)
	s.events = nil
	s.eventID = 0
}
