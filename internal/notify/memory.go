package notify

import (
	"context"
	"sync"

	"github.com/vietddude/eventmailer/internal/core/domain"
)

// MemorySink keeps deliveries in memory, in delivery order.
type MemorySink struct {
	mu         sync.Mutex
	deliveries []domain.Delivery
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Deliver(ctx context.Context, customer domain.Customer, event domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deliveries = append(s.deliveries, domain.Delivery{
		Customer: customer,
		Event:    event,
		Strategy: StrategyFrom(ctx),
	})
	return nil
}

// Deliveries returns a copy of everything delivered so far.
func (s *MemorySink) Deliveries() []domain.Delivery {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Delivery, len(s.deliveries))
	copy(out, s.deliveries)
	return out
}

// Events returns the delivered events for one strategy.
func (s *MemorySink) Events(strategy domain.StrategyName) []domain.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Event
	for _, d := range s.deliveries {
		if d.Strategy == strategy {
			out = append(out, d.Event)
		}
	}
	return out
}

func (s *MemorySink) Name() string { return "memory" }

func (s *MemorySink) Close() error { return nil }
