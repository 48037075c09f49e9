package distance

import (
	"context"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/vietddude/eventmailer/internal/metrics"
)

// BreakerConfig configures BreakerService.
type BreakerConfig struct {
	Name string
	// ConsecutiveFailures opens the circuit once reached.
	ConsecutiveFailures uint32
	// Timeout is how long the circuit stays open before probing again.
	Timeout time.Duration
}

// BreakerService wraps a Service with a circuit breaker, so a provider that
// keeps failing is short-circuited instead of being queried for every pair.
type BreakerService struct {
	inner Service
	cb    *gobreaker.CircuitBreaker[int]
}

// NewBreakerService wraps inner.
func NewBreakerService(inner Service, cfg BreakerConfig, logger *slog.Logger) *BreakerService {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Name == "" {
		cfg.Name = "distance"
	}
	if cfg.ConsecutiveFailures == 0 {
		cfg.ConsecutiveFailures = 5
	}

	metrics.BreakerState.WithLabelValues(cfg.Name).Set(0)

	cb := gobreaker.NewCircuitBreaker[int](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("Circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
			metrics.BreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})

	return &BreakerService{inner: inner, cb: cb}
}

func (b *BreakerService) QueryDistance(ctx context.Context, from, to string) (int, error) {
	return b.cb.Execute(func() (int, error) {
		return b.inner.QueryDistance(ctx, from, to)
	})
}

// State returns the current breaker state.
func (b *BreakerService) State() gobreaker.State {
	return b.cb.State()
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
