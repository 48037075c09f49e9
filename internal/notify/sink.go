package notify

import (
	"context"

	"github.com/vietddude/eventmailer/internal/core/domain"
)

// Sink receives the events chosen for a customer
type Sink interface {
	// Deliver records or sends one event to one customer
	Deliver(ctx context.Context, customer domain.Customer, event domain.Event) error

	// Name identifies the sink in logs and metrics
	Name() string

	// Close releases the sink's resources
	Close() error
}

type strategyKey struct{}

// WithStrategy tags ctx with the strategy whose results are being delivered.
func WithStrategy(ctx context.Context, s domain.StrategyName) context.Context {
	return context.WithValue(ctx, strategyKey{}, s)
}

// StrategyFrom returns the strategy tagged on ctx, if any.
func StrategyFrom(ctx context.Context) domain.StrategyName {
	s, _ := ctx.Value(strategyKey{}).(domain.StrategyName)
	return s
}
