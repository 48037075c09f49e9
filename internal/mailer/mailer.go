// Package mailer feeds selected events to a notification sink.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vietddude/eventmailer/internal/core/domain"
	"github.com/vietddude/eventmailer/internal/metrics"
	"github.com/vietddude/eventmailer/internal/notify"
)

// Selector chooses events for one strategy.
type Selector interface {
	Select(
		ctx context.Context,
		strategy domain.StrategyName,
		customer domain.Customer,
		events []domain.Event,
	) ([]domain.Event, error)
}

// Result is the outcome of one strategy.
type Result struct {
	Strategy  domain.StrategyName
	Selected  []domain.Event
	Delivered int
	Err       error
}

// Mailer runs every strategy for a customer and delivers the chosen events.
type Mailer struct {
	selector   Selector
	sink       notify.Sink
	strategies []domain.StrategyName
	onStrategy func(domain.StrategyName, domain.Customer)
	log        *slog.Logger
}

func New(selector Selector, sink notify.Sink, logger *slog.Logger) *Mailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mailer{
		selector:   selector,
		sink:       sink,
		strategies: domain.Strategies,
		log:        logger.With("component", "mailer", "sink", sink.Name()),
	}
}

// OnStrategy registers fn to be called before each strategy runs.
func (m *Mailer) OnStrategy(fn func(domain.StrategyName, domain.Customer)) {
	m.onStrategy = fn
}

// Run executes the strategies in order. A failing sink stops the deliveries of
// the strategy it failed in; later strategies still run. Selection errors such
// as a strict shortfall do not prevent delivering the partial selection.
func (m *Mailer) Run(ctx context.Context, customer domain.Customer, events []domain.Event) ([]Result, error) {
	results := make([]Result, 0, len(m.strategies))
	var errs []error

	for _, strategy := range m.strategies {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		if m.onStrategy != nil {
			m.onStrategy(strategy, customer)
		}
		res := m.runStrategy(ctx, strategy, customer, events)
		if res.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", strategy, res.Err))
		}
		results = append(results, res)
	}

	return results, errors.Join(errs...)
}

func (m *Mailer) runStrategy(
	ctx context.Context,
	strategy domain.StrategyName,
	customer domain.Customer,
	events []domain.Event,
) Result {
	res := Result{Strategy: strategy}

	selected, selErr := m.selector.Select(ctx, strategy, customer, events)
	res.Selected = selected
	if selErr != nil {
		m.log.Warn("Selection incomplete", "strategy", strategy, "error", selErr)
	}

	ctx = notify.WithStrategy(ctx, strategy)
	for _, e := range selected {
		if err := m.sink.Deliver(ctx, customer, e); err != nil {
			metrics.StrategyDeliveries.WithLabelValues(string(strategy), "error").Inc()
			m.log.Error("Delivery failed",
				"strategy", strategy, "customer", customer.Name, "event", e.Name, "error", err)
			res.Err = errors.Join(selErr, err)
			return res
		}
		metrics.StrategyDeliveries.WithLabelValues(string(strategy), "ok").Inc()
		res.Delivered++
	}

	m.log.Debug("Strategy delivered",
		"strategy", strategy, "customer", customer.Name, "delivered", res.Delivered)
	res.Err = selErr
	return res
}
