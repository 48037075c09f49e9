// Package recommend chooses which events to surface to a customer.
//
// Three independent strategies operate on the flattened event list:
//
//   - SameCity: every event in the customer's city
//   - Nearest: same-city events padded with the closest remote events
//   - Cheapest: the lowest priced events
//
// Fixed-size strategies return at most Count events. When fewer candidates
// exist the Policy decides: PolicyPartial returns what exists, PolicyStrict
// also reports ErrInsufficientInventory.
package recommend

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/vietddude/eventmailer/internal/core/domain"
	"github.com/vietddude/eventmailer/internal/distance"
	"github.com/vietddude/eventmailer/internal/metrics"
)

// DefaultCount is the size of the fixed-size selections.
const DefaultCount = 5

var (
	// ErrInsufficientInventory is reported under PolicyStrict when fewer than
	// Count candidates exist. The partial selection is still returned.
	ErrInsufficientInventory = errors.New("insufficient inventory")
	// ErrUnknownStrategy is returned by Select for an unrecognised name.
	ErrUnknownStrategy = errors.New("unknown strategy")
)

// Policy decides what a fixed-size strategy does on a shortfall.
type Policy string

const (
	PolicyPartial Policy = "partial"
	PolicyStrict  Policy = "strict"
)

// ParsePolicy maps a config value to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyPartial, PolicyStrict:
		return Policy(s), nil
	case "":
		return PolicyPartial, nil
	}
	return "", fmt.Errorf("unknown selection policy %q", s)
}

// DistanceResolver is the part of distance.Resolver the selector needs.
type DistanceResolver interface {
	ResolveFrom(ctx context.Context, origin string, cities []string) map[string]distance.Lookup
}

// Config tunes a Selector.
type Config struct {
	Count  int
	Policy Policy
}

// Selector implements the selection strategies.
type Selector struct {
	resolver DistanceResolver
	count    int
	policy   Policy
	log      *slog.Logger
}

// NewSelector creates a selector.
func NewSelector(resolver DistanceResolver, cfg Config, logger *slog.Logger) *Selector {
	if cfg.Count <= 0 {
		cfg.Count = DefaultCount
	}
	if cfg.Policy == "" {
		cfg.Policy = PolicyPartial
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Selector{
		resolver: resolver,
		count:    cfg.Count,
		policy:   cfg.Policy,
		log:      logger.With("component", "selector"),
	}
}

// Count returns the fixed selection size.
func (s *Selector) Count() int {
	return s.count
}

// Select runs the named strategy.
func (s *Selector) Select(
	ctx context.Context,
	strategy domain.StrategyName,
	customer domain.Customer,
	events []domain.Event,
) ([]domain.Event, error) {
	var (
		out []domain.Event
		err error
	)
	switch strategy {
	case domain.StrategySameCity:
		out = s.SameCity(customer, events)
	case domain.StrategyNearest:
		out, err = s.Nearest(ctx, customer, events)
	case domain.StrategyCheapest:
		out, err = s.Cheapest(events)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownStrategy, strategy)
	}

	metrics.EventsSelected.WithLabelValues(string(strategy)).Add(float64(len(out)))
	return out, err
}

// SameCity returns every event in the customer's city, in flattened order.
func (s *Selector) SameCity(customer domain.Customer, events []domain.Event) []domain.Event {
	var out []domain.Event
	for _, e := range events {
		if e.City == customer.City {
			out = append(out, e)
		}
	}
	return out
}

// Nearest returns the customer's same-city events, padded with remote events
// ordered by distance from the customer's city when there are fewer than
// Count of them. Unresolved cities sort last; ties keep flattened order.
// No distance is looked up when same-city events already fill the selection.
func (s *Selector) Nearest(ctx context.Context, customer domain.Customer, events []domain.Event) ([]domain.Event, error) {
	local := s.SameCity(customer, events)
	if len(local) >= s.count {
		return local[:s.count], nil
	}

	var remote []domain.Event
	var cities []string
	seen := make(map[string]struct{})
	for _, e := range events {
		if e.City == customer.City {
			continue
		}
		remote = append(remote, e)
		if _, ok := seen[e.City]; !ok {
			seen[e.City] = struct{}{}
			cities = append(cities, e.City)
		}
	}

	lookups := s.resolver.ResolveFrom(ctx, customer.City, cities)

	distanceOf := func(city string) int {
		if l, ok := lookups[city]; ok {
			return l.Distance
		}
		return distance.Unreachable
	}
	slices.SortStableFunc(remote, func(a, b domain.Event) int {
		return cmp.Compare(distanceOf(a.City), distanceOf(b.City))
	})

	candidates := append(local, remote...)
	return s.truncate(domain.StrategyNearest, candidates)
}

// Cheapest returns the Count lowest priced events; equal prices keep
// flattened order.
func (s *Selector) Cheapest(events []domain.Event) ([]domain.Event, error) {
	sorted := slices.Clone(events)
	slices.SortStableFunc(sorted, func(a, b domain.Event) int {
		return cmp.Compare(a.Price, b.Price)
	})
	return s.truncate(domain.StrategyCheapest, sorted)
}

func (s *Selector) truncate(strategy domain.StrategyName, candidates []domain.Event) ([]domain.Event, error) {
	if len(candidates) >= s.count {
		return candidates[:s.count], nil
	}

	metrics.SelectionShortfalls.WithLabelValues(string(strategy)).Inc()
	s.log.Warn("Fewer candidates than requested",
		"strategy", strategy, "requested", s.count, "available", len(candidates), "policy", s.policy)

	if s.policy == PolicyStrict {
		return candidates, fmt.Errorf("%w: %s has %d of %d events",
			ErrInsufficientInventory, strategy, len(candidates), s.count)
	}
	return candidates, nil
}
