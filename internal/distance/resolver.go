package distance

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/vietddude/eventmailer/internal/metrics"
)

// Outcome describes how a Lookup was obtained.
type Outcome string

const (
	OutcomeSameCity  Outcome = "same_city"
	OutcomeCached    Outcome = "cached"
	OutcomeResolved  Outcome = "resolved"
	OutcomeExhausted Outcome = "exhausted"
	// OutcomeCanceled is returned to a caller whose context ended first. It
	// is never cached.
	OutcomeCanceled Outcome = "canceled"
)

// Lookup is the result of resolving one pair. Exhausted and canceled lookups
// carry the Unreachable sentinel.
type Lookup struct {
	Distance int
	Outcome  Outcome
	Attempts int
}

// Reachable reports whether the lookup holds a real distance.
func (l Lookup) Reachable() bool {
	return l.Distance != Unreachable
}

// ResolverConfig tunes a Resolver.
type ResolverConfig struct {
	// Name labels metrics for the underlying service.
	Name  string
	Retry RetryConfig
	// Timeout bounds each individual service call. Zero means no bound.
	Timeout time.Duration
	// Concurrency bounds ResolveFrom fan-out.
	Concurrency int
}

// Resolver is a memoized, retrying wrapper around a Service.
// It never returns an error: a pair that cannot be resolved within the retry
// budget gets the Unreachable sentinel, which is cached like any other value.
type Resolver struct {
	svc   Service
	cache Cache
	cfg   ResolverConfig
	log   *slog.Logger

	inflight singleflight.Group
}

// NewResolver creates a resolver. A nil cache gets a fresh MemoryCache.
func NewResolver(svc Service, cache Cache, cfg ResolverConfig, logger *slog.Logger) *Resolver {
	if cache == nil {
		cache = NewMemoryCache()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Name == "" {
		cfg.Name = "default"
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = DefaultRetryConfig
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &Resolver{
		svc:   svc,
		cache: cache,
		cfg:   cfg,
		log:   logger.With("component", "distance-resolver", "provider", cfg.Name),
	}
}

// Resolve returns the distance between two cities.
func (r *Resolver) Resolve(ctx context.Context, from, to string) Lookup {
	if from == to {
		return r.record(Lookup{Distance: 0, Outcome: OutcomeSameCity})
	}

	pair := NewPair(from, to)
	if d, ok := r.cached(ctx, pair); ok {
		return r.record(Lookup{Distance: d, Outcome: OutcomeCached})
	}

	if ctx.Err() != nil {
		return r.record(Lookup{Distance: Unreachable, Outcome: OutcomeCanceled})
	}

	// The shared query outlives any single caller: a canceled waiter stops
	// waiting, the others still get the real answer.
	shared := context.WithoutCancel(ctx)
	ch := r.inflight.DoChan(pair.String(), func() (any, error) {
		// Another caller may have stored the pair between our miss and now.
		if d, ok := r.cached(shared, pair); ok {
			return Lookup{Distance: d, Outcome: OutcomeCached}, nil
		}

		lookup := r.query(shared, from, to)

		stored, err := r.cache.Store(shared, pair, lookup.Distance)
		if err != nil {
			metrics.DistanceCacheErrors.WithLabelValues("store").Inc()
			r.log.Warn("Failed to cache distance", "pair", pair.String(), "error", err)
			return lookup, nil
		}
		if stored != lookup.Distance {
			lookup.Distance = stored
			lookup.Outcome = OutcomeCached
		}
		return lookup, nil
	})

	select {
	case res := <-ch:
		return r.record(res.Val.(Lookup))
	case <-ctx.Done():
		return r.record(Lookup{Distance: Unreachable, Outcome: OutcomeCanceled})
	}
}

// Distance is Resolve reduced to the distance value.
func (r *Resolver) Distance(ctx context.Context, from, to string) int {
	return r.Resolve(ctx, from, to).Distance
}

// ResolveFrom resolves the distance from origin to every city, running up to
// Concurrency lookups at once. Duplicate cities are resolved once.
func (r *Resolver) ResolveFrom(ctx context.Context, origin string, cities []string) map[string]Lookup {
	results := make(map[string]Lookup, len(cities))
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(r.cfg.Concurrency)

	seen := make(map[string]struct{}, len(cities))
	for _, city := range cities {
		if _, dup := seen[city]; dup {
			continue
		}
		seen[city] = struct{}{}

		g.Go(func() error {
			lookup := r.Resolve(ctx, origin, city)
			mu.Lock()
			results[city] = lookup
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (r *Resolver) cached(ctx context.Context, pair Pair) (int, bool) {
	d, ok, err := r.cache.Get(ctx, pair)
	if err != nil {
		metrics.DistanceCacheErrors.WithLabelValues("get").Inc()
		r.log.Warn("Distance cache read failed, treating as miss", "pair", pair.String(), "error", err)
		return 0, false
	}
	return d, ok
}

func (r *Resolver) query(ctx context.Context, from, to string) Lookup {
	attempts := 0
	distance := Unreachable

	err := r.cfg.Retry.attempt(ctx, func(ctx context.Context) error {
		attempts++

		callCtx := ctx
		if r.cfg.Timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
			defer cancel()
		}

		start := time.Now()
		d, err := r.svc.QueryDistance(callCtx, from, to)
		metrics.DistanceQueries.WithLabelValues(r.cfg.Name).Inc()
		metrics.DistanceQueryLatency.WithLabelValues(r.cfg.Name).Observe(time.Since(start).Seconds())

		if err == nil && d < 0 {
			err = fmt.Errorf("%w: %d", ErrInvalidDistance, d)
		}
		if err != nil {
			errType := ClassifyError(err)
			metrics.DistanceQueryErrors.WithLabelValues(r.cfg.Name, errType).Inc()
			r.log.Debug("Distance query failed",
				"from", from, "to", to, "attempt", attempts, "error_type", errType, "error", err)
			return err
		}

		distance = d
		return nil
	})

	if err != nil {
		r.log.Warn("Distance unresolved, using sentinel",
			"from", from, "to", to, "attempts", attempts, "error", err)
		return Lookup{Distance: Unreachable, Outcome: OutcomeExhausted, Attempts: attempts}
	}

	r.log.Debug("Distance resolved", "from", from, "to", to, "distance", distance, "attempts", attempts)
	return Lookup{Distance: distance, Outcome: OutcomeResolved, Attempts: attempts}
}

func (r *Resolver) record(l Lookup) Lookup {
	metrics.DistanceLookups.WithLabelValues(string(l.Outcome)).Inc()
	return l
}
