package distance

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// mockService implements Service for testing
type mockService struct {
	mu        sync.Mutex
	distances map[Pair]int
	// failures is the number of failing calls left per pair; -1 fails forever
	failures map[Pair]int
	calls    map[Pair]int
	total    int
	delay    time.Duration
}

func newMockService() *mockService {
	return &mockService{
		distances: make(map[Pair]int),
		failures:  make(map[Pair]int),
		calls:     make(map[Pair]int),
	}
}

func (m *mockService) set(a, b string, d int) *mockService {
	m.distances[NewPair(a, b)] = d
	return m
}

func (m *mockService) fail(a, b string, times int) *mockService {
	m.failures[NewPair(a, b)] = times
	return m
}

func (m *mockService) QueryDistance(ctx context.Context, from, to string) (int, error) {
	if m.delay > 0 {
		time.Sleep(m.delay)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	p := NewPair(from, to)
	m.calls[p]++
	m.total++

	if left, ok := m.failures[p]; ok && left != 0 {
		if left > 0 {
			m.failures[p] = left - 1
		}
		return 0, ErrUnavailable
	}
	d, ok := m.distances[p]
	if !ok {
		return 0, ErrUnavailable
	}
	return d, nil
}

func (m *mockService) callsFor(a, b string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[NewPair(a, b)]
}

func (m *mockService) totalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.total
}

var fastRetry = RetryConfig{MaxAttempts: 2, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}

func newTestResolver(svc Service) *Resolver {
	return NewResolver(svc, NewMemoryCache(), ResolverConfig{Name: "test", Retry: fastRetry, Concurrency: 4}, nil)
}

func TestResolver_SameCityNeverQueries(t *testing.T) {
	svc := newMockService()
	r := newTestResolver(svc)

	got := r.Resolve(context.Background(), "Oslo", "Oslo")
	if got.Distance != 0 || got.Outcome != OutcomeSameCity {
		t.Errorf("expected 0/same_city, got %+v", got)
	}
	if svc.totalCalls() != 0 {
		t.Errorf("expected no service calls, got %d", svc.totalCalls())
	}
}

func TestResolver_Symmetric(t *testing.T) {
	svc := newMockService().set("Oslo", "Bergen", 7)
	r := newTestResolver(svc)
	ctx := context.Background()

	ab := r.Resolve(ctx, "Oslo", "Bergen")
	ba := r.Resolve(ctx, "Bergen", "Oslo")

	if ab.Distance != 7 || ba.Distance != 7 {
		t.Errorf("expected 7 both ways, got %d and %d", ab.Distance, ba.Distance)
	}
	if ab.Outcome != OutcomeResolved {
		t.Errorf("expected first lookup resolved, got %s", ab.Outcome)
	}
	if ba.Outcome != OutcomeCached {
		t.Errorf("expected reverse lookup cached, got %s", ba.Outcome)
	}
	if n := svc.callsFor("Oslo", "Bergen"); n != 1 {
		t.Errorf("expected 1 service call, got %d", n)
	}
}

func TestResolver_RetriesTransientFailure(t *testing.T) {
	svc := newMockService().set("A", "B", 3).fail("A", "B", 1)
	r := newTestResolver(svc)

	got := r.Resolve(context.Background(), "A", "B")
	if got.Distance != 3 || got.Outcome != OutcomeResolved {
		t.Errorf("expected resolved 3, got %+v", got)
	}
	if got.Attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", got.Attempts)
	}
}

func TestResolver_ExhaustedUsesSentinelAndMemoizes(t *testing.T) {
	svc := newMockService().set("A", "B", 3).fail("A", "B", -1)
	r := newTestResolver(svc)
	ctx := context.Background()

	first := r.Resolve(ctx, "A", "B")
	if first.Distance != Unreachable || first.Outcome != OutcomeExhausted {
		t.Fatalf("expected exhausted sentinel, got %+v", first)
	}
	if first.Reachable() {
		t.Error("expected sentinel lookup to be unreachable")
	}
	if n := svc.callsFor("A", "B"); n != 2 {
		t.Errorf("expected retry budget of 2 calls, got %d", n)
	}

	second := r.Resolve(ctx, "B", "A")
	if second.Distance != Unreachable || second.Outcome != OutcomeCached {
		t.Errorf("expected cached sentinel, got %+v", second)
	}
	if n := svc.callsFor("A", "B"); n != 2 {
		t.Errorf("expected no re-query after sentinel, got %d calls", n)
	}
}

func TestResolver_NegativeDistanceIsFailure(t *testing.T) {
	svc := newMockService().set("A", "B", -4)
	r := newTestResolver(svc)

	got := r.Resolve(context.Background(), "A", "B")
	if got.Outcome != OutcomeExhausted {
		t.Errorf("expected exhausted, got %+v", got)
	}
}

func TestResolver_CustomRetryBudget(t *testing.T) {
	svc := newMockService().fail("A", "B", -1)
	r := NewResolver(svc, nil, ResolverConfig{
		Retry: RetryConfig{MaxAttempts: 4, InitialDelay: time.Millisecond},
	}, nil)

	got := r.Resolve(context.Background(), "A", "B")
	if got.Attempts != 4 {
		t.Errorf("expected 4 attempts, got %d", got.Attempts)
	}
}

func TestResolver_PerCallTimeout(t *testing.T) {
	calls := 0
	svc := ServiceFunc(func(ctx context.Context, from, to string) (int, error) {
		calls++
		<-ctx.Done()
		return 0, ctx.Err()
	})
	r := NewResolver(svc, nil, ResolverConfig{Retry: fastRetry, Timeout: 10 * time.Millisecond}, nil)

	got := r.Resolve(context.Background(), "A", "B")
	if got.Outcome != OutcomeExhausted {
		t.Errorf("expected exhausted, got %+v", got)
	}
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
}

func TestResolver_CanceledContextIsNotMemoized(t *testing.T) {
	svc := ServiceFunc(func(ctx context.Context, from, to string) (int, error) {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		return 9, nil
	})
	cache := NewMemoryCache()
	r := NewResolver(svc, cache, ResolverConfig{Retry: fastRetry}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if got := r.Resolve(ctx, "A", "B"); got.Reachable() {
		t.Errorf("expected unresolved lookup on canceled context, got %+v", got)
	}
	if cache.Len() != 0 {
		t.Errorf("expected nothing cached, got %d entries", cache.Len())
	}

	if got := r.Resolve(context.Background(), "A", "B"); got.Distance != 9 {
		t.Errorf("expected 9 after cancellation, got %+v", got)
	}
}

func TestResolver_CanceledWaiterDoesNotPoisonSharedLookup(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	svc := ServiceFunc(func(ctx context.Context, from, to string) (int, error) {
		once.Do(func() { close(entered) })
		select {
		case <-release:
			return 9, nil
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	})
	cache := NewMemoryCache()
	r := NewResolver(svc, cache, ResolverConfig{Retry: fastRetry}, nil)

	ctxA, cancelA := context.WithCancel(context.Background())
	first := make(chan Lookup, 1)
	go func() { first <- r.Resolve(ctxA, "New York", "London") }()
	<-entered

	second := make(chan Lookup, 1)
	go func() { second <- r.Resolve(context.Background(), "London", "New York") }()

	cancelA()
	if got := <-first; got.Reachable() || got.Outcome != OutcomeCanceled {
		t.Errorf("expected canceled caller to get the sentinel, got %+v", got)
	}

	close(release)
	if got := <-second; got.Distance != 9 {
		t.Errorf("expected uncanceled caller to get 9, got %+v", got)
	}
	if d, ok, _ := cache.Get(context.Background(), NewPair("New York", "London")); !ok || d != 9 {
		t.Errorf("expected 9 cached, got %d %v", d, ok)
	}
}

// failingCache always errors.
type failingCache struct{}

func (failingCache) Get(context.Context, Pair) (int, bool, error) {
	return 0, false, errors.New("cache down")
}

func (failingCache) Store(context.Context, Pair, int) (int, error) {
	return 0, errors.New("cache down")
}

func TestResolver_CacheFailureDoesNotSurface(t *testing.T) {
	svc := newMockService().set("A", "B", 5)
	r := NewResolver(svc, failingCache{}, ResolverConfig{Retry: fastRetry}, nil)

	got := r.Resolve(context.Background(), "A", "B")
	if got.Distance != 5 || got.Outcome != OutcomeResolved {
		t.Errorf("expected resolved 5 despite cache failure, got %+v", got)
	}
}

func TestResolver_ConcurrentMissesQueryOnce(t *testing.T) {
	svc := newMockService().set("A", "B", 2)
	svc.delay = 20 * time.Millisecond
	r := newTestResolver(svc)

	var wg sync.WaitGroup
	results := make([]Lookup, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				results[i] = r.Resolve(context.Background(), "A", "B")
			} else {
				results[i] = r.Resolve(context.Background(), "B", "A")
			}
		}(i)
	}
	wg.Wait()

	for i, res := range results {
		if res.Distance != 2 {
			t.Errorf("result %d: expected 2, got %+v", i, res)
		}
	}
	if n := svc.callsFor("A", "B"); n != 1 {
		t.Errorf("expected 1 service call, got %d", n)
	}
}

func TestResolver_ResolveFrom(t *testing.T) {
	svc := newMockService().
		set("Home", "A", 4).
		set("Home", "B", 1).
		fail("Home", "C", -1)
	r := newTestResolver(svc)

	got := r.ResolveFrom(context.Background(), "Home", []string{"A", "B", "C", "A", "Home"})

	if len(got) != 4 {
		t.Fatalf("expected 4 results, got %d", len(got))
	}
	if got["A"].Distance != 4 || got["B"].Distance != 1 {
		t.Errorf("unexpected distances: %+v", got)
	}
	if got["C"].Reachable() {
		t.Errorf("expected C unreachable, got %+v", got["C"])
	}
	if got["Home"].Distance != 0 {
		t.Errorf("expected Home at 0, got %+v", got["Home"])
	}
	if n := svc.callsFor("Home", "A"); n != 1 {
		t.Errorf("expected duplicate city to be queried once, got %d", n)
	}
}
