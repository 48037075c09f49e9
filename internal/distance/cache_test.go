package distance

import (
	"context"
	"sync"
	"testing"
)

func TestNewPair_Unordered(t *testing.T) {
	if NewPair("b", "a") != NewPair("a", "b") {
		t.Error("expected pair to be order independent")
	}
	if got := NewPair("Paris", "Lyon").String(); got != `"Lyon"|"Paris"` {
		t.Errorf("unexpected key %q", got)
	}
}

func TestPair_StringIsUnambiguous(t *testing.T) {
	a := NewPair("a|b", "c")
	b := NewPair("a", "b|c")
	if a.String() == b.String() {
		t.Errorf("distinct pairs share key %q", a.String())
	}
}

func TestMemoryCache_FirstWriteWins(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()
	p := NewPair("A", "B")

	if _, ok, _ := c.Get(ctx, p); ok {
		t.Fatal("expected miss on empty cache")
	}

	if got, _ := c.Store(ctx, p, 3); got != 3 {
		t.Errorf("expected stored 3, got %d", got)
	}
	if got, _ := c.Store(ctx, p, 8); got != 3 {
		t.Errorf("expected first value 3 to win, got %d", got)
	}

	d, ok, err := c.Get(ctx, NewPair("B", "A"))
	if err != nil || !ok || d != 3 {
		t.Errorf("expected hit 3, got %d %v %v", d, ok, err)
	}

	gets, hits, puts := c.Stats()
	if gets != 2 || hits != 1 || puts != 1 {
		t.Errorf("unexpected stats gets=%d hits=%d puts=%d", gets, hits, puts)
	}
	if c.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", c.Len())
	}
}

func TestMemoryCache_ConcurrentReads(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()
	_, _ = c.Store(ctx, NewPair("A", "B"), 4)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, _ = c.Get(ctx, NewPair("B", "A"))
			_, _, _ = c.Get(ctx, NewPair("A", "C"))
		}()
	}
	wg.Wait()

	gets, hits, puts := c.Stats()
	if gets != 100 || hits != 50 || puts != 1 {
		t.Errorf("unexpected stats gets=%d hits=%d puts=%d", gets, hits, puts)
	}
}
