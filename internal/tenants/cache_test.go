package tenants

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
)

type countingResolver struct {
	calls    atomic.Int64
	identity *Identity
	err      error
}

func (c *countingResolver) Resolve(context.Context, string, string) (*Identity, error) {
	c.calls.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	return cloneIdentity(c.identity), nil
}

func TestCachingResolverServesFromCacheUntilTTL(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	inner := &countingResolver{identity: &Identity{ID: uuid.New(), Slug: "acme"}}
	cached := NewCachingResolver(inner, WithCacheTTL(time.Minute), WithCacheClock(clock))

	for i := 0; i < 5; i++ {
		identity, err := cached.Resolve(context.Background(), "acme.example.com", "")
		if err != nil {
			t.Fatalf("resolve %d: %v", i, err)
		}
		if identity.Slug != "acme" {
			t.Fatalf("unexpected identity %+v", identity)
		}
	}
	if got := inner.calls.Load(); got != 1 {
		t.Fatalf("expected 1 inner call, got %d", got)
	}

	now = now.Add(2 * time.Minute)
	if _, err := cached.Resolve(context.Background(), "acme.example.com", ""); err != nil {
		t.Fatalf("resolve after expiry: %v", err)
	}
	if got := inner.calls.Load(); got != 2 {
		t.Fatalf("expected refresh after TTL, got %d inner calls", got)
	}
}

func TestCachingResolverDoesNotCacheFailures(t *testing.T) {
	inner := &countingResolver{err: &TenantNotFoundError{Host: "ghost.example.com"}}
	cached := NewCachingResolver(inner)

	for i := 0; i < 3; i++ {
		if _, err := cached.Resolve(context.Background(), "ghost.example.com", ""); err == nil {
			t.Fatalf("resolve %d: expected error", i)
		}
	}
	if got := inner.calls.Load(); got != 3 {
		t.Fatalf("failures must not be cached, got %d inner calls", got)
	}
}

func TestCachingResolverCollapsesConcurrentLookups(t *testing.T) {
	inner := &countingResolver{identity: &Identity{ID: uuid.New(), Slug: "acme"}}
	cached := NewCachingResolver(inner)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cached.Resolve(context.Background(), "acme.example.com", ""); err != nil {
				t.Errorf("resolve: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := inner.calls.Load(); got != 1 {
		t.Fatalf("expected singleflight to collapse to 1 call, got %d", got)
	}
}

func TestCachingResolverInvalidate(t *testing.T) {
	inner := &countingResolver{identity: &Identity{ID: uuid.New(), Slug: "acme"}}
	cached := NewCachingResolver(inner)

	if _, err := cached.Resolve(context.Background(), "acme.example.com", ""); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if _, err := cached.Resolve(context.Background(), "acme.example.com", "hint"); err != nil {
		t.Fatalf("resolve hinted: %v", err)
	}
	if got := inner.calls.Load(); got != 2 {
		t.Fatalf("expected 2 inner calls, got %d", got)
	}

	cached.Invalidate("acme.example.com")

	if _, err := cached.Resolve(context.Background(), "acme.example.com", ""); err != nil {
		t.Fatalf("resolve after invalidate: %v", err)
	}
	if _, err := cached.Resolve(context.Background(), "acme.example.com", "hint"); err != nil {
		t.Fatalf("resolve hinted after invalidate: %v", err)
	}
	if got := inner.calls.Load(); got != 4 {
		t.Fatalf("invalidate should drop hinted variants too, got %d inner calls", got)
	}
}
