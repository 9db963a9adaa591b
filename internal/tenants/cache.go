package tenants

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultCacheTTL bounds how long a resolution stays cached before the
// directory is consulted again.
const DefaultCacheTTL = 5 * time.Minute

// CachingResolver memoizes successful resolutions per host with a TTL,
// collapsing concurrent lookups for the same host through singleflight.
// Negative outcomes and storage errors are never cached, so a newly mapped
// domain becomes visible after at most one TTL window.
type CachingResolver struct {
	inner HostResolver
	ttl   time.Duration
	now   func() time.Time

	sfg     singleflight.Group
	mu      sync.RWMutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	identity *Identity
	expires  time.Time
}

// CacheOption configures the caching resolver.
type CacheOption func(*CachingResolver)

// WithCacheTTL overrides the entry lifetime.
func WithCacheTTL(ttl time.Duration) CacheOption {
	return func(c *CachingResolver) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithCacheClock overrides the clock used for expiry checks.
func WithCacheClock(clock func() time.Time) CacheOption {
	return func(c *CachingResolver) {
		if clock != nil {
			c.now = clock
		}
	}
}

// NewCachingResolver wraps a resolver with host-keyed caching.
func NewCachingResolver(inner HostResolver, opts ...CacheOption) *CachingResolver {
	c := &CachingResolver{
		inner:   inner,
		ttl:     DefaultCacheTTL,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Resolve satisfies HostResolver.
func (c *CachingResolver) Resolve(ctx context.Context, host string, hintedSlug string) (*Identity, error) {
	key := cacheKey(host, hintedSlug)

	if identity, ok := c.lookup(key); ok {
		return cloneIdentity(identity), nil
	}

	value, err, _ := c.sfg.Do(key, func() (any, error) {
		// Double-check after the singleflight barrier.
		if identity, ok := c.lookup(key); ok {
			return identity, nil
		}
		identity, err := c.inner.Resolve(ctx, host, hintedSlug)
		if err != nil {
			return nil, err
		}
		c.store(key, identity)
		return identity, nil
	})
	if err != nil {
		return nil, err
	}
	identity, _ := value.(*Identity)
	return cloneIdentity(identity), nil
}

// Invalidate drops any cached resolution for host; domain-admin flows call
// this after mapping changes.
func (c *CachingResolver) Invalidate(host string) {
	prefix := strings.ToLower(strings.TrimSpace(host))

	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if key == prefix || strings.HasPrefix(key, prefix+"\x00") {
			delete(c.entries, key)
		}
	}
}

func (c *CachingResolver) lookup(key string) (*Identity, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || c.now().After(entry.expires) {
		return nil, false
	}
	return entry.identity, true
}

func (c *CachingResolver) store(key string, identity *Identity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{
		identity: cloneIdentity(identity),
		expires:  c.now().Add(c.ttl),
	}
}

func cacheKey(host, hintedSlug string) string {
	key := strings.ToLower(strings.TrimSpace(host))
	if slug := strings.ToLower(strings.TrimSpace(hintedSlug)); slug != "" {
		key += "\x00" + slug
	}
	return key
}

func cloneIdentity(src *Identity) *Identity {
	if src == nil {
		return nil
	}
	copied := *src
	return &copied
}
