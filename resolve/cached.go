package resolve

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/MrEthical07/goJWS/jwk"
	"github.com/MrEthical07/goJWS/jws"
	"github.com/MrEthical07/goJWS/jwt"
)

type cacheEntry struct {
	key     jwk.Key
	expires time.Time
}

// CachedResolver memoizes another resolver per kid. Failures are not
// cached.
type CachedResolver struct {
	inner jwt.KeyResolver
	ttl   time.Duration
	now   func() time.Time

	mu      sync.RWMutex
	entries map[string]cacheEntry
	group   singleflight.Group
}

// Cached wraps inner with a per-kid cache. Concurrent misses for one kid
// share a single inner call. inner must depend only on the header kid.
func Cached(inner jwt.KeyResolver, ttl time.Duration) *CachedResolver {
	return &CachedResolver{
		inner:   inner,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// ResolveKey returns a cached key or resolves and caches it.
func (c *CachedResolver) ResolveKey(ctx context.Context, h jws.Header, claims jwt.ClaimSet) (jwk.Key, error) {
	kid := h.KeyID
	if key, ok := c.lookup(kid); ok {
		return key, nil
	}

	// The shared call must outlive any single caller's cancellation.
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(kid, func() (any, error) {
		key, err := c.inner.ResolveKey(shared, h, claims)
		if err != nil {
			return jwk.Key{}, err
		}
		c.store(kid, key)
		return key, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return jwk.Key{}, res.Err
		}
		return res.Val.(jwk.Key), nil
	case <-ctx.Done():
		return jwk.Key{}, ctx.Err()
	}
}

// Invalidate drops kid from the cache.
func (c *CachedResolver) Invalidate(kid string) {
	c.mu.Lock()
	delete(c.entries, kid)
	c.mu.Unlock()
}

// Purge drops every cached key.
func (c *CachedResolver) Purge() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}

func (c *CachedResolver) lookup(kid string) (jwk.Key, bool) {
	c.mu.RLock()
	entry, ok := c.entries[kid]
	c.mu.RUnlock()
	if !ok || !c.now().Before(entry.expires) {
		return jwk.Key{}, false
	}
	return entry.key, true
}

func (c *CachedResolver) store(kid string, key jwk.Key) {
	c.mu.Lock()
	c.entries[kid] = cacheEntry{key: key, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()
}
