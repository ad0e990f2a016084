package anubis

import (
	"sync"
	"time"

	"github.com/riskibarqy/komiti/internal/domain/user"
)

type cachedPrincipal struct {
	principal user.Principal
	expiresAt time.Time
}

// principalCache remembers successful introspections for a short TTL. A zero
// TTL disables it.
type principalCache struct {
	mu         sync.Mutex
	entries    map[string]cachedPrincipal
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

func newPrincipalCache(ttl time.Duration, maxEntries int) *principalCache {
	return &principalCache{
		entries:    make(map[string]cachedPrincipal),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

func (c *principalCache) Get(key string) (user.Principal, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return user.Principal{}, false
	}
	if !entry.expiresAt.After(c.now()) {
		delete(c.entries, key)
		return user.Principal{}, false
	}
	return entry.principal, true
}

func (c *principalCache) Set(key string, principal user.Principal) {
	if c.ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		for k, e := range c.entries {
			if !e.expiresAt.After(now) {
				delete(c.entries, k)
			}
		}
		// still full: drop an arbitrary entry
		for k := range c.entries {
			if len(c.entries) < c.maxEntries {
				break
			}
			delete(c.entries, k)
		}
	}

	c.entries[key] = cachedPrincipal{principal: principal, expiresAt: now.Add(c.ttl)}
}
