package rules

import (
	"sync"
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
)

// candidateCache is a read-through cache over rule candidate lists with a
// TTL and an explicit invalidation hook. Effective-date filtering stays
// outside the cache so a cached list serves any query timestamp.
type candidateCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]candidateEntry
}

type candidateEntry struct {
	rules     []*domain.CommissionRule
	fetchedAt time.Time
}

func newCandidateCache(ttl time.Duration) *candidateCache {
	return &candidateCache{
		ttl:     ttl,
		entries: make(map[string]candidateEntry),
	}
}

func (c *candidateCache) get(key string) ([]*domain.CommissionRule, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	if !ok || time.Since(entry.fetchedAt) > c.ttl {
		return nil, false
	}
	return entry.rules, true
}

func (c *candidateCache) put(key string, rules []*domain.CommissionRule) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = candidateEntry{rules: rules, fetchedAt: time.Now()}
}

func (c *candidateCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]candidateEntry)
}
