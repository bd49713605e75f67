package donations

import (
	"sync"
	"time"

	"github.com/inventagious/funding-gateway/internal/models"
)

const (
	// DefaultFeedTTL is how long a merged feed stays fresh. Short on purpose:
	// new payments land through the blockchain path, which cannot reach this
	// cache, so staleness is bounded by the TTL plus explicit invalidation.
	DefaultFeedTTL = 30 * time.Second
)

type feedEntry struct {
	records   []models.FundingRecord
	expiresAt time.Time
}

// FeedCache is an in-process TTL cache of merged funding feeds keyed by
// project id. Constructor-injected so its lifecycle is owned by the caller
// and tests never share state.
type FeedCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]feedEntry
	now     func() time.Time
}

// NewFeedCache creates a cache with the given TTL; ttl<=0 uses DefaultFeedTTL.
func NewFeedCache(ttl time.Duration) *FeedCache {
	if ttl <= 0 {
		ttl = DefaultFeedTTL
	}
	return &FeedCache{
		ttl:     ttl,
		entries: make(map[string]feedEntry),
		now:     time.Now,
	}
}

// Get returns the cached feed for the project if it has not expired.
func (c *FeedCache) Get(projectID string) ([]models.FundingRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[projectID]
	if !ok || c.now().After(entry.expiresAt) {
		delete(c.entries, projectID)
		return nil, false
	}
	return entry.records, true
}

// Set stores the feed for the project with the cache's TTL.
func (c *FeedCache) Set(projectID string, records []models.FundingRecord) {
	c.mu.Lock()
	c.entries[projectID] = feedEntry{records: records, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

// Invalidate drops the cached feed for a project. Callers must invoke this
// after submitting a payment, since the write path (blockchain transaction
// submission) has no reference to this cache.
func (c *FeedCache) Invalidate(projectID string) {
	c.mu.Lock()
	delete(c.entries, projectID)
	c.mu.Unlock()
}

// Flush drops everything.
func (c *FeedCache) Flush() {
	c.mu.Lock()
	c.entries = make(map[string]feedEntry)
	c.mu.Unlock()
}
