package api

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/microscan/microscan/pkg/scoring"
	"github.com/microscan/microscan/pkg/signal"
)

// Cache stores vision assessments by image key. Implementations treat
// backend failures as misses.
type Cache interface {
	Get(ctx context.Context, key string) (signal.Assessment, bool)
	Put(ctx context.Context, key string, a signal.Assessment)
}

// AssessmentCache is a thread-safe LRU cache of vision assessments keyed by
// a hash of the analysed image.
type AssessmentCache struct {
	mu      sync.Mutex
	maxSize int
	entries map[string]signal.Assessment
	order   []string // oldest first
}

// NewAssessmentCache creates a cache with the given maximum number of
// entries. If maxSize <= 0, it defaults to 256.
func NewAssessmentCache(maxSize int) *AssessmentCache {
	if maxSize <= 0 {
		maxSize = 256
	}
	return &AssessmentCache{
		maxSize: maxSize,
		entries: make(map[string]signal.Assessment),
	}
}

// ImageKey derives the cache key for an image analysed for a variant.
func ImageKey(variant scoring.Variant, imageBase64 string) string {
	sum := sha256.Sum256([]byte(string(variant) + ":" + imageBase64))
	return hex.EncodeToString(sum[:])
}

// Get retrieves an assessment from the cache.
func (c *AssessmentCache) Get(_ context.Context, key string) (signal.Assessment, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	a, ok := c.entries[key]
	if !ok {
		return signal.Assessment{}, false
	}

	// Move to end (most recently used)
	c.moveToEnd(key)
	return a, true
}

// Put adds an assessment to the cache, evicting the oldest if full.
func (c *AssessmentCache) Put(_ context.Context, key string, a signal.Assessment) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		c.entries[key] = a
		c.moveToEnd(key)
		return
	}

	// Evict oldest if at capacity
	for len(c.entries) >= c.maxSize && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	c.entries[key] = a
	c.order = append(c.order, key)
}

// Len returns the number of cached assessments.
func (c *AssessmentCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *AssessmentCache) moveToEnd(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			c.order = append(c.order, key)
			return
		}
	}
}
