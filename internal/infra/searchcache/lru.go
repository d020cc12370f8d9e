package searchcache

import (
	"context"
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/yanqian/findmy/internal/domain/recommendation"
	"github.com/yanqian/findmy/pkg/metrics"
)

// DefaultCapacity bounds the in-process cache when no capacity is configured.
const DefaultCapacity = 100

// LRU is a bounded in-process search cache with least recently used eviction.
// It copies slices on the way in and out so stored entries never change.
type LRU struct {
	cache *lru.Cache[string, []recommendation.RawPlace]
}

// NewLRU builds a cache holding at most capacity queries.
func NewLRU(capacity int) (*LRU, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	cache, err := lru.New[string, []recommendation.RawPlace](capacity)
	if err != nil {
		return nil, err
	}
	return &LRU{cache: cache}, nil
}

// Get returns a copy of the cached hits for query.
func (c *LRU) Get(_ context.Context, query string) ([]recommendation.RawPlace, bool) {
	places, ok := c.cache.Get(query)
	if !ok {
		metrics.SearchCacheLookupsTotal.WithLabelValues("memory", "miss").Inc()
		return nil, false
	}
	metrics.SearchCacheLookupsTotal.WithLabelValues("memory", "hit").Inc()
	return clonePlaces(places), true
}

// Add stores a copy of places under query.
func (c *LRU) Add(_ context.Context, query string, places []recommendation.RawPlace) {
	c.cache.Add(query, clonePlaces(places))
}

// Len reports the number of cached queries.
func (c *LRU) Len() int {
	return c.cache.Len()
}

func clonePlaces(places []recommendation.RawPlace) []recommendation.RawPlace {
	if places == nil {
		return []recommendation.RawPlace{}
	}
	return slices.Clone(places)
}

var _ recommendation.SearchCache = (*LRU)(nil)
