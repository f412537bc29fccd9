package api

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru"

	"github.com/andrescamacho/spacetraders-automation/internal/adapters/metrics"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/market"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/ports"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/shared"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/system"
)

// Cache kinds
const (
	KindMarket   = "market"
	KindWaypoint = "waypoint"
	KindSystem   = "system"
	KindJumpGate = "jump_gate"
)

// CacheKey identifies a cached lookup by entity kind and symbol
type CacheKey struct {
	Kind   string
	Symbol string
}

type cacheEntry struct {
	value     interface{}
	expiresAt time.Time
}

// ResponseCache is a size-bounded LRU whose entries also expire after a TTL
type ResponseCache struct {
	entries *lru.Cache
	ttl     time.Duration
	clock   shared.Clock
}

// NewResponseCache creates a cache holding at most size entries for ttl each
func NewResponseCache(size int, ttl time.Duration, clock shared.Clock) (*ResponseCache, error) {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	entries, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("failed to create response cache: %w", err)
	}
	return &ResponseCache{entries: entries, ttl: ttl, clock: clock}, nil
}

// Get returns a live entry. Expired entries are evicted on read.
func (c *ResponseCache) Get(key CacheKey) (interface{}, bool) {
	raw, ok := c.entries.Get(key)
	if !ok {
		return nil, false
	}
	entry := raw.(cacheEntry)
	if c.ttl > 0 && !c.clock.Now().Before(entry.expiresAt) {
		c.entries.Remove(key)
		return nil, false
	}
	return entry.value, true
}

func (c *ResponseCache) Put(key CacheKey, value interface{}) {
	c.entries.Add(key, cacheEntry{value: value, expiresAt: c.clock.Now().Add(c.ttl)})
}

func (c *ResponseCache) Invalidate(key CacheKey) {
	c.entries.Remove(key)
}

func (c *ResponseCache) Purge() {
	c.entries.Purge()
}

func (c *ResponseCache) Len() int {
	return c.entries.Len()
}

// CachingClient decorates an APIClient, caching the read-mostly location lookups.
// Ship, contract and agent calls always go to the server.
type CachingClient struct {
	ports.APIClient
	cache *ResponseCache
}

// NewCachingClient wraps client with cache
func NewCachingClient(client ports.APIClient, cache *ResponseCache) *CachingClient {
	return &CachingClient{APIClient: client, cache: cache}
}

// GetMarket caches the market listing. Callers needing live prices should
// invalidate the entry after trading.
func (c *CachingClient) GetMarket(ctx context.Context, systemSymbol, waypointSymbol string) (*market.Market, error) {
	return cached(c.cache, CacheKey{Kind: KindMarket, Symbol: waypointSymbol}, func() (*market.Market, error) {
		return c.APIClient.GetMarket(ctx, systemSymbol, waypointSymbol)
	})
}

func (c *CachingClient) GetWaypoint(ctx context.Context, systemSymbol, waypointSymbol string) (*shared.Waypoint, error) {
	return cached(c.cache, CacheKey{Kind: KindWaypoint, Symbol: waypointSymbol}, func() (*shared.Waypoint, error) {
		return c.APIClient.GetWaypoint(ctx, systemSymbol, waypointSymbol)
	})
}

func (c *CachingClient) GetSystem(ctx context.Context, systemSymbol string) (*system.System, error) {
	return cached(c.cache, CacheKey{Kind: KindSystem, Symbol: systemSymbol}, func() (*system.System, error) {
		return c.APIClient.GetSystem(ctx, systemSymbol)
	})
}

func (c *CachingClient) GetJumpGate(ctx context.Context, systemSymbol, waypointSymbol string) (*system.JumpGate, error) {
	return cached(c.cache, CacheKey{Kind: KindJumpGate, Symbol: waypointSymbol}, func() (*system.JumpGate, error) {
		return c.APIClient.GetJumpGate(ctx, systemSymbol, waypointSymbol)
	})
}

// CreateChart invalidates the charted waypoint so the next lookup sees the chart
func (c *CachingClient) CreateChart(ctx context.Context, symbol string) (*ports.ChartResult, error) {
	result, err := c.APIClient.CreateChart(ctx, symbol)
	if err == nil && result.Waypoint != nil {
		c.cache.Put(CacheKey{Kind: KindWaypoint, Symbol: result.Waypoint.Symbol}, result.Waypoint)
	}
	return result, err
}

// cached serves key from cache or loads it. Errors are never cached.
func cached[T any](cache *ResponseCache, key CacheKey, load func() (T, error)) (T, error) {
	if value, ok := cache.Get(key); ok {
		metrics.RecordCacheLookup(key.Kind, true)
		return value.(T), nil
	}
	metrics.RecordCacheLookup(key.Kind, false)

	value, err := load()
	if err != nil {
		var zero T
		return zero, err
	}
	cache.Put(key, value)
	return value, nil
}

var _ ports.APIClient = (*CachingClient)(nil)
