package api_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/spacetraders-automation/internal/adapters/api"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/ports"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/shared"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/system"
)

func TestResponseCache_ExpiresAfterTTL(t *testing.T) {
	// Arrange
	clock := shared.NewMockClock(time.Now())
	cache, err := api.NewResponseCache(8, time.Minute, clock)
	require.NoError(t, err)
	key := api.CacheKey{Kind: api.KindWaypoint, Symbol: "X1-GZ7-A1"}
	cache.Put(key, "value")

	// Act
	_, freshHit := cache.Get(key)
	clock.Advance(time.Minute)
	_, staleHit := cache.Get(key)

	// Assert
	assert.True(t, freshHit)
	assert.False(t, staleHit)
	assert.Zero(t, cache.Len())
}

func TestResponseCache_EvictsLeastRecentlyUsed(t *testing.T) {
	// Arrange
	cache, err := api.NewResponseCache(2, time.Hour, shared.NewMockClock(time.Now()))
	require.NoError(t, err)
	a := api.CacheKey{Kind: api.KindSystem, Symbol: "X1-A"}
	b := api.CacheKey{Kind: api.KindSystem, Symbol: "X1-B"}
	c := api.CacheKey{Kind: api.KindSystem, Symbol: "X1-C"}

	// Act
	cache.Put(a, 1)
	cache.Put(b, 2)
	_, _ = cache.Get(a)
	cache.Put(c, 3)

	// Assert
	_, hasA := cache.Get(a)
	_, hasB := cache.Get(b)
	_, hasC := cache.Get(c)
	assert.True(t, hasA)
	assert.False(t, hasB)
	assert.True(t, hasC)
}

func TestResponseCache_KeysIncludeKind(t *testing.T) {
	// Arrange
	cache, err := api.NewResponseCache(8, time.Hour, nil)
	require.NoError(t, err)
	cache.Put(api.CacheKey{Kind: api.KindWaypoint, Symbol: "X1-GZ7-I52"}, "waypoint")

	// Act
	_, ok := cache.Get(api.CacheKey{Kind: api.KindJumpGate, Symbol: "X1-GZ7-I52"})

	// Assert
	assert.False(t, ok)
}

// countingClient counts GetSystem calls and fails when told to
type countingClient struct {
	ports.APIClient
	calls int
	fail  bool
}

func (c *countingClient) GetSystem(ctx context.Context, symbol string) (*system.System, error) {
	c.calls++
	if c.fail {
		return nil, errors.New("boom")
	}
	return system.NewSystem(symbol, "X1", "RED_STAR", 0, 0, nil)
}

func TestCachingClient_ServesRepeatLookupsFromCache(t *testing.T) {
	// Arrange
	inner := &countingClient{}
	cache, err := api.NewResponseCache(8, time.Hour, nil)
	require.NoError(t, err)
	client := api.NewCachingClient(inner, cache)

	// Act
	first, err1 := client.GetSystem(context.Background(), "X1-GZ7")
	second, err2 := client.GetSystem(context.Background(), "X1-GZ7")

	// Assert
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Same(t, first, second)
	assert.Equal(t, 1, inner.calls)
}

func TestCachingClient_DoesNotCacheErrors(t *testing.T) {
	// Arrange
	inner := &countingClient{fail: true}
	cache, err := api.NewResponseCache(8, time.Hour, nil)
	require.NoError(t, err)
	client := api.NewCachingClient(inner, cache)

	// Act
	_, err1 := client.GetSystem(context.Background(), "X1-GZ7")
	inner.fail = false
	_, err2 := client.GetSystem(context.Background(), "X1-GZ7")

	// Assert
	assert.Error(t, err1)
	assert.NoError(t, err2)
	assert.Equal(t, 2, inner.calls)
}
