package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"embedding_admin/internal/embedding"
)

func TestLRUCache_GetSet(t *testing.T) {
	c := NewLRUCache[string](2, time.Minute)

	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Set("a", "1")
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "1", v)

	c.Set("a", "2")
	v, _ = c.Get("a")
	assert.Equal(t, "2", v)
	assert.Equal(t, 1, c.Len())

	stats := c.GetStats()
	assert.Equal(t, uint64(2), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
}

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a")
	c.Set("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok, "b should have been evicted")
	_, ok = c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
}

func TestLRUCache_Expiry(t *testing.T) {
	c := NewLRUCache[int](4, 10*time.Millisecond)

	c.Set("a", 1)
	c.Set("b", 2)
	time.Sleep(20 * time.Millisecond)

	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, c.CleanupExpired())
	assert.Equal(t, 0, c.Len())
}

func TestLRUCache_DeleteAndClear(t *testing.T) {
	c := NewLRUCache[int](0, time.Minute)
	assert.Equal(t, 1, c.GetStats().Capacity)

	c.Set("a", 1)
	c.Delete("a")
	assert.Equal(t, 0, c.Len())

	c.Set("b", 2)
	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestLRUCache_GetOrCreate(t *testing.T) {
	c := NewLRUCache[*embedding.ProxyState](8, time.Minute)

	calls := 0
	create := func() *embedding.ProxyState {
		calls++
		return embedding.NewProxyState()
	}

	first := c.GetOrCreate("session-1", create)
	second := c.GetOrCreate("session-1", create)
	other := c.GetOrCreate("session-2", create)

	assert.Same(t, first, second)
	assert.NotSame(t, first, other)
	assert.Equal(t, 2, calls)
}

func TestLRUCache_KeepsSliceIdentity(t *testing.T) {
	c := NewLRUCache[[]embedding.ProviderDetail](1, time.Minute)

	details := []embedding.ProviderDetail{{ProviderType: "litellm", APIURL: "http://proxy"}}
	c.Set(providerDetailsKey, details)

	got, ok := c.Get(providerDetailsKey)
	require.True(t, ok)
	assert.Same(t, &details[0], &got[0])
}
