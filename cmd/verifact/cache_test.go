// cmd/verifact/cache_test.go
package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheSetGet(t *testing.T) {
	cache := NewCache(time.Minute, 10)

	cache.Set("key", "value")

	value, ok := cache.Get("key")
	require.True(t, ok)
	assert.Equal(t, "value", value)

	_, ok = cache.Get("missing")
	assert.False(t, ok)
}

func TestCacheExpiry(t *testing.T) {
	cache := NewCache(time.Minute, 10)

	cache.SetWithTTL("gone", "value", -time.Second)

	_, ok := cache.Get("gone")
	assert.False(t, ok)
}

func TestCacheCleanExpired(t *testing.T) {
	cache := NewCache(time.Minute, 10)

	cache.SetWithTTL("expired", 1, -time.Second)
	cache.Set("live", 2)

	removed := cache.CleanExpired()
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, cache.Len())

	_, ok := cache.Get("live")
	assert.True(t, ok)
}

func TestCacheSizeCapEvictsOldest(t *testing.T) {
	cache := NewCache(time.Minute, 2)

	cache.Set("first", 1)
	time.Sleep(2 * time.Millisecond)
	cache.Set("second", 2)
	time.Sleep(2 * time.Millisecond)
	cache.Set("third", 3)

	assert.Equal(t, 2, cache.Len())
	_, ok := cache.Get("first")
	assert.False(t, ok)
	_, ok = cache.Get("third")
	assert.True(t, ok)
}

func TestCacheDelete(t *testing.T) {
	cache := NewCache(time.Minute, 10)

	cache.Set("key", "value")
	cache.Delete("key")

	_, ok := cache.Get("key")
	assert.False(t, ok)
}
