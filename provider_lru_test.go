package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const (
	testModelVersion     = uint16(1)
	anotherModelVersion  = uint16(2)
	defaultTestCacheSize = 10
	shortTTL             = 50 * time.Millisecond
	longerThanShortTTL   = 100 * time.Millisecond
	standardTestTTL      = 1 * time.Hour
)

func newTestEntry(body string, version uint16, ttl time.Duration) *Entry {
	now := time.Now()
	e := &Entry{
		Response: Response{
			StatusCode: 200,
			Body:       []byte(body),
			ReceivedAt: now,
		},
		StoredAt:     now,
		ModelVersion: version,
	}
	if ttl > 0 {
		e.ExpiresAt = now.Add(ttl)
	}

	return e
}

func TestLRUCache_Get_Miss(t *testing.T) {
	ctx := context.Background()
	cache := NewLRUCache(defaultTestCacheSize, 0)

	item, err := cache.Get(ctx, "miss_key", testModelVersion)

	assert.Nil(t, err)
	assert.Nil(t, item)
}

func TestLRUCache_Get_Hit(t *testing.T) {
	ctx := context.Background()
	cache := NewLRUCache(defaultTestCacheSize, 0)

	entity := newTestEntry("data", testModelVersion, standardTestTTL)

	err := cache.MSet(ctx, map[string]*Entry{"hit_key": entity}, standardTestTTL)
	assert.Nil(t, err)

	item, err := cache.Get(ctx, "hit_key", testModelVersion)

	assert.Nil(t, err)
	assert.NotNil(t, item)
	assert.Equal(t, entity, item)
}

func TestLRUCache_Get_VersionMismatch(t *testing.T) {
	ctx := context.Background()
	cache := NewLRUCache(defaultTestCacheSize, 0)

	entity := newTestEntry("data", testModelVersion, standardTestTTL)

	err := cache.MSet(ctx, map[string]*Entry{"version_mismatch_key": entity}, standardTestTTL)
	assert.Nil(t, err)

	item, err := cache.Get(ctx, "version_mismatch_key", anotherModelVersion)

	assert.Nil(t, err)
	assert.Nil(t, item)
}

// Per-entry expiration is honoured even though the LRU-wide ttl is an hour.
func TestLRUCache_MSet_And_Expiration(t *testing.T) {
	ctx := context.Background()
	cache := NewLRUCache(defaultTestCacheSize, standardTestTTL)

	entity := newTestEntry("expire_me", testModelVersion, shortTTL)

	err := cache.MSet(ctx, map[string]*Entry{"expire_key": entity}, shortTTL)
	assert.Nil(t, err)

	item, err := cache.Get(ctx, "expire_key", testModelVersion)
	assert.Nil(t, err)
	assert.Equal(t, entity, item)

	time.Sleep(longerThanShortTTL)

	item, err = cache.Get(ctx, "expire_key", testModelVersion)
	assert.Nil(t, err)
	assert.Nil(t, item)
	assert.Equal(t, 0, cache.Len())
}

func TestLRUCache_Eviction(t *testing.T) {
	ctx := context.Background()
	cache := NewLRUCache(1, 0)

	entity1 := newTestEntry("item1", testModelVersion, 0)
	entity2 := newTestEntry("item2", testModelVersion, 0)

	err := cache.MSet(ctx, map[string]*Entry{"evict_key1": entity1}, standardTestTTL)
	assert.Nil(t, err)

	item, err := cache.Get(ctx, "evict_key1", testModelVersion)
	assert.Nil(t, err)
	assert.Equal(t, entity1, item)

	err = cache.MSet(ctx, map[string]*Entry{"evict_key2": entity2}, standardTestTTL)
	assert.Nil(t, err)

	item, err = cache.Get(ctx, "evict_key1", testModelVersion)
	assert.Nil(t, err)
	assert.Nil(t, item)

	item, err = cache.Get(ctx, "evict_key2", testModelVersion)
	assert.Nil(t, err)
	assert.Equal(t, entity2, item)

	// least recently used goes first
	cacheSize2 := NewLRUCache(2, 0)
	entity3 := newTestEntry("item3", testModelVersion, 0)

	assert.Nil(t, cacheSize2.MSet(ctx, map[string]*Entry{"evict_key1": entity1}, standardTestTTL))
	assert.Nil(t, cacheSize2.MSet(ctx, map[string]*Entry{"evict_key2": entity2}, standardTestTTL))

	_, _ = cacheSize2.Get(ctx, "evict_key1", testModelVersion)

	assert.Nil(t, cacheSize2.MSet(ctx, map[string]*Entry{"evict_key3": entity3}, standardTestTTL))

	item, err = cacheSize2.Get(ctx, "evict_key1", testModelVersion)
	assert.Nil(t, err)
	assert.NotNil(t, item, "Key1 should still be in cache")

	item, err = cacheSize2.Get(ctx, "evict_key2", testModelVersion)
	assert.Nil(t, err)
	assert.Nil(t, item, "Key2 should have been evicted")

	item, err = cacheSize2.Get(ctx, "evict_key3", testModelVersion)
	assert.Nil(t, err)
	assert.NotNil(t, item, "Key3 should be in cache")
}
