package cache

import (
	"context"
	"testing"
	"time"

	"github.com/baldhadhaval08/pantry-wizard/internal/infrastructure/config"
	"github.com/baldhadhaval08/pantry-wizard/internal/pkg/common"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCacheConfig() config.CacheConfig {
	return config.CacheConfig{Enabled: true, MaxSize: 2, TTL: time.Minute}
}

func TestManagerGetSet(t *testing.T) {
	m := NewManager(testCacheConfig())
	defer m.Close()
	ctx := context.Background()

	_, err := m.Get(ctx, "Tomato Rice")
	assert.ErrorIs(t, err, common.ErrCacheMiss)

	require.NoError(t, m.Set(ctx, "Tomato Rice", "/static/images/tomato_rice.jpg"))

	url, err := m.Get(ctx, "  tomato   RICE ")
	require.NoError(t, err)
	assert.Equal(t, "/static/images/tomato_rice.jpg", url)
}

func TestManagerExpiry(t *testing.T) {
	m := NewManager(testCacheConfig())
	defer m.Close()
	ctx := context.Background()

	now := time.Now()
	m.now = func() time.Time { return now }
	require.NoError(t, m.Set(ctx, "soup", "/a.jpg"))

	m.now = func() time.Time { return now.Add(2 * time.Minute) }
	_, err := m.Get(ctx, "soup")
	assert.ErrorIs(t, err, common.ErrCacheMiss)
	assert.Equal(t, 0, m.GetStats()["size"])
}

func TestManagerEvictsLeastUsed(t *testing.T) {
	m := NewManager(testCacheConfig())
	defer m.Close()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "a", "/a.jpg"))
	require.NoError(t, m.Set(ctx, "b", "/b.jpg"))
	_, err := m.Get(ctx, "a")
	require.NoError(t, err)

	require.NoError(t, m.Set(ctx, "c", "/c.jpg"))

	_, err = m.Get(ctx, "b")
	assert.ErrorIs(t, err, common.ErrCacheMiss)
	_, err = m.Get(ctx, "a")
	assert.NoError(t, err)
}

func TestServiceGetSet(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	ctx := context.Background()

	s := NewService(client, testCacheConfig())

	_, err := s.Get(ctx, "Tomato Rice")
	assert.ErrorIs(t, err, common.ErrCacheMiss)

	require.NoError(t, s.Set(ctx, "Tomato Rice", "/static/images/tomato_rice.jpg"))
	url, err := s.Get(ctx, "tomato rice")
	require.NoError(t, err)
	assert.Equal(t, "/static/images/tomato_rice.jpg", url)

	mr.FastForward(2 * time.Minute)
	_, err = s.Get(ctx, "tomato rice")
	assert.ErrorIs(t, err, common.ErrCacheMiss)
}

func TestNewSelectsImplementation(t *testing.T) {
	assert.Nil(t, New(config.CacheConfig{}, nil))

	mem := New(testCacheConfig(), nil)
	_, ok := mem.(*CacheManager)
	assert.True(t, ok)
	mem.Close()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	_, ok = New(testCacheConfig(), client).(*Service)
	assert.True(t, ok)
}
