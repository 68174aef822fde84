package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis server and returns a RedisBackend instance
func setupTestRedis(t *testing.T, ttl time.Duration) (*RedisBackend, *miniredis.Miniredis, func()) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	backend := NewRedisBackend(client, ttl)

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return backend, mr, cleanup
}

func TestRedisGet_Success(t *testing.T) {
	backend, mr, cleanup := setupTestRedis(t, 0)
	defer cleanup()

	require.NoError(t, mr.Set("nh_cart:abc", `[{"id":1,"qty":2}]`))

	data, err := backend.Get(context.Background(), "nh_cart:abc")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1,"qty":2}]`, string(data))
}

func TestRedisGet_Missing(t *testing.T) {
	backend, _, cleanup := setupTestRedis(t, 0)
	defer cleanup()

	data, err := backend.Get(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrKeyNotFound)
	assert.Nil(t, data)
}

func TestRedisGet_ServerDown(t *testing.T) {
	backend, mr, cleanup := setupTestRedis(t, 0)
	defer cleanup()

	mr.Close()

	_, err := backend.Get(context.Background(), "nh_cart:abc")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrKeyNotFound)
	assert.ErrorContains(t, err, "redis get failed")
}

func TestRedisSet_NoExpiry(t *testing.T) {
	backend, mr, cleanup := setupTestRedis(t, 0)
	defer cleanup()

	err := backend.Set(context.Background(), "nh_cart:abc", []byte("[]"))
	require.NoError(t, err)

	stored, err := mr.Get("nh_cart:abc")
	require.NoError(t, err)
	assert.Equal(t, "[]", stored)
	assert.Equal(t, time.Duration(0), mr.TTL("nh_cart:abc"))
}

func TestRedisSet_WithTTL(t *testing.T) {
	backend, mr, cleanup := setupTestRedis(t, 30*24*time.Hour)
	defer cleanup()

	err := backend.Set(context.Background(), "nh_cart:abc", []byte("[]"))
	require.NoError(t, err)

	assert.Equal(t, 30*24*time.Hour, mr.TTL("nh_cart:abc"))
}

func TestRedisDelete(t *testing.T) {
	backend, mr, cleanup := setupTestRedis(t, 0)
	defer cleanup()

	require.NoError(t, mr.Set("nh_cart:abc", "[]"))
	require.NoError(t, backend.Delete(context.Background(), "nh_cart:abc"))
	assert.False(t, mr.Exists("nh_cart:abc"))

	// Deleting non-existent key should not error
	assert.NoError(t, backend.Delete(context.Background(), "nh_cart:abc"))
}

func TestKey_Format(t *testing.T) {
	assert.Equal(t, "nh_cart:visitor-1", Key(DefaultKey, "visitor-1"))
}
