package storage

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a Redis storage for testing
// Requires Redis running on localhost:6379
func setupTestRedis(t *testing.T) *RedisStorage {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15, // Use DB 15 for testing
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	config := RedisConfig{
		QueueKey:       "sawebagi:test:donations",
		LeaderboardKey: "sawebagi:test:leaderboard",
	}
	if err := client.Del(ctx, config.QueueKey, config.LeaderboardKey).Err(); err != nil {
		t.Fatalf("Failed to clear test keys: %v", err)
	}

	store, err := NewRedisStorage(ctx, client, config)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestNewRedisStorage_NilClient(t *testing.T) {
	_, err := NewRedisStorage(context.Background(), nil, DefaultRedisConfig())
	assert.Error(t, err)
}

func TestNewRedisClient(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		token    string
		wantAddr string
		wantTLS  bool
		wantUser string
	}{
		{name: "default", url: "", wantAddr: "127.0.0.1:6379"},
		{name: "bare host", url: "redis-host", wantAddr: "redis-host:6379"},
		{name: "redis url", url: "redis://cache:6380/2", wantAddr: "cache:6380"},
		{
			name:     "upstash rest url",
			url:      "https://eu1-example.upstash.io",
			token:    "secret-token",
			wantAddr: "eu1-example.upstash.io:6379",
			wantTLS:  true,
			wantUser: "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewRedisClient(tt.url, tt.token)
			require.NoError(t, err)
			defer client.Close()

			opts := client.Options()
			assert.Equal(t, tt.wantAddr, opts.Addr)
			assert.Equal(t, tt.wantTLS, opts.TLSConfig != nil)
			assert.Equal(t, tt.token, opts.Password)
			assert.Equal(t, tt.wantUser, opts.Username)
			assert.Zero(t, opts.MaxRetries, "retries disabled")
		})
	}
}

func TestNewRedisClient_InvalidURL(t *testing.T) {
	_, err := NewRedisClient("redis://host:port:extra", "")
	assert.Error(t, err)
}

func TestRedisStorage_QueueAndLeaderboard(t *testing.T) {
	store := setupTestRedis(t)
	ctx := context.Background()

	t.Run("empty queue", func(t *testing.T) {
		ev, err := store.Dequeue(ctx)
		require.NoError(t, err)
		assert.Nil(t, ev)
	})

	t.Run("fifo", func(t *testing.T) {
		require.NoError(t, store.Enqueue(ctx, record("Budi", "50000")))
		require.NoError(t, store.Enqueue(ctx, record("Siti", "20000")))

		first, err := store.Dequeue(ctx)
		require.NoError(t, err)
		require.NotNil(t, first)
		assert.Equal(t, "Budi", first.Donator)
		assert.Equal(t, "50000", first.Amount.String())

		second, err := store.Dequeue(ctx)
		require.NoError(t, err)
		require.NotNil(t, second)
		assert.Equal(t, "Siti", second.Donator)
	})

	t.Run("leaderboard", func(t *testing.T) {
		require.NoError(t, store.Credit(ctx, "Budi", 100))
		require.NoError(t, store.Credit(ctx, "Siti", 300))
		require.NoError(t, store.Credit(ctx, "Budi", 250))

		entries, err := store.Leaderboard(ctx)
		require.NoError(t, err)
		assert.Equal(t, []LeaderboardEntry{
			{Member: "Budi", Score: 350},
			{Member: "Siti", Score: 300},
		}, entries)

		stats, err := store.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(0), stats.Pending)
		assert.Equal(t, int64(2), stats.Donors)
	})
}
