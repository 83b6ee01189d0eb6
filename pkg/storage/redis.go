package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/inisipanji/sawebagi/pkg/donation"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultRedisURL       = "redis://127.0.0.1:6379"
	DefaultQueueKey       = "donations"
	DefaultLeaderboardKey = "saweria_leaderboard"
)

// RedisConfig names the keys used for the queue and the leaderboard
type RedisConfig struct {
	QueueKey       string
	LeaderboardKey string
}

// DefaultRedisConfig returns the key layout the game server polls
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		QueueKey:       DefaultQueueKey,
		LeaderboardKey: DefaultLeaderboardKey,
	}
}

// RedisStorage implements Storage interface for Redis
type RedisStorage struct {
	client redis.UniversalClient
	config RedisConfig
}

// NewRedisClient builds a client from a redis:// or rediss:// URL. Upstash
// REST URLs (https://...) are mapped to the TLS endpoint on the same host,
// with the REST token as password. A bare host is accepted too.
func NewRedisClient(rawURL string, token string) (*redis.Client, error) {
	rawURL = strings.TrimSpace(rawURL)
	switch {
	case rawURL == "":
		rawURL = DefaultRedisURL
	case strings.HasPrefix(rawURL, "https://"):
		rawURL = "rediss://" + strings.TrimPrefix(rawURL, "https://")
	case strings.HasPrefix(rawURL, "http://"):
		rawURL = "redis://" + strings.TrimPrefix(rawURL, "http://")
	case !strings.Contains(rawURL, "://"):
		rawURL = "redis://" + rawURL
	}

	opts, err := redis.ParseURL(strings.TrimSuffix(rawURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	if token != "" {
		opts.Password = token
		if opts.Username == "" {
			opts.Username = "default"
		}
	}
	// No retries: store failures surface to the caller as-is.
	opts.MaxRetries = -1

	return redis.NewClient(opts), nil
}

// NewRedisStorage creates a new Redis storage backend
func NewRedisStorage(ctx context.Context, client redis.UniversalClient, config RedisConfig) (*RedisStorage, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if config.QueueKey == "" {
		config.QueueKey = DefaultQueueKey
	}
	if config.LeaderboardKey == "" {
		config.LeaderboardKey = DefaultLeaderboardKey
	}

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStorage{client: client, config: config}, nil
}

// Enqueue pushes the serialized event onto the queue list
func (r *RedisStorage) Enqueue(ctx context.Context, rec Record) error {
	data, err := json.Marshal(rec.Event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	return r.client.RPush(ctx, r.config.QueueKey, data).Err()
}

// Dequeue pops the head of the queue list
func (r *RedisStorage) Dequeue(ctx context.Context) (*donation.Event, error) {
	data, err := r.client.LPop(ctx, r.config.QueueKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeEvent(data)
}

// Credit increments the donator's score in the leaderboard sorted set
func (r *RedisStorage) Credit(ctx context.Context, donator string, amount float64) error {
	return r.client.ZIncrBy(ctx, r.config.LeaderboardKey, amount, donator).Err()
}

// Leaderboard returns the whole sorted set, highest score first
func (r *RedisStorage) Leaderboard(ctx context.Context) ([]LeaderboardEntry, error) {
	members, err := r.client.ZRangeArgsWithScores(ctx, redis.ZRangeArgs{
		Key:   r.config.LeaderboardKey,
		Start: 0,
		Stop:  -1,
		Rev:   true,
	}).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(members))
	for _, z := range members {
		entries = append(entries, LeaderboardEntry{
			Member: fmt.Sprint(z.Member),
			Score:  z.Score,
		})
	}
	return entries, nil
}

// Stats returns the queue length and the number of donors
func (r *RedisStorage) Stats(ctx context.Context) (Stats, error) {
	pipe := r.client.Pipeline()
	pending := pipe.LLen(ctx, r.config.QueueKey)
	donors := pipe.ZCard(ctx, r.config.LeaderboardKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return Stats{}, fmt.Errorf("failed to read stats: %w", err)
	}
	return Stats{
		Pending:  pending.Val(),
		Donors:   donors.Val(),
		Archived: -1,
	}, nil
}

// Ping checks the Redis connection
func (r *RedisStorage) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (r *RedisStorage) Close() error {
	return r.client.Close()
}

func decodeEvent(data []byte) (*donation.Event, error) {
	var ev donation.Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("failed to decode queued event: %w", err)
	}
	return &ev, nil
}
