package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cfbtracker/backend/internal/metrics"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ErrMiss is returned when a key is absent
var ErrMiss = errors.New("cache miss")

// RedisCache is a small JSON cache in front of expensive read paths.
// A nil *RedisCache is valid and degrades to no caching.
type RedisCache struct {
	client *redis.Client
}

// Config holds Redis connection configuration
type Config struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// NewRedisCache connects to Redis and verifies the connection
func NewRedisCache(cfg Config) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &RedisCache{client: client}, nil
}

// Close closes the Redis connection
func (c *RedisCache) Close() {
	if c == nil {
		return
	}
	if err := c.client.Close(); err != nil {
		log.Warn().Err(err).Msg("Failed to close redis client")
	}
}

// GetJSON loads key into out. Returns ErrMiss when absent.
func (c *RedisCache) GetJSON(ctx context.Context, key string, out interface{}) error {
	if c == nil {
		return ErrMiss
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.CacheHitsTotal.WithLabelValues("miss").Inc()
		return ErrMiss
	}
	if err != nil {
		metrics.CacheHitsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("cache get failed: %w", err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("cache decode failed: %w", err)
	}

	metrics.CacheHitsTotal.WithLabelValues("hit").Inc()
	return nil
}

// SetJSON stores value under key with a TTL
func (c *RedisCache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode failed: %w", err)
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("cache set failed: %w", err)
	}

	return nil
}

// Delete removes keys matching pattern
func (c *RedisCache) Delete(ctx context.Context, pattern string) error {
	if c == nil {
		return nil
	}

	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("cache delete failed: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("cache scan failed: %w", err)
	}

	return nil
}

// StatsPattern matches every user's attendance stats key
const StatsPattern = "attendance:stats:*"

// StatsKey is the cache key for one user's attendance stats
func StatsKey(userID int) string {
	return fmt.Sprintf("attendance:stats:%d", userID)
}
