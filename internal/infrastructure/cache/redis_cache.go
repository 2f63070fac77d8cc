package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/homematch/assistant-api/internal/domain/generation"
)

const replyKeyPrefix = "assistant:reply:"

// RedisCache implements generation.Cache on Redis with TTL-based expiry.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

var _ generation.Cache = (*RedisCache)(nil)

// NewRedisCache creates a reply cache on the given client.
func NewRedisCache(client *redis.Client, ttl time.Duration, log zerolog.Logger) *RedisCache {
	return &RedisCache{
		client: client,
		ttl:    ttl,
		log:    log.With().Str("component", "reply-cache").Logger(),
	}
}

// Get returns the cached reply for the key, or (nil, nil) on a miss.
func (c *RedisCache) Get(ctx context.Context, key string) (*generation.Reply, error) {
	raw, err := c.client.Get(ctx, replyKeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("cache get: %w", err)
	}

	var reply generation.Reply
	if err := json.Unmarshal(raw, &reply); err != nil {
		// A corrupt entry is treated as a miss and overwritten on Set.
		c.log.Warn().Err(err).Msg("discarding undecodable cache entry")
		return nil, nil
	}
	return &reply, nil
}

// Set stores the reply under the configured TTL.
func (c *RedisCache) Set(ctx context.Context, key string, reply generation.Reply) error {
	raw, err := json.Marshal(reply)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.client.Set(ctx, replyKeyPrefix+key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// NewRedisClient dials Redis from a URL and verifies connectivity.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}
