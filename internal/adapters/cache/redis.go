package cache

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alchemix-labs/yieldkit/internal/core/domain"
)

// RedisConfig configures the Redis-backed rate cache.
type RedisConfig struct {
	Address   string
	Username  string
	Password  string
	DB        int
	KeyPrefix string
	UseTLS    bool
}

var _ domain.RateCache = (*RedisCache)(nil)

// RedisCache stores quotes as JSON under KeyPrefix+provider.
type RedisCache struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisCache connects and pings the server.
func NewRedisCache(config *RedisConfig) (*RedisCache, error) {
	if config == nil || config.Address == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	opts := &redis.Options{
		Addr:     config.Address,
		Username: config.Username,
		Password: config.Password,
		DB:       config.DB,
	}
	if config.UseTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisCache{client: client, keyPrefix: config.KeyPrefix}, nil
}

func (c *RedisCache) key(provider string) string {
	return c.keyPrefix + provider
}

// Get returns the cached quote or nil on a miss.
func (c *RedisCache) Get(ctx context.Context, provider string) (*domain.RateQuote, error) {
	data, err := c.client.Get(ctx, c.key(provider)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", provider, err)
	}

	var quote domain.RateQuote
	if err := json.Unmarshal(data, &quote); err != nil {
		return nil, fmt.Errorf("decode cached quote %s: %w", provider, err)
	}
	return &quote, nil
}

// Set stores quote for ttl.
func (c *RedisCache) Set(ctx context.Context, quote domain.RateQuote, ttl time.Duration) error {
	data, err := json.Marshal(quote)
	if err != nil {
		return fmt.Errorf("encode quote %s: %w", quote.Provider, err)
	}
	if err := c.client.Set(ctx, c.key(quote.Provider), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", quote.Provider, err)
	}
	return nil
}

// Flush deletes every key under the prefix.
func (c *RedisCache) Flush(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, c.keyPrefix+"*", 100).Result()
		if err != nil {
			return fmt.Errorf("redis scan: %w", err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis del: %w", err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// Close releases the connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
