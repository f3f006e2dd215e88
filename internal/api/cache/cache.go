// Package cache keeps expensive aggregate responses in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cached aggregate keys
const (
	KeyStats   = "stats"
	KeyFilters = "filters"
)

// Config holds Redis cache settings
type Config struct {
	URL       string
	TTL       time.Duration
	KeyPrefix string
}

// Cache is a JSON cache on Redis. A nil *Cache is valid and never hits.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
	logger *slog.Logger
}

// New connects to Redis at cfg.URL, e.g. redis://localhost:6379/0
func New(cfg Config, logger *slog.Logger) (*Cache, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	logger.Info("Connected to Redis",
		slog.String("addr", opts.Addr),
		slog.Int("db", opts.DB),
		slog.Duration("ttl", cfg.TTL),
	)

	return &Cache{
		client: client,
		ttl:    cfg.TTL,
		prefix: cfg.KeyPrefix,
		logger: logger,
	}, nil
}

// GetJSON decodes the cached value of key into dest and reports whether it was found
func (c *Cache) GetJSON(ctx context.Context, key string, dest any) bool {
	if c == nil {
		return false
	}

	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("Failed to read cache",
				slog.String("key", key),
				slog.Any("error", err),
			)
		}
		return false
	}

	if err := json.Unmarshal(data, dest); err != nil {
		c.logger.Warn("Failed to decode cached value",
			slog.String("key", key),
			slog.Any("error", err),
		)
		return false
	}

	return true
}

// SetJSON stores v under key with the configured TTL
func (c *Cache) SetJSON(ctx context.Context, key string, v any) {
	if c == nil {
		return
	}

	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn("Failed to encode cache value",
			slog.String("key", key),
			slog.Any("error", err),
		)
		return
	}

	if err := c.client.Set(ctx, c.key(key), data, c.ttl).Err(); err != nil {
		c.logger.Warn("Failed to write cache",
			slog.String("key", key),
			slog.Any("error", err),
		)
	}
}

// Invalidate drops the aggregate keys after the collection changed
func (c *Cache) Invalidate(ctx context.Context) {
	if c == nil {
		return
	}

	if err := c.client.Del(ctx, c.key(KeyStats), c.key(KeyFilters)).Err(); err != nil {
		c.logger.Warn("Failed to invalidate cache",
			slog.Any("error", err),
		)
	}
}

// Close closes the Redis connection
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}

func (c *Cache) key(name string) string {
	if c.prefix == "" {
		return name
	}
	return c.prefix + ":" + name
}
