package cache

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/proximalabs/tradepulse/internal/core/domain"
)

const connectTimeout = 5 * time.Second

// RedisConfig holds connection settings for the Redis-backed cycle cache.
type RedisConfig struct {
	Address   string
	Username  string
	Password  string
	DB        int
	KeyPrefix string
	UseTLS    bool
}

// RedisCache stores the latest cycle snapshot in Redis. Implements
// CycleCache.
type RedisCache struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisCache connects to Redis and verifies the connection with a ping.
func NewRedisCache(cfg *RedisConfig) (*RedisCache, error) {
	opts := &redis.Options{
		Addr:     cfg.Address,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.UseTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisCache{
		client:    client,
		keyPrefix: cfg.KeyPrefix,
	}, nil
}

// StoreSnapshot writes the snapshot under <prefix>latest_cycle and bumps the
// <prefix>cycles counter.
func (c *RedisCache) StoreSnapshot(ctx context.Context, snapshot domain.CycleSnapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := c.client.Set(ctx, c.key("latest_cycle"), payload, 0).Err(); err != nil {
		return fmt.Errorf("failed to store snapshot: %w", err)
	}
	if err := c.client.Incr(ctx, c.key("cycles")).Err(); err != nil {
		return fmt.Errorf("failed to bump cycle counter: %w", err)
	}

	return nil
}

// LatestSnapshot reads back the most recent snapshot, or nil when none has
// been stored yet.
func (c *RedisCache) LatestSnapshot(ctx context.Context) (*domain.CycleSnapshot, error) {
	payload, err := c.client.Get(ctx, c.key("latest_cycle")).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snapshot domain.CycleSnapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &snapshot, nil
}

// Close closes the underlying Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) key(suffix string) string {
	return c.keyPrefix + suffix
}
