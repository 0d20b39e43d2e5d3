package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"voice-browser/internal/application/port/output"
	"voice-browser/internal/domain/entity"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "navigator:summary:"

var _ output.SummaryCache = (*Cache)(nil)

// Cache keeps summaries in Redis under a per-session namespace. Entries are
// written with SETNX and expire with the session TTL. Redis errors are logged
// and read as cache misses.
type Cache struct {
	client    *redis.Client
	sessionID string
	ttl       time.Duration
	logger    output.LoggerPort
}

type Config struct {
	Address  string
	Password string
	DB       int
	TTL      time.Duration
}

func NewClient(cfg Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
		PoolSize:     4,
	})
}

func New(client *redis.Client, sessionID string, ttl time.Duration, logger output.LoggerPort) *Cache {
	return &Cache{
		client:    client,
		sessionID: sessionID,
		ttl:       ttl,
		logger:    logger,
	}
}

func (c *Cache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (c *Cache) Get(ctx context.Context, url string) (entity.CacheEntry, bool) {
	raw, err := c.client.Get(ctx, c.key(url)).Bytes()
	if errors.Is(err, redis.Nil) {
		return entity.CacheEntry{}, false
	}
	if err != nil {
		c.logger.Warn("Summary cache read failed", "url", url, "error", err)
		return entity.CacheEntry{}, false
	}

	var entry entity.CacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		c.logger.Warn("Summary cache entry is corrupt", "url", url, "error", err)
		return entity.CacheEntry{}, false
	}
	return entry, true
}

func (c *Cache) Put(ctx context.Context, url string, entry entity.CacheEntry) {
	payload, err := json.Marshal(entry)
	if err != nil {
		c.logger.Warn("Summary cache encode failed", "url", url, "error", err)
		return
	}

	if err := c.client.SetNX(ctx, c.key(url), payload, c.ttl).Err(); err != nil {
		c.logger.Warn("Summary cache write failed", "url", url, "error", err)
	}
}

// Clear drops every entry of this session.
func (c *Cache) Clear(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, c.key("*"), 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan session keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *Cache) key(url string) string {
	return keyPrefix + c.sessionID + ":" + url
}
