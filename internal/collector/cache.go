package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"TrendRadar/internal/model"
)

// BarCache stores fetched bar history keyed by symbol and depth.
type BarCache interface {
	Get(ctx context.Context, key string) ([]model.Bar, bool, error)
	Set(ctx context.Context, key string, bars []model.Bar, ttl time.Duration) error
}

type memoryItem struct {
	bars     []model.Bar
	expireAt time.Time
}

// MemoryCache is an in-process BarCache.
type MemoryCache struct {
	mu   sync.RWMutex
	data map[string]memoryItem
	now  func() time.Time
}

// NewMemoryCache creates an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{data: make(map[string]memoryItem), now: time.Now}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]model.Bar, bool, error) {
	c.mu.RLock()
	item, ok := c.data[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if c.now().After(item.expireAt) {
		c.mu.Lock()
		delete(c.data, key)
		c.mu.Unlock()
		return nil, false, nil
	}
	return item.bars, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, bars []model.Bar, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = memoryItem{bars: bars, expireAt: c.now().Add(ttl)}
	return nil
}

// RedisCache is a BarCache backed by Redis, shared across processes.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(ctx context.Context, addr, password string, db int) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisCache{client: client, prefix: "trendradar:bars:"}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]model.Bar, bool, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	var bars []model.Bar
	if err := json.Unmarshal(data, &bars); err != nil {
		return nil, false, fmt.Errorf("decode cached bars: %w", err)
	}
	return bars, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, bars []model.Bar, ttl time.Duration) error {
	data, err := json.Marshal(bars)
	if err != nil {
		return fmt.Errorf("encode bars: %w", err)
	}
	if err := c.client.Set(ctx, c.prefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Close releases the Redis connection pool.
func (c *RedisCache) Close() error { return c.client.Close() }

// CachedFetcher serves repeated requests from a BarCache.
// Cache failures degrade to a direct fetch.
type CachedFetcher struct {
	Fetcher Fetcher
	Cache   BarCache
	TTL     time.Duration
	logger  zerolog.Logger
}

// NewCachedFetcher wraps f with cache.
func NewCachedFetcher(f Fetcher, cache BarCache, ttl time.Duration) *CachedFetcher {
	return &CachedFetcher{
		Fetcher: f,
		Cache:   cache,
		TTL:     ttl,
		logger:  log.With().Str("component", "bar_cache").Logger(),
	}
}

func (c *CachedFetcher) Name() string { return c.Fetcher.Name() + "+cache" }

func (c *CachedFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.Bar, error) {
	key := fmt.Sprintf("%s:%s:%d", c.Fetcher.Name(), symbol, days)
	bars, ok, err := c.Cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn().Err(err).Str("symbol", symbol).Msg("cache read failed")
	} else if ok {
		return bars, nil
	}

	bars, err = c.Fetcher.FetchDailyBars(ctx, symbol, days)
	if err != nil {
		return nil, err
	}
	if err := c.Cache.Set(ctx, key, bars, c.TTL); err != nil {
		c.logger.Warn().Err(err).Str("symbol", symbol).Msg("cache write failed")
	}
	return bars, nil
}
