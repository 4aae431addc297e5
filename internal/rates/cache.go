package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/kassa/internal/model"
	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned when no table is cached for a base currency.
var ErrCacheMiss = errors.New("rates not cached")

// Cache remembers the last good table per base currency.
type Cache interface {
	Load(ctx context.Context, base model.Currency) (*Table, error)
	Store(ctx context.Context, table *Table) error
}

// RedisCache stores tables as JSON in Redis.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisCache connects to the Redis server at addr. A zero ttl keeps
// entries until they are overwritten.
func NewRedisCache(addr string, ttl time.Duration) *RedisCache {
	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: 2 * time.Second,
		ReadTimeout: 2 * time.Second,
	})
	return NewRedisCacheWithClient(rdb, ttl)
}

// NewRedisCacheWithClient wraps an existing client.
func NewRedisCacheWithClient(rdb *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl}
}

func ratesKey(base model.Currency) string {
	return fmt.Sprintf("kassa:rates:%s", base)
}

// Load returns the cached table for base.
func (c *RedisCache) Load(ctx context.Context, base model.Currency) (*Table, error) {
	data, err := c.rdb.Get(ctx, ratesKey(base)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return decodeTable(data)
}

// Store caches table under its base currency.
func (c *RedisCache) Store(ctx context.Context, table *Table) error {
	data, err := json.Marshal(table)
	if err != nil {
		return fmt.Errorf("encode rates: %w", err)
	}
	if err := c.rdb.Set(ctx, ratesKey(table.Base), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Close releases the Redis connection pool.
func (c *RedisCache) Close() error {
	return c.rdb.Close()
}

func decodeTable(data []byte) (*Table, error) {
	var table Table
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("decode rates: %w", err)
	}
	if !table.Base.IsSupported() || len(table.Rates) == 0 {
		return nil, ErrCacheMiss
	}
	return &table, nil
}
