package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultCacheTTL is how long a cached model response stays valid
const DefaultCacheTTL = 24 * time.Hour

const defaultKeyPrefix = "resumefit:llm:"

// ErrCacheMiss is returned by a Cache when the key is absent
var ErrCacheMiss = errors.New("cache miss")

// Cache is the key/value store behind CachedClient
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// RedisCache adapts a go-redis client to Cache
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache parses a redis:// URL and verifies the server answers
func NewRedisCache(ctx context.Context, url string) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return &RedisCache{client: client}, nil
}

// Get implements Cache
func (r *RedisCache) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCacheMiss
	}
	return val, err
}

// Set implements Cache
func (r *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

// Close closes the underlying connection pool
func (r *RedisCache) Close() error {
	return r.client.Close()
}

// CachedClient memoizes GenerateJSON responses keyed by prompt and tier.
// Cache errors are never fatal: a broken cache degrades to direct calls.
type CachedClient struct {
	next   Client
	cache  Cache
	ttl    time.Duration
	prefix string
}

// NewCachedClient wraps next with cache. A non-positive ttl uses DefaultCacheTTL.
func NewCachedClient(next Client, cache Cache, ttl time.Duration) *CachedClient {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedClient{next: next, cache: cache, ttl: ttl, prefix: defaultKeyPrefix}
}

// GenerateJSON returns a cached response when present, otherwise calls through and stores the result
func (c *CachedClient) GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	key := c.key(prompt, tier)
	if val, err := c.cache.Get(ctx, key); err == nil {
		return val, nil
	}

	out, err := c.next.GenerateJSON(ctx, prompt, tier)
	if err != nil {
		return "", err
	}
	_ = c.cache.Set(ctx, key, out, c.ttl)
	return out, nil
}

// GetModel delegates to the wrapped client
func (c *CachedClient) GetModel(tier ModelTier) string {
	return c.next.GetModel(tier)
}

// Close closes the wrapped client and, when it owns one, the cache connection
func (c *CachedClient) Close() error {
	err := c.next.Close()
	if closer, ok := c.cache.(interface{ Close() error }); ok {
		if cerr := closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func (c *CachedClient) key(prompt string, tier ModelTier) string {
	sum := sha256.Sum256([]byte(string(tier) + "\x00" + c.next.GetModel(tier) + "\x00" + prompt))
	return c.prefix + hex.EncodeToString(sum[:])
}
