package vision

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/skin-wellness-navigator/internal/domain"
)

// ResultCache stores external classification results in redis, keyed by a
// hash of the image bytes. Identical uploads within the TTL skip the
// external call entirely.
type ResultCache struct {
	redis      *redis.Client
	defaultTTL time.Duration
}

// cachedResult wraps a stored result with its cache metadata.
type cachedResult struct {
	Result    *domain.ClassificationResult `json:"result"`
	CachedAt  time.Time                    `json:"cached_at"`
	ExpiresAt time.Time                    `json:"expires_at"`
}

// NewResultCache connects to redis and verifies the connection.
func NewResultCache(cfg domain.CacheConfig) (*ResultCache, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &ResultCache{redis: client, defaultTTL: cfg.DefaultTTL}, nil
}

// Get retrieves a cached classification for the image, if present and fresh.
func (c *ResultCache) Get(ctx context.Context, data []byte) (*domain.ClassificationResult, bool, error) {
	key := imageKey(data)

	val, err := c.redis.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get cached result: %w", err)
	}

	var cached cachedResult
	if err := json.Unmarshal([]byte(val), &cached); err != nil {
		// Drop corrupted entries rather than failing the request.
		c.redis.Del(ctx, key)
		return nil, false, nil
	}

	if time.Now().After(cached.ExpiresAt) {
		c.redis.Del(ctx, key)
		return nil, false, nil
	}

	// Source is not serialized; everything in the cache came from the
	// external model.
	cached.Result.Source = domain.SourceExternal
	return cached.Result, true, nil
}

// Set caches a classification result for the image.
func (c *ResultCache) Set(ctx context.Context, data []byte, result *domain.ClassificationResult) error {
	cached := cachedResult{
		Result:    result,
		CachedAt:  time.Now(),
		ExpiresAt: time.Now().Add(c.defaultTTL),
	}

	payload, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("failed to marshal cached result: %w", err)
	}

	return c.redis.Set(ctx, imageKey(data), payload, c.defaultTTL).Err()
}

// Ping checks the redis connection.
func (c *ResultCache) Ping(ctx context.Context) error {
	return c.redis.Ping(ctx).Err()
}

// Close closes the redis connection.
func (c *ResultCache) Close() error {
	return c.redis.Close()
}

// imageKey derives a stable cache key from the image content.
func imageKey(data []byte) string {
	hash := sha256.Sum256(data)
	return fmt.Sprintf("classification:image:%x", hash[:8])
}
