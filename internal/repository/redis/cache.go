package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/offerpilot/offerpilot/internal/config"
	"github.com/offerpilot/offerpilot/internal/domain"
)

// Cache provides Redis caching functionality
type Cache struct {
	client *redis.Client
}

// Key prefixes for different cache types
const (
	PrefixIntelligence = "intel:"
	PrefixWidgetConfig = "widget:"
	PrefixRateLimit    = "ratelimit:"
)

// Default TTLs
const (
	IntelligenceTTL = 6 * time.Hour
	RateLimitWindow = 1 * time.Minute
)

// New creates a new Redis cache client
func New(cfg config.RedisConfig) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return &Cache{client: client}, nil
}

// Close closes the Redis connection
func (c *Cache) Close() error {
	return c.client.Close()
}

// Health checks Redis connectivity
func (c *Cache) Health(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Client returns the underlying Redis client for advanced operations
func (c *Cache) Client() *redis.Client {
	return c.client
}

// Intelligence caching methods. Analyses are expensive (browser fetch plus
// model calls) so recent results are reused per URL.

// GetIntelligence retrieves a cached analysis. A miss returns (nil, nil).
func (c *Cache) GetIntelligence(ctx context.Context, url string) (*domain.CompetitorIntelligence, error) {
	data, err := c.client.Get(ctx, PrefixIntelligence+url).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var intel domain.CompetitorIntelligence
	if err := json.Unmarshal(data, &intel); err != nil {
		return nil, err
	}
	return &intel, nil
}

// SetIntelligence caches an analysis
func (c *Cache) SetIntelligence(ctx context.Context, url string, intel *domain.CompetitorIntelligence) error {
	data, err := json.Marshal(intel)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, PrefixIntelligence+url, data, IntelligenceTTL).Err()
}

// IncrementRateLimit bumps the caller's request count within the current
// window and returns the new count.
func (c *Cache) IncrementRateLimit(ctx context.Context, key string) (int64, error) {
	fullKey := PrefixRateLimit + key

	pipe := c.client.Pipeline()
	incr := pipe.Incr(ctx, fullKey)
	pipe.Expire(ctx, fullKey, RateLimitWindow)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}
