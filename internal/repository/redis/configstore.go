package redis

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/offerpilot/offerpilot/internal/domain"
)

// ConfigStore is the widget configuration key-value abstraction. Injected
// where needed so the store is swappable and testable.
type ConfigStore interface {
	GetWidgetConfig(ctx context.Context, widgetID string) (*domain.WidgetConfig, error)
	SetWidgetConfig(ctx context.Context, cfg *domain.WidgetConfig) error
}

// RedisConfigStore backs the store with Redis.
type RedisConfigStore struct {
	cache *Cache
}

// NewConfigStore creates a Redis-backed widget config store.
func NewConfigStore(cache *Cache) *RedisConfigStore {
	return &RedisConfigStore{cache: cache}
}

// GetWidgetConfig retrieves a widget's configuration.
func (s *RedisConfigStore) GetWidgetConfig(ctx context.Context, widgetID string) (*domain.WidgetConfig, error) {
	data, err := s.cache.client.Get(ctx, PrefixWidgetConfig+widgetID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, domain.NotFoundError("widget config", widgetID)
		}
		return nil, err
	}

	var cfg domain.WidgetConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetWidgetConfig stores a widget's configuration. Configs have no TTL;
// they live until overwritten.
func (s *RedisConfigStore) SetWidgetConfig(ctx context.Context, cfg *domain.WidgetConfig) error {
	cfg.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	return s.cache.client.Set(ctx, PrefixWidgetConfig+cfg.WidgetID, data, 0).Err()
}

// MemoryConfigStore is the in-process fallback used when Redis is not
// configured, and in tests.
type MemoryConfigStore struct {
	mu      sync.RWMutex
	configs map[string]domain.WidgetConfig
}

// NewMemoryConfigStore creates an empty in-memory store.
func NewMemoryConfigStore() *MemoryConfigStore {
	return &MemoryConfigStore{configs: make(map[string]domain.WidgetConfig)}
}

// GetWidgetConfig retrieves a widget's configuration.
func (s *MemoryConfigStore) GetWidgetConfig(_ context.Context, widgetID string) (*domain.WidgetConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg, ok := s.configs[widgetID]
	if !ok {
		return nil, domain.NotFoundError("widget config", widgetID)
	}
	return &cfg, nil
}

// SetWidgetConfig stores a widget's configuration.
func (s *MemoryConfigStore) SetWidgetConfig(_ context.Context, cfg *domain.WidgetConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg.UpdatedAt = time.Now().UTC()
	s.configs[cfg.WidgetID] = *cfg
	return nil
}
