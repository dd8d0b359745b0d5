package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storefront/internal/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache keys and TTLs for the catalog read path. Invalidation is TTL-only:
// writes do not delete cache entries, so reads may be stale for up to the
// TTL window.
const (
	CategoriesKey       = "categories:all"
	CategoriesTTL       = 10 * time.Minute
	CategoryProductsTTL = 5 * time.Minute
)

// CategoryProductsKey returns the cache key for a single category's product
// snapshot.
func CategoryProductsKey(categoryID string) string {
	return fmt.Sprintf("category:%s:products", categoryID)
}

// NewClient creates a redis client from configuration.
func NewClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// Cache is a JSON snapshot cache on top of redis. The store remains the
// source of truth: every method degrades to a no-op or a miss when redis is
// unavailable, so callers always fall through to the database.
type Cache struct {
	client *redis.Client
	logger *zap.Logger
}

// New creates a Cache backed by the given redis client.
func New(client *redis.Client, logger *zap.Logger) *Cache {
	return &Cache{
		client: client,
		logger: logger,
	}
}

// GetJSON loads the value at key into target. It returns false on a miss,
// on a redis error, or when the stored payload cannot be decoded.
func (c *Cache) GetJSON(ctx context.Context, key string, target interface{}) bool {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("Cache read failed, falling through to store",
				zap.Error(err),
				zap.String("key", key),
			)
		}
		return false
	}

	if err := json.Unmarshal(data, target); err != nil {
		c.logger.Warn("Cache payload undecodable, falling through to store",
			zap.Error(err),
			zap.String("key", key),
		)
		return false
	}

	return true
}

// SetJSON stores value at key with the given TTL. The write is best-effort:
// a failure is logged and otherwise ignored, since cache content is always
// re-derivable from the store.
func (c *Cache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("Cache marshal failed",
			zap.Error(err),
			zap.String("key", key),
		)
		return
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		c.logger.Warn("Cache write failed",
			zap.Error(err),
			zap.String("key", key),
		)
	}
}
