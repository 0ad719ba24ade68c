// Package cache keeps admin template listings and asset categories in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"founders-circle/internal/common/logger"
	"founders-circle/internal/common/metrics"
	"founders-circle/internal/models"
	"founders-circle/internal/storage"

	"github.com/redis/go-redis/v9"
)

const (
	TemplatesKey  = "fc:templates"
	CategoriesKey = "fc:categories"

	DefaultTTL = 5 * time.Minute
)

const (
	resultHit   = "hit"
	resultMiss  = "miss"
	resultError = "error"
)

// Cache is a read-through JSON cache. A Redis failure falls back to the backing store.
type Cache struct {
	redis  *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func New(client *redis.Client, ttl time.Duration, log logger.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		redis:  client,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "cache"}),
	}
}

// load returns the cached value for key, calling fetch and storing its result on a miss.
func load[T any](ctx context.Context, c *Cache, key string, fetch func(context.Context) (T, error)) (T, error) {
	if val, err := c.redis.Get(ctx, key).Result(); err == nil {
		var out T
		if jsonErr := json.Unmarshal([]byte(val), &out); jsonErr == nil {
			metrics.CacheRequests.WithLabelValues(key, resultHit).Inc()
			return out, nil
		}
		metrics.CacheRequests.WithLabelValues(key, resultError).Inc()
	} else if errors.Is(err, redis.Nil) {
		metrics.CacheRequests.WithLabelValues(key, resultMiss).Inc()
	} else {
		metrics.CacheRequests.WithLabelValues(key, resultError).Inc()
		c.logger.Warn("cache read failed", map[string]interface{}{"key": key, "error": err})
	}

	out, err := fetch(ctx)
	if err != nil {
		return out, err
	}

	if data, err := json.Marshal(out); err == nil {
		if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.logger.Warn("cache write failed", map[string]interface{}{"key": key, "error": err})
		}
	}
	return out, nil
}

func (c *Cache) invalidate(ctx context.Context, key string) {
	if err := c.redis.Del(ctx, key).Err(); err != nil {
		c.logger.Warn("cache invalidation failed", map[string]interface{}{"key": key, "error": err})
	}
}

// Templates wraps a template store. Saves invalidate the cached listing.
func (c *Cache) Templates(inner storage.TemplateStore) storage.TemplateStore {
	return &templateCache{cache: c, inner: inner}
}

// Catalog wraps a catalog store. Only categories are cached.
func (c *Cache) Catalog(inner storage.CatalogStore) storage.CatalogStore {
	return &catalogCache{cache: c, inner: inner}
}

type templateCache struct {
	cache *Cache
	inner storage.TemplateStore
}

func (t *templateCache) SaveTemplate(ctx context.Context, templateType, html string) (*models.EmailTemplate, error) {
	saved, err := t.inner.SaveTemplate(ctx, templateType, html)
	if err != nil {
		return nil, err
	}
	t.cache.invalidate(ctx, TemplatesKey)
	return saved, nil
}

func (t *templateCache) ListTemplates(ctx context.Context) ([]models.EmailTemplate, error) {
	return load(ctx, t.cache, TemplatesKey, t.inner.ListTemplates)
}

type catalogCache struct {
	cache *Cache
	inner storage.CatalogStore
}

func (c *catalogCache) ListCategories(ctx context.Context) ([]models.AssetCategory, error) {
	return load(ctx, c.cache, CategoriesKey, c.inner.ListCategories)
}

func (c *catalogCache) RecordAnalytics(ctx context.Context, event models.AnalyticsEvent) error {
	return c.inner.RecordAnalytics(ctx, event)
}
