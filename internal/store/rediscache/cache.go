// Package rediscache fronts an EntityStore with a Redis read-through cache.
//
// Unified entities are immutable within a run, so cached lookups can only go
// stale across batch runs; the TTL bounds that window. Cache failures fall
// back to the inner store rather than failing the lookup.
package rediscache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"unify/internal/resolution/models"
	"unify/internal/store"
)

const keyPrefix = "unify:entity:"

// Cache decorates an EntityStore with per-entity caching of ID lookups.
// Name searches always hit the inner store.
type Cache struct {
	inner  store.EntityStore
	client redis.Cmdable
	ttl    time.Duration
	logger *slog.Logger
}

// New builds the cache decorator.
func New(inner store.EntityStore, client redis.Cmdable, ttl time.Duration, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{inner: inner, client: client, ttl: ttl, logger: logger}
}

// SaveEntities writes through to the inner store and primes the cache.
func (c *Cache) SaveEntities(ctx context.Context, entities []models.UnifiedEntity) error {
	if err := c.inner.SaveEntities(ctx, entities); err != nil {
		return err
	}
	for i := range entities {
		c.prime(ctx, &entities[i])
	}
	return nil
}

// FindByUnifiedID serves from cache when possible, falling through to the
// inner store on miss or cache error.
func (c *Cache) FindByUnifiedID(ctx context.Context, unifiedID string) (models.UnifiedEntity, error) {
	raw, err := c.client.Get(ctx, keyPrefix+unifiedID).Bytes()
	if err == nil {
		var e models.UnifiedEntity
		if err := json.Unmarshal(raw, &e); err == nil {
			return e, nil
		}
		c.logger.Warn("dropping undecodable cache entry", "unified_id", unifiedID)
	} else if err != redis.Nil {
		c.logger.Warn("entity cache read failed", "unified_id", unifiedID, "error", err)
	}

	e, err := c.inner.FindByUnifiedID(ctx, unifiedID)
	if err != nil {
		return models.UnifiedEntity{}, err
	}
	c.prime(ctx, &e)
	return e, nil
}

// SearchByName delegates to the inner store.
func (c *Cache) SearchByName(ctx context.Context, name string) ([]models.UnifiedEntity, error) {
	return c.inner.SearchByName(ctx, name)
}

func (c *Cache) prime(ctx context.Context, e *models.UnifiedEntity) {
	raw, err := json.Marshal(e)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, keyPrefix+e.UnifiedID, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("entity cache write failed", "unified_id", e.UnifiedID, "error", err)
	}
}
