package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/tsunagu-app/backend/internal/models"
)

const activeListKey = "events:active"

// ListingCache caches the default public active-events listing in
// Redis. It is a best-effort read-through layer: any cache failure
// falls back to the database and never surfaces to callers. Only the
// default listing (no explicit limit) is cached; writes invalidate it.
type ListingCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewListingCache creates a listing cache. A nil client or
// non-positive ttl disables caching.
func NewListingCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *ListingCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ListingCache{client: client, ttl: ttl, logger: logger}
}

func (c *ListingCache) enabled() bool {
	return c != nil && c.client != nil && c.ttl > 0
}

// Get returns the cached listing and true on a hit.
func (c *ListingCache) Get(ctx context.Context) ([]models.EventPost, bool) {
	if !c.enabled() {
		return nil, false
	}
	raw, err := c.client.Get(ctx, activeListKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("listing cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var list []models.EventPost
	if err := json.Unmarshal(raw, &list); err != nil {
		c.logger.Warn("listing cache entry corrupt, dropping", zap.Error(err))
		c.client.Del(ctx, activeListKey)
		return nil, false
	}
	return list, true
}

// Set stores the listing with the configured TTL.
func (c *ListingCache) Set(ctx context.Context, list []models.EventPost) {
	if !c.enabled() {
		return
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, activeListKey, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("listing cache write failed", zap.Error(err))
	}
}

// Invalidate drops the cached listing after an event write.
func (c *ListingCache) Invalidate(ctx context.Context) {
	if !c.enabled() {
		return
	}
	if err := c.client.Del(ctx, activeListKey).Err(); err != nil {
		c.logger.Warn("listing cache invalidation failed", zap.Error(err))
	}
}
