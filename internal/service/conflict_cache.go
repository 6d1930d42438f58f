package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/scolaire/timetable-api/internal/models"
)

const conflictCacheKey = "timetable:conflicts"

// RedisConflictCache stores the full conflict report as JSON under a single
// key. Only the unfiltered report is cached; per-class filtering is cheap
// and happens in memory, so one entry serves every class view. Cache
// failures degrade to recomputation, never to errors.
type RedisConflictCache struct {
	client  *redis.Client
	ttl     time.Duration
	metrics *MetricsService
	logger  *zap.Logger
}

// NewRedisConflictCache wires the cache.
func NewRedisConflictCache(client *redis.Client, ttl time.Duration, metrics *MetricsService, logger *zap.Logger) *RedisConflictCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisConflictCache{client: client, ttl: ttl, metrics: metrics, logger: logger}
}

// Get returns the cached report, if any.
func (c *RedisConflictCache) Get(ctx context.Context) ([]models.Conflict, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, conflictCacheKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("conflict cache read failed", zap.Error(err))
		}
		c.metrics.RecordCacheOperation(false)
		return nil, false
	}
	var conflicts []models.Conflict
	if err := json.Unmarshal(raw, &conflicts); err != nil {
		c.logger.Warn("conflict cache payload corrupt", zap.Error(err))
		c.metrics.RecordCacheOperation(false)
		return nil, false
	}
	c.metrics.RecordCacheOperation(true)
	return conflicts, true
}

// Set stores the report with the configured TTL.
func (c *RedisConflictCache) Set(ctx context.Context, conflicts []models.Conflict) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(conflicts)
	if err != nil {
		c.logger.Warn("conflict cache encode failed", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, conflictCacheKey, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("conflict cache write failed", zap.Error(err))
	}
}

// Invalidate drops the cached report; called after every generation pass.
func (c *RedisConflictCache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, conflictCacheKey).Err(); err != nil {
		c.logger.Warn("conflict cache invalidation failed", zap.Error(err))
	}
}
