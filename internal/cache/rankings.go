// Package cache holds computed leaderboards in Redis so repeated reads
// skip the aggregation query. The cache is strictly optional: every
// method on a nil cache is a no-op or a miss.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fanhub/fanhub-core/internal/config"
	"github.com/fanhub/fanhub-core/internal/ranking"
	"github.com/fanhub/fanhub-core/pkg/logger"
)

// RankingsCache stores serialized leaderboards keyed by scope.
type RankingsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates a RankingsCache. An empty Addr disables caching and
// returns nil, which is a valid receiver for every method.
func New(cfg *config.RedisConfig) *RankingsCache {
	if cfg.Addr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &RankingsCache{client: client, ttl: cfg.CacheTTL}
}

// Key builds the cache key for a ranking scope.
func Key(scope ranking.Scope) string {
	season, episode := int64(0), int64(0)
	if scope.SeasonID != nil {
		season = *scope.SeasonID
	}
	if scope.EpisodeID != nil {
		episode = *scope.EpisodeID
	}
	unit := scope.Unit
	if unit == "" {
		unit = "all"
	}
	return fmt.Sprintf("rankings:s%d:e%d:%s", season, episode, unit)
}

// Get returns the cached leaderboard for key, or ok=false on a miss.
// Redis errors degrade to a miss.
func (c *RankingsCache) Get(ctx context.Context, key string) ([]ranking.Entry, bool) {
	if c == nil {
		return nil, false
	}

	payload, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Log.Warn("rankings cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var entries []ranking.Entry
	if err := json.Unmarshal(payload, &entries); err != nil {
		logger.Log.Warn("rankings cache entry corrupt", zap.String("key", key), zap.Error(err))
		return nil, false
	}

	return entries, true
}

// Set stores the leaderboard under key with the configured TTL.
func (c *RankingsCache) Set(ctx context.Context, key string, entries []ranking.Entry) {
	if c == nil {
		return
	}

	payload, err := json.Marshal(entries)
	if err != nil {
		logger.Log.Warn("rankings cache marshal failed", zap.String("key", key), zap.Error(err))
		return
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		logger.Log.Warn("rankings cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate drops every cached leaderboard. Called after finalization
// so freshly granted podium standings show up immediately.
func (c *RankingsCache) Invalidate(ctx context.Context) {
	if c == nil {
		return
	}

	iter := c.client.Scan(ctx, 0, "rankings:*", 0).Iterator()
	keys := make([]string, 0)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		logger.Log.Warn("rankings cache scan failed", zap.Error(err))
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		logger.Log.Warn("rankings cache invalidation failed", zap.Error(err))
	}
}

// Close releases the underlying client.
func (c *RankingsCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
