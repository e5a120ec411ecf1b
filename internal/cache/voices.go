// Package cache holds the Redis-backed voice list cache. Voice listings are
// slow provider calls and change rarely, so they are cached with a TTL.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"story-visualizer/internal/provider"
)

const voicesKey = "provider:voices"

// VoiceCache caches narration voice listings. A nil *VoiceCache is valid and
// behaves as a permanent miss, so Redis stays optional.
type VoiceCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewVoiceCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *VoiceCache {
	return &VoiceCache{client: client, ttl: ttl, logger: logger.Named("VoiceCache")}
}

// Get returns the cached voice list and whether it was present.
func (c *VoiceCache) Get(ctx context.Context) ([]provider.Voice, bool) {
	if c == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, voicesKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("Failed to read voice cache", zap.Error(err))
		}
		return nil, false
	}
	var voices []provider.Voice
	if err := json.Unmarshal(data, &voices); err != nil {
		c.logger.Warn("Corrupt voice cache entry, ignoring", zap.Error(err))
		return nil, false
	}
	return voices, true
}

// Set stores the voice list. Failures are logged, never surfaced: a cache
// write must not fail the request.
func (c *VoiceCache) Set(ctx context.Context, voices []provider.Voice) {
	if c == nil {
		return
	}
	data, err := json.Marshal(voices)
	if err != nil {
		c.logger.Warn("Failed to encode voice cache entry", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, voicesKey, data, c.ttl).Err(); err != nil {
		c.logger.Warn("Failed to write voice cache", zap.Error(err))
	}
}
