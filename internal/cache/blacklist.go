// Package cache provides a Redis lookaside cache for domain skip decisions.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/northstar-funding/discovery/internal/logger"
)

const keyPrefix = "discovery:skip:"

// DomainGate is the registry decision the cache sits in front of.
type DomainGate interface {
	ShouldProcess(ctx context.Context, name string) (bool, error)
}

// BlacklistCache caches negative ShouldProcess decisions in Redis so the hot
// path of a large aggregation batch avoids one registry lookup per repeated
// blacklisted domain. Positive decisions are never cached: a domain can be
// blacklisted at any time and must take effect on the next session.
//
// Redis failures never fail the pipeline; the cache degrades to a
// pass-through and the registry remains the source of truth.
type BlacklistCache struct {
	gate DomainGate
	rdb  *redis.Client
	ttl  time.Duration
	log  logger.Logger
}

// NewBlacklistCache wraps gate with a Redis-backed skip cache.
func NewBlacklistCache(gate DomainGate, rdb *redis.Client, ttl time.Duration, log logger.Logger) *BlacklistCache {
	return &BlacklistCache{gate: gate, rdb: rdb, ttl: ttl, log: log}
}

// ShouldProcess implements DomainGate with a cache-aside read of skip
// decisions.
func (c *BlacklistCache) ShouldProcess(ctx context.Context, name string) (bool, error) {
	key := keyPrefix + name

	_, err := c.rdb.Get(ctx, key).Result()
	switch {
	case err == nil:
		return false, nil
	case errors.Is(err, redis.Nil):
		// Cache miss, fall through to the registry.
	default:
		c.log.Warn("skip cache read failed, falling back to registry",
			logger.String("domain", name),
			logger.Error(err))
	}

	ok, err := c.gate.ShouldProcess(ctx, name)
	if err != nil {
		return false, err
	}

	if !ok {
		if setErr := c.rdb.Set(ctx, key, "1", c.ttl).Err(); setErr != nil {
			c.log.Warn("skip cache write failed",
				logger.String("domain", name),
				logger.Error(setErr))
		}
	}

	return ok, nil
}

// Invalidate drops a cached skip decision, for example after an admin lifts a
// seasonal exclusion.
func (c *BlacklistCache) Invalidate(ctx context.Context, name string) error {
	if err := c.rdb.Del(ctx, keyPrefix+name).Err(); err != nil {
		return err
	}
	return nil
}
