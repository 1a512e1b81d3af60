package bootstrap

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/northstar-funding/discovery/internal/config"
	"github.com/northstar-funding/discovery/internal/logger"
)

const redisPingTimeout = 2 * time.Second

// SetupRedis creates the optional Redis client backing the skip cache.
// Returns nil when Redis is disabled or unreachable; the pipeline then reads
// every skip decision from the registry directly.
func SetupRedis(cfg *config.Config, log logger.Logger) *redis.Client {
	if !cfg.Redis.Enabled {
		log.Info("redis disabled, skip cache not in use")
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("failed to connect to Redis, skip cache not in use",
			logger.String("address", cfg.Redis.Address),
			logger.Error(err))
		_ = rdb.Close()
		return nil
	}

	log.Info("redis connected successfully", logger.String("address", cfg.Redis.Address))
	return rdb
}
