package database

import (
	"context"

	"github.com/go-redis/redis/v8"
	"github.com/ruralpay/ledger/internal/config"
	"go.uber.org/zap"
)

// InitRedis initializes Redis client with config. It returns nil when Redis is
// unreachable; plan events are then not published.
func InitRedis(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn("redis connection failed, continuing without plan events", zap.String("addr", cfg.Addr()), zap.Error(err))
		rdb.Close()
		return nil
	}

	logger.Info("redis connection established", zap.String("addr", cfg.Addr()))
	return rdb
}
