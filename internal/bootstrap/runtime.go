// Package bootstrap connects the runtime dependencies shared by the commands.
package bootstrap

import (
	"context"
	"fmt"

	"postboard/internal/cache"
	"postboard/internal/config"
	"postboard/internal/database"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SkipRedis leaves the Redis client nil, e.g. for the seeder.
	SkipRedis bool
}

// InitRuntime connects to the database and, unless disabled, to Redis.
// The Redis client may be nil when REDIS_URL is unset or unreachable.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	if opts.SkipRedis {
		return db, nil, nil
	}
	return db, cache.NewRedisClient(ctx, cfg.RedisURL), nil
}
