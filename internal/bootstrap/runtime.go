package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"friendmarket/internal/cache"
	"friendmarket/internal/config"
	"friendmarket/internal/database"
	"friendmarket/internal/middleware"
	"friendmarket/internal/models"
	"friendmarket/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedDemo fills an empty development database with demo data.
	SeedDemo bool
}

// InitRuntime connects to DB and Redis and optionally seeds demo data.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Init Redis (may result in nil client if unreachable)
	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if opts.SeedDemo {
		if err := seedDemo(context.Background(), cfg, db); err != nil {
			return nil, nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	return db, r, nil
}

// seedDemo only touches an empty development database.
func seedDemo(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil || cfg.Env != "development" {
		return nil
	}

	var users int64
	if err := db.WithContext(ctx).Model(&models.User{}).Count(&users).Error; err != nil {
		return err
	}
	if users > 0 {
		return nil
	}

	s, err := seed.NewSeeder(db, seed.DefaultOptions())
	if err != nil {
		return err
	}
	sum, err := s.Run(ctx)
	if err != nil {
		return err
	}
	middleware.Logger.Info("demo data seeded", slog.String("summary", sum.String()),
		slog.String("password", seed.DefaultPassword))
	return nil
}
