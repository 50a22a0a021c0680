package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/exclusive-store/storefront/config"
	"github.com/exclusive-store/storefront/internal/storage"
)

// ConnectRedis establishes and verifies a Redis connection.
//
//nolint:ireturn // returning redis.UniversalClient keeps client selection flexible.
func ConnectRedis(cfg config.RedisConfig, logger *slog.Logger) (redis.UniversalClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if pingErr := client.Ping(ctx).Err(); pingErr != nil {
		if closeErr := client.Close(); closeErr != nil {
			pingErr = errors.Join(pingErr, fmt.Errorf("close redis client: %w", closeErr))
		}
		return nil, fmt.Errorf("ping redis: %w", pingErr)
	}

	if logger != nil {
		logger.Info("redis connected", "addr", cfg.Addr)
	}

	return client, nil
}

// StorageResult holds the selected store plus the Redis client to close on
// shutdown, nil when the memory backend is active.
type StorageResult struct {
	Store storage.KV
	Redis redis.UniversalClient
}

// OpenStorage selects and opens the persistent key-value store. The memory
// backend is only honored in dev mode; production always gets Redis.
func OpenStorage(cfg *config.AppConfig, logger *slog.Logger) (StorageResult, error) {
	if cfg.Storage.Backend == config.StorageBackendMemory {
		if !cfg.IsDev {
			return StorageResult{}, errors.New("memory storage backend requires dev mode")
		}
		logger.Warn("using in-memory storage, session state will not survive a restart")
		return StorageResult{Store: storage.NewMemory()}, nil
	}

	client, err := ConnectRedis(cfg.Redis, logger)
	if err != nil {
		return StorageResult{}, err
	}
	return StorageResult{
		Store: storage.NewRedis(client, cfg.Redis.KeyPrefix),
		Redis: client,
	}, nil
}
