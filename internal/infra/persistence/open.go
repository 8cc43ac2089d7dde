package persistence

import (
	"context"
	"fmt"
	"strings"

	"example.com/storefront/internal/infra/persistence/memory"
	"example.com/storefront/internal/infra/persistence/mysql"
	"example.com/storefront/internal/infra/persistence/postgres"
	"example.com/storefront/internal/infra/persistence/redis"
	"example.com/storefront/internal/infra/persistence/sqlite"
	"example.com/storefront/pkg/config"
)

// Open connects the backend selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StorageConfig) (Backend, error) {
	var (
		backend Backend
		err     error
	)
	switch strings.ToLower(cfg.Driver) {
	case config.StorageMemory:
		backend = memory.NewStore()
	case config.StorageSQLite:
		var s *sqlite.Store
		if s, err = sqlite.Open(cfg.Path); err == nil {
			backend = s
		}
	case config.StorageMySQL:
		var s *mysql.KVStore
		if s, err = mysql.Open(ctx, cfg.DSN); err == nil {
			backend = s
		}
	case config.StoragePostgres:
		var s *postgres.KVStore
		if s, err = postgres.Open(ctx, cfg.DSN); err == nil {
			backend = s
		}
	case config.StorageRedis:
		var s *redis.Store
		if s, err = redis.Open(ctx, cfg.RedisURL, cfg.KeyPrefix); err == nil {
			backend = s
		}
	default:
		err = fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.Driver, err)
	}
	return backend, nil
}
