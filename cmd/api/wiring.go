package main

import (
	"fmt"

	"github.com/angelmondragon/ecofinds-backend/internal/cart"
	"github.com/angelmondragon/ecofinds-backend/pkg/config"
	"github.com/angelmondragon/ecofinds-backend/pkg/db"
	"github.com/angelmondragon/ecofinds-backend/pkg/redis"
)

// buildPersister selects the cart snapshot backend named in config.
func buildPersister(cfg config.CartConfig, dbClient *db.Client, redisClient *redis.Client) (cart.Persister, error) {
	switch cfg.NormalizedBackend() {
	case config.CartBackendRedis:
		if redisClient == nil {
			return nil, fmt.Errorf("redis cart backend requires a redis client")
		}
		return cart.NewRedisPersister(redisClient, cfg.SnapshotTTL)
	case config.CartBackendDB:
		if dbClient == nil {
			return nil, fmt.Errorf("db cart backend requires a database client")
		}
		return cart.NewDBPersister(dbClient.DB())
	case config.CartBackendMemory:
		return cart.NewMemoryPersister(), nil
	default:
		return nil, fmt.Errorf("unknown cart backend %q", cfg.Backend)
	}
}
