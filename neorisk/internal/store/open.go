package store

import (
	"context"
	"fmt"
	"log"

	"github.com/Krimson/neorisk-monitor/neorisk/internal/config"
)

// Open builds the configured backend and wraps it with the Redis cache when
// an address is set. An unreachable Redis only disables the cache.
func Open(ctx context.Context, cfg *config.Config) (HistoryStore, error) {
	var base HistoryStore
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		s, err := NewPostgresStoreFromDSN(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		base = s
	case config.DriverSQLite:
		s, err := NewSQLiteStore(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		base = s
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}

	if cfg.RedisAddr == "" {
		return base, nil
	}

	client, err := NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Printf("[WARN] [STORE] History cache disabled: %v", err)
		return base, nil
	}
	log.Printf("[INFO] [STORE] History cache enabled: redis=%s ttl=%s", cfg.RedisAddr, cfg.HistoryCacheTTL())
	return NewCachedStore(base, client, cfg.HistoryCacheTTL()), nil
}
