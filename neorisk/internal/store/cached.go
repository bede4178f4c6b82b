package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Krimson/neorisk-monitor/neorisk/internal/models"
)

const (
	historyCacheKey = "neorisk:history:entries"
	historyGenKey   = "neorisk:history:gen"
)

// cacheKey names the cached entry list for one generation.
func cacheKey(gen int64) string {
	return historyCacheKey + ":" + strconv.FormatInt(gen, 10)
}

// CachedStore serves List from Redis and invalidates it on every write.
// Redis failures are logged and the wrapped store is used directly.
//
// Cached lists are keyed by a generation counter that every write bumps, so
// a slow List that loaded rows before a write can only fill a generation no
// reader asks for again. A write whose bump fails leaves the old list
// visible for at most the TTL.
type CachedStore struct {
	next   HistoryStore
	client *redis.Client
	ttl    time.Duration
}

// NewCachedStore decorates next with a Redis-backed List cache.
func NewCachedStore(next HistoryStore, client *redis.Client, ttl time.Duration) *CachedStore {
	return &CachedStore{next: next, client: client, ttl: ttl}
}

// NewRedisClient connects and pings a Redis server.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return client, nil
}

func (c *CachedStore) Create(ctx context.Context, entry models.HistoryEntry) (string, error) {
	id, err := c.next.Create(ctx, entry)
	if err != nil {
		return "", err
	}
	c.invalidate(ctx)
	return id, nil
}

func (c *CachedStore) List(ctx context.Context) ([]models.HistoryEntry, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		log.Printf("[WARN] [STORE] Redis get failed, bypassing cache: %v", err)
		return c.next.List(ctx)
	}
	key := cacheKey(gen)

	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var entries []models.HistoryEntry
		if err := json.Unmarshal(data, &entries); err == nil {
			return entries, nil
		}
		log.Printf("[WARN] [STORE] Corrupt history cache, reloading: %v", err)
	case errors.Is(err, redis.Nil):
	default:
		log.Printf("[WARN] [STORE] Redis get failed, bypassing cache: %v", err)
	}

	entries, err := c.next.List(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(entries); err == nil {
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			log.Printf("[WARN] [STORE] Redis set failed: %v", err)
		}
	}
	return entries, nil
}

func (c *CachedStore) Delete(ctx context.Context, id string) error {
	if err := c.next.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

func (c *CachedStore) DeleteAll(ctx context.Context) (int, error) {
	n, err := c.next.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	c.invalidate(ctx)
	return n, nil
}

// Close closes the wrapped store and the Redis client.
func (c *CachedStore) Close() error {
	return errors.Join(c.next.Close(), c.client.Close())
}

// generation returns the current cache generation, zero before the first write.
func (c *CachedStore) generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, historyGenKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *CachedStore) invalidate(ctx context.Context) {
	if err := c.client.Incr(ctx, historyGenKey).Err(); err != nil {
		log.Printf("[WARN] [STORE] Failed to invalidate history cache: %v", err)
	}
}
