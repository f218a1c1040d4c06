package cache

import (
	"context"
	"fmt"
	"time"

	"agenda/internal/logger"

	"github.com/go-redis/redis/v8"
)

const keyPrefix = "agenda:"

// Redis caches lookup results. Entries expire after TTL and are purged
// wholesale after every import.
type Redis struct {
	Client *redis.Client
	TTL    time.Duration
	Logger *logger.Logger
}

func NewRedis(client *redis.Client, ttl time.Duration, log *logger.Logger) *Redis {
	if log == nil {
		log = logger.Discard()
	}
	return &Redis{Client: client, TTL: ttl, Logger: log}
}

// Connect dials addr and verifies the server answers.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection error: %w", err)
	}
	return client, nil
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := r.Client.Get(ctx, keyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	return r.Client.Set(ctx, keyPrefix+key, value, r.TTL).Err()
}

// Purge deletes every cached entry and returns how many were removed.
func (r *Redis) Purge(ctx context.Context) (int, error) {
	var cursor uint64
	removed := 0
	for {
		keys, next, err := r.Client.Scan(ctx, cursor, keyPrefix+"*", 100).Result()
		if err != nil {
			return removed, err
		}
		if len(keys) > 0 {
			n, err := r.Client.Del(ctx, keys...).Result()
			if err != nil {
				return removed, err
			}
			removed += int(n)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	r.Logger.Info("CACHE", fmt.Sprintf("Purged %d cached lookups", removed))
	return removed, nil
}
