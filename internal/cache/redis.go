package cache

import (
	"context"
	"errors"
	"time"

	"github.com/joshhsoj1902/retro-stats-exporter/internal/logger"
	"github.com/redis/go-redis/v9"
)

const opTimeout = 2 * time.Second

// Store is the small key/value surface the rest of the service relies on
type Store interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration)
	Delete(key string)
}

type Cache struct {
	client *redis.Client
	prefix string
}

func New(addr string, password string, db int) *Cache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &Cache{
		client: client,
		prefix: "retro:",
	}
}

// Ping checks that the server is reachable
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close the Redis connection
func (c *Cache) Close() error {
	return c.client.Close()
}

// Get retrieves a value from cache by key
func (c *Cache) Get(key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Log.WithError(err).WithField("key", key).Warn("Redis get failed")
		}
		return nil, false
	}
	return data, true
}

// Set stores a value in cache with TTL; a zero TTL keeps the key forever
func (c *Cache) Set(key string, value []byte, ttl time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if err := c.client.Set(ctx, c.prefix+key, value, ttl).Err(); err != nil {
		logger.Log.WithError(err).WithField("key", key).Warn("Redis set failed")
	}
}

// Delete removes a key from cache
func (c *Cache) Delete(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if err := c.client.Del(ctx, c.prefix+key).Err(); err != nil {
		logger.Log.WithError(err).WithField("key", key).Warn("Redis delete failed")
	}
}
