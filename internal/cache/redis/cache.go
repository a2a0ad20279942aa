// Package redis provides a response cache that stores its entries inside a Redis server
package redis

import (
	"context"
	"time"

	"github.com/pkg/errors"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/derWhity/fyyur/internal/log"
)

// Number of keys fetched per SCAN round trip when purging
const scanBatch = 100

// Cache is a response cache backed by Redis. All keys are stored below a common prefix.
type Cache struct {
	client *goredis.Client
	prefix string
	ttl    time.Duration
	logger *logrus.Entry
}

// NewClient creates a Redis client for the given server
func NewClient(addr, password string, db int) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
}

// New creates a new cache on the given client. The client is checked with a PING before it is used.
func New(ctx context.Context, client *goredis.Client, prefix string, ttl time.Duration, logger *logrus.Entry) (*Cache, error) {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, errors.Wrap(err, "New: Redis ping failed")
	}
	return &Cache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		logger: logger,
	}, nil
}

// Get returns the value stored under the given key
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err == goredis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "Get: Failed to read from Redis")
	}
	return val, true, nil
}

// Set stores a value under the given key
func (c *Cache) Set(ctx context.Context, key string, value []byte) error {
	return errors.Wrap(c.client.Set(ctx, c.prefix+key, value, c.ttl).Err(), "Set: Failed to write to Redis")
}

// Purge removes all keys below the cache's prefix
func (c *Cache) Purge(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, c.prefix+"*", scanBatch).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return errors.Wrap(err, "Purge: Failed to scan keys")
	}
	if len(keys) == 0 {
		return nil
	}
	c.logger.WithField(log.FldCacheKey, c.prefix+"*").Debugf("Purging %d cached responses", len(keys))
	return errors.Wrap(c.client.Del(ctx, keys...).Err(), "Purge: Failed to delete keys")
}

// Close closes the underlying client
func (c *Cache) Close() error {
	return c.client.Close()
}
