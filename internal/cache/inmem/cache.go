// Package inmem provides a response cache that holds its entries in-memory
package inmem

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// ErrClosed is returned by all operations after the cache has been closed
var ErrClosed = errors.New("cache has been closed")

// cacheRequest is a generic request that can be sent over one of the cache's channels to execute functions inside the
// control goroutine
type cacheRequest struct {
	key    string
	value  []byte
	answer chan<- cacheResponse
}

// cacheResponse is the answer to a cache request
type cacheResponse struct {
	value []byte
	found bool
}

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Cache is a response cache that stores its entries in-memory. All entries are owned by a control goroutine.
type Cache struct {
	ttl   time.Duration
	clock func() time.Time
	// get is a channel to request an entry by key
	get chan<- cacheRequest
	// set is a channel to store an entry
	set chan<- cacheRequest
	// purge is a channel to request all entries to be removed
	purge chan<- cacheRequest
	// done is closed when the cache is shut down
	done      chan struct{}
	closeOnce sync.Once
}

// Option changes the configuration of a new cache
type Option func(c *Cache)

// WithClock replaces the clock used to determine expiry
func WithClock(clock func() time.Time) Option {
	return func(c *Cache) {
		c.clock = clock
	}
}

// New creates a new in-memory cache whose entries live for the given time
func New(ttl time.Duration, opts ...Option) *Cache {
	c := &Cache{
		ttl:   ttl,
		clock: time.Now,
		done:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	// Spin up the control goroutine
	g := make(chan cacheRequest)
	s := make(chan cacheRequest)
	p := make(chan cacheRequest)
	go c.control(g, s, p)
	c.get = g
	c.set = s
	c.purge = p
	return c
}

// control is the control goroutine that runs until the cache is closed, waiting for requests
func (c *Cache) control(get <-chan cacheRequest, set <-chan cacheRequest, purge <-chan cacheRequest) {
	entries := map[string]entry{}
	// Remove expired entries about once per TTL
	interval := c.ttl
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case req := <-get:
			e, ok := entries[req.key]
			if ok && !c.clock().Before(e.expiresAt) {
				delete(entries, req.key)
				ok = false
			}
			req.answer <- cacheResponse{value: e.value, found: ok}
		case req := <-set:
			entries[req.key] = entry{value: req.value, expiresAt: c.clock().Add(c.ttl)}
			req.answer <- cacheResponse{}
		case req := <-purge:
			entries = map[string]entry{}
			req.answer <- cacheResponse{}
		case <-ticker.C:
			now := c.clock()
			for key, e := range entries {
				if !now.Before(e.expiresAt) {
					delete(entries, key)
				}
			}
		case <-c.done:
			return
		}
	}
}

func (c *Cache) send(ctx context.Context, channel chan<- cacheRequest, key string, value []byte) (cacheResponse, error) {
	select {
	case <-c.done:
		return cacheResponse{}, ErrClosed
	default:
	}
	answer := make(chan cacheResponse, 1)
	select {
	case channel <- cacheRequest{key: key, value: value, answer: answer}:
	case <-c.done:
		return cacheResponse{}, ErrClosed
	case <-ctx.Done():
		return cacheResponse{}, ctx.Err()
	}
	return <-answer, nil
}

// Get returns the value stored under the given key
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	resp, err := c.send(ctx, c.get, key, nil)
	if err != nil {
		return nil, false, err
	}
	return resp.value, resp.found, nil
}

// Set stores a value under the given key
func (c *Cache) Set(ctx context.Context, key string, value []byte) error {
	stored := make([]byte, len(value))
	copy(stored, value)
	_, err := c.send(ctx, c.set, key, stored)
	return err
}

// Purge removes all entries
func (c *Cache) Purge(ctx context.Context) error {
	_, err := c.send(ctx, c.purge, "", nil)
	return err
}

// Close stops the control goroutine. The cache cannot be used afterwards.
func (c *Cache) Close() error {
	c.closeOnce.Do(func() { close(c.done) })
	return nil
}
