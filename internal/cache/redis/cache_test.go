package redis

import (
	"context"
	"io"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestCache connects to the server named in FYYUR_TEST_REDIS_ADDR or skips the test
func newTestCache(t *testing.T) *Cache {
	addr := os.Getenv("FYYUR_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("FYYUR_TEST_REDIS_ADDR not set")
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	c, err := New(context.Background(), NewClient(addr, "", 0), "fyyur-test:"+uuid.NewString()+":", time.Minute, logrus.NewEntry(l))
	require.NoError(t, err)
	t.Cleanup(func() {
		c.Purge(context.Background())
		c.Close()
	})
	return c
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t)

	_, found, err := c.Get(ctx, "/venues")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, "/venues", []byte("venues")))
	require.NoError(t, c.Set(ctx, "/artists", []byte("artists")))
	got, found, err := c.Get(ctx, "/venues")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "venues", string(got))

	ttl, err := c.client.TTL(ctx, c.prefix+"/venues").Result()
	require.NoError(t, err)
	assert.True(t, ttl > 0 && ttl <= time.Minute)

	require.NoError(t, c.Purge(ctx))
	_, found, err = c.Get(ctx, "/artists")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestNewFailsWithoutServer(t *testing.T) {
	client := NewClient("127.0.0.1:1", "", 0)
	defer client.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := New(ctx, client, "x:", time.Minute, logrus.NewEntry(logrus.New()))
	assert.Error(t, err)
}
