package rediscache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strokecovery/strokecovery-backend/internal/platform/logger"
)

func TestGetSetDelete(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := New(context.Background(), logger.Nop(), Config{Addr: mr.Addr(), Prefix: "t:"})
	require.NoError(t, err)
	defer c.Close()
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	assert.True(t, mr.Exists("t:k"))

	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", string(got))

	mr.FastForward(2 * time.Minute)
	_, ok, _ = c.Get(ctx, "k")
	assert.False(t, ok, "entry should expire with its ttl")

	require.NoError(t, c.Set(ctx, "k2", []byte("x"), 0))
	require.NoError(t, c.Delete(ctx, "k2"))
	assert.False(t, mr.Exists("t:k2"))
}

func TestNewFailsWithoutAddr(t *testing.T) {
	_, err := New(context.Background(), logger.Nop(), Config{})
	assert.Error(t, err)
}

func TestDefaultPrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	c := NewWithClient(logger.Nop(), goredis.NewClient(&goredis.Options{Addr: mr.Addr()}), "")
	require.NoError(t, c.Set(context.Background(), "a", []byte("1"), time.Minute))
	assert.True(t, mr.Exists("strokecovery:a"))
	require.NoError(t, c.Ping(context.Background()))
}
