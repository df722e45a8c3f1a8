// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a real server only when TEST_REDIS_ADDR is set
func setupRedis(t *testing.T) *Redis {
	t.Helper()

	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	r, err := NewRedis(context.Background(), addr, os.Getenv("TEST_REDIS_PASSWORD"))
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestRedis_GetSetDelete(t *testing.T) {
	r := setupRedis(t)
	ctx := context.Background()
	key := "test:" + uuid.NewString()

	_, err := r.Get(ctx, key)
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, r.Set(ctx, key, []byte("v"), time.Minute))
	value, err := r.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), value)

	require.NoError(t, r.Delete(ctx, key))
	_, err = r.Get(ctx, key)
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedis_Incr(t *testing.T) {
	r := setupRedis(t)
	ctx := context.Background()
	key := "test:" + uuid.NewString()
	t.Cleanup(func() { r.Delete(ctx, key) })

	n, left, err := r.Incr(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Greater(t, left, time.Duration(0))

	n, _, err = r.Incr(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestNewRedis_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewRedis(ctx, "127.0.0.1:1", "")
	assert.Error(t, err)
}
