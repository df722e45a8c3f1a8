// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package cache provides a small key/value cache with expiry, backed by
// Redis or by process memory.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Get when the key is absent or expired
var ErrMiss = errors.New("cache miss")

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// Incr increments a counter, starting its ttl window on first use,
	// and returns the new value with the time left in the window.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, time.Duration, error)
	Close() error
}
