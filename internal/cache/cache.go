// Package cache provides the time-bounded key-value store that shields the
// GitHub client from duplicate reads.
package cache

import (
	"context"
	"encoding/json"
	"time"

	logger "github.com/sirupsen/logrus"
)

// DefaultTTL is how long upstream payloads stay fresh
const DefaultTTL = time.Hour

// Cache is a key-value store with per-entry expiration.
//
// Get never fails: a missing, expired or unreadable entry is reported as
// (nil, false). Values are opaque bytes, so a stored JSON "null" is a present
// value and distinct from absence.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	// Put stores value until ttl elapses. ttl <= 0 means the backend default.
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Close() error
}

// Janitor is implemented by backends that can drop expired entries in the
// background
type Janitor interface {
	StartJanitor(ctx context.Context, interval time.Duration)
}

// GetJSON decodes the entry under key into v. Entries that no longer decode
// are dropped and reported as a miss.
func GetJSON(ctx context.Context, c Cache, key string, v any) bool {
	data, ok := c.Get(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		logger.Warnf("[cache] dropping undecodable entry %q: %v", key, err)
		_ = c.Del(ctx, key)
		return false
	}
	return true
}

// PutJSON encodes v and stores it under key
func PutJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Put(ctx, key, data, ttl)
}
