// Package cache holds the read-through response caches used by the domain
// services. Every service owns its own instance.
package cache

import (
	"context"
	"time"
)

// DefaultTTL applies when Set is called with a non-positive ttl.
const DefaultTTL = 5 * time.Minute

// Cache stores encoded response payloads by key.
type Cache interface {
	// Get returns the value while it is fresh. Expired entries are evicted
	// and reported as a miss.
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// Clear drops every entry whose key contains pattern, or every entry
	// when pattern is empty.
	Clear(ctx context.Context, pattern string) error
}

func effectiveTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return DefaultTTL
	}
	return ttl
}
