package cache

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/clinicdesk/pkg/logging"
)

const scanBatch = 100

// Redis is a shared cache backend. Keys are stored under a per-service
// prefix so two services never see each other's entries.
type Redis struct {
	client *redis.Client
	prefix string
	logger *logging.Logger
}

// NewRedis wraps client, namespacing every key under prefix.
func NewRedis(client *redis.Client, prefix string, logger *logging.Logger) *Redis {
	if logger == nil {
		logger = logging.Default()
	}
	prefix = strings.TrimSuffix(prefix, ":")
	if prefix == "" {
		prefix = "clinicdesk"
	}
	return &Redis{client: client, prefix: prefix + ":", logger: logger}
}

// Get degrades to a miss on any Redis error.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		r.logger.Warn("redis cache get failed", "key", key, "error", err)
		return nil, false
	}
	return val, true
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, r.prefix+key, value, effectiveTTL(ttl)).Err(); err != nil {
		r.logger.Warn("redis cache set failed", "key", key, "error", err)
		return err
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.prefix+key).Err()
}

// Clear scans the prefix for keys containing pattern and deletes them in
// batches.
func (r *Redis) Clear(ctx context.Context, pattern string) error {
	match := r.prefix + "*"
	if pattern != "" {
		match = r.prefix + "*" + escapeGlob(pattern) + "*"
	}

	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, match, scanBatch).Result()
		if err != nil {
			r.logger.Warn("redis cache scan failed", "pattern", pattern, "error", err)
			return err
		}
		if len(keys) > 0 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
