// Package bootstrap builds the shared infrastructure the binaries wire into
// clinicdesk.New: the Redis client, per-service caches and the export
// uploader.
package bootstrap

import (
	"context"
	"crypto/tls"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/clinicdesk/internal/cache"
	appconfig "github.com/wolfman30/clinicdesk/internal/config"
	"github.com/wolfman30/clinicdesk/internal/export"
	"github.com/wolfman30/clinicdesk/pkg/logging"
)

// CacheFactory returns the cache for one service namespace.
type CacheFactory func(namespace string) cache.Cache

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || cfg.CacheBackend != "redis" || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available, using in-memory caches", "addr", cfg.RedisAddr, "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildCacheFactory gives every service its own cache: a Redis keyspace
// "clinicdesk:<namespace>:" when client is set, otherwise a private in-memory
// map. Services never share a cache instance.
func BuildCacheFactory(client *redis.Client, logger *logging.Logger) CacheFactory {
	if logger == nil {
		logger = logging.Default()
	}
	if client == nil {
		return func(string) cache.Cache { return cache.NewMemory() }
	}
	return func(namespace string) cache.Cache {
		return cache.NewRedis(client, "clinicdesk:"+namespace, logger.Component("cache"))
	}
}

// BuildExportUploader returns the S3 archive for report exports, or nil when
// EXPORT_BUCKET is unset. A configured endpoint override (LocalStack) needs
// path-style addressing.
func BuildExportUploader(awsCfg aws.Config, cfg *appconfig.Config, logger *logging.Logger) *export.S3Uploader {
	if cfg == nil || strings.TrimSpace(cfg.ExportBucket) == "" {
		return nil
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.AWSEndpointOverride != "" {
			o.BaseEndpoint = aws.String(cfg.AWSEndpointOverride)
			o.UsePathStyle = true
		}
	})
	return export.NewS3Uploader(client, cfg.ExportBucket, logger)
}
