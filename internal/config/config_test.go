package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("CLINIC_API_URL", "")
	t.Setenv("CLINIC_API_TIMEOUT", "")
	t.Setenv("CACHE_BACKEND", "")
	t.Setenv("CACHE_TTL", "")
	t.Setenv("CORS_ORIGINS", "")
	t.Setenv("EXPORT_BUCKET", "")
	cfg := Load()
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.APIBaseURL != "http://localhost:8080" {
		t.Fatalf("expected default api url, got %s", cfg.APIBaseURL)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Fatalf("expected 30s timeout, got %s", cfg.RequestTimeout)
	}
	if cfg.CacheBackend != "memory" {
		t.Fatalf("expected memory cache, got %s", cfg.CacheBackend)
	}
	if cfg.CacheTTL != 5*time.Minute {
		t.Fatalf("expected 5m cache ttl, got %s", cfg.CacheTTL)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Fatalf("expected wildcard cors, got %v", cfg.CORSOrigins)
	}
	if !strings.HasSuffix(cfg.TokenFile, "storage.json") {
		t.Fatalf("unexpected token file %s", cfg.TokenFile)
	}
	if cfg.ExportBucket != "" {
		t.Fatalf("expected export archive disabled, got %s", cfg.ExportBucket)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CLINIC_API_URL", "https://api.bodybliss.test/")
	t.Setenv("CLINIC_API_TIMEOUT", "5s")
	t.Setenv("CACHE_BACKEND", " Redis ")
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("REDIS_TLS", "true")
	t.Setenv("CORS_ORIGINS", "https://a.test, https://b.test,")
	t.Setenv("EXPORT_BUCKET", "clinic-exports")
	cfg := Load()
	if cfg.Env != "production" {
		t.Fatalf("expected env override, got %s", cfg.Env)
	}
	if cfg.APIBaseURL != "https://api.bodybliss.test" {
		t.Fatalf("expected trailing slash trimmed, got %s", cfg.APIBaseURL)
	}
	if cfg.RequestTimeout != 5*time.Second {
		t.Fatalf("expected timeout override, got %s", cfg.RequestTimeout)
	}
	if cfg.CacheBackend != "redis" {
		t.Fatalf("expected normalized backend, got %q", cfg.CacheBackend)
	}
	if cfg.CacheTTL != 90*time.Second {
		t.Fatalf("expected ttl override, got %s", cfg.CacheTTL)
	}
	if !cfg.RedisTLS {
		t.Fatalf("expected redis tls enabled")
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Fatalf("expected two origins, got %v", cfg.CORSOrigins)
	}
	if cfg.ExportBucket != "clinic-exports" {
		t.Fatalf("expected bucket override, got %s", cfg.ExportBucket)
	}
}

func TestDevBackendSettings(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("MOCK_LATENCY", "250ms")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("RATE_LIMIT_BURST", "nope")
	cfg := Load()
	if cfg.JWTSecret != "s3cret" {
		t.Fatalf("expected jwt secret, got %q", cfg.JWTSecret)
	}
	if cfg.MockLatency != 250*time.Millisecond {
		t.Fatalf("expected latency override, got %s", cfg.MockLatency)
	}
	if cfg.RateLimitRPS != 2.5 {
		t.Fatalf("expected rate override, got %v", cfg.RateLimitRPS)
	}
	if cfg.RateLimitBurst != 40 {
		t.Fatalf("expected default burst, got %d", cfg.RateLimitBurst)
	}
}

func TestInvalidDurationFallsBack(t *testing.T) {
	t.Setenv("CLINIC_API_TIMEOUT", "soon")
	if got := Load().RequestTimeout; got != 30*time.Second {
		t.Fatalf("expected default timeout, got %s", got)
	}
}

func TestBasePathReadPerCall(t *testing.T) {
	t.Setenv("CLINIC_API_BASE_PATH", "")
	if got := BasePath(); got != "/api/v1" {
		t.Fatalf("expected default base path, got %s", got)
	}
	t.Setenv("CLINIC_API_BASE_PATH", "api/v2/")
	if got := BasePath(); got != "/api/v2" {
		t.Fatalf("expected normalized base path, got %s", got)
	}
}
