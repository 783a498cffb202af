package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultBasePath is the API prefix used when CLINIC_API_BASE_PATH is unset.
const DefaultBasePath = "/api/v1"

// Config holds application configuration
type Config struct {
	Env      string
	LogLevel string

	// Backend API
	APIBaseURL     string
	RequestTimeout time.Duration
	TokenFile      string

	// Response cache
	CacheBackend  string
	CacheTTL      time.Duration
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// Development backend
	Port           string
	CORSOrigins    []string
	JWTSecret      string
	MockLatency    time.Duration
	RateLimitRPS   float64
	RateLimitBurst int

	// Export archive
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string
	ExportBucket        string
}

// Load reads configuration from environment variables. A .env file in the
// working directory is applied first when present; real environment
// variables win over it.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		APIBaseURL:     strings.TrimSuffix(getEnv("CLINIC_API_URL", "http://localhost:8080"), "/"),
		RequestTimeout: getEnvAsDuration("CLINIC_API_TIMEOUT", 30*time.Second),
		TokenFile:      getEnv("CLINIC_TOKEN_FILE", defaultTokenFile()),

		CacheBackend:  strings.ToLower(strings.TrimSpace(getEnv("CACHE_BACKEND", "memory"))),
		CacheTTL:      getEnvAsDuration("CACHE_TTL", 5*time.Minute),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "*")),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		MockLatency: getEnvAsDuration("MOCK_LATENCY", 0),

		RateLimitRPS:   getEnvAsFloat("RATE_LIMIT_RPS", 20),
		RateLimitBurst: getEnvAsInt("RATE_LIMIT_BURST", 40),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
		ExportBucket:        getEnv("EXPORT_BUCKET", ""),
	}
}

// BasePath returns the API path prefix. It is read on every call so a
// changed environment takes effect without rebuilding clients.
func BasePath() string {
	return "/" + strings.Trim(getEnv("CLINIC_API_BASE_PATH", DefaultBasePath), "/")
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "clinicdesk", "storage.json")
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
