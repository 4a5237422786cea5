package configs

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Upstream  UpstreamConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Proxy     ProxyConfig
	Redis     RedisConfig
	Log       LogConfig
}

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	TLSCertFile  string
	TLSKeyFile   string
}

type UpstreamConfig struct {
	// APIKey is deliberately optional at startup: a missing credential
	// surfaces as a 503 at request time, never as a startup crash or an
	// error detail leaked to callers.
	APIKey            string
	BaseURL           string
	Model             string
	ModerationModel   string
	MaxTokens         int
	Timeout           time.Duration
	RetryAttempts     int
	RetryBaseDelay    time.Duration
	MaxQuestionLength int
}

type RateLimitConfig struct {
	MaxRequests   int
	Window        time.Duration
	Backend       string // memory or redis
	KeyPrefix     string
	SweepInterval time.Duration
}

type CacheConfig struct {
	Enabled    bool
	TTL        time.Duration
	MaxEntries int
	Backend    string // memory or redis
}

type ProxyConfig struct {
	// Targets maps a target name to its upstream base URL,
	// parsed from PROXY_TARGETS ("name=url,name2=url2").
	Targets  map[string]string
	Timeout  time.Duration
	CacheTTL time.Duration
}

type RedisConfig struct {
	Host         string
	Port         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type LogConfig struct {
	Level  string
	Format string // json or text
}

func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getDurationEnv("SERVER_IDLE_TIMEOUT", 120*time.Second),
			TLSCertFile:  getEnv("TLS_CERT_FILE", ""),
			TLSKeyFile:   getEnv("TLS_KEY_FILE", ""),
		},
		Upstream: UpstreamConfig{
			APIKey:            getEnv("UPSTREAM_API_KEY", ""),
			BaseURL:           getEnv("UPSTREAM_BASE_URL", "https://api.openai.com/v1"),
			Model:             getEnv("UPSTREAM_MODEL", "gpt-4o-mini"),
			ModerationModel:   getEnv("UPSTREAM_MODERATION_MODEL", ""),
			MaxTokens:         getIntEnv("UPSTREAM_MAX_TOKENS", 256),
			Timeout:           getDurationEnv("UPSTREAM_TIMEOUT", 30*time.Second),
			RetryAttempts:     getIntEnv("UPSTREAM_RETRY_ATTEMPTS", 3),
			RetryBaseDelay:    getDurationEnv("UPSTREAM_RETRY_BASE_DELAY", 500*time.Millisecond),
			MaxQuestionLength: getIntEnv("MAX_QUESTION_LENGTH", 500),
		},
		RateLimit: RateLimitConfig{
			MaxRequests:   getIntEnv("RATE_LIMIT_MAX_REQUESTS", 10),
			Window:        getDurationEnv("RATE_LIMIT_WINDOW", time.Minute),
			Backend:       getEnv("RATE_LIMIT_BACKEND", "memory"),
			KeyPrefix:     getEnv("RATE_LIMIT_KEY_PREFIX", "ratelimit:ip"),
			SweepInterval: getDurationEnv("RATE_LIMIT_SWEEP_INTERVAL", 5*time.Minute),
		},
		Cache: CacheConfig{
			Enabled:    getBoolEnv("CACHE_ENABLED", true),
			TTL:        getDurationEnv("CACHE_TTL", time.Hour),
			MaxEntries: getIntEnv("CACHE_MAX_ENTRIES", 1000),
			Backend:    getEnv("CACHE_BACKEND", "memory"),
		},
		Proxy: ProxyConfig{
			Targets:  parseTargets(getEnv("PROXY_TARGETS", "")),
			Timeout:  getDurationEnv("PROXY_TIMEOUT", 10*time.Second),
			CacheTTL: getDurationEnv("PROXY_CACHE_TTL", 5*time.Minute),
		},
		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnv("REDIS_PORT", "6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getIntEnv("REDIS_DB", 0),
			PoolSize:     getIntEnv("REDIS_POOL_SIZE", 10),
			MinIdleConns: getIntEnv("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDurationEnv("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDurationEnv("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDurationEnv("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	return cfg, nil
}

// parseTargets parses "name=url,name2=url2" into a target map.
// Malformed segments are skipped.
func parseTargets(raw string) map[string]string {
	targets := make(map[string]string)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, url, ok := strings.Cut(part, "=")
		name = strings.TrimSpace(name)
		url = strings.TrimSpace(url)
		if !ok || name == "" || url == "" {
			continue
		}
		targets[name] = url
	}
	return targets
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
