package config

import (
	"errors"
	"sync"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	AppPort               int    `mapstructure:"APP_PORT"`
	LogLevel              string `mapstructure:"LOG_LEVEL"`
	LogFormat             string `mapstructure:"LOG_FORMAT"`
	KVBackend             string `mapstructure:"KV_BACKEND"`
	RedisURL              string `mapstructure:"REDIS_URL"`
	KVNamespace           string `mapstructure:"KV_NAMESPACE"`
	GeminiAPIKey          string `mapstructure:"GEMINI_API_KEY"`
	GeminiModel           string `mapstructure:"GEMINI_MODEL"`
	GeminiBaseURL         string `mapstructure:"GEMINI_BASE_URL"`
	GeminiTimeoutSec      int    `mapstructure:"GEMINI_TIMEOUT_SEC"`
	EnrichCacheTTLMin     int    `mapstructure:"ENRICH_CACHE_TTL_MIN"`
	EnrichRatePerMin      int    `mapstructure:"ENRICH_RATE_PER_MIN"`
	WSOutboxBuffer        int    `mapstructure:"WS_OUTBOX_BUFFER"`
	WSMaxSessionSec       int    `mapstructure:"WS_MAX_SESSION_SEC"`
	RouteMetricsEnabled   bool   `mapstructure:"ROUTE_METRICS_ENABLED"`
	RequestLoggingEnabled bool   `mapstructure:"REQUEST_LOGGING_ENABLED"`
}

var (
	cachedConfig *Config
	configMutex  sync.RWMutex
)

// Load loads configuration from environment variables and .env file
// It caches the result for subsequent calls
func Load() (Config, error) {
	configMutex.RLock()
	if cachedConfig != nil {
		defer configMutex.RUnlock()
		return *cachedConfig, nil
	}
	configMutex.RUnlock()

	configMutex.Lock()
	defer configMutex.Unlock()

	// Double-check in case another goroutine loaded it while we waited for the lock
	if cachedConfig != nil {
		return *cachedConfig, nil
	}

	v := viper.New()

	// Set defaults
	v.SetDefault("APP_PORT", 8080)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("KV_BACKEND", "redis")
	v.SetDefault("REDIS_URL", "redis://redis:6379/0")
	v.SetDefault("KV_NAMESPACE", "knote")
	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("GEMINI_MODEL", "gemini-1.5-flash")
	v.SetDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1")
	v.SetDefault("GEMINI_TIMEOUT_SEC", 60)
	v.SetDefault("ENRICH_CACHE_TTL_MIN", 60)
	v.SetDefault("ENRICH_RATE_PER_MIN", 20)
	v.SetDefault("WS_OUTBOX_BUFFER", 256) // WebSocket channel buffer size
	v.SetDefault("WS_MAX_SESSION_SEC", 900)
	v.SetDefault("ROUTE_METRICS_ENABLED", true)
	v.SetDefault("REQUEST_LOGGING_ENABLED", false)

	// Configure Viper to read from .env file (if present)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")

	// Try to read .env file (it's okay if it doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, err
		}
	}

	// Override with OS environment variables
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	// Cache the configuration
	cachedConfig = &cfg

	return cfg, nil
}

// ResetCache clears the cached configuration (for testing purposes)
func ResetCache() {
	configMutex.Lock()
	defer configMutex.Unlock()
	cachedConfig = nil
}

// Validate checks if required configuration fields are properly set
func (c Config) Validate() error {
	if c.AppPort <= 0 {
		return errors.New("APP_PORT must be greater than 0")
	}
	if c.LogLevel == "" {
		return errors.New("LOG_LEVEL cannot be empty")
	}
	if c.LogFormat == "" {
		return errors.New("LOG_FORMAT cannot be empty")
	}
	switch c.KVBackend {
	case "redis", "memory":
		// Valid backends
	default:
		return errors.New("KV_BACKEND must be either redis or memory")
	}
	if c.KVBackend == "redis" && c.RedisURL == "" {
		return errors.New("REDIS_URL cannot be empty when KV_BACKEND is redis")
	}
	if c.KVNamespace == "" {
		return errors.New("KV_NAMESPACE cannot be empty")
	}
	if c.GeminiModel == "" {
		return errors.New("GEMINI_MODEL cannot be empty")
	}
	if c.GeminiBaseURL == "" {
		return errors.New("GEMINI_BASE_URL cannot be empty")
	}
	if c.GeminiTimeoutSec <= 0 {
		return errors.New("GEMINI_TIMEOUT_SEC must be greater than 0")
	}
	if c.EnrichCacheTTLMin <= 0 {
		return errors.New("ENRICH_CACHE_TTL_MIN must be greater than 0")
	}
	if c.EnrichRatePerMin < 1 {
		return errors.New("ENRICH_RATE_PER_MIN must be greater than or equal to 1")
	}
	if c.WSOutboxBuffer <= 0 {
		return errors.New("WS_OUTBOX_BUFFER must be greater than 0")
	}
	if c.WSMaxSessionSec <= 0 {
		return errors.New("WS_MAX_SESSION_SEC must be greater than 0")
	}
	return nil
}
