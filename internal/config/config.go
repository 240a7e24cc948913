package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Common
	Env      string
	LogLevel string
	// API
	Port        string
	DatabaseURL string
	APIKey      string
	// Brapi
	BrapiBaseURL string
	BrapiToken   string
	// Collector pacing
	BatchSize         int
	RetryAttempts     int
	RetryDelay        time.Duration
	RateLimitDelay    time.Duration
	MinRequestSpacing time.Duration
	BatchPause        time.Duration
	RequestTimeout    time.Duration
	// Instruments file
	InstrumentsPath string
	// Redis (latest-closings cache)
	CacheBackend  string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoiDef(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func durMS(key string, defMS int) time.Duration {
	return time.Duration(atoiDef(getEnv(key, strconv.Itoa(defMS)), defMS)) * time.Millisecond
}

// Load reads environment variables and applies defaults.
func Load() Config {
	return Config{
		Env:               getEnv("ENV", "local"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		Port:              getEnv("PORT", "3001"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		APIKey:            getEnv("API_KEY", ""),
		BrapiBaseURL:      getEnv("BRAPI_BASE_URL", "https://brapi.dev/api"),
		BrapiToken:        getEnv("BRAPI_API_KEY", "demo"),
		BatchSize:         atoiDef(getEnv("BATCH_SIZE", "5"), 5),
		RetryAttempts:     atoiDef(getEnv("RETRY_ATTEMPTS", "3"), 3),
		RetryDelay:        durMS("RETRY_DELAY_MS", 2000),
		RateLimitDelay:    durMS("RATE_LIMIT_DELAY_MS", 5000),
		MinRequestSpacing: durMS("MIN_REQUEST_INTERVAL_MS", 1000),
		BatchPause:        durMS("BATCH_PAUSE_MS", 3000),
		RequestTimeout:    durMS("REQUEST_TIMEOUT_MS", 10000),
		InstrumentsPath:   getEnv("CONFIG_PATH", "config.json"),
		CacheBackend:      getEnv("CACHE_BACKEND", "redis"),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisDB:           atoiDef(getEnv("REDIS_DB", "0"), 0),
		CacheTTL:          durMS("CACHE_TTL_MS", 60000),
	}
}
