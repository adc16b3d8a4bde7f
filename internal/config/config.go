// Package config provides application configuration.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Credential backends for the durable token scope.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Config holds all application configuration.
type Config struct {
	Port              string
	FrontendURL       string
	APIBaseURL        string
	APITimeout        time.Duration
	DBPath            string
	CredentialBackend string // "sqlite" (default) or "redis"
	RedisAddr         string
	VocabularyPath    string // optional YAML vocabulary for the intent classifier
	MaxRequestBody    int64
	ChatLog           ChatLogConfig
	ChatRateLimit     RateLimitConfig
}

// ChatLogConfig controls NDJSON chat transcript logging.
type ChatLogConfig struct {
	Enabled   bool
	Dir       string
	QueueSize int
}

// RateLimitConfig bounds chat submissions per client IP.
type RateLimitConfig struct {
	RequestsPerWindow int
	WindowDuration    time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	queueSize := getEnvInt("CHAT_LOG_QUEUE_SIZE", 1000)
	if queueSize <= 0 {
		queueSize = 1000
	}

	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		FrontendURL:       getEnv("FRONTEND_URL", ""),
		APIBaseURL:        strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:5000"), "/"),
		APITimeout:        getEnvDuration("API_TIMEOUT", 10*time.Second),
		DBPath:            getEnv("DB_PATH", "./data/propdash.db"),
		CredentialBackend: strings.ToLower(getEnv("CREDENTIAL_BACKEND", BackendSQLite)),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		VocabularyPath:    getEnv("INTENT_VOCABULARY_PATH", ""),
		MaxRequestBody:    int64(getEnvInt("MAX_REQUEST_BODY", 1<<20)),
		ChatLog: ChatLogConfig{
			Enabled:   getEnvBool("CHAT_LOG_ENABLED", false),
			Dir:       getEnv("CHAT_LOG_DIR", "./data/logs/chat"),
			QueueSize: queueSize,
		},
		ChatRateLimit: RateLimitConfig{
			RequestsPerWindow: getEnvInt("CHAT_RATE_LIMIT", 20),
			WindowDuration:    getEnvDuration("CHAT_RATE_WINDOW", time.Minute),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.APIBaseURL == "" {
		return fmt.Errorf("API_BASE_URL cannot be empty")
	}
	if u, err := url.Parse(c.APIBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("API_BASE_URL must be an absolute URL, got %q", c.APIBaseURL)
	}
	if c.APITimeout <= 0 {
		return fmt.Errorf("API_TIMEOUT must be > 0")
	}
	switch c.CredentialBackend {
	case BackendSQLite:
		if c.DBPath == "" {
			return fmt.Errorf("DB_PATH cannot be empty")
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR cannot be empty when CREDENTIAL_BACKEND=redis")
		}
	default:
		return fmt.Errorf("CREDENTIAL_BACKEND must be %q or %q, got %q", BackendSQLite, BackendRedis, c.CredentialBackend)
	}
	if c.MaxRequestBody <= 0 {
		return fmt.Errorf("MAX_REQUEST_BODY must be > 0")
	}
	if c.ChatLog.Enabled && c.ChatLog.Dir == "" {
		return fmt.Errorf("CHAT_LOG_DIR cannot be empty")
	}
	if c.ChatLog.QueueSize <= 0 {
		return fmt.Errorf("CHAT_LOG_QUEUE_SIZE must be > 0")
	}
	if c.ChatRateLimit.RequestsPerWindow <= 0 || c.ChatRateLimit.WindowDuration <= 0 {
		return fmt.Errorf("CHAT_RATE_LIMIT and CHAT_RATE_WINDOW must be > 0")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

// AllowedOrigins returns the CORS origins for the local API.
func (c *Config) AllowedOrigins() []string {
	if c.IsDevelopment() {
		return []string{"*"}
	}
	return []string{c.FrontendURL}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

// getEnvDuration accepts Go durations ("10s") or plain seconds ("10").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	value = strings.TrimSpace(value)
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if n, err := strconv.Atoi(value); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}
