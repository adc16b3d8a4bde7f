package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("API_BASE_URL", "http://api.example.test/")
	t.Setenv("CREDENTIAL_BACKEND", "sqlite")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://api.example.test", cfg.APIBaseURL)
	assert.Equal(t, 10*time.Second, cfg.APITimeout)
	assert.Equal(t, BackendSQLite, cfg.CredentialBackend)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins())
}

func TestLoadDurationForms(t *testing.T) {
	t.Setenv("API_TIMEOUT", "3")
	t.Setenv("CHAT_RATE_WINDOW", "90s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, cfg.APITimeout)
	assert.Equal(t, 90*time.Second, cfg.ChatRateLimit.WindowDuration)
}

func TestValidateRejects(t *testing.T) {
	base := func() *Config {
		return &Config{
			Port:              "8080",
			APIBaseURL:        "http://localhost:5000",
			APITimeout:        time.Second,
			DBPath:            "x.db",
			CredentialBackend: BackendSQLite,
			MaxRequestBody:    1024,
			ChatLog:           ChatLogConfig{QueueSize: 1},
			ChatRateLimit:     RateLimitConfig{RequestsPerWindow: 1, WindowDuration: time.Second},
		}
	}
	require.NoError(t, base().Validate())

	cases := map[string]func(c *Config){
		"relative api url": func(c *Config) { c.APIBaseURL = "/api" },
		"zero timeout":     func(c *Config) { c.APITimeout = 0 },
		"unknown backend":  func(c *Config) { c.CredentialBackend = "etcd" },
		"redis no addr":    func(c *Config) { c.CredentialBackend = BackendRedis; c.RedisAddr = "" },
		"log without dir":  func(c *Config) { c.ChatLog.Enabled = true; c.ChatLog.Dir = "" },
		"no rate limit":    func(c *Config) { c.ChatRateLimit.RequestsPerWindow = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := base()
			mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestProductionOrigins(t *testing.T) {
	c := &Config{FrontendURL: "https://dash.example.com"}
	assert.False(t, c.IsDevelopment())
	assert.Equal(t, []string{"https://dash.example.com"}, c.AllowedOrigins())
}
