package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "http://localhost:3001/api", cfg.API.BaseURL)
	assert.Equal(t, "/auth/login", cfg.API.LoginPath)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Equal(t, "remotecfg.sqlite", cfg.Database.URL)
	assert.Equal(t, 12*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "remotecfg_session", cfg.Session.CookieName)
	assert.False(t, cfg.Session.CookieSecure)
	assert.Empty(t, cfg.Session.Secret)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Empty(t, cfg.HTTP.CORSAllowedOrigins)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("API_BASE_URL", "https://api.example.com/v1/")
	t.Setenv("API_LOGIN_PATH", "login")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("SESSION_COOKIE_SECURE", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com,https://b.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com/v1", cfg.API.BaseURL)
	assert.Equal(t, "/login", cfg.API.LoginPath)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.True(t, cfg.Session.CookieSecure)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.HTTP.CORSAllowedOrigins)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "relative api url", key: "API_BASE_URL", val: "/api"},
		{name: "non http scheme", key: "API_BASE_URL", val: "ftp://example.com"},
		{name: "bad cron", key: "SESSION_PURGE_SCHEDULE", val: "every minute"},
		{name: "negative ttl", key: "SESSION_TTL", val: "-1h"},
		{name: "unparsable duration", key: "API_TIMEOUT", val: "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
