package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Config holds all configuration for the console server
type Config struct {
	// HTTP listener configuration
	HTTP HTTPConfig

	// External API configuration
	API APIConfig

	// Session store configuration
	Database DatabaseConfig

	// Session cookie configuration
	Session SessionConfig

	// Logging Configuration
	Logging LoggingConfig
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	Addr               string   `env:"HTTP_ADDR" envDefault:":8080"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
}

// APIConfig describes the backend API the console talks to
type APIConfig struct {
	BaseURL   string        `env:"API_BASE_URL" envDefault:"http://localhost:3001/api"`
	LoginPath string        `env:"API_LOGIN_PATH" envDefault:"/auth/login"`
	Timeout   time.Duration `env:"API_TIMEOUT" envDefault:"10s"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string `env:"DATABASE_URL" envDefault:"remotecfg.sqlite"`
}

// SessionConfig holds session cookie configuration
type SessionConfig struct {
	Secret        string        `env:"SESSION_SECRET"` // Empty = generated once and persisted in the database
	TTL           time.Duration `env:"SESSION_TTL" envDefault:"12h"`
	CookieName    string        `env:"SESSION_COOKIE_NAME" envDefault:"remotecfg_session"`
	CookieSecure  bool          `env:"SESSION_COOKIE_SECURE" envDefault:"false"`
	PurgeSchedule string        `env:"SESSION_PURGE_SCHEDULE" envDefault:"*/15 * * * *"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"` // json, console
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid API_BASE_URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid API_BASE_URL %q: must be an absolute http(s) URL", c.API.BaseURL)
	}
	c.API.BaseURL = strings.TrimRight(c.API.BaseURL, "/")

	if !strings.HasPrefix(c.API.LoginPath, "/") {
		c.API.LoginPath = "/" + c.API.LoginPath
	}

	if c.Session.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(c.Session.PurgeSchedule); err != nil {
		return fmt.Errorf("invalid SESSION_PURGE_SCHEDULE: %w", err)
	}

	return nil
}
