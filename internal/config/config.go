package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Config holds all application configuration. Values come from the
// environment; a .env file in the working directory is loaded by main.
type Config struct {
	Port        string
	Mode        string // gin mode: debug, release or test
	LogLevel    string
	ContentPath string // empty means the embedded default content
	DBPath      string // empty disables analytics and the admin

	AdminUsername string
	AdminPassword string

	// TrackVisitors enables the analytics middleware.
	TrackVisitors bool
	Retention     time.Duration

	ShutdownTimeout time.Duration
}

// Default returns the development configuration.
func Default() *Config {
	return &Config{
		Port:            "8080",
		Mode:            gin.DebugMode,
		LogLevel:        "info",
		DBPath:          "portfolio.db",
		AdminUsername:   "admin",
		AdminPassword:   "admin123",
		TrackVisitors:   true,
		Retention:       365 * 24 * time.Hour,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Load returns the defaults overridden by environment variables. Malformed
// values are reported together; the defaults stay in place for them.
func Load() (*Config, error) {
	cfg := Default()
	return cfg, cfg.applyEnvOverrides()
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// UsingDefaultAdmin reports whether the admin credentials were left at their
// development defaults.
func (c *Config) UsingDefaultAdmin() bool {
	d := Default()
	return c.AdminUsername == d.AdminUsername || c.AdminPassword == d.AdminPassword
}

func (c *Config) applyEnvOverrides() error {
	var errs []error
	if v := os.Getenv("PORT"); v != "" {
		c.Port = v
	}
	if v := os.Getenv("GIN_MODE"); v != "" {
		c.Mode = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv("CONTENT_PATH"); v != "" {
		c.ContentPath = v
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		c.DBPath = v
		if v == "none" {
			c.DBPath = ""
		}
	}
	if v := os.Getenv("ADMIN_USERNAME"); v != "" {
		c.AdminUsername = v
	}
	if v := os.Getenv("ADMIN_PASSWORD"); v != "" {
		c.AdminPassword = v
	}
	if v := os.Getenv("TRACK_VISITORS"); v != "" {
		c.TrackVisitors = v != "0" && !strings.EqualFold(v, "false")
	}
	if err := envDuration("RETENTION", &c.Retention); err != nil {
		errs = append(errs, err)
	}
	if err := envDuration("SHUTDOWN_TIMEOUT", &c.ShutdownTimeout); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// envDuration sets *d from a positive duration in the environment.
func envDuration(key string, d *time.Duration) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	if parsed <= 0 {
		return fmt.Errorf("invalid %s %q: must be positive", key, v)
	}
	*d = parsed
	return nil
}
