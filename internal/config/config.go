// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string `env:"APP_HOST" env-default:"0.0.0.0"`
	Port string `env:"APP_PORT" env-default:"8080"`
	Env  string `env:"APP_ENV" env-default:"development"` // "development", "production", "testing"

	// Remote blog API
	APIBaseURL   string        `env:"API_BASE_URL" env-default:"https://cervejas-api-fu2o.onrender.com"`
	APITimeout   time.Duration `env:"API_TIMEOUT" env-default:"0s"`
	APIRateLimit float64       `env:"API_RATE_LIMIT" env-default:"0"`
	APIRateBurst int           `env:"API_RATE_BURST" env-default:"10"`

	// Valkey (Redis-compatible store for sessions and flashes)
	ValkeyHost     string `env:"VALKEY_HOST" env-default:"localhost"`
	ValkeyPort     string `env:"VALKEY_PORT" env-default:"6379"`
	ValkeyPassword string `env:"VALKEY_PASSWORD"`

	// Live views
	LiveViewTTL   time.Duration `env:"LIVE_VIEW_TTL" env-default:"2m"`
	LiveViewSweep time.Duration `env:"LIVE_VIEW_SWEEP" env-default:"30s"`

	// Per-IP limit on login and registration submits.
	AuthRateLimit  int           `env:"AUTH_RATE_LIMIT" env-default:"10"`
	AuthRateWindow time.Duration `env:"AUTH_RATE_WINDOW" env-default:"1m"`

	// Cookies are marked Secure when set (behind TLS).
	SecureCookies bool `env:"SECURE_COOKIES" env-default:"false"`
}

// Load reads an optional .env file, then the environment, applying
// defaults for development. Variables already set in the environment win
// over the .env file. Returns an error if critical values are missing in
// production mode.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("API_BASE_URL must not be empty")
	}
	if c.APIRateLimit < 0 || c.APIRateBurst < 0 {
		return fmt.Errorf("API_RATE_LIMIT and API_RATE_BURST must not be negative")
	}
	if c.APITimeout < 0 {
		return fmt.Errorf("API_TIMEOUT must not be negative")
	}
	if c.LiveViewTTL <= 0 || c.LiveViewSweep <= 0 {
		return fmt.Errorf("LIVE_VIEW_TTL and LIVE_VIEW_SWEEP must be positive")
	}
	if c.AuthRateLimit < 1 || c.AuthRateWindow <= 0 {
		return fmt.Errorf("AUTH_RATE_LIMIT must be at least 1 and AUTH_RATE_WINDOW positive")
	}
	if c.Env == "production" && c.ValkeyPassword == "" {
		return fmt.Errorf("VALKEY_PASSWORD must be set in production")
	}
	return nil
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Usage returns the environment variable reference, for --help output.
func Usage() string {
	var cfg Config
	text, err := cleanenv.GetDescription(&cfg, nil)
	if err != nil {
		return err.Error()
	}
	return text
}
