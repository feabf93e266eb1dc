// Pantry Partner Admin Dashboard
// Copyright 2026 Pantry Partner contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pantrypartner/dashboard

// Package config loads and validates dashboard configuration.
//
// Precedence, lowest to highest: struct defaults, YAML config file,
// PANTRYDASH_* environment variables. See koanf.go for the loading
// pipeline.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the root configuration.
type Config struct {
	API     APIConfig     `koanf:"api" validate:"required"`
	Session SessionConfig `koanf:"session"`
	Sync    SyncConfig    `koanf:"sync"`
	Server  ServerConfig  `koanf:"server"`
	Logging LoggingConfig `koanf:"logging"`
}

// APIConfig configures the remote product API client.
type APIConfig struct {
	// BaseURL is the API root, without the /admin segment
	// (the login endpoint is public and lives outside /admin).
	BaseURL string `koanf:"base_url" validate:"required,url"`

	// AdminAPIKey authenticates metrics requests when no user identity
	// is bound.
	//
	// Deprecated: per-user x-user-id auth is the primary path; the key
	// fallback is kept only for contract completeness.
	AdminAPIKey string `koanf:"admin_api_key"`

	// Timeout bounds each remote request.
	Timeout time.Duration `koanf:"timeout" validate:"min=1s"`

	// CircuitBreaker enables breaker protection on the metrics fetches.
	CircuitBreaker bool `koanf:"circuit_breaker"`
}

// SessionConfig configures the persisted-session store.
type SessionConfig struct {
	// Backend selects the store implementation.
	Backend string `koanf:"backend" validate:"oneof=badger memory"`

	// Path is the BadgerDB directory (badger backend only).
	Path string `koanf:"path" validate:"required_if=Backend badger"`
}

// SyncConfig configures the metrics synchronizer.
type SyncConfig struct {
	// Interval between poll cycles.
	Interval time.Duration `koanf:"interval" validate:"min=1s"`
}

// ServerConfig configures the local dashboard web server.
type ServerConfig struct {
	ListenAddr      string        `koanf:"listen_addr" validate:"required"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"min=1s"`

	// CORSOrigins enables CORS on the JSON data endpoints when set.
	CORSOrigins []string `koanf:"cors_origins"`

	// LoginRateLimit / LoginRateWindow throttle POST /login per client IP.
	LoginRateLimit  int           `koanf:"login_rate_limit" validate:"min=1"`
	LoginRateWindow time.Duration `koanf:"login_rate_window" validate:"min=1s"`
}

// LoggingConfig configures the global logger.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by the config file and env vars.
func defaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:        "http://localhost:3001/api/v1",
			AdminAPIKey:    "",
			Timeout:        30 * time.Second,
			CircuitBreaker: true,
		},
		Session: SessionConfig{
			Backend: "badger",
			Path:    "/data/pantrydash/session",
		},
		Sync: SyncConfig{
			Interval: 30 * time.Second,
		},
		Server: ServerConfig{
			ListenAddr:      ":8080",
			ShutdownTimeout: 10 * time.Second,
			LoginRateLimit:  5,
			LoginRateWindow: 5 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks the configuration against the struct tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// normalize fixes up values after loading. The base URL must not carry a
// trailing /admin: operators keep pasting the admin-scoped URL, and the
// login endpoint is public and lives outside it.
func (c *Config) normalize() {
	c.API.BaseURL = strings.TrimRight(c.API.BaseURL, "/")
	c.API.BaseURL = strings.TrimSuffix(c.API.BaseURL, "/admin")
}
