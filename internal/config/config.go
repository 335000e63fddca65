// Copyright (c) 2025-2026 Formline
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath     string `env:"GUIDECMS_DB_PATH" envDefault:"./data/guidecms.db"`
	ServerHost string `env:"GUIDECMS_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"GUIDECMS_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"GUIDECMS_ENV" envDefault:"development"`
	LogLevel   string `env:"GUIDECMS_LOG_LEVEL" envDefault:"info"`

	// Cache configuration
	RedisURL     string `env:"GUIDECMS_REDIS_URL"`                       // Optional Redis URL for distributed caching
	CachePrefix  string `env:"GUIDECMS_CACHE_PREFIX" envDefault:"gcms:"` // Redis key prefix
	CacheTTL     int    `env:"GUIDECMS_CACHE_TTL" envDefault:"3600"`     // Default cache TTL in seconds
	CacheMaxSize int    `env:"GUIDECMS_CACHE_MAX_SIZE" envDefault:"10000"`

	// API rate limiting
	APIRateLimit float64 `env:"GUIDECMS_API_RATE_LIMIT" envDefault:"10"` // requests per second per client
	APIRateBurst int     `env:"GUIDECMS_API_RATE_BURST" envDefault:"20"`

	// Event log retention, in days
	EventRetentionDays int `env:"GUIDECMS_EVENT_RETENTION_DAYS" envDefault:"90"`

	// Seeding configuration
	DoSeed bool `env:"GUIDECMS_DO_SEED" envDefault:"false"` // Enable default language seeding
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.ServerPort < 1 || cfg.ServerPort > 65535 {
		return nil, fmt.Errorf("GUIDECMS_SERVER_PORT must be between 1 and 65535, got %d", cfg.ServerPort)
	}
	if cfg.EventRetentionDays < 1 {
		return nil, fmt.Errorf("GUIDECMS_EVENT_RETENTION_DAYS must be positive, got %d", cfg.EventRetentionDays)
	}
	if cfg.APIRateLimit <= 0 {
		return nil, fmt.Errorf("GUIDECMS_API_RATE_LIMIT must be positive, got %f", cfg.APIRateLimit)
	}

	return cfg, nil
}
