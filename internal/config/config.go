package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	dnderr "github.com/KirkDiggler/dnd-character-sheet/internal/errors"
)

// Storage drivers understood by the character repository factory.
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
	StorageSQLite = "sqlite"
)

// Config holds all configuration for the application
type Config struct {
	Storage StorageConfig `envPrefix:"STORAGE_"`
	Redis   RedisConfig   `envPrefix:"REDIS_"`
	SQLite  SQLiteConfig  `envPrefix:"SQLITE_"`
	Logging LoggingConfig `envPrefix:"LOG_"`
	Rules   RulesConfig   `envPrefix:"RULES_"`
	DND5E   DND5EConfig   `envPrefix:"DND5E_"`
	Engine  EngineConfig  `envPrefix:"ENGINE_"`
}

// StorageConfig selects the character store
type StorageConfig struct {
	Driver string `env:"DRIVER" envDefault:"memory"`
}

// RedisConfig holds Redis-specific configuration
type RedisConfig struct {
	URL string `env:"URL" envDefault:"redis://localhost:6379/0"`
}

// SQLiteConfig holds SQLite-specific configuration
type SQLiteConfig struct {
	Path string `env:"PATH" envDefault:"data/characters.db"`
}

// LoggingConfig holds structured logging settings
type LoggingConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"console"`
}

// RulesConfig points at the YAML rules directory (classes, items, feats)
type RulesConfig struct {
	Dir string `env:"DIR" envDefault:"rules"`
}

// DND5EConfig holds D&D 5e API configuration
type DND5EConfig struct {
	// Enabled lets the catalog fall back to the SRD API for unknown keys
	Enabled bool          `env:"ENABLED" envDefault:"true"`
	BaseURL string        `env:"API_URL" envDefault:"https://www.dnd5eapi.co/api"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

// EngineConfig tunes the sheet adapter
type EngineConfig struct {
	// WriteConcurrency bounds in-flight persistence writes per open sheet.
	WriteConcurrency int `env:"WRITE_CONCURRENCY" envDefault:"4"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate reports every invalid setting at once
func (c Config) Validate() error {
	var errs []string

	switch c.Storage.Driver {
	case StorageMemory:
	case StorageRedis:
		if c.Redis.URL == "" {
			errs = append(errs, "REDIS_URL is required for the redis driver")
		}
	case StorageSQLite:
		if strings.TrimSpace(c.SQLite.Path) == "" {
			errs = append(errs, "SQLITE_PATH is required for the sqlite driver")
		}
	default:
		errs = append(errs, fmt.Sprintf("STORAGE_DRIVER must be one of [memory, redis, sqlite], got %q", c.Storage.Driver))
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL must be one of [debug, info, warn, error], got %q", c.Logging.Level))
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT must be json or console, got %q", c.Logging.Format))
	}

	if c.Engine.WriteConcurrency < 1 {
		errs = append(errs, fmt.Sprintf("ENGINE_WRITE_CONCURRENCY must be positive, got %d", c.Engine.WriteConcurrency))
	}
	if c.DND5E.Enabled {
		if u, err := url.Parse(c.DND5E.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Sprintf("DND5E_API_URL must be an absolute URL, got %q", c.DND5E.BaseURL))
		}
	}
	if c.DND5E.Timeout <= 0 {
		errs = append(errs, "DND5E_TIMEOUT must be positive")
	}

	if len(errs) > 0 {
		return dnderr.Validationf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
