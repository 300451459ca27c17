// Package config provides configuration management.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v9"

	"glassquote/internal/logging"
)

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version"`

	// Pricing contains pricing configuration
	Pricing PricingConfig `json:"pricing"`

	// Database contains database configuration
	Database DatabaseConfig `json:"database"`

	// Server contains HTTP server configuration
	Server ServerConfig `json:"server"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging"`
}

// PricingConfig contains pricing-related settings
type PricingConfig struct {
	// Currency is the quoting currency
	Currency string `json:"currency" env:"GLASSQUOTE_CURRENCY"`

	// MinimumBillableSqFt is the billed-area floor; pieces smaller than
	// this are billed as if they were this size
	MinimumBillableSqFt float64 `json:"minimum_billable_sq_ft" env:"GLASSQUOTE_MIN_BILLABLE_SQFT"`

	// FallbackDivisor is the divisor used when the active formula fails
	FallbackDivisor string `json:"fallback_divisor" env:"GLASSQUOTE_FALLBACK_DIVISOR"`
}

// DatabaseConfig contains database-related settings
type DatabaseConfig struct {
	// Path is the SQLite database file path
	Path string `json:"path" env:"GLASSQUOTE_DB_PATH"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	// Addr is the listen address
	Addr string `json:"addr" env:"GLASSQUOTE_ADDR"`

	// RequestTimeoutSeconds bounds each request end to end
	RequestTimeoutSeconds int `json:"request_timeout_seconds" env:"GLASSQUOTE_REQUEST_TIMEOUT_SECONDS"`
}

// Default returns a default configuration
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	dbPath := filepath.Join(homeDir, ".glassquote", "glassquote.db")

	return &Config{
		Version: "1.0",
		Pricing: PricingConfig{
			Currency:            "USD",
			MinimumBillableSqFt: 2.0,
			FallbackDivisor:     "0.28",
		},
		Database: DatabaseConfig{
			Path: dbPath,
		},
		Server: ServerConfig{
			Addr:                  ":8080",
			RequestTimeoutSeconds: 30,
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load loads configuration from a file, then applies environment
// variable overrides. Missing file means defaults plus environment.
func Load(path string) (*Config, error) {
	config := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	} else {
		if err := json.Unmarshal(data, config); err != nil {
			return nil, err
		}
	}

	if err := env.Parse(config); err != nil {
		return nil, err
	}

	return config, nil
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
