// Package config provides configuration loading and validation for the server and CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/talent-scout/internal/logging"
)

// Defaults
const (
	DefaultPort             = 8080
	DefaultLogLevel         = "info"
	DefaultBountyLabBaseURL = "https://api.bountylab.io"
	DefaultBountyLabTimeout = 30 * time.Second
)

// Config is the application configuration. Every field may come from the
// environment or from a JSON/YAML file; a file value wins over the environment.
// Optional integrations stay disabled while their URL or key is empty.
type Config struct {
	Port     int    `json:"port,omitempty" yaml:"port,omitempty"`
	LogLevel string `json:"log_level,omitempty" yaml:"log_level,omitempty"`

	DatabaseURL string `json:"database_url,omitempty" yaml:"database_url,omitempty"` // PostgreSQL; empty disables the pipeline
	RedisURL    string `json:"redis_url,omitempty" yaml:"redis_url,omitempty"`       // empty disables pipeline events

	BountyLabAPIKey  string `json:"bountylab_api_key,omitempty" yaml:"bountylab_api_key,omitempty"`
	BountyLabBaseURL string `json:"bountylab_base_url,omitempty" yaml:"bountylab_base_url,omitempty"`
	BountyLabTimeout string `json:"bountylab_timeout,omitempty" yaml:"bountylab_timeout,omitempty"` // Go duration, e.g. "30s"

	SheetsCredentials string `json:"google_sheets_credentials,omitempty" yaml:"google_sheets_credentials,omitempty"` // service account JSON path
}

// FromEnv reads the configuration from environment variables.
func FromEnv() Config {
	cfg := Config{
		LogLevel:          getEnv("LOG_LEVEL", DefaultLogLevel),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedisURL:          os.Getenv("REDIS_URL"),
		BountyLabAPIKey:   os.Getenv("BOUNTYLAB_API_KEY"),
		BountyLabBaseURL:  getEnv("BOUNTYLAB_BASE_URL", DefaultBountyLabBaseURL),
		BountyLabTimeout:  getEnv("BOUNTYLAB_TIMEOUT", DefaultBountyLabTimeout.String()),
		SheetsCredentials: os.Getenv("GOOGLE_SHEETS_CREDENTIALS"),
		Port:              DefaultPort,
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Port = port
		} else {
			cfg.Port = -1 // rejected by Validate
		}
	}
	return cfg
}

// LoadConfig loads configuration from a JSON or YAML file. The format is
// chosen by extension: .yaml and .yml are YAML, anything else is JSON.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// Load reads the environment and, when path is set, overlays the file on top.
func Load(path string) (Config, error) {
	env := FromEnv()
	if path == "" {
		return env, env.Validate()
	}

	file, err := LoadConfig(path)
	if err != nil {
		return Config{}, err
	}
	merged := file.MergeWithDefaults(env)
	return merged, merged.Validate()
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	if c.LogLevel != "" && !logging.ValidLevel(c.LogLevel) {
		return fmt.Errorf("config error: unknown 'log_level' %q", c.LogLevel)
	}
	if _, err := c.Timeout(); err != nil {
		return fmt.Errorf("config error: 'bountylab_timeout': %w", err)
	}
	if c.SheetsCredentials != "" {
		if _, err := os.Stat(c.SheetsCredentials); os.IsNotExist(err) {
			return fmt.Errorf("config error: sheets credentials file not found: %s", c.SheetsCredentials)
		}
	}
	return nil
}

// Timeout returns the provider request timeout, or the default when unset.
func (c *Config) Timeout() (time.Duration, error) {
	if c.BountyLabTimeout == "" {
		return DefaultBountyLabTimeout, nil
	}
	d, err := time.ParseDuration(c.BountyLabTimeout)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("must be non-negative, got %s", d)
	}
	return d, nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply environment values underneath a config file.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.RedisURL == "" {
		result.RedisURL = defaults.RedisURL
	}
	if result.BountyLabAPIKey == "" {
		result.BountyLabAPIKey = defaults.BountyLabAPIKey
	}
	if result.BountyLabBaseURL == "" {
		result.BountyLabBaseURL = defaults.BountyLabBaseURL
	}
	if result.BountyLabTimeout == "" {
		result.BountyLabTimeout = defaults.BountyLabTimeout
	}
	if result.SheetsCredentials == "" {
		result.SheetsCredentials = defaults.SheetsCredentials
	}

	// Int fields: use default if zero
	if result.Port == 0 {
		result.Port = defaults.Port
	}

	return result
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
