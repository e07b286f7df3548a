// Package config loads application settings from defaults, an optional YAML
// file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"budget-tracker/internal/auth"
)

// DefaultDBPath is the store file used when nothing else is configured.
const DefaultDBPath = "budget.db"

// Config holds the runtime settings.
type Config struct {
	// DBPath is the sqlite file holding the key-value store (":memory:" for a throwaway store)
	DBPath string `yaml:"db_path"`
	// LogLevel is one of debug, info, warn, error
	LogLevel string `yaml:"log_level"`
	// Environment is "production" to mask personal data in logs
	Environment string `yaml:"environment"`
	// SeedOnStart writes the fixture into an empty store
	SeedOnStart bool `yaml:"seed_on_start"`
	// PasswordScheme is plain or bcrypt
	PasswordScheme string `yaml:"password_scheme"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		DBPath:         DefaultDBPath,
		LogLevel:       "info",
		Environment:    "development",
		SeedOnStart:    true,
		PasswordScheme: auth.SchemePlain,
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("db_path is required")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log_level must be one of debug, info, warn, error")
	}
	if _, err := auth.NewPasswordScheme(c.PasswordScheme); err != nil {
		return fmt.Errorf("password_scheme: %w", err)
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file on top of the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// Load layers the configuration in order of precedence:
// 1. Defaults
// 2. The YAML file at path, when path is not empty
// 3. A .env file in the working directory, if present
// 4. Environment variables DB_PATH, LOG_LEVEL, ENVIRONMENT, SEED_ON_START, PASSWORD_SCHEME
func Load(path string, logger *slog.Logger) (*Config, error) {
	if logger == nil {
		logger = slog.Default()
	}

	config := DefaultConfig()
	if path != "" {
		fileConfig, err := LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		config = fileConfig
		logger.Debug("Loaded config file", slog.String("path", path))
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("Failed to load .env file", slog.String("error", err.Error()))
	}

	if err := config.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// ApplyEnv overrides fields from the environment variables that are set.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("DB_PATH"); ok && v != "" {
		c.DBPath = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		c.LogLevel = v
	}
	if v, ok := lookup("ENVIRONMENT"); ok && v != "" {
		c.Environment = v
	}
	if v, ok := lookup("SEED_ON_START"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("SEED_ON_START: %w", err)
		}
		c.SeedOnStart = b
	}
	if v, ok := lookup("PASSWORD_SCHEME"); ok && v != "" {
		c.PasswordScheme = v
	}
	return nil
}

// Production reports whether logs should mask personal data.
func (c *Config) Production() bool {
	switch strings.ToLower(c.Environment) {
	case "production", "prod", "release":
		return true
	}
	return false
}
