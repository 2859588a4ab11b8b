package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"cytodash/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Data   DataConfig
	Server ServerConfig
	Log    LogConfig
}

// DataConfig describes where the measurement table comes from and how it is read
type DataConfig struct {
	File          string // local path or http(s) URL
	Sheet         string // XLSX sheet name; first sheet when empty
	DataPath      string // gjson path to the records of a JSON document
	TaxonomyFile  string // YAML override of the functional groups
	ZeroAsMissing bool
	SourceTimeout time.Duration
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string
}

const defaultDataFile = "data/serum_cytokines.csv"

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Data:   *loadDataConfig(),
		Server: *loadServerConfig(),
		Log:    LogConfig{Level: getEnvOrDefault("LOG_LEVEL", "info")},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadDataConfig() *DataConfig {
	return &DataConfig{
		File:          strings.TrimSpace(getEnvOrDefault("DATA_FILE", defaultDataFile)),
		Sheet:         getEnvOrDefault("DATA_SHEET", ""),
		DataPath:      getEnvOrDefault("DATA_PATH", ""),
		TaxonomyFile:  getEnvOrDefault("TAXONOMY_FILE", ""),
		ZeroAsMissing: getEnvBoolOrDefault("ZERO_AS_MISSING", false),
		SourceTimeout: getEnvDurationOrDefault("SOURCE_TIMEOUT", 30*time.Second),
	}
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "debug"),
	}
}

// Addr is the listen address for the HTTP server
func (c *Config) Addr() string {
	return ":" + c.Server.Port
}

func validateConfig(config *Config) error {
	if config.Data.File == "" {
		return errors.ConfigInvalid("DATA_FILE is required")
	}
	if port, err := strconv.Atoi(config.Server.Port); err != nil || port <= 0 || port > 65535 {
		return errors.ConfigInvalid("PORT must be a number between 1 and 65535")
	}
	switch config.Server.GinMode {
	case "debug", "release", "test":
	default:
		return errors.ConfigInvalid("GIN_MODE must be debug, release or test")
	}
	if config.Data.SourceTimeout <= 0 {
		return errors.ConfigInvalid("SOURCE_TIMEOUT must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
