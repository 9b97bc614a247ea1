// Package config contains everything related to configuration
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	DataDir           string
	DatabasePath      string
	APIBaseURL        string
	RequestTimeout    time.Duration
	PageSize          int
	MaxConcurrency    int
	RequestsPerSecond float64
	DailyBudget       float64
	RefreshInterval   time.Duration
	Debug             bool
}

// Default values
const (
	defaultAPIBaseURL        = "https://cursor.com"
	defaultRequestTimeout    = 10 * time.Second
	defaultPageSize          = 100
	defaultMaxConcurrency    = 4
	defaultRequestsPerSecond = 5
	defaultRefreshInterval   = 5 * time.Minute
	maxPageSize              = 1000
)

// Load reads configuration from .env files and environment variables.
func Load() (*Config, error) {
	// Only the first .env found is loaded
	envPaths := getEnvPaths()
	for _, path := range envPaths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	dataDir := getEnvString(EnvDataDir, getDefaultDataDir())

	cfg := &Config{
		DataDir:           dataDir,
		DatabasePath:      getEnvString(EnvDatabasePath, StateDatabasePath(dataDir)),
		APIBaseURL:        getEnvString(EnvAPIBaseURL, defaultAPIBaseURL),
		RequestTimeout:    getEnvDuration(EnvRequestTimeout, defaultRequestTimeout),
		PageSize:          getEnvInt(EnvPageSize, defaultPageSize),
		MaxConcurrency:    getEnvInt(EnvMaxConcurrency, defaultMaxConcurrency),
		RequestsPerSecond: getEnvFloat(EnvRequestsPerSecond, defaultRequestsPerSecond),
		DailyBudget:       getEnvFloat(EnvDailyBudget, 0),
		RefreshInterval:   getEnvDuration(EnvRefreshInterval, defaultRefreshInterval),
		Debug:             getEnvBool(EnvDebug, false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that numeric settings are usable.
func (c *Config) Validate() error {
	if c.PageSize < 1 || c.PageSize > maxPageSize {
		return fmt.Errorf("%s must be between 1 and %d, got %d", EnvPageSize, maxPageSize, c.PageSize)
	}
	if c.MaxConcurrency < 1 {
		return fmt.Errorf("%s must be at least 1, got %d", EnvMaxConcurrency, c.MaxConcurrency)
	}
	if c.RequestsPerSecond <= 0 {
		return fmt.Errorf("%s must be positive, got %g", EnvRequestsPerSecond, c.RequestsPerSecond)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("%s must be positive, got %s", EnvRequestTimeout, c.RequestTimeout)
	}
	if c.DailyBudget < 0 {
		return fmt.Errorf("%s must not be negative, got %g", EnvDailyBudget, c.DailyBudget)
	}
	return nil
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	// Current directory
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	// Home directory locations
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "cursor-usage", ".env"),
			filepath.Join(home, ".cursor-usage", ".env"),
		)
	}

	return paths
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns the default.
// Accepts values like "30s", "1m", "500ms".
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		// Try parsing as seconds if no unit specified
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns the default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// getEnvFloat retrieves a float environment variable or returns the default.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvBool accepts the strconv.ParseBool spellings.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
