package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	logger "github.com/sirupsen/logrus"
)

// Config holds the application configuration
type Config struct {
	// GitHub
	GitHubToken  string
	GitHubAPIURL string // empty means api.github.com

	// Fetch sizes for the analysis reads
	CommitsLimit      int
	ContributorsLimit int
	IssuesLimit       int
	ReleasesLimit     int

	// Cache
	CacheType   string // "memory", "sqlite" or "postgres"
	CacheTTL    time.Duration
	SQLitePath  string
	PostgresURL string

	// API Server
	APIPort string
	APIHost string

	// CLI
	APIEndpoint string

	// Logging
	LogLevel string
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	return &Config{
		GitHubToken:       getEnv("GITHUB_TOKEN", ""),
		GitHubAPIURL:      getEnv("GITHUB_API_URL", ""),
		CommitsLimit:      getInt("COMMITS_LIMIT", 10),
		ContributorsLimit: getInt("CONTRIBUTORS_LIMIT", 10),
		IssuesLimit:       getInt("ISSUES_LIMIT", 20),
		ReleasesLimit:     getInt("RELEASES_LIMIT", 5),
		CacheType:         getEnv("CACHE_TYPE", "memory"),
		CacheTTL:          getDuration("CACHE_TTL", time.Hour),
		SQLitePath:        getEnv("SQLITE_PATH", "file::memory:?cache=shared"),
		PostgresURL:       getEnv("POSTGRES_URL", ""),
		APIPort:           getEnv("API_PORT", "3000"),
		APIHost:           getEnv("API_HOST", "localhost"),
		APIEndpoint:       getEnv("API_ENDPOINT", "http://localhost:3000"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
	}, nil
}

// getEnv returns the value of an environment variable or a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.CacheType {
	case "memory", "sqlite", "postgres":
	default:
		return &ConfigError{Field: "CACHE_TYPE", Message: "must be 'memory', 'sqlite' or 'postgres'"}
	}
	if c.CacheType == "postgres" && c.PostgresURL == "" {
		return &ConfigError{Field: "POSTGRES_URL", Message: "PostgreSQL URL is required when CACHE_TYPE is 'postgres'"}
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return &ConfigError{Field: "LOG_LEVEL", Message: "must be one of panic, fatal, error, warn, info, debug, trace"}
	}
	return nil
}

// ConfigureLogger applies the logging settings to the global logrus logger.
// DEBUG=true always wins over LOG_LEVEL.
func (c *Config) ConfigureLogger() {
	//nolint:exhaustruct // Minimal TextFormatter initialization with required fields only
	logger.SetFormatter(&logger.TextFormatter{
		FullTimestamp: true,
	})

	level, err := logger.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		level = logger.InfoLevel
	}
	if os.Getenv("DEBUG") == "true" {
		level = logger.DebugLevel
	}
	logger.SetLevel(level)
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
