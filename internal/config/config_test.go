package config

import (
	"testing"
	"time"

	logger "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"GITHUB_TOKEN", "CACHE_TYPE", "CACHE_TTL", "API_PORT", "COMMITS_LIMIT", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "", cfg.GitHubToken)
	assert.Equal(t, "memory", cfg.CacheType)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
	assert.Equal(t, "3000", cfg.APIPort)
	assert.Equal(t, 10, cfg.CommitsLimit)
	assert.Equal(t, 10, cfg.ContributorsLimit)
	assert.Equal(t, 20, cfg.IssuesLimit)
	assert.Equal(t, 5, cfg.ReleasesLimit)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("CACHE_TYPE", "sqlite")
	t.Setenv("CACHE_TTL", "15m")
	t.Setenv("COMMITS_LIMIT", "30")
	t.Setenv("RELEASES_LIMIT", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.CacheType)
	assert.Equal(t, 15*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 30, cfg.CommitsLimit)
	assert.Equal(t, 5, cfg.ReleasesLimit)
}

func TestConfig_Validate(t *testing.T) {
	testCases := []struct {
		name          string
		cfg           Config
		expectedField string
	}{
		{
			name:          "unknown cache type",
			cfg:           Config{CacheType: "redis", LogLevel: "info"},
			expectedField: "CACHE_TYPE",
		},
		{
			name:          "postgres without url",
			cfg:           Config{CacheType: "postgres", LogLevel: "info"},
			expectedField: "POSTGRES_URL",
		},
		{
			name:          "bad log level",
			cfg:           Config{CacheType: "memory", LogLevel: "chatty"},
			expectedField: "LOG_LEVEL",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			require.Error(t, err)

			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tc.expectedField, cfgErr.Field)
		})
	}
}

func TestConfigureLogger_DebugOverride(t *testing.T) {
	t.Setenv("DEBUG", "true")
	original := logger.GetLevel()
	defer logger.SetLevel(original)

	cfg := &Config{LogLevel: "warn"}
	cfg.ConfigureLogger()

	assert.Equal(t, logger.DebugLevel, logger.GetLevel())
}
