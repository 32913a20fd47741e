package internal

import (
	"context"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/dig"

	"github.com/kurihiro0119/repo-concierge/internal/aggregator"
	"github.com/kurihiro0119/repo-concierge/internal/cache"
	"github.com/kurihiro0119/repo-concierge/internal/config"
)

func TestNewCache(t *testing.T) {
	testCases := []struct {
		name string
		cfg  config.Config
	}{
		{name: "memory", cfg: config.Config{CacheType: "memory", CacheTTL: time.Minute}},
		{name: "sqlite", cfg: config.Config{CacheType: "sqlite", CacheTTL: time.Minute, SQLitePath: "file:container_test?mode=memory&cache=shared"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := NewCache(&tc.cfg)
			require.NoError(t, err)
			t.Cleanup(func() { _ = c.Close() })

			ctx := context.Background()
			require.NoError(t, c.Put(ctx, "github_/repos/acme/widget_noauth", []byte(`{"id":1}`), 0))
			got, ok := c.Get(ctx, "github_/repos/acme/widget_noauth")
			assert.True(t, ok)
			assert.JSONEq(t, `{"id":1}`, string(got))
		})
	}
}

func TestNewCache_MemoryType(t *testing.T) {
	c, err := NewCache(&config.Config{CacheType: "memory", CacheTTL: time.Minute})
	require.NoError(t, err)
	assert.IsType(t, &cache.Memory{}, c)
}

func TestRegisterProviders(t *testing.T) {
	t.Setenv("CACHE_TYPE", "memory")
	t.Setenv("LOG_LEVEL", "error")
	gin.SetMode(gin.TestMode)

	container := dig.New()
	require.NoError(t, RegisterProviders(container))

	err := container.Invoke(func(router *gin.Engine, agg aggregator.Aggregator) {
		assert.NotNil(t, router)
		assert.False(t, agg.RateStatus().Observed)
	})
	require.NoError(t, err)
}

func TestRegisterProviders_InvalidConfig(t *testing.T) {
	t.Setenv("CACHE_TYPE", "redis")

	container := dig.New()
	require.NoError(t, RegisterProviders(container))

	err := container.Invoke(func(*gin.Engine) {})
	require.Error(t, err)

	var cfgErr *config.ConfigError
	assert.ErrorAs(t, dig.RootCause(err), &cfgErr)
}

func TestNewCache_StartsJanitor(t *testing.T) {
	for _, cacheType := range []string{"memory", "sqlite"} {
		t.Run(cacheType, func(t *testing.T) {
			c, err := NewCache(&config.Config{
				CacheType:  cacheType,
				CacheTTL:   time.Minute,
				SQLitePath: "file:container_janitor?mode=memory&cache=shared",
			})
			require.NoError(t, err)
			t.Cleanup(func() { _ = c.Close() })

			_, ok := c.(cache.Janitor)
			assert.True(t, ok)
		})
	}
}
