package internal

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	logger "github.com/sirupsen/logrus"
	"go.uber.org/dig"

	"github.com/kurihiro0119/repo-concierge/internal/aggregator"
	"github.com/kurihiro0119/repo-concierge/internal/api"
	"github.com/kurihiro0119/repo-concierge/internal/cache"
	"github.com/kurihiro0119/repo-concierge/internal/cache/postgres"
	"github.com/kurihiro0119/repo-concierge/internal/cache/sqlite"
	"github.com/kurihiro0119/repo-concierge/internal/collector"
	"github.com/kurihiro0119/repo-concierge/internal/config"
)

// RegisterProviders registers every layer with the DIG container, bottom-up:
// config -> cache -> collector -> aggregator -> api.
func RegisterProviders(container *dig.Container) error {
	providers := []any{
		newConfig,
		NewCache,
		newCollector,
		aggregator.NewAggregator,
		api.NewHandler,
		newRouter,
	}
	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return err
		}
	}
	return nil
}

func newConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	cfg.ConfigureLogger()
	return cfg, nil
}

// NewCache opens the cache backend selected by CACHE_TYPE and starts its
// janitor when the backend has one
func NewCache(cfg *config.Config) (cache.Cache, error) {
	var (
		c   cache.Cache
		err error
	)
	switch cfg.CacheType {
	case "postgres":
		if c, err = postgres.NewCache(cfg.PostgresURL, cfg.CacheTTL); err != nil {
			return nil, fmt.Errorf("failed to initialize PostgreSQL cache: %w", err)
		}
	case "sqlite":
		if c, err = sqlite.NewCache(cfg.SQLitePath, cfg.CacheTTL); err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite cache: %w", err)
		}
	default:
		c = cache.NewMemory(cfg.CacheTTL)
	}

	if j, ok := c.(cache.Janitor); ok {
		j.StartJanitor(context.Background(), janitorInterval(cfg.CacheTTL))
	}
	return c, nil
}

func janitorInterval(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return cache.DefaultTTL
	}
	return ttl
}

func newCollector(cfg *config.Config, c cache.Cache) (collector.Collector, error) {
	logger.Debugf("[container] cache backend: %s, ttl %s", cfg.CacheType, cfg.CacheTTL)
	return collector.NewGitHubCollector(collector.Options{
		BaseURL: cfg.GitHubAPIURL,
		Cache:   c,
		TTL:     cfg.CacheTTL,
		Limits: collector.Limits{
			Commits:      cfg.CommitsLimit,
			Contributors: cfg.ContributorsLimit,
			Issues:       cfg.IssuesLimit,
			Releases:     cfg.ReleasesLimit,
		},
	})
}

func newRouter(handler *api.Handler) *gin.Engine {
	return api.SetupRoutes(handler)
}
