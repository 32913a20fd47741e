package main

import (
	"go.uber.org/dig"

	"github.com/kurihiro0119/repo-concierge/internal"
	"github.com/kurihiro0119/repo-concierge/internal/aggregator"
	"github.com/kurihiro0119/repo-concierge/internal/config"
)

// injectAggregator builds the in-process pipeline used when --remote is off
func injectAggregator() (aggregator.Aggregator, *config.Config, error) {
	container := dig.New()

	if err := internal.RegisterProviders(container); err != nil {
		return nil, nil, err
	}

	var (
		agg aggregator.Aggregator
		cfg *config.Config
	)
	if err := container.Invoke(func(a aggregator.Aggregator, c *config.Config) {
		agg, cfg = a, c
	}); err != nil {
		return nil, nil, dig.RootCause(err)
	}

	return agg, cfg, nil
}
