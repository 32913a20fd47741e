package main

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/dig"

	"github.com/kurihiro0119/repo-concierge/internal"
	"github.com/kurihiro0119/repo-concierge/internal/cache"
	"github.com/kurihiro0119/repo-concierge/internal/config"
)

type server struct {
	cfg    *config.Config
	router *gin.Engine
	cache  cache.Cache
}

func injectServer() (*server, error) {
	container := dig.New()

	if err := internal.RegisterProviders(container); err != nil {
		return nil, err
	}

	var srv *server
	if err := container.Invoke(func(cfg *config.Config, router *gin.Engine, c cache.Cache) {
		srv = &server{cfg: cfg, router: router, cache: c}
	}); err != nil {
		return nil, dig.RootCause(err)
	}

	return srv, nil
}
