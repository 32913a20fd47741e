package api

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes sets up the API routes
func SetupRoutes(handler *Handler) *gin.Engine {
	router := gin.New()

	// Middleware
	router.Use(RequestID())
	router.Use(Recovery())
	router.Use(CORS())
	router.Use(Logger())

	// Health check
	router.GET("/health", handler.HealthCheck)

	api := router.Group("/api")
	{
		api.GET("/health", handler.HealthCheck)
		api.GET("/rate-limit", handler.RateLimit)

		api.GET("/analyze", handler.AnalyzeByReference)
		api.GET("/analyze/:owner/:repo", handler.AnalyzeRepository)
		api.GET("/dashboard/:owner/:repo", handler.GetDashboard)
		api.GET("/dependencies/:owner/:repo", handler.GetDependencies)
	}

	return router
}
