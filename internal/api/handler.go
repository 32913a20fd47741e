package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	logger "github.com/sirupsen/logrus"

	"github.com/kurihiro0119/repo-concierge/internal/aggregator"
	apperrors "github.com/kurihiro0119/repo-concierge/internal/errors"
	"github.com/kurihiro0119/repo-concierge/internal/parser"
)

// Version is reported by the health endpoints
const Version = "1.0.0"

// Handler handles API requests
type Handler struct {
	aggregator aggregator.Aggregator
}

// NewHandler creates a new API handler
func NewHandler(agg aggregator.Aggregator) *Handler {
	return &Handler{
		aggregator: agg,
	}
}

// requestToken reads the caller's GitHub token from ?token= or the
// Authorization header ("Bearer <t>" or "token <t>")
func requestToken(c *gin.Context) string {
	token := c.Query("token")
	if token == "" {
		header := c.GetHeader("Authorization")
		for _, scheme := range []string{"Bearer ", "token "} {
			if len(header) > len(scheme) && strings.EqualFold(header[:len(scheme)], scheme) {
				token = strings.TrimSpace(header[len(scheme):])
				break
			}
		}
	}
	if token != "" && !parser.ValidateToken(token) {
		logger.Warnf("[api] request %s: token does not look like a GitHub token", requestID(c))
	}
	return token
}

// AnalyzeRepository returns the full analysis of a repository
// GET /api/analyze/:owner/:repo
func (h *Handler) AnalyzeRepository(c *gin.Context) {
	analysis, err := h.aggregator.AnalyzeRepository(c.Request.Context(), c.Param("owner"), c.Param("repo"), requestToken(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": analysis,
	})
}

// AnalyzeByReference accepts any repository reference understood by the parser
// GET /api/analyze?repo=<url|ssh|owner/name>
func (h *Handler) AnalyzeByReference(c *gin.Context) {
	ref, err := parser.ParseRepository(c.Query("repo"))
	if err != nil {
		respondError(c, err)
		return
	}

	analysis, err := h.aggregator.AnalyzeRepository(c.Request.Context(), ref.Owner, ref.Repo, requestToken(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": analysis,
	})
}

// GetDashboard returns an analysis together with its chart datasets
// GET /api/dashboard/:owner/:repo
func (h *Handler) GetDashboard(c *gin.Context) {
	view, err := h.aggregator.BuildDashboard(c.Request.Context(), c.Param("owner"), c.Param("repo"), requestToken(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": view,
	})
}

// GetDependencies returns the dependencies declared by the repository manifest
// GET /api/dependencies/:owner/:repo?branch=
func (h *Handler) GetDependencies(c *gin.Context) {
	deps, err := h.aggregator.GetDependencies(c.Request.Context(), c.Param("owner"), c.Param("repo"), c.Query("branch"), requestToken(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": deps,
	})
}

// RateLimit returns the last GitHub quota observed by this process
// GET /api/rate-limit
func (h *Handler) RateLimit(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"data": h.aggregator.RateStatus(),
	})
}

// HealthCheck returns the health status of the API
// GET /health
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": Version,
	})
}

// respondError sends an error response
func respondError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		switch appErr.Code {
		case apperrors.ErrCodeNotFound:
			status = http.StatusNotFound
		case apperrors.ErrCodeUnauthorized:
			status = http.StatusUnauthorized
		case apperrors.ErrCodeForbidden:
			status = http.StatusForbidden
		case apperrors.ErrCodeBadRequest:
			status = http.StatusBadRequest
		case apperrors.ErrCodeRateLimited:
			status = http.StatusTooManyRequests
		}
		c.JSON(status, gin.H{
			"error": gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
			},
		})
		return
	}

	logger.Errorf("[api] request %s: unexpected error: %v", requestID(c), err)
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": gin.H{
			"code":    apperrors.ErrCodeInternal,
			"message": err.Error(),
		},
	})
}
