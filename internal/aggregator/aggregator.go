package aggregator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"

	"github.com/kurihiro0119/repo-concierge/internal/collector"
	"github.com/kurihiro0119/repo-concierge/internal/domain"
	apperrors "github.com/kurihiro0119/repo-concierge/internal/errors"
	"github.com/kurihiro0119/repo-concierge/internal/manifest"
	"github.com/kurihiro0119/repo-concierge/internal/report"
)

// Aggregator defines the interface for analyzing repositories
type Aggregator interface {
	// AnalyzeRepository collects and analyzes one repository
	AnalyzeRepository(ctx context.Context, owner, repo, token string) (*domain.Analysis, error)

	// BuildDashboard analyzes a repository and derives its chart datasets
	BuildDashboard(ctx context.Context, owner, repo, token string) (*domain.DashboardView, error)

	// GetDependencies reads the first known manifest on branch (default branch when empty)
	GetDependencies(ctx context.Context, owner, repo, branch, token string) (*domain.Dependencies, error)

	// RateStatus returns the last observed GitHub quota
	RateStatus() domain.RateStatus
}

// aggregator implements the Aggregator interface
type aggregator struct {
	collector collector.Collector
	now       func() time.Time
}

// NewAggregator creates a new aggregator
func NewAggregator(c collector.Collector) Aggregator {
	return &aggregator{
		collector: c,
		now:       time.Now,
	}
}

func validateRef(owner, repo string) error {
	if strings.TrimSpace(owner) == "" || strings.TrimSpace(repo) == "" {
		return apperrors.NewBadRequestError("Invalid repository format. Use owner/repo")
	}
	return nil
}

// AnalyzeRepository collects and analyzes one repository
func (a *aggregator) AnalyzeRepository(ctx context.Context, owner, repo, token string) (*domain.Analysis, error) {
	if err := validateRef(owner, repo); err != nil {
		return nil, err
	}

	start := time.Now()
	raw, err := a.collector.CollectRepositoryData(ctx, owner, repo, token)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("Repository %s/%s", owner, repo))
		}
		logger.Errorf("[aggregator] analysis of %s/%s failed: %v", owner, repo, err)
		return nil, err
	}

	analysis := Analyze(raw, a.now())
	analysis.ID = uuid.New().String()

	logger.Infof("[aggregator] analyzed %s/%s in %s (activity=%d popularity=%.1f health=%d)",
		owner, repo, time.Since(start).Round(time.Millisecond),
		analysis.Stats.Activity.Score, analysis.Stats.Popularity.Score, analysis.Stats.Health.Score)
	return analysis, nil
}

// BuildDashboard analyzes a repository and derives its chart datasets
func (a *aggregator) BuildDashboard(ctx context.Context, owner, repo, token string) (*domain.DashboardView, error) {
	analysis, err := a.AnalyzeRepository(ctx, owner, repo, token)
	if err != nil {
		return nil, err
	}
	return &domain.DashboardView{
		Analysis:  analysis,
		Dashboard: report.BuildDashboard(analysis, a.now()),
	}, nil
}

// GetDependencies tries each known manifest in turn. Missing or unparsable
// manifests are skipped; upstream failures are returned as is.
func (a *aggregator) GetDependencies(ctx context.Context, owner, repo, branch, token string) (*domain.Dependencies, error) {
	if err := validateRef(owner, repo); err != nil {
		return nil, err
	}

	for _, name := range manifest.Known {
		content, err := a.collector.GetFileContent(ctx, owner, repo, name, branch, token)
		if err != nil {
			if apperrors.IsNotFound(err) {
				continue
			}
			return nil, err
		}

		deps, err := manifest.Parse(name, content)
		if err != nil {
			logger.Warnf("[aggregator] skipping %s of %s/%s: %v", name, owner, repo, err)
			continue
		}

		return &domain.Dependencies{
			Owner:        owner,
			Repo:         repo,
			Branch:       branch,
			Manifest:     name,
			Dependencies: deps,
			Names:        manifest.Names(deps),
		}, nil
	}

	return nil, apperrors.NewNotFoundError("Dependencies information")
}

// RateStatus returns the last observed GitHub quota
func (a *aggregator) RateStatus() domain.RateStatus {
	return a.collector.RateStatus()
}
