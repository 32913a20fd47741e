package collector

import (
	"context"

	"github.com/google/go-github/v55/github"

	"github.com/kurihiro0119/repo-concierge/internal/domain"
)

// Collector defines the interface for reading repository data from GitHub.
// token may be empty for anonymous access.
type Collector interface {
	// GetRepository retrieves repository metadata
	GetRepository(ctx context.Context, owner, repo, token string) (*github.Repository, error)

	// GetLanguages retrieves the language -> bytes mapping
	GetLanguages(ctx context.Context, owner, repo, token string) (map[string]int, error)

	// GetCommits retrieves the most recent commits
	GetCommits(ctx context.Context, owner, repo string, perPage int, token string) ([]*github.RepositoryCommit, error)

	// GetContributors retrieves the top contributors
	GetContributors(ctx context.Context, owner, repo string, perPage int, token string) ([]*github.Contributor, error)

	// GetIssues retrieves issues in the given state ("open", "closed" or "all")
	GetIssues(ctx context.Context, owner, repo, state string, perPage int, token string) ([]*github.Issue, error)

	// GetReleases retrieves the most recent releases
	GetReleases(ctx context.Context, owner, repo string, perPage int, token string) ([]*github.RepositoryRelease, error)

	// GetCodeFrequency retrieves weekly additions/deletions. A statistics
	// payload GitHub is still computing is returned as an empty slice.
	GetCodeFrequency(ctx context.Context, owner, repo, token string) ([]*github.WeeklyStats, error)

	// GetFileContent retrieves a decoded file from the repository tree.
	// An empty ref means the default branch.
	GetFileContent(ctx context.Context, owner, repo, path, ref, token string) ([]byte, error)

	// CollectRepositoryData fetches everything one analysis needs concurrently
	CollectRepositoryData(ctx context.Context, owner, repo, token string) (*domain.RawRepositoryData, error)

	// RateStatus returns the last quota GitHub reported
	RateStatus() domain.RateStatus
}

// Limits are the page sizes used by CollectRepositoryData
type Limits struct {
	Commits      int
	Contributors int
	Issues       int
	Releases     int
}

// DefaultLimits mirrors what the dashboard renders
var DefaultLimits = Limits{
	Commits:      10,
	Contributors: 10,
	Issues:       20,
	Releases:     5,
}
