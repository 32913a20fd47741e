package collector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v55/github"
	logger "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"

	"github.com/kurihiro0119/repo-concierge/internal/cache"
	"github.com/kurihiro0119/repo-concierge/internal/domain"
	apperrors "github.com/kurihiro0119/repo-concierge/internal/errors"
)

const userAgent = "repo-concierge"

// errStatsPending marks a 202 from a statistics endpoint
var errStatsPending = errors.New("statistics are being computed")

// Options configures a GitHub collector
type Options struct {
	// BaseURL overrides https://api.github.com/ (GitHub Enterprise, tests)
	BaseURL    string
	HTTPClient *http.Client
	Cache      cache.Cache
	TTL        time.Duration
	Limits     Limits
}

// githubCollector implements Collector using GitHub API
type githubCollector struct {
	baseURL     *url.URL
	httpClient  *http.Client
	cache       cache.Cache
	ttl         time.Duration
	limits      Limits
	rateTracker RateTracker
}

// NewGitHubCollector creates a new GitHub collector
func NewGitHubCollector(opts Options) (Collector, error) {
	c := &githubCollector{
		httpClient:  opts.HTTPClient,
		cache:       opts.Cache,
		ttl:         opts.TTL,
		limits:      opts.Limits,
		rateTracker: NewRateTracker(),
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if c.cache == nil {
		c.cache = cache.NewMemory(cache.DefaultTTL)
	}
	if c.ttl <= 0 {
		c.ttl = cache.DefaultTTL
	}
	if c.limits == (Limits{}) {
		c.limits = DefaultLimits
	}

	if opts.BaseURL != "" {
		raw := opts.BaseURL
		if !strings.HasSuffix(raw, "/") {
			raw += "/"
		}
		u, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub API URL %q: %w", opts.BaseURL, err)
		}
		c.baseURL = u
	}

	return c, nil
}

// client builds a go-github client for one call. Tokens travel in the
// "Authorization: token <value>" form.
func (c *githubCollector) client(token string) *github.Client {
	httpClient := c.httpClient
	if token != "" {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token, TokenType: "token"},
		)
		httpClient = &http.Client{
			Timeout:   c.httpClient.Timeout,
			Transport: &oauth2.Transport{Base: c.httpClient.Transport, Source: ts},
		}
	}

	client := github.NewClient(httpClient)
	client.UserAgent = userAgent
	if c.baseURL != nil {
		client.BaseURL = c.baseURL
	}
	return client
}

func cacheKey(endpoint, token string) string {
	scope := "noauth"
	if token != "" {
		scope = "auth"
	}
	return fmt.Sprintf("github_%s_%s", endpoint, scope)
}

// fetch serves endpoint from the cache or calls GitHub and stores the result
func fetch[T any](ctx context.Context, c *githubCollector, endpoint, token string, call func(*github.Client) (T, *github.Response, error)) (T, error) {
	key := cacheKey(endpoint, token)

	var result T
	if cache.GetJSON(ctx, c.cache, key, &result) {
		logger.Debugf("[collector] cache hit: %s", key)
		return result, nil
	}

	logger.Debugf("[collector] GET %s", endpoint)
	result, resp, err := call(c.client(token))
	c.rateTracker.Update(resp)
	if err != nil {
		var zero T
		return zero, c.translateError(endpoint, err)
	}

	if err := cache.PutJSON(ctx, c.cache, key, result, c.ttl); err != nil {
		logger.Warnf("[collector] failed to cache %s: %v", key, err)
	}
	return result, nil
}

// translateError maps go-github failures onto application errors
func (c *githubCollector) translateError(endpoint string, err error) error {
	if _, ok := apperrors.As(err); ok {
		return err
	}

	var accepted *github.AcceptedError
	if errors.As(err, &accepted) {
		return errStatsPending
	}

	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return rateLimited(rateErr.Rate.Reset.Time)
	}

	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return rateLimited(time.Now().Add(abuseErr.GetRetryAfter()))
	}

	var errResp *github.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		status := errResp.Response.StatusCode
		message := errResp.Message
		if message == "" {
			message = http.StatusText(status)
		}

		var appErr *apperrors.AppError
		switch {
		case status == http.StatusNotFound:
			return apperrors.NewNotFoundError(fmt.Sprintf("GitHub resource %s", endpoint))
		case status == http.StatusForbidden && errResp.Response.Header.Get("X-RateLimit-Remaining") == "0",
			status == http.StatusTooManyRequests:
			return rateLimited(resetFromHeader(errResp.Response.Header))
		case status == http.StatusUnauthorized:
			appErr = apperrors.NewUnauthorizedError(fmt.Sprintf("GitHub rejected the token - %s", message))
		case status == http.StatusForbidden:
			appErr = apperrors.NewForbiddenError(fmt.Sprintf("GitHub denied access to %s - %s", endpoint, message))
		default:
			return apperrors.NewUpstreamError(status, fmt.Sprintf("%s - %s", http.StatusText(status), message), err)
		}
		appErr.Status = status
		appErr.Err = err
		return appErr
	}

	logger.Errorf("[collector] request to %s failed: %v", endpoint, err)
	return apperrors.NewUpstreamError(0, fmt.Sprintf("request to GitHub failed: %v", err), err)
}

func rateLimited(reset time.Time) error {
	return apperrors.NewRateLimitedError(
		fmt.Sprintf("GitHub API rate limit exceeded. Resets at %s", reset.Format("15:04:05")),
	)
}

func resetFromHeader(h http.Header) time.Time {
	var seconds int64
	if _, err := fmt.Sscanf(h.Get("X-RateLimit-Reset"), "%d", &seconds); err != nil || seconds == 0 {
		return time.Now()
	}
	return time.Unix(seconds, 0)
}

// GetRepository retrieves repository metadata
func (c *githubCollector) GetRepository(ctx context.Context, owner, repo, token string) (*github.Repository, error) {
	endpoint := fmt.Sprintf("/repos/%s/%s", owner, repo)
	return fetch(ctx, c, endpoint, token, func(client *github.Client) (*github.Repository, *github.Response, error) {
		return client.Repositories.Get(ctx, owner, repo)
	})
}

// GetLanguages retrieves the language breakdown in bytes
func (c *githubCollector) GetLanguages(ctx context.Context, owner, repo, token string) (map[string]int, error) {
	endpoint := fmt.Sprintf("/repos/%s/%s/languages", owner, repo)
	return fetch(ctx, c, endpoint, token, func(client *github.Client) (map[string]int, *github.Response, error) {
		return client.Repositories.ListLanguages(ctx, owner, repo)
	})
}

// GetCommits retrieves the latest commits. An empty repository yields no commits.
func (c *githubCollector) GetCommits(ctx context.Context, owner, repo string, perPage int, token string) ([]*github.RepositoryCommit, error) {
	endpoint := fmt.Sprintf("/repos/%s/%s/commits?per_page=%d", owner, repo, perPage)
	return fetch(ctx, c, endpoint, token, func(client *github.Client) ([]*github.RepositoryCommit, *github.Response, error) {
		opts := &github.CommitsListOptions{
			ListOptions: github.ListOptions{PerPage: perPage},
		}
		commits, resp, err := client.Repositories.ListCommits(ctx, owner, repo, opts)
		// Skip if repository is empty or has no commits
		if err != nil && resp != nil && resp.StatusCode == http.StatusConflict {
			return []*github.RepositoryCommit{}, resp, nil
		}
		return commits, resp, err
	})
}

// GetContributors retrieves the top contributors by commit count
func (c *githubCollector) GetContributors(ctx context.Context, owner, repo string, perPage int, token string) ([]*github.Contributor, error) {
	endpoint := fmt.Sprintf("/repos/%s/%s/contributors?per_page=%d", owner, repo, perPage)
	return fetch(ctx, c, endpoint, token, func(client *github.Client) ([]*github.Contributor, *github.Response, error) {
		opts := &github.ListContributorsOptions{
			ListOptions: github.ListOptions{PerPage: perPage},
		}
		return client.Repositories.ListContributors(ctx, owner, repo, opts)
	})
}

// GetIssues retrieves issues (pull requests included, as GitHub reports them)
func (c *githubCollector) GetIssues(ctx context.Context, owner, repo, state string, perPage int, token string) ([]*github.Issue, error) {
	if state == "" {
		state = "all"
	}
	endpoint := fmt.Sprintf("/repos/%s/%s/issues?state=%s&per_page=%d", owner, repo, state, perPage)
	return fetch(ctx, c, endpoint, token, func(client *github.Client) ([]*github.Issue, *github.Response, error) {
		opts := &github.IssueListByRepoOptions{
			State:       state,
			ListOptions: github.ListOptions{PerPage: perPage},
		}
		return client.Issues.ListByRepo(ctx, owner, repo, opts)
	})
}

// GetReleases retrieves the latest releases
func (c *githubCollector) GetReleases(ctx context.Context, owner, repo string, perPage int, token string) ([]*github.RepositoryRelease, error) {
	endpoint := fmt.Sprintf("/repos/%s/%s/releases?per_page=%d", owner, repo, perPage)
	return fetch(ctx, c, endpoint, token, func(client *github.Client) ([]*github.RepositoryRelease, *github.Response, error) {
		return client.Repositories.ListReleases(ctx, owner, repo, &github.ListOptions{PerPage: perPage})
	})
}

// GetCodeFrequency retrieves weekly additions and deletions
func (c *githubCollector) GetCodeFrequency(ctx context.Context, owner, repo, token string) ([]*github.WeeklyStats, error) {
	endpoint := fmt.Sprintf("/repos/%s/%s/stats/code_frequency", owner, repo)
	stats, err := fetch(ctx, c, endpoint, token, func(client *github.Client) ([]*github.WeeklyStats, *github.Response, error) {
		return client.Repositories.ListCodeFrequency(ctx, owner, repo)
	})
	if errors.Is(err, errStatsPending) {
		logger.Debugf("[collector] code frequency for %s/%s not ready yet", owner, repo)
		return []*github.WeeklyStats{}, nil
	}
	return stats, err
}

// GetFileContent retrieves and decodes a single file
func (c *githubCollector) GetFileContent(ctx context.Context, owner, repo, path, ref, token string) ([]byte, error) {
	endpoint := fmt.Sprintf("/repos/%s/%s/contents/%s", owner, repo, path)
	if ref != "" {
		endpoint += "?ref=" + url.QueryEscape(ref)
	}
	return fetch(ctx, c, endpoint, token, func(client *github.Client) ([]byte, *github.Response, error) {
		var opts *github.RepositoryContentGetOptions
		if ref != "" {
			opts = &github.RepositoryContentGetOptions{Ref: ref}
		}
		file, _, resp, err := client.Repositories.GetContents(ctx, owner, repo, path, opts)
		if err != nil {
			return nil, resp, err
		}
		if file == nil {
			return nil, resp, apperrors.NewNotFoundError(fmt.Sprintf("File %s", path))
		}
		content, err := file.GetContent()
		if err != nil {
			return nil, resp, apperrors.NewUpstreamError(0, fmt.Sprintf("failed to decode %s", path), err)
		}
		return []byte(content), resp, nil
	})
}

// CollectRepositoryData fetches metadata, languages, commits, contributors,
// issues, releases and code frequency in parallel. Any failure except code
// frequency fails the whole collection.
func (c *githubCollector) CollectRepositoryData(ctx context.Context, owner, repo, token string) (*domain.RawRepositoryData, error) {
	raw := &domain.RawRepositoryData{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		r, err := c.GetRepository(gctx, owner, repo, token)
		raw.Repository = r
		return err
	})
	g.Go(func() error {
		langs, err := c.GetLanguages(gctx, owner, repo, token)
		raw.Languages = langs
		return err
	})
	g.Go(func() error {
		commits, err := c.GetCommits(gctx, owner, repo, c.limits.Commits, token)
		raw.Commits = commits
		return err
	})
	g.Go(func() error {
		contributors, err := c.GetContributors(gctx, owner, repo, c.limits.Contributors, token)
		raw.Contributors = contributors
		return err
	})
	g.Go(func() error {
		issues, err := c.GetIssues(gctx, owner, repo, "all", c.limits.Issues, token)
		raw.Issues = issues
		return err
	})
	g.Go(func() error {
		releases, err := c.GetReleases(gctx, owner, repo, c.limits.Releases, token)
		raw.Releases = releases
		return err
	})
	g.Go(func() error {
		stats, err := c.GetCodeFrequency(gctx, owner, repo, token)
		if err != nil {
			logger.Warnf("[collector] code frequency unavailable for %s/%s: %v", owner, repo, err)
			stats = []*github.WeeklyStats{}
		}
		raw.CodeFrequency = stats
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if raw.Languages == nil {
		raw.Languages = map[string]int{}
	}
	return raw, nil
}

// RateStatus returns the last quota GitHub reported
func (c *githubCollector) RateStatus() domain.RateStatus {
	return c.rateTracker.Status()
}
