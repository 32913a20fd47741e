package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kurihiro0119/repo-concierge/internal/domain"
	apperrors "github.com/kurihiro0119/repo-concierge/internal/errors"
)

// Client is the API client for the repo-concierge server
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new API client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Analyze retrieves the full analysis of a repository
func (c *Client) Analyze(ctx context.Context, owner, repo, token string) (*domain.Analysis, error) {
	path := fmt.Sprintf("/api/analyze/%s/%s", url.PathEscape(owner), url.PathEscape(repo))

	var response struct {
		Data *domain.Analysis `json:"data"`
	}
	if err := c.get(ctx, path, nil, token, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// Dashboard retrieves an analysis together with its chart datasets
func (c *Client) Dashboard(ctx context.Context, owner, repo, token string) (*domain.DashboardView, error) {
	path := fmt.Sprintf("/api/dashboard/%s/%s", url.PathEscape(owner), url.PathEscape(repo))

	var response struct {
		Data *domain.DashboardView `json:"data"`
	}
	if err := c.get(ctx, path, nil, token, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// Dependencies retrieves the manifest dependencies of a repository.
// An empty branch means the default branch.
func (c *Client) Dependencies(ctx context.Context, owner, repo, branch, token string) (*domain.Dependencies, error) {
	path := fmt.Sprintf("/api/dependencies/%s/%s", url.PathEscape(owner), url.PathEscape(repo))
	params := url.Values{}
	if branch != "" {
		params.Set("branch", branch)
	}

	var response struct {
		Data *domain.Dependencies `json:"data"`
	}
	if err := c.get(ctx, path, params, token, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// RateLimit retrieves the GitHub quota last observed by the server
func (c *Client) RateLimit(ctx context.Context) (*domain.RateStatus, error) {
	var response struct {
		Data *domain.RateStatus `json:"data"`
	}
	if err := c.get(ctx, "/api/rate-limit", nil, "", &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// HealthCheck checks if the API is healthy and returns the server version
func (c *Client) HealthCheck(ctx context.Context) (string, error) {
	var response struct {
		Status  string `json:"status"`
		Version string `json:"version"`
	}
	if err := c.get(ctx, "/health", nil, "", &response); err != nil {
		return "", err
	}
	if response.Status != "ok" {
		return "", fmt.Errorf("unhealthy status: %s", response.Status)
	}
	return response.Version, nil
}

type errorEnvelope struct {
	Error struct {
		Code    apperrors.ErrCode `json:"code"`
		Message string            `json:"message"`
	} `json:"error"`
}

func (c *Client) get(ctx context.Context, path string, params url.Values, token string, result any) error {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return err
	}
	if len(params) > 0 {
		u.RawQuery = params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		var envelope errorEnvelope
		if json.Unmarshal(body, &envelope) == nil && envelope.Error.Code != "" {
			return &apperrors.AppError{
				Code:    envelope.Error.Code,
				Message: envelope.Error.Message,
				Status:  resp.StatusCode,
			}
		}
		return fmt.Errorf("API error: %s - %s", resp.Status, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(result)
}
