package main

import (
	"context"
	"fmt"
	"os"
	"time"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/kurihiro0119/repo-concierge/internal/aggregator"
	"github.com/kurihiro0119/repo-concierge/internal/config"
	"github.com/kurihiro0119/repo-concierge/internal/domain"
	"github.com/kurihiro0119/repo-concierge/internal/parser"
	"github.com/kurihiro0119/repo-concierge/internal/report"
	"github.com/kurihiro0119/repo-concierge/pkg/client"
)

const commandTimeout = 2 * time.Minute

var (
	outputFormat string
	token        string
	remote       bool
	endpoint     string
	branch       string
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "repo-concierge",
	Short: "GitHub repository analysis tool",
	Long: `A CLI tool for analyzing public GitHub repositories.

It fetches repository metadata, languages, commits, contributors, issues,
releases and code frequency from GitHub and derives activity, popularity
and health scores, narrative insights and a project assessment.

Repositories can be given as owner/repo, an https URL or an SSH remote.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			logger.SetLevel(logger.DebugLevel)
		}
		if token != "" && !parser.ValidateToken(token) {
			logger.Warn("The token does not look like a GitHub token; using it anyway")
		}
		_, err := report.ParseFormat(outputFormat)
		return err
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [repo]",
	Short: "Analyze a repository",
	Long:  `Fetch a repository from GitHub and print its statistics, insights and assessment.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard [repo]",
	Short: "Show repository charts",
	Long:  `Display the language, commit, contributor, issue and timeline charts of a repository.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDashboard,
}

var depsCmd = &cobra.Command{
	Use:   "deps [repo]",
	Short: "List repository dependencies",
	Long:  `Read package.json or go.mod from the repository and list the declared dependencies.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDeps,
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the API server",
	Long:  `Check that the API server at --endpoint is up and show the GitHub quota it last observed.`,
	Args:  cobra.NoArgs,
	RunE:  runHealth,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "table", "output format (table, json, yaml)")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("GITHUB_TOKEN"), "GitHub token (default is $GITHUB_TOKEN)")
	rootCmd.PersistentFlags().BoolVar(&remote, "remote", false, "go through the API server instead of calling GitHub directly")
	rootCmd.PersistentFlags().StringVar(&endpoint, "endpoint", "", "API server URL (default is $API_ENDPOINT)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	depsCmd.Flags().StringVar(&branch, "branch", "", "branch or ref to read the manifest from (default branch when empty)")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(depsCmd)
	rootCmd.AddCommand(healthCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// backend is the subset of operations the CLI needs, served either in-process
// or by the API server
type backend interface {
	Analyze(ctx context.Context, owner, repo, token string) (*domain.Analysis, error)
	Dashboard(ctx context.Context, owner, repo, token string) (*domain.DashboardView, error)
	Dependencies(ctx context.Context, owner, repo, branch, token string) (*domain.Dependencies, error)
}

type localBackend struct {
	agg aggregator.Aggregator
}

func (b localBackend) Analyze(ctx context.Context, owner, repo, token string) (*domain.Analysis, error) {
	return b.agg.AnalyzeRepository(ctx, owner, repo, token)
}

func (b localBackend) Dashboard(ctx context.Context, owner, repo, token string) (*domain.DashboardView, error) {
	return b.agg.BuildDashboard(ctx, owner, repo, token)
}

func (b localBackend) Dependencies(ctx context.Context, owner, repo, branch, token string) (*domain.Dependencies, error) {
	return b.agg.GetDependencies(ctx, owner, repo, branch, token)
}

func apiEndpoint() (string, error) {
	if endpoint != "" {
		return endpoint, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return "", fmt.Errorf("failed to load config: %w", err)
	}
	return cfg.APIEndpoint, nil
}

func getBackend() (backend, error) {
	if remote {
		url, err := apiEndpoint()
		if err != nil {
			return nil, err
		}
		logger.Debugf("[cli] using API server at %s", url)
		return client.NewClient(url), nil
	}

	agg, cfg, err := injectAggregator()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize: %w", err)
	}
	// config loading resets the log level
	if verbose {
		logger.SetLevel(logger.DebugLevel)
	}
	// .env is only read once the container loads config
	if token == "" {
		token = cfg.GitHubToken
	}
	return localBackend{agg: agg}, nil
}

func newRenderer() *report.Renderer {
	format, _ := report.ParseFormat(outputFormat)
	return report.NewRenderer(os.Stdout, format)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ref, err := parser.ParseRepository(args[0])
	if err != nil {
		return err
	}
	b, err := getBackend()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
	defer cancel()

	analysis, err := b.Analyze(ctx, ref.Owner, ref.Repo, token)
	if err != nil {
		return fmt.Errorf("failed to analyze %s: %w", ref.FullName(), err)
	}
	return newRenderer().RenderAnalysis(analysis)
}

func runDashboard(cmd *cobra.Command, args []string) error {
	ref, err := parser.ParseRepository(args[0])
	if err != nil {
		return err
	}
	b, err := getBackend()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
	defer cancel()

	view, err := b.Dashboard(ctx, ref.Owner, ref.Repo, token)
	if err != nil {
		return fmt.Errorf("failed to build dashboard for %s: %w", ref.FullName(), err)
	}
	return newRenderer().RenderDashboard(view)
}

func runDeps(cmd *cobra.Command, args []string) error {
	ref, err := parser.ParseRepository(args[0])
	if err != nil {
		return err
	}
	b, err := getBackend()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
	defer cancel()

	deps, err := b.Dependencies(ctx, ref.Owner, ref.Repo, branch, token)
	if err != nil {
		return fmt.Errorf("failed to read dependencies of %s: %w", ref.FullName(), err)
	}
	return newRenderer().RenderDependencies(deps)
}

func runHealth(cmd *cobra.Command, args []string) error {
	url, err := apiEndpoint()
	if err != nil {
		return err
	}
	c := client.NewClient(url)

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	version, err := c.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("API server at %s is not healthy: %w", url, err)
	}
	rate, err := c.RateLimit(ctx)
	if err != nil {
		return fmt.Errorf("failed to read rate limit: %w", err)
	}

	return newRenderer().RenderValue(map[string]any{
		"endpoint":       url,
		"status":         "ok",
		"version":        version,
		"rate_observed":  rate.Observed,
		"rate_limit":     rate.Limit,
		"rate_remaining": rate.Remaining,
		"rate_reset":     report.FormatDate(rate.Reset),
	})
}
