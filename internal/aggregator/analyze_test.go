package aggregator

import (
	"testing"
	"time"

	"github.com/google/go-github/v55/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurihiro0119/repo-concierge/internal/domain"
)

var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func ts(t time.Time) *github.Timestamp {
	return &github.Timestamp{Time: t}
}

func commitAt(sha, message, author string, date time.Time) *github.RepositoryCommit {
	c := &github.RepositoryCommit{
		SHA:    github.String(sha),
		Commit: &github.Commit{Message: github.String(message)},
	}
	if author != "" || !date.IsZero() {
		c.Commit.Author = &github.CommitAuthor{}
		if author != "" {
			c.Commit.Author.Name = github.String(author)
		}
		if !date.IsZero() {
			c.Commit.Author.Date = ts(date)
		}
	}
	return c
}

func issues(open, closed int) []*github.Issue {
	var out []*github.Issue
	for i := 0; i < open; i++ {
		out = append(out, &github.Issue{State: github.String("open")})
	}
	for i := 0; i < closed; i++ {
		out = append(out, &github.Issue{State: github.String("closed")})
	}
	return out
}

// sampleRaw mirrors a small, active JavaScript project
func sampleRaw() *domain.RawRepositoryData {
	return &domain.RawRepositoryData{
		Repository: &github.Repository{
			Name:            github.String("widget"),
			FullName:        github.String("acme/widget"),
			Owner:           &github.User{Login: github.String("acme")},
			Description:     github.String("Builds Interactive Widgets for the web"),
			HTMLURL:         github.String("https://github.com/acme/widget"),
			Homepage:        github.String("https://widget.dev"),
			DefaultBranch:   github.String("main"),
			StargazersCount: github.Int(250),
			ForksCount:      github.Int(30),
			OpenIssuesCount: github.Int(3),
			WatchersCount:   github.Int(250),
			License:         &github.License{SPDXID: github.String("MIT")},
			CreatedAt:       ts(fixedNow.AddDate(0, 0, -400)),
			UpdatedAt:       ts(fixedNow.Add(-3 * time.Hour)),
			Size:            github.Int(20480),
		},
		Languages: map[string]int{"JavaScript": 5000, "CSS": 2000, "HTML": 1000},
		Commits: []*github.RepositoryCommit{
			commitAt("1111111aaaa", "feat(ui): add slider\n\nlong body", "Ada", fixedNow.Add(-time.Hour)),
			commitAt("2222222bbbb", "fix: handle empty input", "Grace", fixedNow.AddDate(0, 0, -2)),
			commitAt("3333333cccc", "Merge pull request #4", "Ada", fixedNow.AddDate(0, 0, -10)),
		},
		Contributors: []*github.Contributor{
			{Login: github.String("ada"), Contributions: github.Int(40)},
			{Login: github.String("grace"), Contributions: github.Int(12)},
		},
		Issues: issues(3, 7),
		Releases: []*github.RepositoryRelease{
			{TagName: github.String("v1.2.0"), Name: github.String("Spring"), PublishedAt: ts(fixedNow.AddDate(0, -1, 0))},
			{TagName: github.String("v1.3.0-rc.1"), Prerelease: github.Bool(true)},
		},
		CodeFrequency: []*github.WeeklyStats{
			{Week: ts(fixedNow.AddDate(0, 0, -7)), Additions: github.Int(120), Deletions: github.Int(-30)},
		},
	}
}

func TestLanguageBreakdown(t *testing.T) {
	shares := LanguageBreakdown(map[string]int{"JavaScript": 5000, "CSS": 2000, "HTML": 1000})

	assert.Equal(t, []domain.LanguageShare{
		{Name: "JavaScript", Bytes: 5000, Percentage: 62.5},
		{Name: "CSS", Bytes: 2000, Percentage: 25},
		{Name: "HTML", Bytes: 1000, Percentage: 12.5},
	}, shares)
}

func TestLanguageBreakdown_Edges(t *testing.T) {
	assert.Empty(t, LanguageBreakdown(nil))
	assert.Empty(t, LanguageBreakdown(map[string]int{"Go": 0}))

	shares := LanguageBreakdown(map[string]int{"B": 1, "A": 1, "C": 1})
	require.Len(t, shares, 3)
	assert.Equal(t, "A", shares[0].Name)
	assert.Equal(t, 33.3, shares[0].Percentage)

	var sum float64
	for _, s := range shares {
		sum += s.Percentage
	}
	assert.InDelta(t, 100, sum, 0.5)
}

func TestTallyIssues(t *testing.T) {
	tally := TallyIssues(issues(3, 7))
	assert.Equal(t, 3, tally.Open)
	assert.Equal(t, 7, tally.Closed)
	assert.Equal(t, 10, tally.Total)
	assert.Equal(t, 70.0, tally.CloseRate)
	assert.Equal(t, "70.0%", tally.CloseRateDisplay)

	empty := TallyIssues(nil)
	assert.Zero(t, empty.CloseRate)
	assert.Equal(t, "0.0%", empty.CloseRateDisplay)

	// unknown states are ignored
	odd := TallyIssues([]*github.Issue{{State: github.String("locked")}, {}})
	assert.Zero(t, odd.Total)
}

func TestCommitFrequencyOf(t *testing.T) {
	recent := func(n int) []domain.CommitRecord {
		out := make([]domain.CommitRecord, n)
		for i := range out {
			out[i].Date = fixedNow.Add(-time.Duration(i+1) * time.Hour)
		}
		return out
	}
	old := domain.CommitRecord{Date: fixedNow.AddDate(0, 0, -8)}

	testCases := []struct {
		name     string
		commits  []domain.CommitRecord
		expected domain.CommitFrequency
	}{
		{name: "no commits", commits: nil, expected: domain.CommitFrequencyLow},
		{name: "one recent", commits: recent(1), expected: domain.CommitFrequencyLow},
		{name: "two recent", commits: recent(2), expected: domain.CommitFrequencyMedium},
		{name: "four recent", commits: recent(4), expected: domain.CommitFrequencyMedium},
		{name: "five recent", commits: recent(5), expected: domain.CommitFrequencyHigh},
		{name: "only old", commits: []domain.CommitRecord{old, old, old, old, old}, expected: domain.CommitFrequencyLow},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, CommitFrequencyOf(tc.commits, fixedNow))
		})
	}
}

func TestScores(t *testing.T) {
	assert.Equal(t, 100, ActivityScore(0))
	assert.Equal(t, 70, ActivityScore(30))
	assert.Equal(t, 0, ActivityScore(150))
	assert.Equal(t, 100, ActivityScore(-3))

	assert.Equal(t, 0.0, PopularityScore(0))
	assert.InDelta(t, 25.0, PopularityScore(9), 1e-9)
	assert.InDelta(t, 26.0348, PopularityScore(10), 1e-4)
	assert.InDelta(t, 40.8367, PopularityScore(42), 1e-4)
	assert.InDelta(t, 75.0108, PopularityScore(1000), 1e-4)
	assert.Equal(t, 100.0, PopularityScore(200000))

	tally := domain.IssueTally{Open: 3, Closed: 7, Total: 10, CloseRate: 70}
	assert.Equal(t, 63, HealthScore(100, tally, 2))
	assert.Equal(t, 50, HealthScore(100, domain.IssueTally{}, 0))
	assert.Equal(t, 100, HealthScore(100, domain.IssueTally{Closed: 4, Total: 4, CloseRate: 100}, 25))
	assert.Equal(t, 0, HealthScore(0, domain.IssueTally{Open: 5, Total: 5}, 0))
}

func TestPopularityScore_NonDecreasing(t *testing.T) {
	prev := PopularityScore(0)
	for stars := 1; stars <= 200000; stars += 7 {
		score := PopularityScore(stars)
		assert.GreaterOrEqual(t, score, prev, "stars=%d", stars)
		assert.LessOrEqual(t, score, 100.0)
		prev = score
	}
}

func TestAnalyze(t *testing.T) {
	raw := sampleRaw()
	a := Analyze(raw, fixedNow)

	assert.Equal(t, fixedNow, a.GeneratedAt)
	assert.Equal(t, "acme/widget", a.Repo.Name)
	assert.Equal(t, "acme", a.Repo.Owner)
	assert.Equal(t, "MIT", a.Repo.License)

	require.Len(t, a.Languages, 3)
	assert.Equal(t, "JavaScript", a.Languages[0].Name)
	assert.Equal(t, 62.5, a.Languages[0].Percentage)

	require.Len(t, a.Commits, 3)
	assert.Equal(t, domain.CommitRecord{SHA: "1111111", Message: "feat(ui): add slider", Author: "Ada", Date: fixedNow.Add(-time.Hour)}, a.Commits[0])

	assert.Equal(t, "70.0%", a.Issues.CloseRateDisplay)
	assert.Equal(t, "70.0%", a.Stats.Health.IssueCloseRate)
	assert.Equal(t, 2, a.Stats.Health.ContributorCount)

	assert.Equal(t, domain.AgeStats{Days: 400, Months: 13, Years: 1, Display: "1 years"}, a.Stats.Age)
	assert.Equal(t, 100, a.Stats.Activity.Score)
	assert.Equal(t, 0, a.Stats.Activity.DaysSinceLastUpdate)
	assert.Equal(t, domain.CommitFrequencyMedium, a.Stats.Activity.CommitFrequency)
	assert.InDelta(t, 59.9918, a.Stats.Popularity.Score, 1e-4)
	assert.Equal(t, 250, a.Stats.Popularity.Watchers)
	assert.Equal(t, 63, a.Stats.Health.Score)

	require.Len(t, a.Releases, 2)
	assert.Equal(t, "Spring", a.Releases[0].Name)
	assert.Equal(t, "v1.3.0-rc.1", a.Releases[1].Name)
	assert.Nil(t, a.Releases[1].Date)

	require.Len(t, a.CodeFrequency, 1)
	assert.Equal(t, 120, a.CodeFrequency[0].Additions)
	assert.Equal(t, -30, a.CodeFrequency[0].Deletions)
}

func TestAnalyze_DoesNotMutateInput(t *testing.T) {
	raw := sampleRaw()
	before := *raw.Repository
	langs := len(raw.Languages)

	Analyze(raw, fixedNow)

	assert.Equal(t, before, *raw.Repository)
	assert.Len(t, raw.Languages, langs)
	assert.Equal(t, "feat(ui): add slider\n\nlong body", raw.Commits[0].GetCommit().GetMessage())
}

func TestAnalyze_Insights(t *testing.T) {
	a := Analyze(sampleRaw(), fixedNow)

	assert.Equal(t,
		"This repository primarily uses JavaScript with 2 supporting languages. "+
			"It shows steady development with regular commits. "+
			"The codebase is medium-sized (20.0 MB).",
		a.Insights.Technical.Main)
	assert.Equal(t, []string{
		"The repository has 3 recent commits.",
		`Main branch is "main".`,
		"There are 3 languages used in this codebase.",
	}, a.Insights.Technical.Details)

	assert.Equal(t,
		"This is a moderately maintained project with average activity. "+
			"It has a small team with only 2 contributor(s). "+
			"With 250 stars, it has moderate community interest.",
		a.Insights.Business.Main)
	assert.Equal(t, "The repository has 3 open issues.", a.Insights.Business.Details[0])
	assert.Contains(t, a.Insights.Business.Details[1], "(13 months)")
	assert.Equal(t, `The license is "MIT", which allows commercial use.`, a.Insights.Business.Details[2])

	assert.Equal(t,
		"acme/widget is a public repository that builds interactive widgets for the web. "+
			"It is actively maintained with updates in the past week.",
		a.Insights.General.Main)
	assert.Equal(t, []string{
		"Project website: https://widget.dev",
		"Created by ada and has 2 contributor(s).",
		"The project has 30 fork(s) and 250 star(s).",
	}, a.Insights.General.Details)
}

func TestAnalyze_MalformedEntries(t *testing.T) {
	raw := sampleRaw()
	raw.Repository.License = nil
	raw.Repository.Description = nil
	raw.Repository.Homepage = nil
	raw.Commits = []*github.RepositoryCommit{
		{SHA: github.String("abc"), Commit: &github.Commit{}},
		nil,
	}
	raw.Contributors = nil
	raw.Releases = []*github.RepositoryRelease{{TagName: github.String("v0.1.0")}}

	a := Analyze(raw, fixedNow)

	require.Len(t, a.Commits, 1)
	assert.Equal(t, "Unknown", a.Commits[0].Author)
	assert.Equal(t, "", a.Commits[0].Message)
	assert.Equal(t, "abc", a.Commits[0].SHA)
	assert.Equal(t, fixedNow, a.Commits[0].Date)
	assert.Equal(t, domain.CommitFrequencyLow, a.Stats.Activity.CommitFrequency)

	assert.Equal(t, "None", a.Repo.License)
	assert.Equal(t, "v0.1.0", a.Releases[0].Name)

	assert.Equal(t, "acme/widget is a public repository.", a.Insights.General.Main)
	assert.Equal(t, "No project website specified.", a.Insights.General.Details[0])
	assert.Equal(t, "Created by unknown and has 0 contributor(s).", a.Insights.General.Details[1])
	assert.Equal(t, `The license is "not specified", which may restrict usage.`, a.Insights.Business.Details[2])
}

func TestAnalyze_CommitAuthorFallsBackToLogin(t *testing.T) {
	raw := sampleRaw()
	raw.Commits = []*github.RepositoryCommit{{
		SHA:    github.String("abcdef0123"),
		Author: &github.User{Login: github.String("octocat")},
		Commit: &github.Commit{Message: github.String("chore: tidy")},
	}}

	a := Analyze(raw, fixedNow)
	assert.Equal(t, "octocat", a.Commits[0].Author)
}

func TestAnalyze_EmptyRepository(t *testing.T) {
	a := Analyze(&domain.RawRepositoryData{}, fixedNow)

	assert.Empty(t, a.Languages)
	assert.Empty(t, a.Commits)
	assert.NotNil(t, a.Commits)
	assert.Equal(t, "0.0%", a.Issues.CloseRateDisplay)
	assert.Equal(t, "This repository has no detected languages. "+
		"It shows limited recent development activity. "+
		"The codebase is relatively small (0.0 MB).", a.Insights.Technical.Main)
}

func TestAnalyze_Thresholds(t *testing.T) {
	testCases := []struct {
		name     string
		mutate   func(raw *domain.RawRepositoryData)
		contains func(a *domain.Analysis) (string, string)
	}{
		{
			name:   "large codebase",
			mutate: func(raw *domain.RawRepositoryData) { raw.Repository.Size = github.Int(200 * 1024) },
			contains: func(a *domain.Analysis) (string, string) {
				return a.Insights.Technical.Main, "The codebase is large (200.0 MB), suggesting a mature project."
			},
		},
		{
			name: "high activity",
			mutate: func(raw *domain.RawRepositoryData) {
				for i := 0; i < 5; i++ {
					raw.Commits = append(raw.Commits, commitAt("f", "chore", "Ada", fixedNow.Add(-time.Minute)))
				}
			},
			contains: func(a *domain.Analysis) (string, string) {
				return a.Insights.Technical.Main, "It shows high development activity with frequent commits."
			},
		},
		{
			name: "large team",
			mutate: func(raw *domain.RawRepositoryData) {
				for i := 0; i < 11; i++ {
					raw.Contributors = append(raw.Contributors, &github.Contributor{Login: github.String("dev")})
				}
			},
			contains: func(a *domain.Analysis) (string, string) {
				return a.Insights.Business.Main, "It has a large team with 13 contributors."
			},
		},
		{
			name:   "many stars",
			mutate: func(raw *domain.RawRepositoryData) { raw.Repository.StargazersCount = github.Int(5000) },
			contains: func(a *domain.Analysis) (string, string) {
				return a.Insights.Business.Main, "With 5000 stars, it has significant community interest."
			},
		},
		{
			name: "stale project",
			mutate: func(raw *domain.RawRepositoryData) {
				raw.Repository.UpdatedAt = ts(fixedNow.AddDate(-1, 0, 0))
				raw.Commits = []*github.RepositoryCommit{commitAt("a", "old", "Ada", fixedNow.AddDate(0, 0, -120))}
				raw.Issues = issues(10, 0)
				raw.Contributors = raw.Contributors[:1]
			},
			contains: func(a *domain.Analysis) (string, string) {
				return a.Insights.Business.Main + a.Insights.General.Main,
					"This project shows signs of limited maintenance and may require attention."
			},
		},
		{
			name: "updated last month",
			mutate: func(raw *domain.RawRepositoryData) {
				raw.Commits = []*github.RepositoryCommit{commitAt("a", "x", "Ada", fixedNow.AddDate(0, 0, -20))}
			},
			contains: func(a *domain.Analysis) (string, string) {
				return a.Insights.General.Main, "It has been updated in the past month."
			},
		},
		{
			name: "updated a few months ago",
			mutate: func(raw *domain.RawRepositoryData) {
				raw.Commits = []*github.RepositoryCommit{commitAt("a", "x", "Ada", fixedNow.AddDate(0, 0, -60))}
			},
			contains: func(a *domain.Analysis) (string, string) {
				return a.Insights.General.Main, "It was last updated a few months ago."
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			raw := sampleRaw()
			tc.mutate(raw)
			text, want := tc.contains(Analyze(raw, fixedNow))
			assert.Contains(t, text, want)
		})
	}
}

func TestAnalyze_HealthInRange(t *testing.T) {
	for _, stars := range []int{0, 10, 1000, 1 << 30} {
		raw := sampleRaw()
		raw.Repository.StargazersCount = github.Int(stars)
		a := Analyze(raw, fixedNow)

		assert.GreaterOrEqual(t, a.Stats.Health.Score, 0)
		assert.LessOrEqual(t, a.Stats.Health.Score, 100)
		assert.GreaterOrEqual(t, a.Stats.Popularity.Score, 0.0)
		assert.LessOrEqual(t, a.Stats.Popularity.Score, 100.0)
	}
}
