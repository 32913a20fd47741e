package report

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/kurihiro0119/repo-concierge/internal/domain"
)

var now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func sampleAnalysis() *domain.Analysis {
	published := now.AddDate(0, -1, 0)
	return &domain.Analysis{
		Repo: domain.RepositorySummary{
			Name:          "octo/hello",
			Description:   "A friendly greeting service",
			URL:           "https://github.com/octo/hello",
			DefaultBranch: "main",
			Stars:         1500,
			Forks:         12,
			License:       "MIT",
			Created:       now.AddDate(-2, 0, 0),
			Updated:       now.AddDate(0, 0, -2),
		},
		Stats: domain.Stats{
			Age:        domain.AgeStats{Days: 730, Months: 24, Years: 2, Display: "2 years"},
			Activity:   domain.ActivityStats{Score: 98, CommitFrequency: domain.CommitFrequencyMedium},
			Popularity: domain.PopularityStats{Score: 79.4},
			Health:     domain.HealthStats{Score: 80, IssueCloseRate: "70.0%"},
		},
		Languages: []domain.LanguageShare{
			{Name: "Go", Bytes: 800, Percentage: 80},
			{Name: "Shell", Bytes: 200, Percentage: 20},
		},
		Commits: []domain.CommitRecord{
			{SHA: "abc1234", Message: "add greeting", Author: "Octo", Date: now.Add(-time.Hour)},
			{SHA: "def5678", Message: "fix typo", Author: "Cat", Date: now.AddDate(0, 0, -3)},
			{SHA: "0000000", Message: "ancient", Author: "Cat", Date: now.AddDate(0, 0, -45)},
		},
		Contributors: []domain.ContributorRecord{
			{Login: "octo", Contributions: 30},
			{Login: "cat", Contributions: 5},
		},
		Issues:   domain.IssueTally{Open: 3, Closed: 7, Total: 10, CloseRate: 70, CloseRateDisplay: "70.0%"},
		Releases: []domain.ReleaseRecord{{Name: "First", Tag: "v1.0.0", Date: &published}},
		Insights: domain.InsightBundle{
			Technical: domain.Insight{Main: "This repository primarily uses Go with 1 supporting languages.", Details: []string{"x"}},
		},
	}
}

func TestCommitVolume(t *testing.T) {
	commits := []domain.CommitRecord{
		{Date: now.Add(-time.Hour)},
		{Date: now.Add(-2 * time.Hour)},
		{Date: now.AddDate(0, 0, -3)},
		{Date: now.AddDate(0, 0, -30)},
		{Date: now.AddDate(0, 0, -31)},
		{Date: now.AddDate(0, 0, 2)},
	}

	points := CommitVolume(commits, now)
	require.Len(t, points, 31)

	assert.Equal(t, time.Date(2024, 5, 16, 0, 0, 0, 0, time.UTC), points[0].Timestamp)
	assert.Equal(t, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), points[30].Timestamp)
	assert.Equal(t, int64(1), points[0].Value)
	assert.Equal(t, int64(1), points[27].Value)
	assert.Equal(t, int64(2), points[30].Value)

	var total int64
	for _, p := range points {
		total += p.Value
	}
	assert.Equal(t, int64(4), total)
}

func TestCommitVolume_Empty(t *testing.T) {
	points := CommitVolume(nil, now)
	require.Len(t, points, 31)
	for _, p := range points {
		assert.Zero(t, p.Value)
	}
}

func TestTimeline(t *testing.T) {
	created := now.AddDate(0, 0, -100)
	updated := now.AddDate(0, 0, -20)

	points := Timeline(created, updated, now)
	require.Len(t, points, 4)

	assert.Equal(t, []string{"Created", "Development", "Latest Update", "Current"},
		[]string{points[0].Label, points[1].Label, points[2].Label, points[3].Label})
	assert.Equal(t, []int{10, 50, 80, 60},
		[]int{points[0].Activity, points[1].Activity, points[2].Activity, points[3].Activity})
	assert.Equal(t, now.AddDate(0, 0, -60), points[1].Date)
	assert.Equal(t, now, points[3].Date)
}

func TestBuildDashboard(t *testing.T) {
	a := sampleAnalysis()
	for i := 0; i < 12; i++ {
		a.Contributors = append(a.Contributors, domain.ContributorRecord{Login: "bot", Contributions: 1})
	}

	d := BuildDashboard(a, now)

	assert.Equal(t, []domain.LabeledValue{{Label: "Go", Value: 80}, {Label: "Shell", Value: 20}}, d.LanguageShare)
	assert.Len(t, d.CommitVolume, 31)
	require.Len(t, d.TopContributors, 10)
	assert.Equal(t, domain.LabeledValue{Label: "octo", Value: 30}, d.TopContributors[0])
	assert.Equal(t, domain.IssueSplit{Open: 3, Closed: 7, OpenPercentage: 30, ClosedPercentage: 70}, d.IssueSplit)
	assert.Len(t, d.Timeline, 4)
}

func TestBuildDashboard_NoIssues(t *testing.T) {
	a := sampleAnalysis()
	a.Issues = domain.IssueTally{}

	d := BuildDashboard(a, now)
	assert.Zero(t, d.IssueSplit.OpenPercentage)
	assert.Zero(t, d.IssueSplit.ClosedPercentage)
}

func TestFormatNumber(t *testing.T) {
	testCases := []struct {
		input    int64
		expected string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1.0K"},
		{1500, "1.5K"},
		{2_000_000, "2.0M"},
		{3_400_000_000, "3.4B"},
	}
	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, FormatNumber(tc.input))
		})
	}
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "Jun 15, 2024", FormatDate(now))
	assert.Equal(t, "-", FormatDate(time.Time{}))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestRenderer_Table(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, FormatTable)
	view := &domain.DashboardView{Analysis: sampleAnalysis()}
	view.Dashboard = BuildDashboard(view.Analysis, now)

	require.NoError(t, r.RenderDashboard(view))

	out := buf.String()
	assert.Contains(t, out, "octo/hello")
	assert.Contains(t, out, "1.5K")
	assert.Contains(t, out, "primarily uses Go")
	assert.Contains(t, out, "abc1234")
	assert.Contains(t, out, "v1.0.0")
	assert.Contains(t, out, "Latest Update")
	assert.Contains(t, out, "###")
}

func TestRenderer_PopularityOneDecimal(t *testing.T) {
	var buf bytes.Buffer
	a := sampleAnalysis()
	a.Stats.Popularity.Score = 59.99184303702595

	require.NoError(t, NewRenderer(&buf, FormatTable).RenderAnalysis(a))

	assert.Contains(t, buf.String(), "60.0")
	assert.NotContains(t, buf.String(), "59.99")
}

func TestRenderer_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewRenderer(&buf, FormatJSON).RenderAnalysis(sampleAnalysis()))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "octo/hello", decoded["repo"].(map[string]any)["name"])
	assert.Equal(t, "70.0%", decoded["issues"].(map[string]any)["closeRate"])
}

func TestRenderer_YAML(t *testing.T) {
	var buf bytes.Buffer
	deps := &domain.Dependencies{
		Owner:        "octo",
		Repo:         "hello",
		Manifest:     "package.json",
		Dependencies: map[string]string{"express": "^4.18.2"},
		Names:        []string{"express"},
	}
	require.NoError(t, NewRenderer(&buf, FormatYAML).RenderDependencies(deps))

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "package.json", decoded["manifest"])
	assert.Equal(t, map[string]any{"express": "^4.18.2"}, decoded["dependencies"])
}

func TestRenderer_DependenciesTable(t *testing.T) {
	var buf bytes.Buffer
	deps := &domain.Dependencies{
		Owner:        "octo",
		Repo:         "hello",
		Manifest:     "go.mod",
		Dependencies: map[string]string{"github.com/gin-gonic/gin": "v1.9.1"},
		Names:        []string{"github.com/gin-gonic/gin"},
	}
	require.NoError(t, NewRenderer(&buf, FormatTable).RenderDependencies(deps))
	assert.Contains(t, buf.String(), "github.com/gin-gonic/gin")
	assert.Contains(t, buf.String(), "v1.9.1")
}

func TestRenderer_Value(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewRenderer(&buf, FormatTable).RenderValue(map[string]string{"status": "ok", "version": "1.0.0"}))
	assert.Contains(t, buf.String(), "status")
	assert.Contains(t, buf.String(), "1.0.0")
}
