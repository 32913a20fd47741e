// Package report turns an analysis into chart datasets and terminal output.
package report

import (
	"time"

	"github.com/montanaflynn/stats"

	"github.com/kurihiro0119/repo-concierge/internal/domain"
)

const (
	commitWindowDays = 30
	maxContributors  = 10
)

// BuildDashboard derives the five chart datasets of an analysis
func BuildDashboard(a *domain.Analysis, now time.Time) *domain.Dashboard {
	return &domain.Dashboard{
		LanguageShare:   languageShare(a.Languages),
		CommitVolume:    CommitVolume(a.Commits, now),
		TopContributors: topContributors(a.Contributors),
		IssueSplit:      issueSplit(a.Issues),
		Timeline:        Timeline(a.Repo.Created, a.Repo.Updated, now),
	}
}

func languageShare(languages []domain.LanguageShare) []domain.LabeledValue {
	values := make([]domain.LabeledValue, 0, len(languages))
	for _, l := range languages {
		values = append(values, domain.LabeledValue{Label: l.Name, Value: l.Percentage})
	}
	return values
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// CommitVolume counts commits per UTC day over the last 30 days. Every day
// in the window has a point, oldest first.
func CommitVolume(commits []domain.CommitRecord, now time.Time) []domain.TimeSeriesPoint {
	first := truncateDay(now).AddDate(0, 0, -commitWindowDays)
	points := make([]domain.TimeSeriesPoint, commitWindowDays+1)
	for i := range points {
		points[i].Timestamp = first.AddDate(0, 0, i)
	}

	for _, c := range commits {
		d := truncateDay(c.Date)
		idx := int(d.Sub(first).Hours() / 24)
		if idx < 0 || idx >= len(points) {
			continue
		}
		points[idx].Value++
	}
	return points
}

func topContributors(contributors []domain.ContributorRecord) []domain.LabeledValue {
	if len(contributors) > maxContributors {
		contributors = contributors[:maxContributors]
	}
	values := make([]domain.LabeledValue, 0, len(contributors))
	for _, c := range contributors {
		values = append(values, domain.LabeledValue{Label: c.Login, Value: float64(c.Contributions)})
	}
	return values
}

func percentOf(part, total int) float64 {
	if total == 0 {
		return 0
	}
	p, err := stats.Round(float64(part)/float64(total)*100, 1)
	if err != nil {
		return 0
	}
	return p
}

func issueSplit(issues domain.IssueTally) domain.IssueSplit {
	total := issues.Open + issues.Closed
	return domain.IssueSplit{
		Open:             issues.Open,
		Closed:           issues.Closed,
		OpenPercentage:   percentOf(issues.Open, total),
		ClosedPercentage: percentOf(issues.Closed, total),
	}
}

// Timeline is the fixed four-milestone activity curve
func Timeline(created, updated, now time.Time) []domain.TimelinePoint {
	midpoint := created.Add(updated.Sub(created) / 2)
	return []domain.TimelinePoint{
		{Label: "Created", Date: created, Activity: 10},
		{Label: "Development", Date: midpoint, Activity: 50},
		{Label: "Latest Update", Date: updated, Activity: 80},
		{Label: "Current", Date: now, Activity: 60},
	}
}
