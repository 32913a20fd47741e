package aggregator

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/go-github/v55/github"
	"github.com/montanaflynn/stats"
	logger "github.com/sirupsen/logrus"

	"github.com/kurihiro0119/repo-concierge/internal/domain"
)

const day = 24 * time.Hour

// Analyze turns raw GitHub payloads into an analysis. It performs no I/O and
// does not modify raw; now is used for every age and recency computation.
func Analyze(raw *domain.RawRepositoryData, now time.Time) *domain.Analysis {
	repo := raw.Repository
	if repo == nil {
		repo = &github.Repository{}
	}

	summary := summarize(repo)
	languages := LanguageBreakdown(raw.Languages)
	commits := condenseCommits(raw.Commits, now)
	contributors := condenseContributors(raw.Contributors)
	issues := TallyIssues(raw.Issues)
	frequency := CommitFrequencyOf(commits, now)

	age := ageOf(summary.Created, now)
	daysSinceUpdate := wholeDays(now.Sub(summary.Updated))
	activity := ActivityScore(daysSinceUpdate)
	health := HealthScore(activity, issues, len(contributors))

	analysis := &domain.Analysis{
		GeneratedAt:  now,
		Repo:         summary,
		Languages:    languages,
		Commits:      commits,
		Contributors: contributors,
		Issues:       issues,
		Releases:     condenseReleases(raw.Releases),
		Stats: domain.Stats{
			Age: age,
			Activity: domain.ActivityStats{
				Score:               activity,
				DaysSinceLastUpdate: daysSinceUpdate,
				CommitFrequency:     frequency,
			},
			Popularity: domain.PopularityStats{
				Score:    PopularityScore(summary.Stars),
				Stars:    summary.Stars,
				Forks:    summary.Forks,
				Watchers: summary.Watchers,
			},
			Health: domain.HealthStats{
				Score:            health,
				IssueCloseRate:   issues.CloseRateDisplay,
				ContributorCount: len(contributors),
			},
		},
		CodeFrequency: condenseCodeFrequency(raw.CodeFrequency),
	}

	analysis.Insights = domain.InsightBundle{
		Technical: technicalInsight(analysis),
		Business:  businessInsight(analysis),
		General:   generalInsight(analysis, raw.Commits, now),
	}
	analysis.Assessment = assess(analysis, raw, now)

	return analysis
}

func summarize(repo *github.Repository) domain.RepositorySummary {
	license := repo.GetLicense().GetSPDXID()
	if license == "" {
		logger.Debugf("[aggregator] %s has no license, using None", repo.GetFullName())
		license = "None"
	}

	return domain.RepositorySummary{
		Name:          repo.GetFullName(),
		Owner:         repo.GetOwner().GetLogin(),
		ShortName:     repo.GetName(),
		Description:   repo.GetDescription(),
		URL:           repo.GetHTMLURL(),
		Homepage:      repo.GetHomepage(),
		DefaultBranch: repo.GetDefaultBranch(),
		Stars:         repo.GetStargazersCount(),
		Forks:         repo.GetForksCount(),
		OpenIssues:    repo.GetOpenIssuesCount(),
		Watchers:      repo.GetWatchersCount(),
		License:       license,
		Created:       repo.GetCreatedAt().Time,
		Updated:       repo.GetUpdatedAt().Time,
		Size:          repo.GetSize(),
		IsPrivate:     repo.GetPrivate(),
	}
}

// round1 rounds half up to one decimal place
func round1(v float64) float64 {
	r, err := stats.Round(v, 1)
	if err != nil {
		return 0
	}
	return r
}

func wholeDays(d time.Duration) int {
	return int(math.Floor(d.Hours() / 24))
}

// LanguageBreakdown converts a language -> bytes map into shares sorted by
// size. An empty or all-zero map yields an empty breakdown.
func LanguageBreakdown(languages map[string]int) []domain.LanguageShare {
	total := 0
	for _, bytes := range languages {
		total += bytes
	}
	if total == 0 {
		return []domain.LanguageShare{}
	}

	shares := make([]domain.LanguageShare, 0, len(languages))
	for name, bytes := range languages {
		shares = append(shares, domain.LanguageShare{
			Name:       name,
			Bytes:      bytes,
			Percentage: round1(float64(bytes) / float64(total) * 100),
		})
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Bytes != shares[j].Bytes {
			return shares[i].Bytes > shares[j].Bytes
		}
		return shares[i].Name < shares[j].Name
	})
	return shares
}

func condenseCommits(commits []*github.RepositoryCommit, now time.Time) []domain.CommitRecord {
	records := make([]domain.CommitRecord, 0, len(commits))
	for _, c := range commits {
		if c == nil {
			continue
		}
		sha := c.GetSHA()
		if len(sha) > 7 {
			sha = sha[:7]
		}

		message, _, _ := strings.Cut(c.GetCommit().GetMessage(), "\n")

		author := c.GetCommit().GetAuthor().GetName()
		if author == "" {
			author = c.GetAuthor().GetLogin()
		}
		if author == "" {
			logger.Debugf("[aggregator] commit %s has no author, using Unknown", sha)
			author = "Unknown"
		}

		date := c.GetCommit().GetAuthor().GetDate().Time
		if date.IsZero() {
			logger.Debugf("[aggregator] commit %s has no date, using analysis time", sha)
			date = now
		}

		records = append(records, domain.CommitRecord{
			SHA:     sha,
			Message: message,
			Author:  author,
			Date:    date,
		})
	}
	return records
}

func condenseContributors(contributors []*github.Contributor) []domain.ContributorRecord {
	records := make([]domain.ContributorRecord, 0, len(contributors))
	for _, c := range contributors {
		if c == nil {
			continue
		}
		records = append(records, domain.ContributorRecord{
			Login:         c.GetLogin(),
			Avatar:        c.GetAvatarURL(),
			Contributions: c.GetContributions(),
			URL:           c.GetHTMLURL(),
		})
	}
	return records
}

func condenseReleases(releases []*github.RepositoryRelease) []domain.ReleaseRecord {
	records := make([]domain.ReleaseRecord, 0, len(releases))
	for _, r := range releases {
		if r == nil {
			continue
		}
		name := r.GetName()
		if name == "" {
			logger.Debugf("[aggregator] release %s has no name, using tag", r.GetTagName())
			name = r.GetTagName()
		}

		var published *time.Time
		if r.PublishedAt != nil {
			t := r.PublishedAt.Time
			published = &t
		}

		records = append(records, domain.ReleaseRecord{
			Name:       name,
			Tag:        r.GetTagName(),
			Date:       published,
			URL:        r.GetHTMLURL(),
			Prerelease: r.GetPrerelease(),
		})
	}
	return records
}

func condenseCodeFrequency(weeks []*github.WeeklyStats) []domain.CodeFrequencyWeek {
	records := make([]domain.CodeFrequencyWeek, 0, len(weeks))
	for _, w := range weeks {
		if w == nil {
			continue
		}
		records = append(records, domain.CodeFrequencyWeek{
			Week:      w.GetWeek().Time,
			Additions: w.GetAdditions(),
			Deletions: w.GetDeletions(),
		})
	}
	return records
}

// TallyIssues counts open and closed issues. Items in any other state are ignored.
func TallyIssues(issues []*github.Issue) domain.IssueTally {
	var tally domain.IssueTally
	for _, issue := range issues {
		switch issue.GetState() {
		case "open":
			tally.Open++
		case "closed":
			tally.Closed++
		}
	}
	tally.Total = tally.Open + tally.Closed
	if tally.Total > 0 {
		tally.CloseRate = round1(float64(tally.Closed) / float64(tally.Total) * 100)
	}
	tally.CloseRateDisplay = formatPercent(tally.CloseRate)
	return tally
}

// CommitFrequencyOf buckets the commits dated within the last seven days
func CommitFrequencyOf(commits []domain.CommitRecord, now time.Time) domain.CommitFrequency {
	weekAgo := now.Add(-7 * day)
	recent := 0
	for _, c := range commits {
		if c.Date.After(weekAgo) {
			recent++
		}
	}

	switch {
	case recent >= 5:
		return domain.CommitFrequencyHigh
	case recent >= 2:
		return domain.CommitFrequencyMedium
	default:
		return domain.CommitFrequencyLow
	}
}

// ActivityScore loses one point per day since the last update
func ActivityScore(daysSinceUpdate int) int {
	score := 100 - daysSinceUpdate
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// PopularityScore is 25 points per order of magnitude of stars, capped at 100
func PopularityScore(stars int) float64 {
	if stars < 0 {
		stars = 0
	}
	return math.Min(100, math.Log10(float64(stars)+1)*25)
}

// HealthScore averages activity, issue handling and team size
func HealthScore(activity int, issues domain.IssueTally, contributors int) int {
	issueHealth := 50.0
	if issues.Total > 0 {
		issueHealth = math.Min(100, issues.CloseRate)
	}
	contributorScore := math.Min(100, float64(contributors*10))

	mean, err := stats.Mean([]float64{float64(activity), issueHealth, contributorScore})
	if err != nil {
		return 0
	}
	return int(math.Round(mean))
}

func ageOf(created, now time.Time) domain.AgeStats {
	days := wholeDays(now.Sub(created))
	if days < 0 {
		days = 0
	}
	months := days / 30
	years := months / 12

	display := pluralUnit(days, "days")
	switch {
	case years > 0:
		display = pluralUnit(years, "years")
	case months > 0:
		display = pluralUnit(months, "months")
	}

	return domain.AgeStats{
		Days:    days,
		Months:  months,
		Years:   years,
		Display: display,
	}
}
