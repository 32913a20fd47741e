package aggregator

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/go-github/v55/github"

	"github.com/kurihiro0119/repo-concierge/internal/domain"
)

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + "%"
}

func pluralUnit(n int, unit string) string {
	return fmt.Sprintf("%d %s", n, unit)
}

// Each insight is composed of fragments in a fixed order; every fragment
// builder is a pure function of the analysis.

func technicalInsight(a *domain.Analysis) domain.Insight {
	main := "This repository " +
		languageClause(a.Languages) +
		frequencyClause(a.Stats.Activity.CommitFrequency) +
		sizeClause(a.Repo.Size)

	return domain.Insight{
		Main: main,
		Details: []string{
			fmt.Sprintf("The repository has %d recent commits.", len(a.Commits)),
			fmt.Sprintf("Main branch is %q.", a.Repo.DefaultBranch),
			fmt.Sprintf("There are %d languages used in this codebase.", len(a.Languages)),
		},
	}
}

func languageClause(languages []domain.LanguageShare) string {
	if len(languages) == 0 {
		return "has no detected languages. "
	}
	clause := "primarily uses " + languages[0].Name
	if len(languages) > 1 {
		clause += fmt.Sprintf(" with %d supporting languages", len(languages)-1)
	}
	return clause + ". "
}

func frequencyClause(frequency domain.CommitFrequency) string {
	switch frequency {
	case domain.CommitFrequencyHigh:
		return "It shows high development activity with frequent commits. "
	case domain.CommitFrequencyMedium:
		return "It shows steady development with regular commits. "
	default:
		return "It shows limited recent development activity. "
	}
}

// sizeClause classifies the repository size, reported by GitHub in KB
func sizeClause(sizeKB int) string {
	mb := float64(sizeKB) / 1024
	switch {
	case mb > 100:
		return fmt.Sprintf("The codebase is large (%.1f MB), suggesting a mature project.", mb)
	case mb > 10:
		return fmt.Sprintf("The codebase is medium-sized (%.1f MB).", mb)
	default:
		return fmt.Sprintf("The codebase is relatively small (%.1f MB).", mb)
	}
}

func businessInsight(a *domain.Analysis) domain.Insight {
	main := healthClause(a.Stats.Health.Score) +
		teamClause(len(a.Contributors)) +
		communityClause(a.Repo.Stars)

	license := a.Repo.License
	usage := "allows commercial use"
	if license == "None" {
		license = "not specified"
		usage = "may restrict usage"
	}

	return domain.Insight{
		Main: main,
		Details: []string{
			fmt.Sprintf("The repository has %d open issues.", a.Repo.OpenIssues),
			fmt.Sprintf("The project has been active for %s (%d months).",
				a.Repo.Created.Format("1/2/2006"), a.Stats.Age.Months),
			fmt.Sprintf("The license is %q, which %s.", license, usage),
		},
	}
}

func healthClause(health int) string {
	switch {
	case health > 80:
		return "This is a healthy, active project with good maintenance practices. "
	case health > 50:
		return "This is a moderately maintained project with average activity. "
	default:
		return "This project shows signs of limited maintenance and may require attention. "
	}
}

func teamClause(contributors int) string {
	switch {
	case contributors > 10:
		return fmt.Sprintf("It has a large team with %d contributors. ", contributors)
	case contributors > 3:
		return fmt.Sprintf("It has a moderate team with %d contributors. ", contributors)
	default:
		return fmt.Sprintf("It has a small team with only %d contributor(s). ", contributors)
	}
}

func communityClause(stars int) string {
	switch {
	case stars > 1000:
		return fmt.Sprintf("With %d stars, it has significant community interest.", stars)
	case stars > 100:
		return fmt.Sprintf("With %d stars, it has moderate community interest.", stars)
	default:
		return fmt.Sprintf("With %d stars, it has limited community visibility.", stars)
	}
}

// generalInsight reads the raw commit list so that a commit without a date
// adds no recency clause
func generalInsight(a *domain.Analysis, commits []*github.RepositoryCommit, now time.Time) domain.Insight {
	visibility := "public"
	if a.Repo.IsPrivate {
		visibility = "private"
	}

	main := fmt.Sprintf("%s is a %s repository", a.Repo.Name, visibility)
	if a.Repo.Description != "" {
		main += " that " + strings.ToLower(a.Repo.Description) + "."
	} else {
		main += "."
	}
	if len(commits) > 0 && commits[0] != nil {
		if date := commits[0].GetCommit().GetAuthor().GetDate().Time; !date.IsZero() {
			main += recencyClause(wholeDays(now.Sub(date)))
		}
	}

	website := "No project website specified."
	if a.Repo.Homepage != "" {
		website = "Project website: " + a.Repo.Homepage
	}
	creator := "unknown"
	if len(a.Contributors) > 0 && a.Contributors[0].Login != "" {
		creator = a.Contributors[0].Login
	}

	return domain.Insight{
		Main: main,
		Details: []string{
			website,
			fmt.Sprintf("Created by %s and has %d contributor(s).", creator, len(a.Contributors)),
			fmt.Sprintf("The project has %d fork(s) and %d star(s).", a.Repo.Forks, a.Repo.Stars),
		},
	}
}

func recencyClause(days int) string {
	switch {
	case days < 7:
		return " It is actively maintained with updates in the past week."
	case days < 30:
		return " It has been updated in the past month."
	case days < 90:
		return " It was last updated a few months ago."
	default:
		return " It has not been updated recently."
	}
}
