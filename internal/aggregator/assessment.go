package aggregator

import (
	"math"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/go-github/v55/github"
	"golang.org/x/mod/semver"

	"github.com/kurihiro0119/repo-concierge/internal/domain"
)

var (
	complexLanguages = []string{"C++", "Rust", "Assembly", "Haskell"}
	modernLanguages  = []string{"TypeScript", "Go", "Kotlin", "Swift"}
	webLanguages     = []string{"JavaScript", "HTML", "CSS", "PHP"}

	conventionalCommit = regexp.MustCompile(`^(feat|fix|docs|style|refactor|test|chore|build|ci|perf|revert)(\(.+\))?\s*:\s*.+`)
)

func assess(a *domain.Analysis, raw *domain.RawRepositoryData, now time.Time) domain.Assessment {
	return domain.Assessment{
		LanguageProfile:     ProfileLanguages(a.Languages),
		Maturity:            ScoreMaturity(a, now),
		Quality:             ScoreQuality(a, now),
		Recommendations:     Recommend(a),
		Risks:               AssessRisks(a),
		CommitPatterns:      AnalyzeCommitMessages(raw.Commits),
		LatestStableRelease: LatestStableRelease(raw.Releases),
	}
}

func containsAny(languages []domain.LanguageShare, names []string) bool {
	for _, l := range languages {
		for _, name := range names {
			if l.Name == name {
				return true
			}
		}
	}
	return false
}

// ProfileLanguages classifies the language mix
func ProfileLanguages(languages []domain.LanguageShare) domain.LanguageProfile {
	complexity := "Medium"
	if containsAny(languages, complexLanguages) {
		complexity = "High"
	}
	return domain.LanguageProfile{
		Complexity:    complexity,
		IsModern:      containsAny(languages, modernLanguages),
		IsWebProject:  containsAny(languages, webLanguages),
		LanguageCount: len(languages),
	}
}

// ScoreMaturity weighs age, releases, commit rate and stars
func ScoreMaturity(a *domain.Analysis, now time.Time) domain.Maturity {
	ageDays := wholeDays(now.Sub(a.Repo.Created))
	score := 0

	switch {
	case ageDays > 365:
		score += 30
	case ageDays > 180:
		score += 20
	case ageDays > 30:
		score += 10
	}

	switch releases := len(a.Releases); {
	case releases > 10:
		score += 25
	case releases > 5:
		score += 20
	case releases > 0:
		score += 15
	}

	// commits per day over at most the last 30 days
	window := math.Min(float64(ageDays), 30)
	if window < 1 {
		window = 1
	}
	switch perDay := float64(len(a.Commits)) / window; {
	case perDay > 1:
		score += 25
	case perDay > 0.5:
		score += 20
	case perDay > 0.1:
		score += 15
	case perDay > 0:
		score += 10
	}

	switch stars := a.Repo.Stars; {
	case stars > 1000:
		score += 20
	case stars > 100:
		score += 15
	case stars > 10:
		score += 10
	case stars > 0:
		score += 5
	}

	if score > 100 {
		score = 100
	}
	level := "Early"
	switch {
	case score > 80:
		level = "Mature"
	case score > 50:
		level = "Developing"
	}
	return domain.Maturity{Score: score, Level: level}
}

// ScoreQuality adds points for visible hygiene signals
func ScoreQuality(a *domain.Analysis, now time.Time) domain.Quality {
	score := 0
	factors := []string{}
	add := func(points int, factor string) {
		score += points
		factors = append(factors, factor)
	}

	if utf8.RuneCountInString(a.Repo.Description) > 20 {
		add(15, "Good documentation")
	}
	if a.Repo.License != "None" {
		add(10, "Has license")
	}
	if n := len(a.Languages); n >= 2 && n <= 5 {
		add(15, "Good language balance")
	}

	descriptive, recent := false, false
	weekAgo := now.Add(-7 * day)
	for _, c := range a.Commits {
		if len(c.Message) > 10 && (strings.Contains(c.Message, "fix") ||
			strings.Contains(c.Message, "add") || strings.Contains(c.Message, "update")) {
			descriptive = true
		}
		if c.Date.After(weekAgo) {
			recent = true
		}
	}
	if descriptive {
		add(20, "Descriptive commits")
	}
	if recent {
		add(20, "Recent activity")
	}

	if mb := float64(a.Repo.Size) / 1024; mb > 1 && mb < 500 {
		add(20, "Appropriate size")
	}

	if score > 100 {
		score = 100
	}
	level := "Low"
	switch {
	case score > 80:
		level = "High"
	case score > 50:
		level = "Medium"
	}
	return domain.Quality{Score: score, Level: level, Factors: factors}
}

// Recommend lists improvement suggestions, most pressing categories first
func Recommend(a *domain.Analysis) []domain.Recommendation {
	recs := []domain.Recommendation{}

	if a.Stats.Activity.Score < 50 {
		recs = append(recs, domain.Recommendation{
			Type:        "activity",
			Priority:    domain.PriorityHigh,
			Title:       "Increase Repository Activity",
			Description: "The repository has low recent activity. Consider regular commits and updates.",
			Action:      "Make regular commits and keep the project updated",
		})
	}
	if utf8.RuneCountInString(a.Repo.Description) < 20 {
		recs = append(recs, domain.Recommendation{
			Type:        "documentation",
			Priority:    domain.PriorityMedium,
			Title:       "Improve Repository Description",
			Description: "Add a clear, detailed description to help users understand the project.",
			Action:      "Add a comprehensive description in repository settings",
		})
	}
	if a.Repo.License == "None" {
		recs = append(recs, domain.Recommendation{
			Type:        "legal",
			Priority:    domain.PriorityMedium,
			Title:       "Add a License",
			Description: "Adding a license clarifies how others can use your project.",
			Action:      "Choose and add an appropriate open source license",
		})
	}
	if a.Issues.Open > a.Issues.Closed && a.Issues.Total > 10 {
		recs = append(recs, domain.Recommendation{
			Type:        "maintenance",
			Priority:    domain.PriorityHigh,
			Title:       "Address Open Issues",
			Description: "High number of open issues may indicate maintenance challenges.",
			Action:      "Review and address open issues regularly",
		})
	}
	if len(a.Releases) == 0 && a.Repo.Stars > 10 {
		recs = append(recs, domain.Recommendation{
			Type:        "versioning",
			Priority:    domain.PriorityMedium,
			Title:       "Create Releases",
			Description: "Tags and releases help users track stable versions.",
			Action:      "Create tagged releases for stable versions",
		})
	}
	if len(a.Languages) > 8 {
		recs = append(recs, domain.Recommendation{
			Type:        "architecture",
			Priority:    domain.PriorityLow,
			Title:       "Consider Language Consolidation",
			Description: "Many languages might indicate architectural complexity.",
			Action:      "Review if all languages are necessary",
		})
	}
	return recs
}

// AssessRisks flags bus factor, maintenance, adoption and support risks
func AssessRisks(a *domain.Analysis) []domain.Risk {
	risks := []domain.Risk{}

	if len(a.Contributors) < 3 {
		risks = append(risks, domain.Risk{
			Type:        "bus-factor",
			Level:       domain.PriorityHigh,
			Description: "Few contributors - project depends heavily on one person",
			Impact:      "Project could become unmaintained if key contributor leaves",
		})
	}
	if a.Stats.Activity.Score < 30 {
		risks = append(risks, domain.Risk{
			Type:        "maintenance",
			Level:       domain.PriorityMedium,
			Description: "Low recent activity may indicate maintenance issues",
			Impact:      "Users may encounter unresolved bugs and issues",
		})
	}
	if a.Repo.Stars < 5 && a.Repo.Forks < 2 {
		risks = append(risks, domain.Risk{
			Type:        "adoption",
			Level:       domain.PriorityMedium,
			Description: "Low community engagement",
			Impact:      "Limited community support and contributions",
		})
	}
	if a.Issues.Total > 10 && float64(a.Issues.Open)/float64(a.Issues.Total) > 0.7 {
		risks = append(risks, domain.Risk{
			Type:        "support",
			Level:       domain.PriorityHigh,
			Description: "High ratio of unresolved issues",
			Impact:      "May indicate poor issue management or complex problems",
		})
	}
	return risks
}

// AnalyzeCommitMessages counts conventional-commit types and collects the
// message styles seen, in order of first appearance
func AnalyzeCommitMessages(commits []*github.RepositoryCommit) domain.CommitPatterns {
	result := domain.CommitPatterns{
		Patterns:     []string{},
		Types:        map[string]int{},
		TotalCommits: len(commits),
	}
	seen := map[string]bool{}
	note := func(pattern string) {
		if !seen[pattern] {
			seen[pattern] = true
			result.Patterns = append(result.Patterns, pattern)
		}
	}

	for _, c := range commits {
		line, _, _ := strings.Cut(c.GetCommit().GetMessage(), "\n")
		line = strings.ToLower(line)

		if m := conventionalCommit.FindStringSubmatch(line); m != nil {
			result.Types[m[1]]++
			note("conventional")
		}

		switch {
		case strings.Contains(line, "merge"):
			note("merge")
		case strings.Contains(line, "update"), strings.Contains(line, "upgrade"):
			note("update")
		case strings.Contains(line, "add"), strings.Contains(line, "implement"):
			note("feature")
		case strings.Contains(line, "fix"), strings.Contains(line, "bug"):
			note("bugfix")
		}
	}
	return result
}

// LatestStableRelease returns the tag of the highest non-prerelease semantic
// version, or "" when there is none. Tags without a leading "v" are accepted.
func LatestStableRelease(releases []*github.RepositoryRelease) string {
	best, bestTag := "", ""
	for _, r := range releases {
		if r == nil || r.GetPrerelease() || r.GetDraft() {
			continue
		}
		tag := r.GetTagName()
		v := tag
		if !strings.HasPrefix(v, "v") {
			v = "v" + v
		}
		if !semver.IsValid(v) || semver.Prerelease(v) != "" {
			continue
		}
		if best == "" || semver.Compare(v, best) > 0 {
			best, bestTag = v, tag
		}
	}
	return bestTag
}
