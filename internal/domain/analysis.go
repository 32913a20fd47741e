package domain

import "time"

// CommitFrequency buckets recent commit activity
type CommitFrequency string

const (
	CommitFrequencyHigh   CommitFrequency = "high"
	CommitFrequencyMedium CommitFrequency = "medium"
	CommitFrequencyLow    CommitFrequency = "low"
)

// Analysis is the full result of one analysis pass
type Analysis struct {
	ID            string              `json:"id,omitempty"`
	GeneratedAt   time.Time           `json:"generatedAt"`
	Repo          RepositorySummary   `json:"repo"`
	Stats         Stats               `json:"stats"`
	Languages     []LanguageShare     `json:"languages"`
	Commits       []CommitRecord      `json:"commits"`
	Contributors  []ContributorRecord `json:"contributors"`
	Issues        IssueTally          `json:"issues"`
	Releases      []ReleaseRecord     `json:"releases"`
	CodeFrequency []CodeFrequencyWeek `json:"codeFrequency"`
	Insights      InsightBundle       `json:"insights"`
	Assessment    Assessment          `json:"assessment"`
}

// Stats groups the derived statistics
type Stats struct {
	Age        AgeStats        `json:"age"`
	Activity   ActivityStats   `json:"activity"`
	Popularity PopularityStats `json:"popularity"`
	Health     HealthStats     `json:"health"`
}

// AgeStats describes how old the repository is
type AgeStats struct {
	Days    int    `json:"days"`
	Months  int    `json:"months"`
	Years   int    `json:"years"`
	Display string `json:"display"`
}

// ActivityStats describes recent activity
type ActivityStats struct {
	Score               int             `json:"score"`
	DaysSinceLastUpdate int             `json:"daysSinceLastUpdate"`
	CommitFrequency     CommitFrequency `json:"commitFrequency"`
}

// PopularityStats describes community interest
type PopularityStats struct {
	Score    float64 `json:"score"`
	Stars    int     `json:"stars"`
	Forks    int     `json:"forks"`
	Watchers int     `json:"watches"`
}

// HealthStats describes maintenance health
type HealthStats struct {
	Score            int    `json:"score"`
	IssueCloseRate   string `json:"issueCloseRate"`
	ContributorCount int    `json:"contributorCount"`
}

// Insight is a headline sentence with supporting details
type Insight struct {
	Main    string   `json:"main"`
	Details []string `json:"details"`
}

// InsightBundle holds the three narrative summaries
type InsightBundle struct {
	Technical Insight `json:"technical"`
	Business  Insight `json:"business"`
	General   Insight `json:"general"`
}
