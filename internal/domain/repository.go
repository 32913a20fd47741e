package domain

import (
	"time"

	"github.com/google/go-github/v55/github"
)

// RepositoryRef identifies a GitHub repository
type RepositoryRef struct {
	Owner string `json:"owner"`
	Repo  string `json:"repo"`
}

// FullName returns "owner/repo"
func (r RepositoryRef) FullName() string {
	return r.Owner + "/" + r.Repo
}

// RawRepositoryData holds the upstream payloads for one analysis pass.
// CodeFrequency is nil when GitHub could not provide it.
type RawRepositoryData struct {
	Repository    *github.Repository
	Languages     map[string]int
	Commits       []*github.RepositoryCommit
	Contributors  []*github.Contributor
	Issues        []*github.Issue
	Releases      []*github.RepositoryRelease
	CodeFrequency []*github.WeeklyStats
}

// RepositorySummary is the immutable header of an analysis
type RepositorySummary struct {
	Name          string    `json:"name"`
	Owner         string    `json:"owner"`
	ShortName     string    `json:"shortName"`
	Description   string    `json:"description"`
	URL           string    `json:"url"`
	Homepage      string    `json:"homepage"`
	DefaultBranch string    `json:"defaultBranch"`
	Stars         int       `json:"stars"`
	Forks         int       `json:"forks"`
	OpenIssues    int       `json:"openIssues"`
	Watchers      int       `json:"watchers"`
	License       string    `json:"license"`
	Created       time.Time `json:"created"`
	Updated       time.Time `json:"updated"`
	Size          int       `json:"size"`
	IsPrivate     bool      `json:"isPrivate"`
}

// LanguageShare is one entry of a language breakdown
type LanguageShare struct {
	Name       string  `json:"name"`
	Bytes      int     `json:"bytes"`
	Percentage float64 `json:"percentage"`
}

// CommitRecord is a condensed commit
type CommitRecord struct {
	SHA     string    `json:"sha"`
	Message string    `json:"message"`
	Author  string    `json:"author"`
	Date    time.Time `json:"date"`
}

// ContributorRecord is a condensed contributor
type ContributorRecord struct {
	Login         string `json:"login"`
	Avatar        string `json:"avatar"`
	Contributions int    `json:"contributions"`
	URL           string `json:"url"`
}

// IssueTally summarizes issue states
type IssueTally struct {
	Open      int     `json:"open"`
	Closed    int     `json:"closed"`
	Total     int     `json:"total"`
	CloseRate float64 `json:"closeRateValue"`
	// CloseRateDisplay is CloseRate with one decimal and a percent sign, e.g. "70.0%"
	CloseRateDisplay string `json:"closeRate"`
}

// ReleaseRecord is a condensed release
type ReleaseRecord struct {
	Name       string     `json:"name"`
	Tag        string     `json:"tag"`
	Date       *time.Time `json:"date"`
	URL        string     `json:"url"`
	Prerelease bool       `json:"prerelease"`
}

// CodeFrequencyWeek is one week of additions and deletions
type CodeFrequencyWeek struct {
	Week      time.Time `json:"week"`
	Additions int       `json:"additions"`
	Deletions int       `json:"deletions"`
}
