// Package parser turns user-supplied repository references and tokens into
// validated values.
package parser

import (
	"regexp"
	"strings"

	"github.com/kurihiro0119/repo-concierge/internal/domain"
	apperrors "github.com/kurihiro0119/repo-concierge/internal/errors"
)

var referencePatterns = []*regexp.Regexp{
	// https://github.com/owner/repo, optional .git and trailing path
	regexp.MustCompile(`^https?://github\.com/([^/]+)/([^/]+?)(?:\.git)?(?:/.*)?$`),
	// git@github.com:owner/repo.git
	regexp.MustCompile(`^git@github\.com:([^/]+)/([^/]+?)(?:\.git)?$`),
	// owner/repo
	regexp.MustCompile(`^([^/\s]+)/([^/\s]+)$`),
}

var tokenPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^ghp_[a-zA-Z0-9]{36}$`),
	regexp.MustCompile(`^github_pat_[a-zA-Z0-9_]{82}$`),
	regexp.MustCompile(`^gho_[a-zA-Z0-9]{36}$`),
	regexp.MustCompile(`^ghu_[a-zA-Z0-9]{36}$`),
	regexp.MustCompile(`^ghs_[a-zA-Z0-9]{36}$`),
	regexp.MustCompile(`^ghr_[a-zA-Z0-9]{36}$`),
}

// ParseRepository accepts a web URL, an SSH remote or a bare "owner/name"
// pair and returns the owner and repository name.
func ParseRepository(ref string) (domain.RepositoryRef, error) {
	trimmed := strings.TrimSpace(ref)
	for _, pattern := range referencePatterns {
		match := pattern.FindStringSubmatch(trimmed)
		if match == nil {
			continue
		}
		repo := strings.TrimSuffix(match[2], ".git")
		if match[1] == "" || repo == "" {
			break
		}
		return domain.RepositoryRef{Owner: match[1], Repo: repo}, nil
	}

	return domain.RepositoryRef{}, apperrors.NewBadRequestError("Invalid repository URL format. Use owner/repo or GitHub URL")
}

// ValidateToken reports whether token looks like a GitHub credential.
// Tokens are never rejected on this basis; callers only warn.
func ValidateToken(token string) bool {
	if token == "" {
		return false
	}
	for _, pattern := range tokenPatterns {
		if pattern.MatchString(token) {
			return true
		}
	}
	return false
}
