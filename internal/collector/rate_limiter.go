package collector

import (
	"sync"
	"time"

	"github.com/google/go-github/v55/github"
	logger "github.com/sirupsen/logrus"

	"github.com/kurihiro0119/repo-concierge/internal/domain"
)

// lowQuotaThreshold is the remaining-request count below which a warning is logged
const lowQuotaThreshold = 10

// RateTracker records the GitHub quota reported by responses. It never
// delays requests; exhaustion surfaces as a RATE_LIMITED error instead.
type RateTracker interface {
	Update(resp *github.Response)
	Status() domain.RateStatus
}

// githubRateTracker implements RateTracker from go-github responses
type githubRateTracker struct {
	mu        sync.Mutex
	observed  bool
	limit     int
	remaining int
	resetTime time.Time
}

// NewRateTracker creates an empty tracker
func NewRateTracker() RateTracker {
	return &githubRateTracker{}
}

// Update records the rate headers of resp, if any
func (r *githubRateTracker) Update(resp *github.Response) {
	if resp == nil || resp.Rate.Limit == 0 {
		return
	}

	r.mu.Lock()
	r.observed = true
	r.limit = resp.Rate.Limit
	r.remaining = resp.Rate.Remaining
	r.resetTime = resp.Rate.Reset.Time
	r.mu.Unlock()

	if resp.Rate.Remaining < lowQuotaThreshold {
		logger.Warnf("[collector] GitHub quota low: %d/%d remaining until %s",
			resp.Rate.Remaining, resp.Rate.Limit, resp.Rate.Reset.Time.Format(time.RFC3339))
	}
}

// Status returns the current rate limit snapshot
func (r *githubRateTracker) Status() domain.RateStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return domain.RateStatus{
		Observed:  r.observed,
		Limit:     r.limit,
		Remaining: r.remaining,
		Reset:     r.resetTime,
	}
}
