package cache

import (
	"time"

	"github.com/edwinckc/self-reflection-tool/internal/github"
)

// maxSnapshotAge is how long a fetched PR snapshot stays usable.
const maxSnapshotAge = 24 * time.Hour

// DateRange is the review period a snapshot was fetched for. Validity
// compares the ISO date strings exactly, not semantically.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Snapshot is a cached PR fetch result for one user and period.
type Snapshot struct {
	PRs       []github.PullRequest `json:"prs"`
	FetchedAt int64                `json:"fetchedAt"` // epoch millis
	DateRange DateRange            `json:"dateRange"`
}

// Fresh reports whether the snapshot can stand in for a new fetch: no
// older than 24h and fetched for exactly the requested period.
func (s *Snapshot) Fresh(now time.Time, start, end string) bool {
	if s == nil {
		return false
	}
	if now.UnixMilli()-s.FetchedAt > maxSnapshotAge.Milliseconds() {
		return false
	}
	return s.DateRange.Start == start && s.DateRange.End == end
}

// Key returns the cache key for a user's PR snapshot.
func Key(userEmail string) string {
	return "pr_data_" + userEmail
}
