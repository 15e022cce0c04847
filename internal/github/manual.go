package github

import (
	"fmt"
	"net/url"
	"strings"
)

// FromURLs synthesizes PullRequest records from user-pasted PR web URLs,
// for the manual-entry fallback when the API path is unavailable. Counts
// are zero, MergedAt is nil and ManualEntry is set. Duplicate and blank
// URLs are skipped.
func FromURLs(urls []string) []PullRequest {
	seen := make(map[string]bool)
	var prs []PullRequest
	for _, raw := range urls {
		raw = strings.TrimSpace(raw)
		if raw == "" || seen[raw] {
			continue
		}
		seen[raw] = true

		repo, number := splitPRURL(raw)
		title := repo
		if number != "" {
			title = fmt.Sprintf("%s #%s", repo, number)
		}
		prs = append(prs, PullRequest{
			Title:       title,
			URL:         raw,
			Repo:        repo,
			ManualEntry: true,
		})
	}
	return prs
}

// splitPRURL extracts "owner/name" and the PR number from a URL shaped
// like https://github.com/owner/name/pull/123.
func splitPRURL(raw string) (repo, number string) {
	u, err := url.Parse(raw)
	if err != nil {
		return "unknown", ""
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 {
		return "unknown", ""
	}
	repo = parts[0] + "/" + parts[1]
	if len(parts) >= 4 && parts[2] == "pull" {
		number = parts[3]
	}
	return repo, number
}
