package github

import "time"

// PullRequest is one merged pull request, as produced by search + enrichment
// or synthesized from a pasted URL.
type PullRequest struct {
	Title       string     `json:"title"`
	URL         string     `json:"url"`
	Repo        string     `json:"repo"`
	MergedAt    *time.Time `json:"mergedAt"`
	Body        string     `json:"body"`
	Additions   int        `json:"additions"`
	Deletions   int        `json:"deletions"`
	ManualEntry bool       `json:"manualEntry,omitempty"`
}

// Progress reports fetch state after each search page and enrichment batch.
type Progress struct {
	Fetched   int
	Total     int
	Enriching int
}

// SearchItem is one raw hit from the search endpoint.
type SearchItem struct {
	Title         string `json:"title"`
	Body          string `json:"body"`
	HTMLURL       string `json:"html_url"`
	RepositoryURL string `json:"repository_url"`
	ClosedAt      string `json:"closed_at"`
	PullRequest   struct {
		URL      string  `json:"url"`
		MergedAt *string `json:"merged_at"`
	} `json:"pull_request"`
}

type searchResponse struct {
	TotalCount int          `json:"total_count"`
	Items      []SearchItem `json:"items"`
}

type prDetail struct {
	Additions int     `json:"additions"`
	Deletions int     `json:"deletions"`
	MergedAt  *string `json:"merged_at"`
}
