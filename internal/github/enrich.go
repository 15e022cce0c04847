package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

const enrichBatchSize = 5

// Enrich resolves each search hit into a full PullRequest by fetching its
// detail endpoint for precise addition/deletion counts and the
// authoritative merge timestamp. Detail calls run in batches of five
// concurrent requests; each batch completes before the next starts.
//
// The detail call is best-effort: any failure leaves that record with zero
// counts and the timestamp already known from the search hit. A single
// failure never aborts the batch or the overall call. Input order is
// preserved. onProgress fires after every batch.
func (c *Client) Enrich(ctx context.Context, hits []SearchItem, onProgress func(Progress)) []PullRequest {
	prs := make([]PullRequest, len(hits))

	for base := 0; base < len(hits); base += enrichBatchSize {
		end := base + enrichBatchSize
		if end > len(hits) {
			end = len(hits)
		}

		var wg sync.WaitGroup
		for i := base; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				prs[i] = c.enrichOne(ctx, hits[i])
			}(i)
		}
		wg.Wait()

		if onProgress != nil {
			onProgress(Progress{Fetched: len(hits), Total: len(hits), Enriching: end})
		}
	}
	return prs
}

func (c *Client) enrichOne(ctx context.Context, hit SearchItem) PullRequest {
	pr := PullRequest{
		Title:    hit.Title,
		URL:      hit.HTMLURL,
		Repo:     repoFromURL(hit.RepositoryURL),
		Body:     hit.Body,
		MergedAt: parseTimestamp(hit.PullRequest.MergedAt, hit.ClosedAt),
	}

	if hit.PullRequest.URL == "" {
		return pr
	}

	detail, err := c.fetchDetail(ctx, hit.PullRequest.URL)
	if err != nil {
		c.log.Debugf("enrichment failed for %s: %v", pr.URL, err)
		return pr
	}

	pr.Additions = detail.Additions
	pr.Deletions = detail.Deletions
	if t := parseTimestamp(detail.MergedAt, ""); t != nil {
		pr.MergedAt = t
	}
	return pr
}

func (c *Client) fetchDetail(ctx context.Context, url string) (*prDetail, error) {
	resp, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("detail fetch %d", resp.StatusCode)
	}

	var d prDetail
	if err := json.NewDecoder(resp.Body).Decode(&d); err != nil {
		return nil, err
	}
	return &d, nil
}

// repoFromURL derives "owner/name" from an API repository resource URL by
// taking everything after the "repos/" marker.
func repoFromURL(u string) string {
	if i := strings.Index(u, "repos/"); i >= 0 && i+len("repos/") < len(u) {
		return u[i+len("repos/"):]
	}
	return "unknown"
}

func parseTimestamp(primary *string, fallback string) *time.Time {
	for _, s := range []string{deref(primary), fallback} {
		if s == "" {
			continue
		}
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return &t
		}
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
