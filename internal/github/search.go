package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

const searchPageSize = 100

// SearchMerged pages through the search endpoint for every PR authored by
// user and merged within [start, end] (ISO dates, inclusive). The total
// result count is read from the first page only and held fixed; a short
// page ends the loop regardless of that total, guarding against drift.
// onProgress fires after every page with cumulative counts.
func (c *Client) SearchMerged(ctx context.Context, user, start, end string, onProgress func(Progress)) ([]SearchItem, error) {
	query := fmt.Sprintf("author:%s is:pr is:merged merged:%s..%s", user, start, end)

	var items []SearchItem
	total := -1
	for page := 1; ; page++ {
		u := fmt.Sprintf("%s/search/issues?q=%s&per_page=%d&page=%d&sort=updated&order=desc",
			c.baseURL, url.QueryEscape(query), searchPageSize, page)

		resp, err := c.get(ctx, u)
		if err != nil {
			return nil, fmt.Errorf("searching pull requests: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			resp.Body.Close()
			return nil, fmt.Errorf("github search %d: %s", resp.StatusCode, string(b))
		}

		var sr searchResponse
		err = json.NewDecoder(resp.Body).Decode(&sr)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("decoding search page %d: %w", page, err)
		}

		if total < 0 {
			total = sr.TotalCount
		}
		items = append(items, sr.Items...)

		if onProgress != nil {
			onProgress(Progress{Fetched: len(items), Total: total})
		}

		if len(items) >= total || len(sr.Items) < searchPageSize {
			return items, nil
		}
	}
}
