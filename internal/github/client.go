package github

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

const defaultBaseURL = "https://api.github.com"

// maxRateLimitWait bounds how long we are willing to sleep for a rate-limit
// reset before giving up instead.
const maxRateLimitWait = 2 * time.Minute

// RateLimitError is returned when the API is rate-limited and the reset is
// either already past or too far away to wait out.
type RateLimitError struct {
	Wait time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("github rate limit exceeded (reset in %s)", e.Wait.Round(time.Second))
}

// Client talks to the GitHub API on behalf of one user. It carries its own
// credentials and base URL so nothing is process-global; construct one per
// pipeline run.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	log     logrus.FieldLogger

	// injectable for tests
	now   func() time.Time
	sleep func(time.Duration)
}

// New creates a Client authenticated with the given token.
func New(token string, log logrus.FieldLogger) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
		log:     log,
		now:     time.Now,
		sleep:   time.Sleep,
	}
}

func (c *Client) doOnce(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return c.http.Do(req)
}

// get issues a GET with rate-limit recovery: on a 403 with the remaining
// quota exhausted, it waits for the reset window (plus a one second margin)
// and retries exactly once. A reset already in the past or more than two
// minutes away fails immediately with a RateLimitError. Every other status
// is returned to the caller untouched.
func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	resp, err := c.doOnce(ctx, url)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusForbidden {
		return resp, nil
	}

	remaining := resp.Header.Get("X-RateLimit-Remaining")
	resetHeader := resp.Header.Get("X-RateLimit-Reset")
	if remaining != "0" || resetHeader == "" {
		return resp, nil
	}
	resetSec, err := strconv.ParseInt(resetHeader, 10, 64)
	if err != nil {
		return resp, nil
	}
	resp.Body.Close()

	wait := time.Duration(resetSec*1000-c.now().UnixMilli()+1000) * time.Millisecond
	if wait <= 0 || wait >= maxRateLimitWait {
		return nil, &RateLimitError{Wait: wait}
	}

	c.log.Debugf("rate limited, waiting %s before retry", wait.Round(time.Second))
	c.sleep(wait)
	return c.doOnce(ctx, url)
}
