// Package robots enforces robots.txt compliance before any page fetch.
package robots

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

// Checker fetches and caches robots.txt files per host and answers
// whether a URL may be crawled. Any failure to obtain or parse the
// file denies access: when in doubt, stay out.
type Checker struct {
	client    *http.Client
	userAgent string

	mu    sync.Mutex
	cache map[string]*robotstxt.RobotsData
}

// NewChecker builds a Checker identifying itself with userAgent.
func NewChecker(userAgent string) *Checker {
	return &Checker{
		client:    &http.Client{Timeout: 10 * time.Second},
		userAgent: userAgent,
		cache:     make(map[string]*robotstxt.RobotsData),
	}
}

// NewCheckerWithClient is like NewChecker with an injected HTTP client.
func NewCheckerWithClient(userAgent string, client *http.Client) *Checker {
	c := NewChecker(userAgent)
	c.client = client
	return c
}

// IsAllowed reports whether the page at rawURL may be fetched under the
// host's robots.txt. A missing robots.txt (404) allows everything; a
// fetch or parse failure allows nothing.
func (c *Checker) IsAllowed(ctx context.Context, rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		log.Printf("[VERBOSE] robots: unparseable URL denied: %s", rawURL)
		return false
	}

	data, err := c.robotsFor(ctx, u)
	if err != nil {
		log.Printf("[VERBOSE] robots: failed to load robots.txt for %s, denying: %v", u.Host, err)
		return false
	}

	group := data.FindGroup(c.userAgent)
	return group.Test(u.Path)
}

func (c *Checker) robotsFor(ctx context.Context, u *url.URL) (*robotstxt.RobotsData, error) {
	host := u.Scheme + "://" + u.Host

	c.mu.Lock()
	if data, ok := c.cache[host]; ok {
		c.mu.Unlock()
		return data, nil
	}
	c.mu.Unlock()

	robotsURL := host + "/robots.txt"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", robotsURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", robotsURL, err)
	}

	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", robotsURL, err)
	}

	c.mu.Lock()
	c.cache[host] = data
	c.mu.Unlock()
	return data, nil
}
