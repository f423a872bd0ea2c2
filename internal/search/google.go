// Package search turns a query string into candidate event page URLs.
package search

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"

	customsearch "google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
)

// Provider returns candidate URLs for a search query.
type Provider interface {
	Search(ctx context.Context, query string) ([]string, error)
}

// GoogleProvider queries the Google Custom Search JSON API and filters
// results to a configured country domain suffix.
type GoogleProvider struct {
	service       *customsearch.Service
	cx            string
	countrySuffix string
	maxResults    int64
	verbose       bool
}

// GoogleOption customizes a GoogleProvider.
type GoogleOption func(*GoogleProvider)

// WithMaxResults caps the number of results requested per query.
func WithMaxResults(n int64) GoogleOption {
	return func(p *GoogleProvider) {
		p.maxResults = n
	}
}

// WithVerboseLogging enables per-result logging.
func WithVerboseLogging(verbose bool) GoogleOption {
	return func(p *GoogleProvider) {
		p.verbose = verbose
	}
}

// NewGoogleProvider builds a provider for the given API key and search
// engine ID. Extra client options (custom endpoints for tests) may be
// passed through clientOpts.
func NewGoogleProvider(ctx context.Context, apiKey, cx, countrySuffix string, opts []GoogleOption, clientOpts ...option.ClientOption) (*GoogleProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("search: API key is required")
	}
	if cx == "" {
		return nil, fmt.Errorf("search: search engine ID is required")
	}

	allOpts := append([]option.ClientOption{option.WithAPIKey(apiKey)}, clientOpts...)
	service, err := customsearch.NewService(ctx, allOpts...)
	if err != nil {
		return nil, fmt.Errorf("search: failed to create service: %w", err)
	}

	p := &GoogleProvider{
		service:       service,
		cx:            cx,
		countrySuffix: countrySuffix,
		maxResults:    10,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Search runs the query and returns result URLs whose hostname ends in
// the configured country suffix. A failed API call yields no URLs but
// is not fatal to the caller, the collection run simply has nothing to
// visit.
func (p *GoogleProvider) Search(ctx context.Context, query string) ([]string, error) {
	resp, err := p.service.Cse.List().
		Q(query).
		Cx(p.cx).
		Num(p.maxResults).
		Context(ctx).
		Do()
	if err != nil {
		log.Printf("[VERBOSE] search failed for query %q: %v", query, err)
		return []string{}, nil
	}

	urls := make([]string, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Link == "" {
			continue
		}
		if !p.matchesCountry(item.Link) {
			if p.verbose {
				log.Printf("[VERBOSE] skipping non-%s result: %s", p.countrySuffix, item.Link)
			}
			continue
		}
		urls = append(urls, item.Link)
	}

	if p.verbose {
		log.Printf("[VERBOSE] search %q returned %d results, %d after country filter", query, len(resp.Items), len(urls))
	}
	return urls, nil
}

func (p *GoogleProvider) matchesCountry(rawURL string) bool {
	if p.countrySuffix == "" {
		return true
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.HasSuffix(u.Hostname(), p.countrySuffix)
}
