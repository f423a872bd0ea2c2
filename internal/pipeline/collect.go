// Package pipeline orchestrates one collection run: search, gate,
// fetch, extract, persist.
package pipeline

import (
	"context"
	"fmt"
	"log"

	"github.com/jonathan/tanzparty/internal/types"
)

// Searcher returns candidate URLs for a query.
type Searcher interface {
	Search(ctx context.Context, query string) ([]string, error)
}

// RobotsChecker answers whether a URL may be crawled.
type RobotsChecker interface {
	IsAllowed(ctx context.Context, url string) bool
}

// PageFetcher downloads a page and returns its relevant text, or ""
// when the page fails the relevance filter.
type PageFetcher interface {
	EventPage(ctx context.Context, url string) (string, error)
}

// Extractor turns page text into event candidates.
type Extractor interface {
	EventCandidates(ctx context.Context, sourceURL, pageText string) ([]types.EventCandidate, error)
}

// EventStore persists candidates, reporting duplicates.
type EventStore interface {
	SaveIfUnique(ctx context.Context, c *types.EventCandidate) (bool, error)
}

// VisitLedger gates revisits and records crawl outcomes.
type VisitLedger interface {
	RecentlyVisited(ctx context.Context, url string) bool
	RecordVisit(ctx context.Context, url string, success bool, reason string) error
}

// Collector runs the collection pipeline.
type Collector struct {
	searcher  Searcher
	robots    RobotsChecker
	fetcher   PageFetcher
	extractor Extractor
	events    EventStore
	visits    VisitLedger
	maxURLs   int
	verbose   bool
}

// NewCollector wires the pipeline stages together. maxURLs caps how
// many search results one run will visit.
func NewCollector(searcher Searcher, robots RobotsChecker, fetcher PageFetcher, extractor Extractor, events EventStore, visits VisitLedger, maxURLs int, verbose bool) *Collector {
	return &Collector{
		searcher:  searcher,
		robots:    robots,
		fetcher:   fetcher,
		extractor: extractor,
		events:    events,
		visits:    visits,
		maxURLs:   maxURLs,
		verbose:   verbose,
	}
}

// Collect runs the full pipeline for one query and returns the newly
// saved events. The pipeline never fails as a whole because one URL
// misbehaves, each URL's outcome lands in the visit ledger instead.
func (c *Collector) Collect(ctx context.Context, query string) ([]types.EventCandidate, error) {
	urls, err := c.searcher.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	if len(urls) > c.maxURLs {
		urls = urls[:c.maxURLs]
	}
	fmt.Printf("Collecting events for %q: %d URLs to process\n", query, len(urls))

	var saved []types.EventCandidate
	for _, url := range urls {
		if err := ctx.Err(); err != nil {
			return saved, err
		}

		// Skipping a URL inside its cooldown leaves the ledger
		// untouched, re-recording would slide the cooldown window
		// forward and lock the URL out forever.
		if c.visits.RecentlyVisited(ctx, url) {
			if c.verbose {
				log.Printf("[VERBOSE] skipping recently visited URL: %s", url)
			}
			continue
		}

		if !c.robots.IsAllowed(ctx, url) {
			c.recordVisit(ctx, url, false, "robots.txt disallowed")
			continue
		}

		saved = append(saved, c.processURL(ctx, url)...)
	}

	fmt.Printf("Collection run finished: %d events saved\n", len(saved))
	return saved, nil
}

// processURL fetches, extracts and persists one URL, recording its
// outcome in the ledger. It returns the candidates that were saved.
func (c *Collector) processURL(ctx context.Context, url string) []types.EventCandidate {
	text, err := c.fetcher.EventPage(ctx, url)
	if err != nil {
		c.recordVisit(ctx, url, false, fmt.Sprintf("fetch failed: %v", err))
		return nil
	}
	if text == "" {
		c.recordVisit(ctx, url, false, "content filtering failed")
		return nil
	}

	candidates, err := c.extractor.EventCandidates(ctx, url, text)
	if err != nil {
		c.recordVisit(ctx, url, false, fmt.Sprintf("extraction failed: %v", err))
		return nil
	}
	if len(candidates) == 0 {
		c.recordVisit(ctx, url, false, "no valid event metadata extracted")
		return nil
	}

	var (
		saved      []types.EventCandidate
		duplicates int
		lastErr    error
	)
	for i := range candidates {
		ok, err := c.events.SaveIfUnique(ctx, &candidates[i])
		switch {
		case err != nil:
			lastErr = err
		case ok:
			saved = append(saved, candidates[i])
		default:
			duplicates++
		}
	}

	switch {
	case len(saved) > 0:
		c.recordVisit(ctx, url, true, fmt.Sprintf("saved %d/%d events", len(saved), len(candidates)))
	case lastErr != nil:
		c.recordVisit(ctx, url, false, fmt.Sprintf("database error: %v", lastErr))
	case duplicates == len(candidates):
		c.recordVisit(ctx, url, false, fmt.Sprintf("all %d events were duplicates", len(candidates)))
	default:
		c.recordVisit(ctx, url, false, fmt.Sprintf("failed to save any of %d events", len(candidates)))
	}
	return saved
}

func (c *Collector) recordVisit(ctx context.Context, url string, success bool, reason string) {
	if c.verbose {
		log.Printf("[VERBOSE] visit %s: success=%v reason=%q", url, success, reason)
	}
	if err := c.visits.RecordVisit(ctx, url, success, reason); err != nil {
		log.Printf("[VERBOSE] failed to record visit for %s: %v", url, err)
	}
}
