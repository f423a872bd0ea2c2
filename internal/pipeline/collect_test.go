package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/tanzparty/internal/types"
)

type fakeSearcher struct {
	urls []string
	err  error
}

func (f *fakeSearcher) Search(_ context.Context, _ string) ([]string, error) {
	return f.urls, f.err
}

type fakeRobots struct {
	disallowed map[string]bool
}

func (f *fakeRobots) IsAllowed(_ context.Context, url string) bool {
	return !f.disallowed[url]
}

type fakeFetcher struct {
	pages   map[string]string
	errs    map[string]error
	fetched []string
}

func (f *fakeFetcher) EventPage(_ context.Context, url string) (string, error) {
	f.fetched = append(f.fetched, url)
	if err := f.errs[url]; err != nil {
		return "", err
	}
	return f.pages[url], nil
}

type fakeExtractor struct {
	candidates map[string][]types.EventCandidate
	errs       map[string]error
}

func (f *fakeExtractor) EventCandidates(_ context.Context, sourceURL, _ string) ([]types.EventCandidate, error) {
	if err := f.errs[sourceURL]; err != nil {
		return nil, err
	}
	return f.candidates[sourceURL], nil
}

type saveResult struct {
	saved bool
	err   error
}

type fakeStore struct {
	results []saveResult
	calls   int
}

func (f *fakeStore) SaveIfUnique(_ context.Context, _ *types.EventCandidate) (bool, error) {
	r := saveResult{saved: true}
	if f.calls < len(f.results) {
		r = f.results[f.calls]
	}
	f.calls++
	return r.saved, r.err
}

type visit struct {
	success bool
	reason  string
}

type fakeLedger struct {
	recent map[string]bool
	visits map[string]visit
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{recent: map[string]bool{}, visits: map[string]visit{}}
}

func (f *fakeLedger) RecentlyVisited(_ context.Context, url string) bool {
	return f.recent[url]
}

func (f *fakeLedger) RecordVisit(_ context.Context, url string, success bool, reason string) error {
	f.visits[url] = visit{success: success, reason: reason}
	return nil
}

func candidate(name string) types.EventCandidate {
	return types.EventCandidate{
		Name:    name,
		Dates:   []string{"2026-09-05"},
		Address: "Hauptstr. 1",
		City:    "Berlin",
	}
}

func newCollector(s *fakeSearcher, r *fakeRobots, f *fakeFetcher, e *fakeExtractor, st *fakeStore, l *fakeLedger) *Collector {
	if r == nil {
		r = &fakeRobots{}
	}
	return NewCollector(s, r, f, e, st, l, 5, false)
}

func TestCollect_SavesExtractedEvents(t *testing.T) {
	url := "https://tanzschule.de/party"
	ledger := newFakeLedger()
	store := &fakeStore{}

	c := newCollector(
		&fakeSearcher{urls: []string{url}},
		nil,
		&fakeFetcher{pages: map[string]string{url: "Salsa Party text"}},
		&fakeExtractor{candidates: map[string][]types.EventCandidate{
			url: {candidate("Salsa Night"), candidate("Bachata Social")},
		}},
		store,
		ledger,
	)

	saved, err := c.Collect(context.Background(), "Salsa Veranstaltung Berlin")
	require.NoError(t, err)
	assert.Len(t, saved, 2)
	assert.Equal(t, 2, store.calls)

	v := ledger.visits[url]
	assert.True(t, v.success)
	assert.Equal(t, "saved 2/2 events", v.reason)
}

func TestCollect_RobotsDisallowed(t *testing.T) {
	url := "https://tanzschule.de/private"
	ledger := newFakeLedger()
	fetcher := &fakeFetcher{}

	c := newCollector(
		&fakeSearcher{urls: []string{url}},
		&fakeRobots{disallowed: map[string]bool{url: true}},
		fetcher,
		&fakeExtractor{},
		&fakeStore{},
		ledger,
	)

	saved, err := c.Collect(context.Background(), "q")
	require.NoError(t, err)
	assert.Empty(t, saved)

	// disallowed URLs are recorded but never fetched
	assert.Empty(t, fetcher.fetched)
	v := ledger.visits[url]
	assert.False(t, v.success)
	assert.Equal(t, "robots.txt disallowed", v.reason)
}

func TestCollect_RecentlyVisitedSkippedWithoutRecord(t *testing.T) {
	url := "https://tanzschule.de/party"
	ledger := newFakeLedger()
	ledger.recent[url] = true
	fetcher := &fakeFetcher{}

	c := newCollector(&fakeSearcher{urls: []string{url}}, nil, fetcher, &fakeExtractor{}, &fakeStore{}, ledger)

	saved, err := c.Collect(context.Background(), "q")
	require.NoError(t, err)
	assert.Empty(t, saved)
	assert.Empty(t, fetcher.fetched)

	// no new ledger row, the existing cooldown must not slide forward
	_, recorded := ledger.visits[url]
	assert.False(t, recorded)
}

func TestCollect_ContentFilteringFailed(t *testing.T) {
	url := "https://example.de/cars"
	ledger := newFakeLedger()

	c := newCollector(
		&fakeSearcher{urls: []string{url}},
		nil,
		&fakeFetcher{pages: map[string]string{url: ""}},
		&fakeExtractor{},
		&fakeStore{},
		ledger,
	)

	_, err := c.Collect(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, visit{success: false, reason: "content filtering failed"}, ledger.visits[url])
}

func TestCollect_FetchError(t *testing.T) {
	url := "https://down.de/page"
	ledger := newFakeLedger()

	c := newCollector(
		&fakeSearcher{urls: []string{url}},
		nil,
		&fakeFetcher{errs: map[string]error{url: fmt.Errorf("connection refused")}},
		&fakeExtractor{},
		&fakeStore{},
		ledger,
	)

	_, err := c.Collect(context.Background(), "q")
	require.NoError(t, err)

	v := ledger.visits[url]
	assert.False(t, v.success)
	assert.Contains(t, v.reason, "fetch failed")
}

func TestCollect_NoValidMetadata(t *testing.T) {
	url := "https://tanzschule.de/vague"
	ledger := newFakeLedger()

	c := newCollector(
		&fakeSearcher{urls: []string{url}},
		nil,
		&fakeFetcher{pages: map[string]string{url: "Salsa text"}},
		&fakeExtractor{candidates: map[string][]types.EventCandidate{url: nil}},
		&fakeStore{},
		ledger,
	)

	_, err := c.Collect(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "no valid event metadata extracted", ledger.visits[url].reason)
}

func TestCollect_AllDuplicates(t *testing.T) {
	url := "https://tanzschule.de/party"
	ledger := newFakeLedger()

	c := newCollector(
		&fakeSearcher{urls: []string{url}},
		nil,
		&fakeFetcher{pages: map[string]string{url: "Salsa text"}},
		&fakeExtractor{candidates: map[string][]types.EventCandidate{
			url: {candidate("A"), candidate("B")},
		}},
		&fakeStore{results: []saveResult{{saved: false}, {saved: false}}},
		ledger,
	)

	saved, err := c.Collect(context.Background(), "q")
	require.NoError(t, err)
	assert.Empty(t, saved)

	v := ledger.visits[url]
	assert.False(t, v.success)
	assert.Equal(t, "all 2 events were duplicates", v.reason)
}

func TestCollect_DatabaseError(t *testing.T) {
	url := "https://tanzschule.de/party"
	ledger := newFakeLedger()

	c := newCollector(
		&fakeSearcher{urls: []string{url}},
		nil,
		&fakeFetcher{pages: map[string]string{url: "Salsa text"}},
		&fakeExtractor{candidates: map[string][]types.EventCandidate{
			url: {candidate("A")},
		}},
		&fakeStore{results: []saveResult{{err: fmt.Errorf("connection lost")}}},
		ledger,
	)

	_, err := c.Collect(context.Background(), "q")
	require.NoError(t, err)

	v := ledger.visits[url]
	assert.False(t, v.success)
	assert.Contains(t, v.reason, "database error")
	assert.Contains(t, v.reason, "connection lost")
}

func TestCollect_PartialSaveStillSucceeds(t *testing.T) {
	url := "https://tanzschule.de/party"
	ledger := newFakeLedger()

	c := newCollector(
		&fakeSearcher{urls: []string{url}},
		nil,
		&fakeFetcher{pages: map[string]string{url: "Salsa text"}},
		&fakeExtractor{candidates: map[string][]types.EventCandidate{
			url: {candidate("A"), candidate("B"), candidate("C")},
		}},
		&fakeStore{results: []saveResult{{saved: true}, {saved: false}, {saved: false}}},
		ledger,
	)

	saved, err := c.Collect(context.Background(), "q")
	require.NoError(t, err)
	assert.Len(t, saved, 1)
	assert.Equal(t, visit{success: true, reason: "saved 1/3 events"}, ledger.visits[url])
}

func TestCollect_CapsURLCount(t *testing.T) {
	var urls []string
	pages := map[string]string{}
	for i := 0; i < 8; i++ {
		u := fmt.Sprintf("https://site%d.de/page", i)
		urls = append(urls, u)
		pages[u] = ""
	}
	fetcher := &fakeFetcher{pages: pages}

	c := newCollector(&fakeSearcher{urls: urls}, nil, fetcher, &fakeExtractor{}, &fakeStore{}, newFakeLedger())

	_, err := c.Collect(context.Background(), "q")
	require.NoError(t, err)
	assert.Len(t, fetcher.fetched, 5)
}

func TestCollect_SearchError(t *testing.T) {
	c := newCollector(&fakeSearcher{err: fmt.Errorf("boom")}, nil, &fakeFetcher{}, &fakeExtractor{}, &fakeStore{}, newFakeLedger())
	_, err := c.Collect(context.Background(), "q")
	assert.Error(t, err)
}
