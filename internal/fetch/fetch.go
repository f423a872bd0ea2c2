// Package fetch retrieves event pages politely and reduces them to
// plain text suitable for extraction.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 10 * time.Second

// DefaultDelay is the politeness pause before each page fetch.
const DefaultDelay = 2 * time.Second

// DefaultUserAgent identifies the collector to remote servers.
const DefaultUserAgent = "TanzpartyBot/1.0 (+https://deineseite.de/bot-info)"

// Error represents an error during page fetching.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures the fetch behavior.
type Options struct {
	Timeout   time.Duration
	Delay     time.Duration
	UserAgent string
	// UseBrowser renders JavaScript-heavy pages in a headless browser
	// when the plain HTTP fetch yields too little text.
	UseBrowser bool
	Verbose    bool
}

// DefaultOptions returns the polite production defaults.
func DefaultOptions() *Options {
	return &Options{
		Timeout:   DefaultTimeout,
		Delay:     DefaultDelay,
		UserAgent: DefaultUserAgent,
	}
}

// Fetcher downloads event pages with a fixed delay between requests.
type Fetcher struct {
	client *http.Client
	opts   *Options
}

// NewFetcher builds a Fetcher. A nil opts uses DefaultOptions.
func NewFetcher(opts *Options) *Fetcher {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &Fetcher{
		client: &http.Client{Timeout: opts.Timeout},
		opts:   opts,
	}
}

// NewFetcherWithClient is like NewFetcher with an injected HTTP client.
func NewFetcherWithClient(opts *Options, client *http.Client) *Fetcher {
	f := NewFetcher(opts)
	f.client = client
	return f
}

// EventPage fetches the page at rawURL and returns its cleaned text if
// the content looks like a dance event. Network and HTTP failures
// return an error; a page that fetches fine but fails the relevance
// filter returns an empty string and no error.
func (f *Fetcher) EventPage(ctx context.Context, rawURL string) (string, error) {
	if err := f.pause(ctx); err != nil {
		return "", err
	}

	html, err := f.download(ctx, rawURL)
	if err != nil {
		return "", err
	}

	text, err := ExtractText(html)
	if err != nil {
		return "", &Error{URL: rawURL, Message: "failed to parse HTML", Cause: err}
	}

	// Thin pages are usually client-rendered. Retry through the
	// browser before judging relevance.
	if f.opts.UseBrowser && len(text) < minStaticTextLength {
		if rendered, berr := renderedText(ctx, rawURL, f.opts.Timeout); berr == nil {
			text = rendered
		} else if f.opts.Verbose {
			log.Printf("[VERBOSE] browser render failed for %s: %v", rawURL, berr)
		}
	}

	if !IsRelevant(text) {
		if f.opts.Verbose {
			log.Printf("[VERBOSE] content filter rejected %s", rawURL)
		}
		return "", nil
	}

	return text, nil
}

// minStaticTextLength is the threshold below which a page is assumed
// to be client-rendered.
const minStaticTextLength = 200

func (f *Fetcher) pause(ctx context.Context) error {
	if f.opts.Delay <= 0 {
		return nil
	}
	select {
	case <-time.After(f.opts.Delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *Fetcher) download(ctx context.Context, rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", &Error{URL: rawURL, Message: "invalid URL", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", &Error{URL: rawURL, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", &Error{URL: rawURL, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", &Error{URL: rawURL, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &Error{URL: rawURL, Message: "failed to read response body", Cause: err}
	}
	return string(body), nil
}

// ExtractText strips markup and boilerplate from HTML and returns the
// visible text with normalized whitespace.
func ExtractText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style, noscript").Remove()

	text := doc.Find("body").Text()
	return cleanWhitespace(text), nil
}

// cleanWhitespace collapses runs of whitespace and drops empty lines.
func cleanWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	var cleaned []string
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
