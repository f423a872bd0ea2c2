// Package extract turns fetched page text into structured event
// candidates using an LLM.
package extract

import (
	"context"
	"fmt"
	"log"
	"time"
	"unicode/utf8"

	"github.com/jonathan/tanzparty/internal/llm"
	"github.com/jonathan/tanzparty/internal/prompts"
	"github.com/jonathan/tanzparty/internal/schemas"
	"github.com/jonathan/tanzparty/internal/types"
)

// MaxPageTextLength caps how much page text goes into the prompt.
// Event details sit near the top of a page, the rest is footer noise.
const MaxPageTextLength = 6000

// Error represents an extraction failure.
type Error struct {
	SourceURL string
	Message   string
	Cause     error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extraction error for %s: %s: %v", e.SourceURL, e.Message, e.Cause)
	}
	return fmt.Sprintf("extraction error for %s: %s", e.SourceURL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Extractor runs the extraction prompt against an LLM client.
type Extractor struct {
	client  llm.Client
	verbose bool
	now     func() time.Time
}

// NewExtractor builds an Extractor on top of an LLM client.
func NewExtractor(client llm.Client, verbose bool) *Extractor {
	return &Extractor{
		client:  client,
		verbose: verbose,
		now:     time.Now,
	}
}

// EventCandidates extracts all events announced in pageText.
// A page with no events yields (nil, nil). Candidates that fail
// validation are dropped, not fatal.
func (e *Extractor) EventCandidates(ctx context.Context, sourceURL, pageText string) ([]types.EventCandidate, error) {
	if len(pageText) > MaxPageTextLength {
		// cut on a rune boundary, a half rune would make the prompt
		// invalid UTF-8 and the API rejects that
		cut := MaxPageTextLength
		for cut > 0 && !utf8.RuneStart(pageText[cut]) {
			cut--
		}
		pageText = pageText[:cut]
	}

	template := prompts.MustGet("extraction.json", "extract_events")
	prompt := prompts.Format(template, map[string]string{
		"Today":     e.now().Format("2006-01-02"),
		"SourceURL": sourceURL,
		"PageText":  pageText,
	})

	raw, err := e.client.GenerateJSON(ctx, prompt)
	if err != nil {
		return nil, &Error{SourceURL: sourceURL, Message: "LLM request failed", Cause: err}
	}

	candidates, err := RepairAndParse(raw)
	if err != nil {
		return nil, &Error{SourceURL: sourceURL, Message: "unparseable model output", Cause: err}
	}
	if candidates == nil {
		return nil, nil
	}

	valid := make([]types.EventCandidate, 0, len(candidates))
	for i := range candidates {
		c := &candidates[i]
		c.Styles = types.NormalizeStyles(c.Styles)
		if c.SourceURL == "" {
			c.SourceURL = sourceURL
		}

		if err := c.Validate(); err != nil {
			if e.verbose {
				log.Printf("[VERBOSE] dropping candidate from %s: %v", sourceURL, err)
			}
			continue
		}
		if err := schemas.ValidateCandidate(c); err != nil {
			if e.verbose {
				log.Printf("[VERBOSE] dropping candidate from %s: %v", sourceURL, err)
			}
			continue
		}
		valid = append(valid, *c)
	}
	return valid, nil
}
