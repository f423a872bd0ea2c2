package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient returns canned responses and records prompts.
type fakeClient struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeClient) GenerateJSON(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeClient) Close() error { return nil }

func newTestExtractor(client *fakeClient) *Extractor {
	e := NewExtractor(client, false)
	e.now = func() time.Time {
		return time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	}
	return e
}

func TestEventCandidates_Success(t *testing.T) {
	client := &fakeClient{response: `[
		{"name":"Salsa Night","styles":"Salsa, Bachata","dates":["2026-09-05"],"address":"Hauptstr. 1","city":"Berlin","source_url":"https://tanzschule.de/x","venue_type":"Indoor"}
	]`}

	events, err := newTestExtractor(client).EventCandidates(context.Background(), "https://tanzschule.de/x", "Salsa Party page text")
	require.NoError(t, err)
	require.Len(t, events, 1)

	assert.Equal(t, "Salsa Night", events[0].Name)
	assert.Equal(t, []string{"Salsa", "Bachata"}, []string(events[0].Styles))
}

func TestEventCandidates_PromptContents(t *testing.T) {
	client := &fakeClient{response: "null"}
	_, err := newTestExtractor(client).EventCandidates(context.Background(), "https://tanzschule.de/x", "page text here")
	require.NoError(t, err)

	require.Len(t, client.prompts, 1)
	prompt := client.prompts[0]
	assert.Contains(t, prompt, "2026-09-01")
	assert.Contains(t, prompt, "https://tanzschule.de/x")
	assert.Contains(t, prompt, "page text here")
	assert.NotContains(t, prompt, "{{.")
}

func TestEventCandidates_NoEvents(t *testing.T) {
	client := &fakeClient{response: "null"}
	events, err := newTestExtractor(client).EventCandidates(context.Background(), "https://tanzschule.de/x", "text")
	require.NoError(t, err)
	assert.Nil(t, events)
}

func TestEventCandidates_TruncatesLongPages(t *testing.T) {
	client := &fakeClient{response: "null"}
	long := strings.Repeat("a", MaxPageTextLength+5000)

	_, err := newTestExtractor(client).EventCandidates(context.Background(), "https://tanzschule.de/x", long)
	require.NoError(t, err)

	require.Len(t, client.prompts, 1)
	assert.Less(t, len(client.prompts[0]), len(long))
}

func TestEventCandidates_TruncatesOnRuneBoundary(t *testing.T) {
	client := &fakeClient{response: "null"}
	// a sea of two-byte runes guarantees the cap lands mid-rune
	long := "x" + strings.Repeat("ä", MaxPageTextLength)

	_, err := newTestExtractor(client).EventCandidates(context.Background(), "https://tanzschule.de/x", long)
	require.NoError(t, err)

	require.Len(t, client.prompts, 1)
	assert.True(t, utf8.ValidString(client.prompts[0]))
	assert.Less(t, len(client.prompts[0]), len(long))
}

func TestEventCandidates_DropsInvalidCandidates(t *testing.T) {
	// second candidate has no address and must be dropped
	client := &fakeClient{response: `[
		{"name":"Salsa Night","dates":["2026-09-05"],"address":"Hauptstr. 1","city":"Berlin","source_url":"https://tanzschule.de/x"},
		{"name":"Mystery Party","dates":["2026-09-06"],"address":"","city":"Berlin","source_url":"https://tanzschule.de/x"}
	]`}

	events, err := newTestExtractor(client).EventCandidates(context.Background(), "https://tanzschule.de/x", "text")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Salsa Night", events[0].Name)
}

func TestEventCandidates_FillsMissingSourceURL(t *testing.T) {
	client := &fakeClient{response: `[{"name":"Salsa Night","dates":["2026-09-05"],"address":"Hauptstr. 1","city":"Berlin","source_url":""}]`}

	events, err := newTestExtractor(client).EventCandidates(context.Background(), "https://tanzschule.de/x", "text")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "https://tanzschule.de/x", events[0].SourceURL)
}

func TestEventCandidates_LLMError(t *testing.T) {
	client := &fakeClient{err: fmt.Errorf("quota exceeded")}
	_, err := newTestExtractor(client).EventCandidates(context.Background(), "https://tanzschule.de/x", "text")
	require.Error(t, err)

	var extractErr *Error
	assert.True(t, errors.As(err, &extractErr))
}

func TestEventCandidates_UnparseableOutput(t *testing.T) {
	client := &fakeClient{response: "sorry, I cannot help with that"}
	_, err := newTestExtractor(client).EventCandidates(context.Background(), "https://tanzschule.de/x", "text")
	assert.Error(t, err)
}
