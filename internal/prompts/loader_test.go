package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ExtractionPrompt(t *testing.T) {
	prompt, err := Get("extraction.json", "extract_events")
	require.NoError(t, err)

	assert.Contains(t, prompt, "{{.Today}}")
	assert.Contains(t, prompt, "{{.SourceURL}}")
	assert.Contains(t, prompt, "{{.PageText}}")
	assert.Contains(t, prompt, "null")
}

func TestGet_UnknownKey(t *testing.T) {
	_, err := Get("extraction.json", "does_not_exist")
	assert.Error(t, err)
}

func TestGet_UnknownFile(t *testing.T) {
	_, err := Get("missing.json", "extract_events")
	assert.Error(t, err)
}

func TestFormat(t *testing.T) {
	out := Format("Today is {{.Today}}, source {{.SourceURL}}", map[string]string{
		"Today":     "2026-09-01",
		"SourceURL": "https://example.de/x",
	})
	assert.Equal(t, "Today is 2026-09-01, source https://example.de/x", out)
	assert.False(t, strings.Contains(out, "{{"))
}
