package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eventJSON = `{"name":"Salsa Night","dates":["2026-09-05"],"address":"Hauptstr. 1","city":"Berlin","source_url":"https://tanzschule.de/x"}`

func TestRepairAndParse_WellFormedArray(t *testing.T) {
	events, err := RepairAndParse(`[` + eventJSON + `]`)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Salsa Night", events[0].Name)
	assert.Equal(t, "Berlin", events[0].City)
}

func TestRepairAndParse_NullSentinel(t *testing.T) {
	for _, raw := range []string{"null", " null\n", "```json\nnull\n```", "NULL"} {
		events, err := RepairAndParse(raw)
		require.NoError(t, err, "input %q", raw)
		assert.Nil(t, events, "input %q", raw)
	}
}

func TestRepairAndParse_MarkdownFence(t *testing.T) {
	events, err := RepairAndParse("```json\n[" + eventJSON + "]\n```")
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestRepairAndParse_BareObjectWrapped(t *testing.T) {
	events, err := RepairAndParse(eventJSON)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Salsa Night", events[0].Name)
}

func TestRepairAndParse_SurroundingProse(t *testing.T) {
	events, err := RepairAndParse("Here are the events:\n[" + eventJSON + "]\nLet me know if you need more.")
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestRepairAndParse_AdjacentObjects(t *testing.T) {
	second := `{"name":"Bachata Social","dates":["2026-09-06"],"address":"Nebenstr. 2","city":"Hamburg","source_url":"https://tanzschule.de/y"}`

	for _, sep := range []string{"\n", "", " ", "\r\n"} {
		events, err := RepairAndParse(eventJSON + sep + second)
		require.NoError(t, err, "separator %q", sep)
		require.Len(t, events, 2, "separator %q", sep)
		assert.Equal(t, "Salsa Night", events[0].Name)
		assert.Equal(t, "Bachata Social", events[1].Name)
	}
}

func TestRepairAndParse_MalformedNeighborDropped(t *testing.T) {
	malformed := `{"name": broken}`

	events, err := RepairAndParse(eventJSON + "\n" + malformed)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Salsa Night", events[0].Name)

	events, err = RepairAndParse(malformed + "\n" + eventJSON)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Salsa Night", events[0].Name)
}

func TestRepairAndParse_TruncatedOutput(t *testing.T) {
	truncated := `[{"name":"Salsa Night","dates":["2026-09-05"],"address":"Hauptstr. 1","city":"Berlin","source_url":"https://tanzschule.de/x"`
	events, err := RepairAndParse(truncated)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Salsa Night", events[0].Name)
}

func TestRepairAndParse_NoJSON(t *testing.T) {
	_, err := RepairAndParse("I could not find any structured data on this page.")
	assert.Error(t, err)
}

func TestRepairAndParse_EmptyArray(t *testing.T) {
	events, err := RepairAndParse("[]")
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestCloseFragment(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"missing brace", `{"a":"b"`, `{"a":"b"}`},
		{"missing brace and bracket", `[{"a":"b"`, `[{"a":"b"}]`},
		{"cut inside string", `{"a":"b`, `{"a":"b"}`},
		{"trailing comma", `[{"a":"b"},`, `[{"a":"b"}]`},
		{"brace inside string ignored", `{"a":"x{y"`, `{"a":"x{y"}`},
		{"already balanced", `{"a":"b"}`, `{"a":"b"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, closeFragment(tt.input))
		})
	}
}
