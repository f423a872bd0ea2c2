package types

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStyleList_UnmarshalJSON(t *testing.T) {
	t.Run("array form", func(t *testing.T) {
		var s StyleList
		err := json.Unmarshal([]byte(`["Salsa","Bachata"]`), &s)
		require.NoError(t, err)
		assert.Equal(t, StyleList{"Salsa", "Bachata"}, s)
	})

	t.Run("comma separated string", func(t *testing.T) {
		var s StyleList
		err := json.Unmarshal([]byte(`"Salsa, Bachata , Kizomba"`), &s)
		require.NoError(t, err)
		assert.Equal(t, StyleList{"Salsa", "Bachata", "Kizomba"}, s)
	})

	t.Run("invalid type", func(t *testing.T) {
		var s StyleList
		err := json.Unmarshal([]byte(`42`), &s)
		assert.Error(t, err)
	})
}

func TestNormalizeStyles(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{
			name:     "canonical styles pass through",
			input:    []string{"Salsa", "Bachata"},
			expected: []string{"Salsa", "Bachata"},
		},
		{
			name:     "case insensitive match",
			input:    []string{"salsa", "BACHATA", "west coast swing"},
			expected: []string{"Salsa", "Bachata", "West Coast Swing"},
		},
		{
			name:     "unknown styles dropped",
			input:    []string{"Salsa", "Polka", "Breakdance"},
			expected: []string{"Salsa"},
		},
		{
			name:     "duplicates removed",
			input:    []string{"Salsa", "salsa", "Salsa"},
			expected: []string{"Salsa"},
		},
		{
			name:     "whitespace trimmed",
			input:    []string{"  Salsa  ", " Tango"},
			expected: []string{"Salsa", "Tango"},
		},
		{
			name:     "empty input yields empty slice",
			input:    nil,
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeStyles(tt.input))
		})
	}
}

func TestEventCandidate_Validate(t *testing.T) {
	valid := func() EventCandidate {
		return EventCandidate{
			Name:      "Salsa Night",
			Dates:     []string{"2026-09-05"},
			Address:   "Hauptstr. 1, 10115 Berlin",
			City:      "Berlin",
			SourceURL: "https://example.de/salsa-night",
		}
	}

	t.Run("valid candidate", func(t *testing.T) {
		c := valid()
		assert.NoError(t, c.Validate())
	})

	tests := []struct {
		name   string
		mutate func(*EventCandidate)
		field  string
	}{
		{"missing name", func(c *EventCandidate) { c.Name = "  " }, "name"},
		{"missing address", func(c *EventCandidate) { c.Address = "" }, "address"},
		{"missing city", func(c *EventCandidate) { c.City = "" }, "city"},
		{"no dates", func(c *EventCandidate) { c.Dates = nil }, "dates"},
		{"blank first date", func(c *EventCandidate) { c.Dates = []string{" "} }, "dates"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			require.Error(t, err)

			var invalid *InvalidCandidateError
			require.True(t, errors.As(err, &invalid))
			assert.Equal(t, tt.field, invalid.Field)
		})
	}
}

func TestEventCandidate_FirstDate(t *testing.T) {
	c := EventCandidate{Dates: []string{"2026-09-05", "2026-09-12"}}
	assert.Equal(t, "2026-09-05", c.FirstDate())

	empty := EventCandidate{}
	assert.Equal(t, "", empty.FirstDate())
}
