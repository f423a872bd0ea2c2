// Package types provides type definitions for structured data used throughout the event collector.
package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// VenueType classifies where an event takes place.
type VenueType string

// Venue classification values as emitted by the extractor.
const (
	VenueIndoor      VenueType = "Indoor"
	VenueOutdoor     VenueType = "Outdoor"
	VenueUnspecified VenueType = "Unspecified"
)

// RecurrenceType is the normalized classification of a free-text recurrence phrase.
type RecurrenceType string

// Recurrence classification values.
const (
	RecurrenceWeekly    RecurrenceType = "weekly"
	RecurrenceBiweekly  RecurrenceType = "biweekly"
	RecurrenceMonthly   RecurrenceType = "monthly"
	RecurrenceIrregular RecurrenceType = "irregular"
	RecurrenceOneTime   RecurrenceType = "one-time"
)

// Workshop is a single workshop slot preceding or accompanying a party.
type Workshop struct {
	Start string `json:"start"`
	End   string `json:"end,omitempty"`
	Style string `json:"style,omitempty"`
	Level string `json:"level,omitempty"`
}

// Floor describes the music played on one floor of a party.
type Floor struct {
	Floor string `json:"floor,omitempty"`
	Music string `json:"music"`
}

// Party is the party sub-schedule of an event.
type Party struct {
	Start  string  `json:"start"`
	End    string  `json:"end,omitempty"`
	Floors []Floor `json:"floors,omitempty"`
}

// StyleList is a list of dance styles. The extractor is asked for a
// comma-separated string, but models return arrays about half the time,
// so it unmarshals from either form.
type StyleList []string

// UnmarshalJSON accepts both `["Salsa","Bachata"]` and `"Salsa, Bachata"`.
func (s *StyleList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*s = list
		return nil
	}

	var joined string
	if err := json.Unmarshal(data, &joined); err != nil {
		return fmt.Errorf("styles must be a string or array of strings")
	}
	*s = SplitStyles(joined)
	return nil
}

// SplitStyles splits a comma-separated style string into a trimmed list.
func SplitStyles(joined string) []string {
	parts := strings.Split(joined, ",")
	styles := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			styles = append(styles, p)
		}
	}
	return styles
}

// knownStyles is the closed vocabulary of dance styles the collector accepts.
// Styles outside this list are dropped during normalization, never invented.
var knownStyles = []string{
	"Salsa",
	"Bachata",
	"Kizomba",
	"Zouk",
	"Forró",
	"Tango",
	"Swing",
	"West Coast Swing",
	"Merengue",
	"Cha-Cha",
}

// KnownStyles returns the closed style vocabulary.
func KnownStyles() []string {
	out := make([]string, len(knownStyles))
	copy(out, knownStyles)
	return out
}

// NormalizeStyles maps raw style strings onto the closed vocabulary,
// dropping anything unrecognized and deduplicating the result.
func NormalizeStyles(raw []string) []string {
	normalized := make([]string, 0, len(raw))
	seen := make(map[string]bool)
	for _, r := range raw {
		r = strings.TrimSpace(r)
		for _, known := range knownStyles {
			if strings.EqualFold(r, known) && !seen[known] {
				normalized = append(normalized, known)
				seen[known] = true
				break
			}
		}
	}
	return normalized
}

// EventCandidate is the transient structured result of extracting one page.
// It is validated and deduplicated before persistence.
type EventCandidate struct {
	Name           string         `json:"name"`
	Styles         StyleList      `json:"styles,omitempty"`
	Dates          []string       `json:"dates"`
	Workshops      []Workshop     `json:"workshops,omitempty"`
	Party          *Party         `json:"party,omitempty"`
	Address        string         `json:"address"`
	City           string         `json:"city"`
	SourceURL      string         `json:"source_url"`
	Recurrence     string         `json:"recurrence,omitempty"`
	RecurrenceType RecurrenceType `json:"recurrence_type,omitempty"`
	VenueType      VenueType      `json:"venue_type,omitempty"`
}

// Validate checks that all required attributes are present.
// A candidate failing validation must be discarded before persistence.
func (c *EventCandidate) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return &InvalidCandidateError{Field: "name"}
	}
	if strings.TrimSpace(c.Address) == "" {
		return &InvalidCandidateError{Field: "address"}
	}
	if strings.TrimSpace(c.City) == "" {
		return &InvalidCandidateError{Field: "city"}
	}
	if len(c.Dates) == 0 || strings.TrimSpace(c.Dates[0]) == "" {
		return &InvalidCandidateError{Field: "dates"}
	}
	return nil
}

// FirstDate returns the first occurrence date, the one persisted for the event.
func (c *EventCandidate) FirstDate() string {
	if len(c.Dates) == 0 {
		return ""
	}
	return c.Dates[0]
}

// InvalidCandidateError reports a missing required attribute on a candidate.
type InvalidCandidateError struct {
	Field string
}

func (e *InvalidCandidateError) Error() string {
	return fmt.Sprintf("invalid event candidate: missing required field %q", e.Field)
}
