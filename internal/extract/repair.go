package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/tanzparty/internal/llm"
	"github.com/jonathan/tanzparty/internal/types"
)

// RepairAndParse turns raw model output into event candidates. Models
// wrap JSON in markdown, emit bare objects instead of arrays, butt
// objects against each other without commas, or cut off mid-object;
// each defect is repaired in turn before giving up.
//
// A sentinel "null" reply means the page announces no events and
// yields (nil, nil).
func RepairAndParse(raw string) ([]types.EventCandidate, error) {
	text := llm.CleanJSONBlock(raw)
	if isNullSentinel(text) {
		return nil, nil
	}

	span := jsonSpan(text)
	if span == "" {
		return nil, fmt.Errorf("no JSON found in model output")
	}
	if isNullSentinel(span) {
		return nil, nil
	}

	if events, err := parseCandidates(span); err == nil {
		return events, nil
	}

	// adjacent objects without separating commas
	repaired := joinAdjacentObjects(span)
	if !strings.HasPrefix(repaired, "[") {
		repaired = "[" + repaired + "]"
	}
	if events, err := parseCandidates(repaired); err == nil {
		return events, nil
	}

	// a malformed object must not take its valid neighbors down with it
	if events := salvageFragments(span); len(events) > 0 {
		return events, nil
	}

	// truncated output, close what was left open
	fragment := closeFragment(span)
	events, err := parseCandidates(fragment)
	if err != nil {
		return nil, fmt.Errorf("failed to parse model output as JSON: %w", err)
	}
	return events, nil
}

// salvageFragments splits butted-together objects apart and parses
// each one on its own, keeping the survivors and dropping the rest.
func salvageFragments(text string) []types.EventCandidate {
	for _, p := range boundaryPatterns {
		text = strings.ReplaceAll(text, p, "}\x00{")
	}
	fragments := strings.Split(text, "\x00")
	if len(fragments) < 2 {
		return nil
	}

	var events []types.EventCandidate
	for _, frag := range fragments {
		frag = strings.TrimSpace(frag)
		frag = strings.TrimPrefix(frag, "[")
		frag = strings.TrimSuffix(frag, "]")
		frag = strings.TrimSpace(frag)
		if frag == "" {
			continue
		}

		cands, err := parseCandidates(frag)
		if err != nil {
			cands, err = parseCandidates(closeFragment(frag))
		}
		if err == nil {
			events = append(events, cands...)
		}
	}
	return events
}

func isNullSentinel(text string) bool {
	return strings.EqualFold(strings.TrimSpace(text), "null")
}

// jsonSpan cuts the text down to the region between the first opening
// and last closing JSON token, discarding any prose around it.
func jsonSpan(text string) string {
	start := strings.IndexAny(text, "[{")
	if start < 0 {
		return ""
	}
	end := strings.LastIndexAny(text, "]}")
	if end < start {
		// opener with no closer, keep the tail for fragment repair
		return text[start:]
	}
	return text[start : end+1]
}

// parseCandidates decodes a JSON array of candidates, accepting a bare
// object as a one-element array.
func parseCandidates(text string) ([]types.EventCandidate, error) {
	var events []types.EventCandidate
	if err := json.Unmarshal([]byte(text), &events); err == nil {
		return events, nil
	}

	var single types.EventCandidate
	if err := json.Unmarshal([]byte(text), &single); err != nil {
		return nil, err
	}
	return []types.EventCandidate{single}, nil
}

// boundaryPatterns are the literal ways models butt two objects
// together without a separating comma.
var boundaryPatterns = []string{
	"}\r\n{",
	"}\n{",
	"} {",
	"}{",
}

func joinAdjacentObjects(text string) string {
	for _, p := range boundaryPatterns {
		text = strings.ReplaceAll(text, p, "},{")
	}
	return text
}

// closeFragment appends the closing braces and brackets a truncated
// JSON fragment is missing. String-aware so braces inside values do
// not count.
func closeFragment(text string) string {
	var openBraces, openBrackets int
	inString := false
	escaped := false

	for _, r := range text {
		if escaped {
			escaped = false
			continue
		}
		switch r {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				openBraces++
			}
		case '}':
			if !inString {
				openBraces--
			}
		case '[':
			if !inString {
				openBrackets++
			}
		case ']':
			if !inString {
				openBrackets--
			}
		}
	}

	// a fragment cut off inside a string needs its quote closed first
	if inString {
		text += `"`
	}

	// drop a trailing comma or colon left by the cut
	trimmed := strings.TrimRight(text, " \t\n\r")
	if strings.HasSuffix(trimmed, ",") || strings.HasSuffix(trimmed, ":") {
		text = strings.TrimSuffix(trimmed, ",")
		if strings.HasSuffix(text, ":") {
			text += `""`
		}
	}

	for ; openBraces > 0; openBraces-- {
		text += "}"
	}
	for ; openBrackets > 0; openBrackets-- {
		text += "]"
	}
	return text
}
