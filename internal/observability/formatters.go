// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/tanzparty/internal/db"
	"github.com/jonathan/tanzparty/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintCandidates outputs a human-readable summary of saved events.
func (p *Printer) PrintCandidates(events []types.EventCandidate) {
	if len(events) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Events saved: %d\n\n", len(events)))

	count := min(len(events), maxItemsToShow)
	for i := 0; i < count; i++ {
		e := events[i]
		sb.WriteString(fmt.Sprintf("#%d  %s\n", i+1, e.Name))
		sb.WriteString(fmt.Sprintf("    Date: %s  City: %s\n", e.FirstDate(), e.City))
		if len(e.Styles) > 0 {
			styles := strings.Join(e.Styles, ", ")
			if len(styles) > 40 {
				styles = styles[:37] + "..."
			}
			sb.WriteString(fmt.Sprintf("    Styles: %s\n", styles))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}
	if len(events) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n  ... and %d more\n", len(events)-maxItemsToShow))
	}

	p.printBox("COLLECTED EVENTS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintVisitStats outputs a summary of the visit ledger.
func (p *Printer) PrintVisitStats(stats *db.VisitStats) {
	if stats == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total visits:  %d\n", stats.Total))
	sb.WriteString(fmt.Sprintf("Successful:    %d\n", stats.Successful))
	sb.WriteString(fmt.Sprintf("Failed:        %d\n", stats.Failed))

	if len(stats.Recent) > 0 {
		sb.WriteString("\nRecent:\n")
		for _, r := range stats.Recent {
			marker := "✗"
			if r.Success {
				marker = "✓"
			}
			sb.WriteString(fmt.Sprintf("  %s %s\n", marker, r.URL))
			if r.Reason != "" {
				sb.WriteString(fmt.Sprintf("      %s\n", r.Reason))
			}
		}
	}

	p.printBox("VISIT LEDGER", strings.TrimSuffix(sb.String(), "\n"))
}
