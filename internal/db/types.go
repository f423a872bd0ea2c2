package db

import (
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/tanzparty/internal/types"
)

// StoredEvent is one persisted event row. An event is stored once per
// venue and date; recurring listings store their next occurrence.
type StoredEvent struct {
	ID             uuid.UUID        `json:"id"`
	Name           string           `json:"name"`
	Styles         []string         `json:"styles,omitempty"`
	Date           string           `json:"date"`
	Workshops      []types.Workshop `json:"workshops,omitempty"`
	Party          *types.Party     `json:"party,omitempty"`
	Address        string           `json:"address"`
	SourceURL      string           `json:"source_url,omitempty"`
	Recurrence     string           `json:"recurrence,omitempty"`
	RecurrenceType string           `json:"recurrence_type,omitempty"`
	VenueType      types.VenueType  `json:"venue_type"`
	ScrapedAt      time.Time        `json:"scraped_at"`
}

// VisitRecord is one row of the visit ledger. CreatedAt is set on the
// first visit and never updated afterwards.
type VisitRecord struct {
	URL       string    `json:"url"`
	VisitedAt time.Time `json:"visited_at"`
	CreatedAt time.Time `json:"created_at"`
	Success   bool      `json:"success"`
	Reason    string    `json:"reason,omitempty"`
}

// VisitStats summarizes the visit ledger.
type VisitStats struct {
	Total      int           `json:"total"`
	Successful int           `json:"successful"`
	Failed     int           `json:"failed"`
	Recent     []VisitRecord `json:"recent,omitempty"`
}
