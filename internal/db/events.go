package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jonathan/tanzparty/internal/types"
)

// uniqueViolation is the PostgreSQL error code for unique constraint violations.
const uniqueViolation = "23505"

// EventStore persists and queries events.
type EventStore struct {
	db      *DB
	recency time.Duration
	now     func() time.Time
}

// NewEventStore builds an EventStore. recency is the window within
// which a re-extracted event from the same page counts as a duplicate.
func NewEventStore(db *DB, recency time.Duration) *EventStore {
	return &EventStore{
		db:      db,
		recency: recency,
		now:     time.Now,
	}
}

// SaveIfUnique inserts the candidate unless an equivalent event
// already exists. It returns (true, nil) when inserted, (false, nil)
// when the event is a duplicate, and (false, err) on storage errors.
//
// Two events are equivalent when they share name and source URL within
// the recency window, or when they sit at the same address on the same
// date.
func (s *EventStore) SaveIfUnique(ctx context.Context, c *types.EventCandidate) (bool, error) {
	if err := c.Validate(); err != nil {
		return false, err
	}

	cutoff := s.now().Add(-s.recency)
	var exists bool
	err := s.db.pool.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM events
			WHERE source_url = $1 AND name = $2 AND scraped_at > $3
		)`,
		c.SourceURL, c.Name, cutoff,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check for duplicate: %w", err)
	}
	if exists {
		return false, nil
	}

	workshops, err := json.Marshal(c.Workshops)
	if err != nil {
		return false, fmt.Errorf("failed to marshal workshops: %w", err)
	}
	var party []byte
	if c.Party != nil {
		if party, err = json.Marshal(c.Party); err != nil {
			return false, fmt.Errorf("failed to marshal party: %w", err)
		}
	}

	venueType := c.VenueType
	if venueType == "" {
		venueType = types.VenueUnspecified
	}

	_, err = s.db.pool.Exec(ctx,
		`INSERT INTO events (name, styles, date, workshops, party, address, source_url, recurrence, recurrence_type, venue_type)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		c.Name,
		strings.Join(c.Styles, ", "),
		c.FirstDate(),
		workshops,
		party,
		c.Address,
		c.SourceURL,
		c.Recurrence,
		string(c.RecurrenceType),
		string(venueType),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			// same address and date, someone else announced it first
			return false, nil
		}
		return false, fmt.Errorf("failed to insert event: %w", err)
	}
	return true, nil
}

// findEventsQuery builds the SQL and arguments for an event search.
// The city is matched against the stored address, events carry no city
// column of their own.
func findEventsQuery(city, date string, styles []string) (string, []any) {
	var sb strings.Builder
	sb.WriteString(`SELECT id, name, styles, date::text, workshops, party, address, source_url, recurrence, recurrence_type, venue_type, scraped_at
		FROM events
		WHERE date = $1 AND address ILIKE $2`)

	args := []any{date, "%" + city + "%"}
	for _, style := range styles {
		args = append(args, "%"+style+"%")
		sb.WriteString(fmt.Sprintf(" AND styles ILIKE $%d", len(args)))
	}
	sb.WriteString(" ORDER BY name")
	return sb.String(), args
}

// FindEvents returns stored events in the given city on the given
// date, optionally narrowed to styles.
func (s *EventStore) FindEvents(ctx context.Context, city, date string, styles []string) ([]StoredEvent, error) {
	query, args := findEventsQuery(city, date, styles)

	rows, err := s.db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []StoredEvent
	for rows.Next() {
		var (
			e             StoredEvent
			styleStr      string
			workshopsJSON []byte
			partyJSON     []byte
		)
		if err := rows.Scan(&e.ID, &e.Name, &styleStr, &e.Date, &workshopsJSON, &partyJSON,
			&e.Address, &e.SourceURL, &e.Recurrence, &e.RecurrenceType, &e.VenueType, &e.ScrapedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}

		e.Styles = types.SplitStyles(styleStr)
		if len(workshopsJSON) > 0 {
			if err := json.Unmarshal(workshopsJSON, &e.Workshops); err != nil {
				return nil, fmt.Errorf("failed to unmarshal workshops: %w", err)
			}
		}
		if len(partyJSON) > 0 {
			if err := json.Unmarshal(partyJSON, &e.Party); err != nil {
				return nil, fmt.Errorf("failed to unmarshal party: %w", err)
			}
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}
	return events, nil
}
