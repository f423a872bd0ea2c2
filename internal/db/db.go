// Package db provides PostgreSQL access for events, the visit ledger
// and votes.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool.
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database.
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool.
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Pool exposes the underlying pool for stores built on this DB.
func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}

// migrations are applied in order on startup. Each statement is
// idempotent so reruns are safe.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS events (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name TEXT NOT NULL,
		styles TEXT,
		date DATE NOT NULL,
		workshops JSONB,
		party JSONB,
		address TEXT NOT NULL,
		source_url TEXT,
		recurrence TEXT,
		recurrence_type TEXT,
		venue_type TEXT NOT NULL DEFAULT 'Unspecified',
		scraped_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_events_date ON events (date)`,
	`CREATE INDEX IF NOT EXISTS idx_events_address ON events (address)`,
	`CREATE INDEX IF NOT EXISTS idx_events_source_url ON events (source_url)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_events_address_date ON events (address, date)`,

	`CREATE TABLE IF NOT EXISTS visited_urls (
		url TEXT PRIMARY KEY,
		visited_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		success BOOLEAN NOT NULL DEFAULT FALSE,
		reason TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_visited_urls_visited_at ON visited_urls (visited_at)`,

	`CREATE TABLE IF NOT EXISTS votes (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		event_id UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		user_uuid UUID NOT NULL,
		vote_type TEXT NOT NULL CHECK (vote_type IN ('confirm', 'deny')),
		vote_time TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		week_start DATE GENERATED ALWAYS AS
			(date_trunc('week', vote_time AT TIME ZONE 'UTC')::date) STORED
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_votes_weekly
		ON votes (event_id, user_uuid, week_start)`,

	`CREATE TABLE IF NOT EXISTS venue_votes (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		event_id UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		user_uuid UUID NOT NULL,
		vote_type TEXT NOT NULL CHECK (vote_type IN ('Indoor', 'Outdoor')),
		vote_time TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (event_id, user_uuid)
	)`,
}

// Migrate creates the schema if it does not exist yet.
func (db *DB) Migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
