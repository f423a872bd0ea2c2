package db

import (
	"context"
	"fmt"
	"log"
	"time"
)

// VisitLedger records every terminal crawl decision per URL and
// answers whether a URL is still inside its revisit cooldown.
type VisitLedger struct {
	db       *DB
	cooldown time.Duration
	now      func() time.Time
}

// NewVisitLedger builds a VisitLedger with the given revisit cooldown.
func NewVisitLedger(db *DB, cooldown time.Duration) *VisitLedger {
	return &VisitLedger{
		db:       db,
		cooldown: cooldown,
		now:      time.Now,
	}
}

// RecentlyVisited reports whether url was visited within the cooldown
// window. A database error logs and reports false, a broken ledger
// must not stop collection.
func (l *VisitLedger) RecentlyVisited(ctx context.Context, url string) bool {
	cutoff := l.now().Add(-l.cooldown)

	var visited bool
	err := l.db.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM visited_urls WHERE url = $1 AND visited_at > $2)`,
		url, cutoff,
	).Scan(&visited)
	if err != nil {
		log.Printf("[VERBOSE] visit ledger check failed for %s, treating as unvisited: %v", url, err)
		return false
	}
	return visited
}

// RecordVisit writes the outcome of processing url. The ledger keeps
// one row per URL, a later visit overwrites the earlier outcome while
// created_at keeps the first-visit time.
func (l *VisitLedger) RecordVisit(ctx context.Context, url string, success bool, reason string) error {
	_, err := l.db.pool.Exec(ctx,
		`INSERT INTO visited_urls (url, visited_at, success, reason)
		 VALUES ($1, NOW(), $2, $3)
		 ON CONFLICT (url) DO UPDATE SET visited_at = NOW(), success = $2, reason = $3`,
		url, success, reason,
	)
	if err != nil {
		return fmt.Errorf("failed to record visit for %s: %w", url, err)
	}
	return nil
}

// Cleanup deletes ledger rows older than twice the cooldown and
// returns how many were removed.
func (l *VisitLedger) Cleanup(ctx context.Context) (int64, error) {
	cutoff := l.now().Add(-2 * l.cooldown)

	tag, err := l.db.pool.Exec(ctx,
		`DELETE FROM visited_urls WHERE visited_at < $1`, cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up visit ledger: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Stats summarizes the ledger, including the most recent visits.
func (l *VisitLedger) Stats(ctx context.Context, recentLimit int) (*VisitStats, error) {
	stats := &VisitStats{}
	err := l.db.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE success),
		        COUNT(*) FILTER (WHERE NOT success)
		 FROM visited_urls`,
	).Scan(&stats.Total, &stats.Successful, &stats.Failed)
	if err != nil {
		return nil, fmt.Errorf("failed to count visits: %w", err)
	}

	if recentLimit <= 0 {
		return stats, nil
	}

	rows, err := l.db.pool.Query(ctx,
		`SELECT url, visited_at, created_at, success, COALESCE(reason, '')
		 FROM visited_urls ORDER BY visited_at DESC LIMIT $1`, recentLimit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent visits: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r VisitRecord
		if err := rows.Scan(&r.URL, &r.VisitedAt, &r.CreatedAt, &r.Success, &r.Reason); err != nil {
			return nil, fmt.Errorf("failed to scan visit: %w", err)
		}
		stats.Recent = append(stats.Recent, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read visits: %w", err)
	}
	return stats, nil
}
