package db

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findMigration(t *testing.T, marker string) string {
	t.Helper()
	for _, stmt := range migrations {
		if strings.Contains(stmt, marker) {
			return stmt
		}
	}
	require.Failf(t, "migration not found", "no migration contains %q", marker)
	return ""
}

func TestMigrations_WeeklyVoteIndexUsesStoredColumn(t *testing.T) {
	// index expressions must be immutable, and date_trunc over a
	// timestamptz is only stable. The week bucket therefore lives in
	// a stored generated column and the index names plain columns.
	ddl := findMigration(t, "idx_votes_weekly")
	assert.Contains(t, ddl, "week_start")
	assert.NotContains(t, ddl, "date_trunc")

	votes := findMigration(t, "CREATE TABLE IF NOT EXISTS votes")
	assert.Contains(t, votes, "week_start DATE GENERATED ALWAYS AS")
}

func TestMigrations_VisitedURLsKeepFirstVisitTime(t *testing.T) {
	ddl := findMigration(t, "CREATE TABLE IF NOT EXISTS visited_urls")
	assert.Contains(t, ddl, "created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()")
}
