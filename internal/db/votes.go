package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// VoteStore records community feedback on events: weekly confirm/deny
// votes on whether an event still happens, and one-off votes on
// whether its venue is indoor or outdoor.
type VoteStore struct {
	db *DB
}

// NewVoteStore builds a VoteStore.
func NewVoteStore(db *DB) *VoteStore {
	return &VoteStore{db: db}
}

// CastVote records a confirm or deny vote. Each user votes at most
// once per event per calendar week; voting again replaces the earlier
// vote.
func (s *VoteStore) CastVote(ctx context.Context, eventID, userUUID uuid.UUID, voteType string) error {
	_, err := s.db.pool.Exec(ctx,
		`INSERT INTO votes (event_id, user_uuid, vote_type)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (event_id, user_uuid, week_start)
		 DO UPDATE SET vote_type = $3`,
		eventID, userUUID, voteType,
	)
	if err != nil {
		return fmt.Errorf("failed to cast vote: %w", err)
	}
	return nil
}

// DeleteVote removes the user's vote for the current week.
func (s *VoteStore) DeleteVote(ctx context.Context, eventID, userUUID uuid.UUID) error {
	_, err := s.db.pool.Exec(ctx,
		`DELETE FROM votes
		 WHERE event_id = $1 AND user_uuid = $2
		   AND week_start = date_trunc('week', NOW() AT TIME ZONE 'UTC')::date`,
		eventID, userUUID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete vote: %w", err)
	}
	return nil
}

// VoteCounts returns the current week's confirm and deny totals.
func (s *VoteStore) VoteCounts(ctx context.Context, eventID uuid.UUID) (confirms, denies int, err error) {
	err = s.db.pool.QueryRow(ctx,
		`SELECT COUNT(*) FILTER (WHERE vote_type = 'confirm'),
		        COUNT(*) FILTER (WHERE vote_type = 'deny')
		 FROM votes
		 WHERE event_id = $1
		   AND week_start = date_trunc('week', NOW() AT TIME ZONE 'UTC')::date`,
		eventID,
	).Scan(&confirms, &denies)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count votes: %w", err)
	}
	return confirms, denies, nil
}

// UserVote returns the user's current-week vote, or "" if none.
func (s *VoteStore) UserVote(ctx context.Context, eventID, userUUID uuid.UUID) (string, error) {
	var voteType string
	err := s.db.pool.QueryRow(ctx,
		`SELECT vote_type FROM votes
		 WHERE event_id = $1 AND user_uuid = $2
		   AND week_start = date_trunc('week', NOW() AT TIME ZONE 'UTC')::date`,
		eventID, userUUID,
	).Scan(&voteType)
	if err == pgx.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get user vote: %w", err)
	}
	return voteType, nil
}

// CastVenueVote records an indoor/outdoor vote. One vote per user per
// event, voting again replaces it.
func (s *VoteStore) CastVenueVote(ctx context.Context, eventID, userUUID uuid.UUID, voteType string) error {
	_, err := s.db.pool.Exec(ctx,
		`INSERT INTO venue_votes (event_id, user_uuid, vote_type)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (event_id, user_uuid)
		 DO UPDATE SET vote_type = $3, vote_time = NOW()`,
		eventID, userUUID, voteType,
	)
	if err != nil {
		return fmt.Errorf("failed to cast venue vote: %w", err)
	}
	return nil
}

// DeleteVenueVote removes the user's venue vote for an event.
func (s *VoteStore) DeleteVenueVote(ctx context.Context, eventID, userUUID uuid.UUID) error {
	_, err := s.db.pool.Exec(ctx,
		`DELETE FROM venue_votes WHERE event_id = $1 AND user_uuid = $2`,
		eventID, userUUID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete venue vote: %w", err)
	}
	return nil
}

// VenueVoteCounts returns indoor and outdoor vote totals.
func (s *VoteStore) VenueVoteCounts(ctx context.Context, eventID uuid.UUID) (indoor, outdoor int, err error) {
	err = s.db.pool.QueryRow(ctx,
		`SELECT COUNT(*) FILTER (WHERE vote_type = 'Indoor'),
		        COUNT(*) FILTER (WHERE vote_type = 'Outdoor')
		 FROM venue_votes WHERE event_id = $1`,
		eventID,
	).Scan(&indoor, &outdoor)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count venue votes: %w", err)
	}
	return indoor, outdoor, nil
}

// UserVenueVote returns the user's venue vote, or "" if none.
func (s *VoteStore) UserVenueVote(ctx context.Context, eventID, userUUID uuid.UUID) (string, error) {
	var voteType string
	err := s.db.pool.QueryRow(ctx,
		`SELECT vote_type FROM venue_votes WHERE event_id = $1 AND user_uuid = $2`,
		eventID, userUUID,
	).Scan(&voteType)
	if err == pgx.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get user venue vote: %w", err)
	}
	return voteType, nil
}
