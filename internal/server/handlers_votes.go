package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/tanzparty/internal/types"
)

// voteTypes per endpoint. Event votes say whether the event still
// happens, venue votes say where it happens.
var (
	eventVoteTypes = map[string]bool{"confirm": true, "deny": true}
	venueVoteTypes = map[string]bool{"Indoor": true, "Outdoor": true}
)

func parseVoteRequest(w http.ResponseWriter, r *http.Request, allowed map[string]bool) (*types.VoteRequest, uuid.UUID, uuid.UUID, bool) {
	var req types.VoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return nil, uuid.Nil, uuid.Nil, false
	}

	pathID := r.PathValue("id")
	if req.EventID == "" {
		req.EventID = pathID
	} else if req.EventID != pathID {
		writeError(w, http.StatusBadRequest, "event ID mismatch")
		return nil, uuid.Nil, uuid.Nil, false
	}

	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return nil, uuid.Nil, uuid.Nil, false
	}
	if !allowed[req.VoteType] {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid vote type: %s", req.VoteType))
		return nil, uuid.Nil, uuid.Nil, false
	}

	eventID, err := uuid.Parse(req.EventID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid event ID")
		return nil, uuid.Nil, uuid.Nil, false
	}
	userUUID, err := uuid.Parse(req.UserUUID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user UUID")
		return nil, uuid.Nil, uuid.Nil, false
	}
	return &req, eventID, userUUID, true
}

// handleCastVote records a weekly confirm/deny vote.
func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	req, eventID, userUUID, ok := parseVoteRequest(w, r, eventVoteTypes)
	if !ok {
		return
	}

	if err := s.votes.CastVote(r.Context(), eventID, userUUID, req.VoteType); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to cast vote")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleDeleteVote removes the caller's vote for the current week.
func (s *Server) handleDeleteVote(w http.ResponseWriter, r *http.Request) {
	eventID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid event ID")
		return
	}
	userUUID, err := uuid.Parse(r.URL.Query().Get("userUuid"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user UUID")
		return
	}

	if err := s.votes.DeleteVote(r.Context(), eventID, userUUID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete vote")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleVoteCounts returns this week's confirm/deny totals, plus the
// caller's own vote when a userUuid query parameter is present.
func (s *Server) handleVoteCounts(w http.ResponseWriter, r *http.Request) {
	eventID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid event ID")
		return
	}

	confirms, denies, err := s.votes.VoteCounts(r.Context(), eventID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to count votes")
		return
	}

	resp := map[string]any{"confirms": confirms, "denies": denies}
	if raw := r.URL.Query().Get("userUuid"); raw != "" {
		userUUID, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid user UUID")
			return
		}
		userVote, err := s.votes.UserVote(r.Context(), eventID, userUUID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to read user vote")
			return
		}
		resp["userVote"] = userVote
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleCastVenueVote records an indoor/outdoor vote.
func (s *Server) handleCastVenueVote(w http.ResponseWriter, r *http.Request) {
	req, eventID, userUUID, ok := parseVoteRequest(w, r, venueVoteTypes)
	if !ok {
		return
	}

	if err := s.votes.CastVenueVote(r.Context(), eventID, userUUID, req.VoteType); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to cast venue vote")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleDeleteVenueVote removes the caller's venue vote.
func (s *Server) handleDeleteVenueVote(w http.ResponseWriter, r *http.Request) {
	eventID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid event ID")
		return
	}
	userUUID, err := uuid.Parse(r.URL.Query().Get("userUuid"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user UUID")
		return
	}

	if err := s.votes.DeleteVenueVote(r.Context(), eventID, userUUID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete venue vote")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleVenueVoteCounts returns indoor/outdoor totals.
func (s *Server) handleVenueVoteCounts(w http.ResponseWriter, r *http.Request) {
	eventID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid event ID")
		return
	}

	indoor, outdoor, err := s.votes.VenueVoteCounts(r.Context(), eventID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to count venue votes")
		return
	}

	resp := map[string]any{"indoor": indoor, "outdoor": outdoor}
	if raw := r.URL.Query().Get("userUuid"); raw != "" {
		userUUID, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid user UUID")
			return
		}
		userVote, err := s.votes.UserVenueVote(r.Context(), eventID, userUUID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to read user venue vote")
			return
		}
		resp["userVote"] = userVote
	}
	writeJSON(w, http.StatusOK, resp)
}
