package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/tanzparty/internal/db"
	"github.com/jonathan/tanzparty/internal/types"
)

// searchResponse is the body of a successful event search.
type searchResponse struct {
	Events          []db.StoredEvent `json:"events"`
	RequestedStyles []string         `json:"requestedStyles"`
	Warning         string           `json:"warning,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// handleHealth responds to health checks.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleSearchEvents answers an event search, kicking off a fresh
// collection run for the query first. If collection takes longer than
// collectWait the stored events are returned with a warning and the
// run keeps going in the background.
func (s *Server) handleSearchEvents(w http.ResponseWriter, r *http.Request) {
	var req types.SearchEventsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}

	styles := requestedStyles(&req)
	queryStyle := "Salsa"
	if len(styles) > 0 {
		queryStyle = styles[0]
	}

	query, err := buildSearchQuery(queryStyle, req.City, req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid date: %v", err))
		return
	}

	warning := s.collectForQuery(query)

	events, err := s.events.FindEvents(r.Context(), req.City, req.Date, styles)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to query events")
		return
	}
	if events == nil {
		events = []db.StoredEvent{}
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Events:          events,
		RequestedStyles: styles,
		Warning:         warning,
	})
}

// collectForQuery runs one collection per distinct query, shared by
// all concurrent requests asking for it. Returns a warning string
// when the run did not finish in time.
func (s *Server) collectForQuery(query string) string {
	done := make(chan struct{})
	go func() {
		defer close(done)
		// detached from the request context, a slow run finishes in
		// the background and its results land in the database
		_, err, _ := s.searches.Do(query, func() (any, error) {
			return s.collector.Collect(context.Background(), query)
		})
		if err != nil {
			log.Printf("collection run failed for %q: %v", query, err)
		}
	}()

	select {
	case <-done:
		return ""
	case <-time.After(s.collectWait):
		return "event collection is still running, results may be incomplete"
	}
}

// requestedStyles merges the single style and the styles list, mapped
// onto the known style vocabulary.
func requestedStyles(req *types.SearchEventsRequest) []string {
	raw := make([]string, 0, len(req.Styles)+1)
	if req.Style != "" {
		raw = append(raw, req.Style)
	}
	raw = append(raw, req.Styles...)
	return types.NormalizeStyles(raw)
}

// germanWeekdays maps time.Weekday to its German name for search
// queries.
var germanWeekdays = [...]string{
	"Sonntag",
	"Montag",
	"Dienstag",
	"Mittwoch",
	"Donnerstag",
	"Freitag",
	"Samstag",
}

// buildSearchQuery forms the web search query for a style, city and
// date, e.g. "Salsa Veranstaltung Samstag Berlin site:.de".
func buildSearchQuery(style, city, date string) (string, error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return "", fmt.Errorf("failed to parse date %q: %w", date, err)
	}
	weekday := germanWeekdays[day.Weekday()]
	return fmt.Sprintf("%s Veranstaltung %s %s site:.de", style, weekday, city), nil
}

// handleCities answers city-name autocompletion.
func (s *Server) handleCities(w http.ResponseWriter, r *http.Request) {
	prefix := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))

	matches := make([]string, 0, 10)
	for _, city := range germanCities {
		if prefix == "" || strings.HasPrefix(strings.ToLower(city), prefix) {
			matches = append(matches, city)
			if len(matches) == 10 {
				break
			}
		}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"cities": matches})
}

// handleVisitStats summarizes the visit ledger.
func (s *Server) handleVisitStats(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("recent"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			limit = n
		}
	}

	stats, err := s.visits.Stats(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read visit stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleVisitCleanup expires old ledger rows.
func (s *Server) handleVisitCleanup(w http.ResponseWriter, r *http.Request) {
	removed, err := s.visits.Cleanup(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to clean up visit ledger")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"removed": removed})
}
