// Package server provides the HTTP REST API for browsing and
// refreshing collected events.
package server

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/jonathan/tanzparty/internal/db"
	"github.com/jonathan/tanzparty/internal/pipeline"
	"github.com/jonathan/tanzparty/internal/server/ratelimit"
	"github.com/jonathan/tanzparty/internal/types"
)

// collectWait is how long a search request waits for a fresh
// collection run before answering with whatever is already stored.
const collectWait = 30 * time.Second

// EventFinder queries stored events.
type EventFinder interface {
	FindEvents(ctx context.Context, city, date string, styles []string) ([]db.StoredEvent, error)
}

// Collector runs a collection pipeline for a query.
type Collector interface {
	Collect(ctx context.Context, query string) ([]types.EventCandidate, error)
}

// VoteRecorder stores community votes on events.
type VoteRecorder interface {
	CastVote(ctx context.Context, eventID, userUUID uuid.UUID, voteType string) error
	DeleteVote(ctx context.Context, eventID, userUUID uuid.UUID) error
	VoteCounts(ctx context.Context, eventID uuid.UUID) (confirms, denies int, err error)
	UserVote(ctx context.Context, eventID, userUUID uuid.UUID) (string, error)
	CastVenueVote(ctx context.Context, eventID, userUUID uuid.UUID, voteType string) error
	DeleteVenueVote(ctx context.Context, eventID, userUUID uuid.UUID) error
	VenueVoteCounts(ctx context.Context, eventID uuid.UUID) (indoor, outdoor int, err error)
	UserVenueVote(ctx context.Context, eventID, userUUID uuid.UUID) (string, error)
}

// VisitStatsSource reads and maintains the visit ledger.
type VisitStatsSource interface {
	Stats(ctx context.Context, recentLimit int) (*db.VisitStats, error)
	Cleanup(ctx context.Context) (int64, error)
}

// Server represents the HTTP server.
type Server struct {
	httpServer  *http.Server
	db          *db.DB
	events      EventFinder
	collector   Collector
	votes       VoteRecorder
	visits      VisitStatsSource
	rateLimiter *ratelimit.Limiter
	frontendURL string

	// searches collapses concurrent identical queries into one
	// collection run
	searches    singleflight.Group
	collectWait time.Duration
}

// Config holds server configuration.
type Config struct {
	Port        int
	FrontendURL string
}

// New creates a server on top of an existing database connection and
// collector.
func New(cfg Config, database *db.DB, events EventFinder, collector Collector, votes VoteRecorder, visits VisitStatsSource) *Server {
	s := &Server{
		db:          database,
		events:      events,
		collector:   collector,
		votes:       votes,
		visits:      visits,
		rateLimiter: ratelimit.NewLimiter(ratelimit.LoadConfig()),
		frontendURL: cfg.FrontendURL,
		collectWait: collectWait,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /api/events/search", s.handleSearchEvents)
	mux.HandleFunc("GET /api/cities", s.handleCities)

	mux.HandleFunc("POST /api/events/{id}/vote", s.handleCastVote)
	mux.HandleFunc("DELETE /api/events/{id}/vote", s.handleDeleteVote)
	mux.HandleFunc("GET /api/events/{id}/votes", s.handleVoteCounts)
	mux.HandleFunc("POST /api/events/{id}/venue-vote", s.handleCastVenueVote)
	mux.HandleFunc("DELETE /api/events/{id}/venue-vote", s.handleDeleteVenueVote)
	mux.HandleFunc("GET /api/events/{id}/venue-votes", s.handleVenueVoteCounts)

	mux.HandleFunc("GET /api/visited-urls/stats", s.handleVisitStats)
	mux.HandleFunc("POST /api/visited-urls/cleanup", s.handleVisitCleanup)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(mux))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second, // search may block on a collection run
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Start begins listening for requests and blocks until shutdown.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if s.db != nil {
		s.db.Close()
	}
	log.Println("Server stopped")
	return nil
}

// Handler exposes the configured handler chain for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// withCORS adds CORS headers for the configured frontend origin.
func (s *Server) withCORS(next http.Handler) http.Handler {
	origin := s.frontendURL
	if origin == "" {
		origin = "*"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)
		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)

		if info.Limit > 0 {
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		}
		if !allowed {
			w.Header().Set("Retry-After", strconv.Itoa(int(info.RetryAfter.Seconds())+1))
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// extractClientID identifies a client by IP, honoring the usual proxy
// headers.
func (s *Server) extractClientID(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	if real := r.Header.Get("X-Real-IP"); real != "" {
		return real
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// compile-time checks that the db and pipeline types satisfy the
// server's interfaces
var (
	_ EventFinder      = (*db.EventStore)(nil)
	_ Collector        = (*pipeline.Collector)(nil)
	_ VoteRecorder     = (*db.VoteStore)(nil)
	_ VisitStatsSource = (*db.VisitLedger)(nil)
)
