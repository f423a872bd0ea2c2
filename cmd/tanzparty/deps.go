package main

import (
	"context"
	"fmt"

	"github.com/jonathan/tanzparty/internal/config"
	"github.com/jonathan/tanzparty/internal/db"
	"github.com/jonathan/tanzparty/internal/extract"
	"github.com/jonathan/tanzparty/internal/fetch"
	"github.com/jonathan/tanzparty/internal/llm"
	"github.com/jonathan/tanzparty/internal/pipeline"
	"github.com/jonathan/tanzparty/internal/robots"
	"github.com/jonathan/tanzparty/internal/search"
)

// connectDB opens the database from configuration.
func connectDB(ctx context.Context, cfg *config.Config) (*db.DB, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}
	return db.Connect(ctx, cfg.DatabaseURL)
}

// buildCollector wires the full collection pipeline. The returned
// close function releases the LLM client.
func buildCollector(ctx context.Context, cfg *config.Config, database *db.DB) (*pipeline.Collector, func(), error) {
	if cfg.GeminiAPIKey == "" {
		return nil, nil, fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	searcher, err := search.NewGoogleProvider(ctx, cfg.GoogleAPIKey, cfg.GoogleCX, cfg.CountrySuffix,
		[]search.GoogleOption{search.WithVerboseLogging(cfg.Verbose)})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create search provider: %w", err)
	}

	llmClient, err := llm.NewGeminiClient(ctx, llm.DefaultConfig(), cfg.GeminiAPIKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	fetcher := fetch.NewFetcher(&fetch.Options{
		Timeout:    cfg.FetchTimeoutDuration(),
		Delay:      cfg.FetchDelay(),
		UserAgent:  cfg.UserAgent,
		UseBrowser: cfg.UseBrowser,
		Verbose:    cfg.Verbose,
	})

	collector := pipeline.NewCollector(
		searcher,
		robots.NewChecker(cfg.UserAgent),
		fetcher,
		extract.NewExtractor(llmClient, cfg.Verbose),
		db.NewEventStore(database, cfg.Cooldown()),
		db.NewVisitLedger(database, cfg.Cooldown()),
		cfg.MaxURLs,
		cfg.Verbose,
	)

	closeFn := func() { _ = llmClient.Close() }
	return collector, closeFn, nil
}
