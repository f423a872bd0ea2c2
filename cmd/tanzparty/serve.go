package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/tanzparty/internal/config"
	"github.com/jonathan/tanzparty/internal/db"
	"github.com/jonathan/tanzparty/internal/server"
)

var (
	servePort    int
	serveBrowser bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that answers event searches, triggers collection runs, and records community votes.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	serveCmd.Flags().BoolVar(&serveBrowser, "browser", false, "Render JavaScript-heavy pages in a headless browser")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg := config.FromEnv()
	cfg.UseBrowser = serveBrowser
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	database, err := connectDB(ctx, cfg)
	if err != nil {
		return err
	}

	if err := database.Migrate(ctx); err != nil {
		database.Close()
		return err
	}

	collector, closeCollector, err := buildCollector(ctx, cfg, database)
	if err != nil {
		database.Close()
		return err
	}
	defer closeCollector()

	srv := server.New(
		server.Config{Port: servePort, FrontendURL: cfg.FrontendURL},
		database,
		db.NewEventStore(database, cfg.Cooldown()),
		collector,
		db.NewVoteStore(database),
		db.NewVisitLedger(database, cfg.Cooldown()),
	)
	return srv.Start()
}
