package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/tanzparty/internal/config"
	"github.com/jonathan/tanzparty/internal/observability"
)

var (
	collectVerbose bool
	collectBrowser bool
	collectMaxURLs int
)

var collectCmd = &cobra.Command{
	Use:   "collect <query>",
	Short: "Run one collection pass for a search query",
	Long:  `Search the web for dance event pages, extract structured event data, and store new events. Example: tanzparty collect "Salsa Veranstaltung Samstag Berlin site:.de"`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCollect,
}

func init() {
	collectCmd.Flags().BoolVarP(&collectVerbose, "verbose", "v", false, "Enable verbose output")
	collectCmd.Flags().BoolVar(&collectBrowser, "browser", false, "Render JavaScript-heavy pages in a headless browser")
	collectCmd.Flags().IntVar(&collectMaxURLs, "max-urls", 0, "Maximum search results to visit (default from MAX_URLS_PER_QUERY)")
	rootCmd.AddCommand(collectCmd)
}

func runCollect(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	query := strings.Join(args, " ")

	cfg := config.FromEnv()
	cfg.Verbose = collectVerbose
	cfg.UseBrowser = collectBrowser
	if collectMaxURLs > 0 {
		cfg.MaxURLs = collectMaxURLs
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	database, err := connectDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.Migrate(ctx); err != nil {
		return err
	}

	collector, closeCollector, err := buildCollector(ctx, cfg, database)
	if err != nil {
		return err
	}
	defer closeCollector()

	saved, err := collector.Collect(ctx, query)
	if err != nil {
		return fmt.Errorf("collection failed: %w", err)
	}

	if cfg.Verbose {
		observability.NewPrinter(os.Stdout).PrintCandidates(saved)
	}
	return nil
}
