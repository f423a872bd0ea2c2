package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/tanzparty/internal/config"
	"github.com/jonathan/tanzparty/internal/db"
	"github.com/jonathan/tanzparty/internal/observability"
)

var statsRecent int

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show visit ledger statistics",
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().IntVar(&statsRecent, "recent", 10, "Number of recent visits to show")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := config.FromEnv()

	database, err := connectDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	stats, err := db.NewVisitLedger(database, cfg.Cooldown()).Stats(ctx, statsRecent)
	if err != nil {
		return err
	}

	observability.NewPrinter(os.Stdout).PrintVisitStats(stats)
	return nil
}
