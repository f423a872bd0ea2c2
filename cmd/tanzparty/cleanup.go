package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/tanzparty/internal/config"
	"github.com/jonathan/tanzparty/internal/db"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Expire old visit ledger entries",
	Long:  `Delete visit ledger rows older than twice the revisit cooldown. Old rows only grow the table, the cooldown no longer protects them.`,
	RunE:  runCleanup,
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
}

func runCleanup(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := config.FromEnv()

	database, err := connectDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	removed, err := db.NewVisitLedger(database, cfg.Cooldown()).Cleanup(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Removed %d old visit ledger entries\n", removed)
	return nil
}
