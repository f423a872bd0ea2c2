// Package main provides the entry point for the dance event collector.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tanzparty",
	Short: "Dance event collector and API server",
	Long:  "Tanzparty discovers dance events on the German web, extracts structured event data with an LLM, and serves the collected events over a REST API.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
