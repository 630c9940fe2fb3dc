// Package main provides the talent_scout CLI: the HTTP API server plus
// terminal commands for searching developers and managing a pipeline.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "talent_scout",
	Short: "Talent Scout developer search and recruiting pipeline",
	Long:  "Talent Scout searches developers and repositories through BountyLab, ranks the results, and keeps a per-owner pipeline of saved candidates that can be exported to CSV or Google Sheets.",
	// Errors are printed once by main.
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML or JSON config file (overrides environment)")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
