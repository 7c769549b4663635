// Package main provides the cold_email command line tool.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cold_email",
		Short: "Cold email generator",
		Long: "cold_email reads a careers page, extracts its job postings with an LLM, " +
			"matches each posting against your portfolio and writes one tailored outreach email per job.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("config", "", "Path to a JSON, YAML or TOML config file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Print detailed progress")
	rootCmd.PersistentFlags().Bool("json-logs", false, "Emit logs as JSON")

	rootCmd.AddCommand(
		newGenerateCmd(),
		newExtractJobsCmd(),
		newQueryLinksCmd(),
		newLoadCatalogCmd(),
		newIngestJobCmd(),
	)
	return rootCmd
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
