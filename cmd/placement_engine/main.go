// Package main provides the entry point for the Placement Engine server and
// CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "placement_engine",
	Short: "Placement Engine search and analytics server",
	Long:  "Placement Engine provides role-aware faceted search, relevance ranking, and rule-based placement analytics over students, internships, and applications.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
