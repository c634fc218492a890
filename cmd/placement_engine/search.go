package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/placement-engine/internal/observability"
	"github.com/jonathan/placement-engine/internal/query"
	"github.com/jonathan/placement-engine/internal/search"
	"github.com/jonathan/placement-engine/internal/store"
)

var (
	searchRole    string
	searchColl    string
	searchTerm    string
	searchFilters string
	searchSkills  string
	searchJSON    bool
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run a one-shot search against the store",
	Long:  `Run a single search evaluation against the configured store and print the ranked results.`,
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchRole, "role", "admin", "Searching role")
	searchCmd.Flags().StringVar(&searchColl, "collection", "", "Collection to search (required)")
	searchCmd.Flags().StringVar(&searchTerm, "q", "", "Free-text search term")
	searchCmd.Flags().StringVar(&searchFilters, "filters", "", "Filter values as JSON")
	searchCmd.Flags().StringVar(&searchSkills, "skills", "", "Comma-separated viewer skills for match scoring")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Print raw JSON instead of formatted output")
	_ = searchCmd.MarkFlagRequired("collection")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	st, cleanup, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	svc := search.NewService(query.DefaultConfig(), st)
	defer svc.Close()

	req := search.Request{
		Role:       searchRole,
		Collection: searchColl,
		Term:       searchTerm,
	}
	if searchFilters != "" {
		var filters query.FilterValues
		if err := json.Unmarshal([]byte(searchFilters), &filters); err != nil {
			return fmt.Errorf("failed to parse filters: %w", err)
		}
		req.Filters = filters
	}
	if searchSkills != "" {
		req.ViewerSkills = strings.Split(searchSkills, ",")
	}

	rs, err := svc.Search(ctx, req)
	if err != nil {
		return err
	}

	if searchJSON {
		return json.NewEncoder(os.Stdout).Encode(rs)
	}

	printer := observability.NewPrinter(os.Stdout)
	printer.PrintResults(rs)
	if rs.Err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", rs.Err)
	}
	for _, suggestion := range svc.Suggestions(rs.TotalCount, req.Term, req.Filters) {
		fmt.Printf("Hint: %s\n", suggestion)
	}
	return nil
}

// openStore connects to the configured Postgres store.
func openStore(ctx context.Context) (store.Store, func(), error) {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return nil, nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}
	pg, err := store.ConnectPostgres(ctx, databaseURL)
	if err != nil {
		return nil, nil, err
	}
	return pg, pg.Close, nil
}
