package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/placement-engine/internal/analytics"
	"github.com/jonathan/placement-engine/internal/observability"
	"github.com/jonathan/placement-engine/internal/types"
)

var dashboardJSON bool

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Compute aggregates and insights from the current snapshots",
	RunE:  runDashboard,
}

func init() {
	dashboardCmd.Flags().BoolVar(&dashboardJSON, "json", false, "Print raw JSON instead of formatted output")
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	st, cleanup, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	var students []types.Student
	var internships []types.Internship
	var applications []types.Application

	studentRecords, err := st.FetchAll(ctx, types.CollectionStudents)
	if err != nil {
		return fmt.Errorf("failed to fetch students: %w", err)
	}
	for _, r := range studentRecords {
		if s, ok := r.(types.Student); ok {
			students = append(students, s)
		}
	}

	internshipRecords, err := st.FetchAll(ctx, types.CollectionInternships)
	if err != nil {
		return fmt.Errorf("failed to fetch internships: %w", err)
	}
	for _, r := range internshipRecords {
		if in, ok := r.(types.Internship); ok {
			internships = append(internships, in)
		}
	}

	applicationRecords, err := st.FetchAll(ctx, types.CollectionApplications)
	if err != nil {
		return fmt.Errorf("failed to fetch applications: %w", err)
	}
	for _, r := range applicationRecords {
		if ap, ok := r.(types.Application); ok {
			applications = append(applications, ap)
		}
	}

	dashboard := analytics.ComputeDashboard(students, internships, applications, time.Now())

	if dashboardJSON {
		return json.NewEncoder(os.Stdout).Encode(dashboard)
	}

	printer := observability.NewPrinter(os.Stdout)
	printer.PrintStats(dashboard.Stats)
	printer.PrintInsights(dashboard.Insights)
	return nil
}
