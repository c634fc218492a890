// Package observability provides formatted output utilities for verbose CLI
// mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/placement-engine/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintStats outputs a human-readable summary of the dashboard aggregates.
func (p *Printer) PrintStats(stats *types.Stats) {
	if stats == nil {
		return
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Students:      %d\n", stats.TotalStudents))
	sb.WriteString(fmt.Sprintf("Internships:   %d\n", stats.TotalInternships))
	sb.WriteString(fmt.Sprintf("Applications:  %d\n", stats.TotalApplications))
	sb.WriteString(fmt.Sprintf("Offers:        %d\n", stats.OfferCount))
	sb.WriteString(fmt.Sprintf("Placed:        %d (%.1f%%)\n", stats.PlacedStudents, stats.PlacementRate))
	sb.WriteString(fmt.Sprintf("Unplaced:      %d\n", stats.UnplacedStudents))

	if len(stats.Departments) > 0 {
		sb.WriteString("\nDepartments:\n")
		count := min(len(stats.Departments), maxItemsToShow)
		for i := 0; i < count; i++ {
			d := stats.Departments[i]
			sb.WriteString(fmt.Sprintf("  • %s: %d students, %d apps, %d offers\n",
				d.Label, d.Students, d.Applications, d.Offers))
		}
		if len(stats.Departments) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(stats.Departments)-maxItemsToShow))
		}
	}

	p.printBox("DASHBOARD AGGREGATES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintInsights outputs the generated insights with severity markers.
func (p *Printer) PrintInsights(insights []types.Insight) {
	if len(insights) == 0 {
		p.printBox("INSIGHTS", "No insights for the current snapshots")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d insights:\n\n", len(insights)))

	for i, in := range insights {
		sb.WriteString(fmt.Sprintf("⚠ [%s] %s\n", strings.ToUpper(string(in.Severity)), in.Title))
		msg := in.Message
		if len(msg) > 50 {
			msg = msg[:47] + "..."
		}
		sb.WriteString(fmt.Sprintf("  %s\n", msg))
		if in.Recommendation != "" {
			rec := in.Recommendation
			if len(rec) > 48 {
				rec = rec[:45] + "..."
			}
			sb.WriteString(fmt.Sprintf("  → %s\n", rec))
		}
		if i < len(insights)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("INSIGHTS", sb.String())
}

// PrintResults outputs the top search results with scores and skill matches.
func (p *Printer) PrintResults(rs *types.ResultSet) {
	if rs == nil || len(rs.Items) == 0 {
		p.printBox("SEARCH RESULTS", "No results")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total results: %d (%dms)\n\n", rs.TotalCount, rs.ElapsedMs))

	count := min(len(rs.Items), maxItemsToShow)
	for i := 0; i < count; i++ {
		item := rs.Items[i]
		label := resultLabel(item.Record)
		sb.WriteString(fmt.Sprintf("#%d  %s\n", i+1, label))
		if item.Score > 0 {
			sb.WriteString(fmt.Sprintf("    Score: %d\n", item.Score))
		}
		if sm := item.SkillMatch; sm != nil && sm.Applicable {
			matched := strings.Join(sm.MatchingSkills, ", ")
			if len(matched) > 40 {
				matched = matched[:37] + "..."
			}
			sb.WriteString(fmt.Sprintf("    Match: %d%% (%s)\n", sm.Percentage, matched))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(rs.Items) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more results", len(rs.Items)-maxItemsToShow))
	}

	p.printBox("SEARCH RESULTS", sb.String())
}

// resultLabel picks the most descriptive scalar field available.
func resultLabel(r types.Record) string {
	for _, field := range []string{"name", "role", "status", "id"} {
		if val, ok := r.Field(field); ok {
			if s, ok := val.(string); ok && s != "" {
				return s
			}
		}
	}
	return r.RecordID().String()
}
