package types

import "time"

// Severity grades an insight.
type Severity string

// Insight severities.
const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Insight is a heuristic finding derived from the current aggregates. Insights
// are produced fresh on each recomputation and never persisted or deduplicated.
type Insight struct {
	Type           string   `json:"type"`
	Title          string   `json:"title"`
	Message        string   `json:"message"`
	Detail         string   `json:"detail,omitempty"`
	Severity       Severity `json:"severity"`
	Actionable     bool     `json:"actionable"`
	Recommendation string   `json:"recommendation,omitempty"`
}

// Bucket is a single {label, value} chart entry.
type Bucket struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// DepartmentStats is the per-department rollup of the three collections.
type DepartmentStats struct {
	Code         string `json:"code"`
	Label        string `json:"label"`
	Students     int    `json:"students"`
	Applications int    `json:"applications"`
	Offers       int    `json:"offers"`
}

// Stats is a snapshot-scoped aggregate over the three collections. It is a
// pure function of the source snapshots and is recomputed wholesale whenever
// any of them changes.
type Stats struct {
	TotalStudents     int     `json:"total_students"`
	TotalInternships  int     `json:"total_internships"`
	TotalApplications int     `json:"total_applications"`
	OfferCount        int     `json:"offer_count"`
	PlacedStudents    int     `json:"placed_students"`
	UnplacedStudents  int     `json:"unplaced_students"`
	PlacementRate     float64 `json:"placement_rate"`

	ProfileCompleteness []Bucket          `json:"profile_completeness"`
	ApplicationTrend    []Bucket          `json:"application_trend"`
	Departments         []DepartmentStats `json:"departments"`
}

// Dashboard pairs the aggregates with the insights derived from them.
type Dashboard struct {
	Stats      *Stats    `json:"stats"`
	Insights   []Insight `json:"insights"`
	ComputedAt time.Time `json:"computed_at"`
}
