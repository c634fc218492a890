// Package analytics computes dashboard aggregates from the three collection
// snapshots and derives heuristic insights from them. Everything here is a
// pure function of the delivered snapshots.
package analytics

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/placement-engine/internal/types"
)

// trendDays is the length of the daily application trend series.
const trendDays = 30

// departmentLabels maps department codes to display labels. Unmapped or
// missing codes roll up under "Unknown".
var departmentLabels = map[string]string{
	"CS":   "Computer Science",
	"EE":   "Electrical Engineering",
	"ME":   "Mechanical Engineering",
	"CE":   "Civil Engineering",
	"BBA":  "Business Administration",
	"DS":   "Data Science",
	"BIO":  "Biotechnology",
	"ARCH": "Architecture",
}

// unknownDepartment is the rollup label for unresolved joins and unmapped
// department codes.
const unknownDepartment = "Unknown"

// profileAttributes is the fixed set of student profile attributes counted by
// the completeness distribution.
var profileAttributes = []string{
	"name", "email", "phone", "university", "major",
	"graduation_year", "skills", "resume_url", "bio", "gpa",
}

// completenessBuckets are the four quartile labels of the profile
// completeness distribution.
var completenessBuckets = []string{"0-25%", "26-50%", "51-75%", "76-100%"}

// ComputeStats recomputes every dashboard aggregate from the three current
// snapshots. Applications referencing a missing student or internship are
// rolled up as "Unknown" rather than treated as errors.
func ComputeStats(students []types.Student, internships []types.Internship, applications []types.Application, now time.Time) *types.Stats {
	stats := &types.Stats{
		TotalStudents:     len(students),
		TotalInternships:  len(internships),
		TotalApplications: len(applications),
	}

	known := make(map[uuid.UUID]bool, len(students))
	for _, st := range students {
		known[st.ID] = true
	}

	placed := make(map[uuid.UUID]bool)
	for _, app := range applications {
		if types.SuccessStatuses[app.Status] {
			stats.OfferCount++
			// Placement is join-dependent: only resolvable students count.
			if known[app.StudentID] {
				placed[app.StudentID] = true
			}
		}
	}
	stats.PlacedStudents = len(placed)
	stats.UnplacedStudents = stats.TotalStudents - stats.PlacedStudents
	if stats.UnplacedStudents < 0 {
		stats.UnplacedStudents = 0
	}
	if stats.TotalStudents > 0 {
		stats.PlacementRate = float64(stats.PlacedStudents) / float64(stats.TotalStudents) * 100
	}

	stats.ProfileCompleteness = completenessDistribution(students)
	stats.ApplicationTrend = applicationTrend(applications, now)
	stats.Departments = departmentRollups(students, applications)

	return stats
}

// completenessDistribution buckets students into four quartiles by the share
// of the ten profile attributes they have filled in.
func completenessDistribution(students []types.Student) []types.Bucket {
	buckets := make([]types.Bucket, len(completenessBuckets))
	for i, label := range completenessBuckets {
		buckets[i] = types.Bucket{Label: label}
	}

	for _, st := range students {
		filled := 0
		for _, attr := range profileAttributes {
			if attributePresent(st, attr) {
				filled++
			}
		}
		pct := filled * 100 / len(profileAttributes)
		switch {
		case pct <= 25:
			buckets[0].Value++
		case pct <= 50:
			buckets[1].Value++
		case pct <= 75:
			buckets[2].Value++
		default:
			buckets[3].Value++
		}
	}
	return buckets
}

func attributePresent(st types.Student, attr string) bool {
	val, ok := st.Field(attr)
	if !ok {
		return false
	}
	switch v := val.(type) {
	case string:
		return v != ""
	case int:
		return v != 0
	case float64:
		return v != 0
	case []string:
		return len(v) > 0
	}
	return false
}

// applicationTrend builds the 30-day daily application count series, oldest
// day first, zero-filled for days with no activity. Days are bucketed by the
// local calendar date of the application time.
func applicationTrend(applications []types.Application, now time.Time) []types.Bucket {
	counts := make(map[string]int)
	for _, app := range applications {
		counts[app.AppliedAt.Local().Format("2006-01-02")]++
	}

	buckets := make([]types.Bucket, 0, trendDays)
	for i := trendDays - 1; i >= 0; i-- {
		day := now.AddDate(0, 0, -i).Local().Format("2006-01-02")
		buckets = append(buckets, types.Bucket{Label: day, Value: counts[day]})
	}
	return buckets
}

// departmentRollups joins applications to students by identifier and counts
// students, applications, and offers per department.
func departmentRollups(students []types.Student, applications []types.Application) []types.DepartmentStats {
	byStudent := make(map[uuid.UUID]string, len(students))
	rollup := make(map[string]*types.DepartmentStats)

	get := func(code string) *types.DepartmentStats {
		label, ok := departmentLabels[code]
		if !ok || code == "" {
			code = unknownDepartment
			label = unknownDepartment
		}
		ds, ok := rollup[code]
		if !ok {
			ds = &types.DepartmentStats{Code: code, Label: label}
			rollup[code] = ds
		}
		return ds
	}

	for _, st := range students {
		byStudent[st.ID] = st.Department
		get(st.Department).Students++
	}

	for _, app := range applications {
		code, resolved := byStudent[app.StudentID]
		if !resolved {
			// Unresolved join; count under Unknown instead of erroring.
			code = ""
		}
		ds := get(code)
		ds.Applications++
		if types.SuccessStatuses[app.Status] {
			ds.Offers++
		}
	}

	out := make([]types.DepartmentStats, 0, len(rollup))
	for _, code := range sortedKeys(rollup) {
		out = append(out, *rollup[code])
	}
	return out
}

func sortedKeys(m map[string]*types.DepartmentStats) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
