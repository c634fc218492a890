package analytics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/placement-engine/internal/types"
)

// Insight heuristic thresholds, lifted into named constants so tests can
// target boundary values exactly.
const (
	// skillGapRatio: a skill is under-represented when its frequency among
	// students is below this share of its frequency across internships.
	skillGapRatio = 0.30
	// skillGapTopN caps how many under-represented skills are reported.
	skillGapTopN = 5

	// riskHighRatio and riskMediumRatio grade the at-risk student share.
	riskHighRatio   = 0.30
	riskMediumRatio = 0.15
	// riskMaxApplications: students with this many applications or fewer
	// (including zero) are considered at risk.
	riskMaxApplications = 2

	// trendWindowDays is the comparison window for the application trend rule.
	trendWindowDays = 7
	// trendMinDelta: the absolute difference between windows must exceed this
	// for the rule to fire.
	trendMinDelta = 5
	// trendDeclineRatio: a decline beyond this share is graded medium.
	trendDeclineRatio = 0.10

	// highDemandMultiple and lowDemandMultiple classify posting demand
	// relative to seat count.
	highDemandMultiple = 3.0
	lowDemandMultiple  = 0.5
)

// Insight type tags.
const (
	InsightSkillGap      = "skill_gap"
	InsightPlacementRisk = "placement_risk"
	InsightTrend         = "application_trend"
	InsightSupplyDemand  = "supply_demand"
)

// GenerateInsights runs the heuristic rules in fixed order and collects every
// produced insight. Each rule is defensive: one that cannot compute simply
// emits nothing.
func GenerateInsights(students []types.Student, internships []types.Internship, applications []types.Application, now time.Time) []types.Insight {
	var insights []types.Insight

	rules := []func() *types.Insight{
		func() *types.Insight { return skillGapRule(students, internships) },
		func() *types.Insight { return placementRiskRule(students, applications) },
		func() *types.Insight { return trendRule(applications, now) },
		func() *types.Insight { return supplyDemandRule(internships, applications) },
	}
	for _, rule := range rules {
		if insight := rule(); insight != nil {
			insights = append(insights, *insight)
		}
	}
	return insights
}

// skillGapRule flags skills demanded by internships but scarce among
// students, reporting the most demanded first.
func skillGapRule(students []types.Student, internships []types.Internship) *types.Insight {
	postingFreq := make(map[string]int)
	display := make(map[string]string)
	for _, in := range internships {
		for _, skill := range in.RequiredSkills {
			key := strings.ToLower(strings.TrimSpace(skill))
			if key == "" {
				continue
			}
			postingFreq[key]++
			if _, ok := display[key]; !ok {
				display[key] = strings.TrimSpace(skill)
			}
		}
	}
	if len(postingFreq) == 0 {
		return nil
	}

	studentFreq := make(map[string]int)
	for _, st := range students {
		for _, skill := range st.Skills {
			key := strings.ToLower(strings.TrimSpace(skill))
			if key != "" {
				studentFreq[key]++
			}
		}
	}

	type gap struct {
		key      string
		postings int
	}
	var gaps []gap
	for key, pf := range postingFreq {
		if float64(studentFreq[key]) < skillGapRatio*float64(pf) {
			gaps = append(gaps, gap{key: key, postings: pf})
		}
	}
	if len(gaps) == 0 {
		return nil
	}

	sort.Slice(gaps, func(i, j int) bool {
		if gaps[i].postings != gaps[j].postings {
			return gaps[i].postings > gaps[j].postings
		}
		return gaps[i].key < gaps[j].key
	})
	if len(gaps) > skillGapTopN {
		gaps = gaps[:skillGapTopN]
	}

	names := make([]string, 0, len(gaps))
	for _, g := range gaps {
		names = append(names, display[g.key])
	}

	return &types.Insight{
		Type:       InsightSkillGap,
		Title:      "Skill gap detected",
		Message:    fmt.Sprintf("%d in-demand skills are under-represented among students.", len(names)),
		Detail:     strings.Join(names, ", "),
		Severity:   types.SeverityMedium,
		Actionable: true,
		Recommendation: fmt.Sprintf(
			"Consider workshops or courses covering: %s.", strings.Join(names, ", ")),
	}
}

// placementRiskRule grades the share of students with little or no
// application activity.
func placementRiskRule(students []types.Student, applications []types.Application) *types.Insight {
	if len(students) == 0 {
		return nil
	}

	appCounts := make(map[uuid.UUID]int)
	for _, app := range applications {
		appCounts[app.StudentID]++
	}

	zero, few := 0, 0
	for _, st := range students {
		switch n := appCounts[st.ID]; {
		case n == 0:
			zero++
		case n <= riskMaxApplications:
			few++
		}
	}
	atRisk := zero + few
	if atRisk == 0 {
		return nil
	}

	ratio := float64(atRisk) / float64(len(students))
	severity := types.SeverityLow
	if ratio > riskHighRatio {
		severity = types.SeverityHigh
	} else if ratio > riskMediumRatio {
		severity = types.SeverityMedium
	}

	return &types.Insight{
		Type:  InsightPlacementRisk,
		Title: "Students at placement risk",
		Message: fmt.Sprintf("%d students are at risk: %d with no applications, %d with %d or fewer.",
			atRisk, zero, few, riskMaxApplications),
		Detail:         fmt.Sprintf("%.0f%% of all students", ratio*100),
		Severity:       severity,
		Actionable:     true,
		Recommendation: "Reach out to inactive students and review their profiles.",
	}
}

// trendRule compares application volume in the last window against the prior
// one and reports meaningful swings.
func trendRule(applications []types.Application, now time.Time) *types.Insight {
	windowStart := now.AddDate(0, 0, -trendWindowDays)
	priorStart := now.AddDate(0, 0, -2*trendWindowDays)

	current, prior := 0, 0
	for _, app := range applications {
		switch {
		case app.AppliedAt.After(windowStart):
			current++
		case app.AppliedAt.After(priorStart):
			prior++
		}
	}

	delta := current - prior
	if delta < 0 {
		delta = -delta
	}
	if delta <= trendMinDelta {
		return nil
	}

	severity := types.SeverityLow
	direction := "up"
	if current < prior {
		direction = "down"
		if prior > 0 && float64(prior-current)/float64(prior) > trendDeclineRatio {
			severity = types.SeverityMedium
		}
	}

	return &types.Insight{
		Type:  InsightTrend,
		Title: "Application volume trend",
		Message: fmt.Sprintf("Applications are %s: %d in the last %d days vs %d in the prior %d.",
			direction, current, trendWindowDays, prior, trendWindowDays),
		Severity:       severity,
		Actionable:     direction == "down",
		Recommendation: trendRecommendation(direction),
	}
}

func trendRecommendation(direction string) string {
	if direction == "down" {
		return "Investigate the slowdown; consider promoting active postings."
	}
	return ""
}

// supplyDemandRule flags postings with application counts far above or below
// their seat counts.
func supplyDemandRule(internships []types.Internship, applications []types.Application) *types.Insight {
	if len(internships) == 0 {
		return nil
	}

	appCounts := make(map[uuid.UUID]int)
	for _, app := range applications {
		appCounts[app.InternshipID]++
	}

	var high, low []string
	for _, in := range internships {
		n := appCounts[in.ID]
		seats := float64(in.Seats)
		switch {
		case float64(n) > highDemandMultiple*seats:
			high = append(high, in.Role)
		case float64(n) < lowDemandMultiple*seats:
			low = append(low, in.Role)
		}
	}
	if len(high) == 0 && len(low) == 0 {
		return nil
	}

	var parts []string
	if len(high) > 0 {
		parts = append(parts, fmt.Sprintf("high demand: %s", strings.Join(high, ", ")))
	}
	if len(low) > 0 {
		parts = append(parts, fmt.Sprintf("low demand: %s", strings.Join(low, ", ")))
	}

	return &types.Insight{
		Type:           InsightSupplyDemand,
		Title:          "Posting supply/demand imbalance",
		Message:        fmt.Sprintf("%d postings are oversubscribed, %d undersubscribed.", len(high), len(low)),
		Detail:         strings.Join(parts, "; "),
		Severity:       types.SeverityMedium,
		Actionable:     true,
		Recommendation: "Add seats to oversubscribed postings and promote undersubscribed ones.",
	}
}

// ComputeDashboard pairs the aggregates with insights from the same
// snapshots. Given identical snapshots, repeated calls yield identical
// output.
func ComputeDashboard(students []types.Student, internships []types.Internship, applications []types.Application, now time.Time) *types.Dashboard {
	return &types.Dashboard{
		Stats:      ComputeStats(students, internships, applications, now),
		Insights:   GenerateInsights(students, internships, applications, now),
		ComputedAt: now,
	}
}
