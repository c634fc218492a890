package search

import (
	"math"
	"strings"

	"github.com/jonathan/placement-engine/internal/types"
)

// Recommendation tier thresholds, in percent.
const (
	excellentMatchThreshold = 80
	goodMatchThreshold      = 60
)

// Recommendation texts.
const (
	recommendExcellent = "excellent match"
	recommendGood      = "good match"
	recommendImprove   = "consider improving skills"
)

// ScoreSkills computes the overlap between an internship's required skills and
// a reference skill set. A required skill counts as matching when it
// case-insensitively substring-overlaps any reference skill in either
// direction. An empty requirement list yields a not-applicable result.
func ScoreSkills(required, reference []string) *types.SkillMatch {
	if len(required) == 0 {
		return &types.SkillMatch{Applicable: false}
	}

	matching := make([]string, 0, len(required))
	missing := make([]string, 0)
	for _, req := range required {
		if skillMatches(req, reference) {
			matching = append(matching, req)
		} else {
			missing = append(missing, req)
		}
	}

	pct := int(math.Round(float64(len(matching)) / float64(len(required)) * 100))

	return &types.SkillMatch{
		Applicable:     true,
		Percentage:     pct,
		MatchingSkills: matching,
		MissingSkills:  missing,
		Recommendation: recommendation(pct),
	}
}

func skillMatches(required string, reference []string) bool {
	req := strings.ToLower(strings.TrimSpace(required))
	if req == "" {
		return false
	}
	for _, ref := range reference {
		r := strings.ToLower(strings.TrimSpace(ref))
		if r == "" {
			continue
		}
		if strings.Contains(req, r) || strings.Contains(r, req) {
			return true
		}
	}
	return false
}

func recommendation(pct int) string {
	switch {
	case pct >= excellentMatchThreshold:
		return recommendExcellent
	case pct >= goodMatchThreshold:
		return recommendGood
	default:
		return recommendImprove
	}
}
