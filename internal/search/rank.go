package search

import (
	"sort"
	"strings"

	"github.com/jonathan/placement-engine/internal/types"
)

// Match-strength multipliers. Each is scaled by the field's priority weight
// (field-list length minus its position).
const (
	exactMatchScore     = 10
	prefixMatchScore    = 7
	substringMatchScore = 5
)

// Rank assigns each result a relevance score and sorts descending. The sort is
// stable: equal scores keep their input order. With an empty term the ranker
// is a pass-through, leaving upstream ordering intact.
func Rank(results []types.SearchResult, term string, fields []string) {
	term = strings.TrimSpace(term)
	if term == "" {
		return
	}

	needle := strings.ToLower(term)
	for i := range results {
		results[i].Score = scoreRecord(results[i].Record, needle, fields)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
}

// scoreRecord sums per-field match scores, weighting fields by priority order.
func scoreRecord(r types.Record, needle string, fields []string) int {
	score := 0
	for i, field := range fields {
		weight := len(fields) - i
		val, ok := r.Field(field)
		if !ok {
			continue
		}
		switch v := val.(type) {
		case string:
			score += weight * matchStrength(v, needle)
		case []string:
			// List fields score per matching element, summed.
			for _, elem := range v {
				score += weight * matchStrength(elem, needle)
			}
		}
	}
	return score
}

// matchStrength grades a single value: exact beats prefix beats substring.
func matchStrength(value, needle string) int {
	lower := strings.ToLower(value)
	switch {
	case lower == needle:
		return exactMatchScore
	case strings.HasPrefix(lower, needle):
		return prefixMatchScore
	case strings.Contains(lower, needle):
		return substringMatchScore
	}
	return 0
}

// SortResults re-sorts a held result set in place by a record field without
// re-querying. Records missing the field keep their relative order.
func SortResults(results []types.SearchResult, field string, desc bool) {
	if field == "" {
		return
	}
	sort.SliceStable(results, func(i, j int) bool {
		less, ok := lessResult(results[i], results[j], field)
		if !ok {
			return false
		}
		if desc {
			return !less
		}
		return less
	})
}

func lessResult(a, b types.SearchResult, field string) (bool, bool) {
	av, aok := a.Record.Field(field)
	bv, bok := b.Record.Field(field)
	if !aok || !bok {
		return false, false
	}
	switch x := av.(type) {
	case string:
		if y, ok := bv.(string); ok {
			return strings.ToLower(x) < strings.ToLower(y), true
		}
	case int:
		if y, ok := bv.(int); ok {
			return x < y, true
		}
	case float64:
		if y, ok := bv.(float64); ok {
			return x < y, true
		}
	}
	if at, ok := timeValue(av); ok {
		if bt, ok := timeValue(bv); ok {
			return at < bt, true
		}
	}
	return false, false
}

func timeValue(v any) (int64, bool) {
	if t, ok := v.(interface{ Unix() int64 }); ok {
		return t.Unix(), true
	}
	return 0, false
}
