package search

import (
	"fmt"

	"github.com/jonathan/placement-engine/internal/query"
)

// Suggestion heuristics.
const (
	// broadResultThreshold is the result count above which narrowing is
	// suggested.
	broadResultThreshold = 50
	// shortTermLength is the term length at or below which a longer term is
	// suggested.
	shortTermLength = 2
)

// FilterSuggestions returns heuristic guidance messages for the current
// search state: narrow when the result set is large, broaden when it is
// empty, lengthen very short terms.
func FilterSuggestions(resultCount int, term string, filters query.FilterValues) []string {
	var suggestions []string

	activeFilters := 0
	for _, v := range filters {
		if v != nil {
			activeFilters++
		}
	}

	if resultCount > broadResultThreshold {
		suggestions = append(suggestions,
			fmt.Sprintf("Your search returned %d results; add filters to narrow them down.", resultCount))
	}

	if resultCount == 0 && (term != "" || activeFilters > 0) {
		if activeFilters > 0 {
			suggestions = append(suggestions, "No results found; try removing some filters.")
		} else {
			suggestions = append(suggestions, "No results found; try a broader search term.")
		}
	}

	if term != "" && len(term) <= shortTermLength {
		suggestions = append(suggestions, "Short search terms match broadly; try a longer term for better relevance.")
	}

	return suggestions
}
