// Package search implements free-text matching, highlighting, relevance
// ranking, and skill-match scoring over delivered collection snapshots.
package search

import (
	"strings"

	"github.com/jonathan/placement-engine/internal/types"
)

// Match filters a snapshot to records with at least one searchable field
// containing the term as a case-insensitive substring, computing highlight
// spans per matching field. An empty term passes the snapshot through
// unfiltered and unannotated. Matching is substring-only.
func Match(records []types.Record, term string, fields []string) []types.SearchResult {
	term = strings.TrimSpace(term)
	if term == "" {
		out := make([]types.SearchResult, 0, len(records))
		for _, r := range records {
			out = append(out, types.SearchResult{Record: r})
		}
		return out
	}

	// Trimmed here and in the ranker, so both see the same needle.
	needle := strings.ToLower(term)
	out := make([]types.SearchResult, 0, len(records))
	for _, r := range records {
		highlights := matchRecord(r, needle, fields)
		if len(highlights) == 0 {
			continue
		}
		out = append(out, types.SearchResult{Record: r, Highlights: highlights})
	}
	return out
}

// matchRecord returns a highlight per matching searchable field, or an empty
// map when no field matches.
func matchRecord(r types.Record, needle string, fields []string) map[string]*types.Highlight {
	var highlights map[string]*types.Highlight
	for _, field := range fields {
		val, ok := r.Field(field)
		if !ok {
			continue
		}
		var h *types.Highlight
		switch v := val.(type) {
		case string:
			h = highlightScalar(field, v, needle)
		case []string:
			h = highlightList(field, v, needle)
		}
		if h != nil {
			if highlights == nil {
				highlights = make(map[string]*types.Highlight)
			}
			highlights[field] = h
		}
	}
	return highlights
}

// highlightScalar returns the first matching substring's span, or nil when the
// value does not contain the needle.
func highlightScalar(field, value, needle string) *types.Highlight {
	idx := strings.Index(strings.ToLower(value), needle)
	if idx < 0 {
		return nil
	}
	return &types.Highlight{
		Field: field,
		Span:  types.Span{Start: idx, End: idx + len(needle)},
	}
}

// highlightList computes a span per matching element; non-matching elements
// are kept, marked unhighlighted, so element indices stay aligned with the
// field value.
func highlightList(field string, values []string, needle string) *types.Highlight {
	matched := false
	elements := make([]types.ElementSpan, len(values))
	for i, v := range values {
		idx := strings.Index(strings.ToLower(v), needle)
		if idx < 0 {
			elements[i] = types.ElementSpan{Index: i}
			continue
		}
		matched = true
		elements[i] = types.ElementSpan{
			Index:   i,
			Matched: true,
			Span:    types.Span{Start: idx, End: idx + len(needle)},
		}
	}
	if !matched {
		return nil
	}
	return &types.Highlight{Field: field, Elements: elements}
}
