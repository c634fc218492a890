package types

// Span marks a half-open [Start, End) byte range of a matched substring.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// ElementSpan is the highlight state of a single element of a list-valued
// field. Elements that do not match the search term carry Matched=false.
type ElementSpan struct {
	Index   int  `json:"index"`
	Matched bool `json:"matched"`
	Span    Span `json:"span"`
}

// Highlight records where the active search term matches within one field.
// Scalar fields carry a single span; list-valued fields carry one entry per
// element.
type Highlight struct {
	Field    string        `json:"field"`
	Span     Span          `json:"span"`
	Elements []ElementSpan `json:"elements,omitempty"`
}

// SkillMatch summarizes the overlap between an internship's required skills
// and a student's skill set.
type SkillMatch struct {
	Applicable     bool     `json:"applicable"`
	Percentage     int      `json:"percentage"`
	MatchingSkills []string `json:"matching_skills"`
	MissingSkills  []string `json:"missing_skills"`
	Recommendation string   `json:"recommendation"`
}

// SearchResult is a record augmented with derived, ephemeral search fields.
// Highlights and Score are only meaningful while a non-empty search term is
// active; they are recomputed on every evaluation and never persisted.
type SearchResult struct {
	Record     Record                `json:"record"`
	Score      int                   `json:"score"`
	Highlights map[string]*Highlight `json:"highlights,omitempty"`
	SkillMatch *SkillMatch           `json:"skill_match,omitempty"`
}

// ResultSet is what the search path hands to the presentation boundary.
type ResultSet struct {
	Items      []SearchResult `json:"items"`
	TotalCount int            `json:"total_count"`
	ElapsedMs  int64          `json:"elapsed_ms"`
	Err        error          `json:"-"`
}
