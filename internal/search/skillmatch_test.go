package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreSkills_PartialOverlap(t *testing.T) {
	sm := ScoreSkills([]string{"Python", "React", "SQL"}, []string{"Python", "SQL"})

	require.True(t, sm.Applicable)
	assert.Equal(t, 67, sm.Percentage)
	assert.Equal(t, []string{"Python", "SQL"}, sm.MatchingSkills)
	assert.Equal(t, []string{"React"}, sm.MissingSkills)
	assert.Equal(t, "good match", sm.Recommendation)
}

func TestScoreSkills_FullOverlap(t *testing.T) {
	sm := ScoreSkills([]string{"Go", "Postgres"}, []string{"postgres", "go", "docker"})

	assert.Equal(t, 100, sm.Percentage)
	assert.Empty(t, sm.MissingSkills)
	assert.Equal(t, "excellent match", sm.Recommendation)
}

func TestScoreSkills_NoOverlap(t *testing.T) {
	sm := ScoreSkills([]string{"Rust", "C++"}, []string{"Python"})

	assert.Equal(t, 0, sm.Percentage)
	assert.Equal(t, []string{"Rust", "C++"}, sm.MissingSkills)
	assert.Equal(t, "consider improving skills", sm.Recommendation)
}

func TestScoreSkills_EmptyRequirementsNotApplicable(t *testing.T) {
	sm := ScoreSkills(nil, []string{"Python"})

	assert.False(t, sm.Applicable)
	assert.Zero(t, sm.Percentage)
	assert.Empty(t, sm.Recommendation)
}

func TestScoreSkills_SubstringOverlapEitherDirection(t *testing.T) {
	// "JS" inside "Node.js" and "JavaScript ES6" containing "JavaScript".
	sm := ScoreSkills([]string{"Node.js", "JavaScript"}, []string{"js", "JavaScript ES6"})

	assert.Equal(t, 100, sm.Percentage)
}

func TestScoreSkills_TierBoundaries(t *testing.T) {
	// 4/5 = 80% sits exactly on the excellent threshold.
	sm := ScoreSkills([]string{"a", "b", "c", "d", "e"}, []string{"a", "b", "c", "d"})
	assert.Equal(t, 80, sm.Percentage)
	assert.Equal(t, "excellent match", sm.Recommendation)

	// 3/5 = 60% sits exactly on the good threshold.
	sm = ScoreSkills([]string{"a", "b", "c", "d", "e"}, []string{"a", "b", "c"})
	assert.Equal(t, 60, sm.Percentage)
	assert.Equal(t, "good match", sm.Recommendation)
}
