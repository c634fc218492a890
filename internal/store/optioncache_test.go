package store

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/placement-engine/internal/types"
)

func optionStore() *MemStore {
	s := NewMemStore()
	s.Put(types.Internship{ID: uuid.New(), Role: "a", Location: "Remote",
		RequiredSkills: []string{"Go", "SQL"}})
	s.Put(types.Internship{ID: uuid.New(), Role: "b", Location: "remote",
		RequiredSkills: []string{"go", "Python"}})
	s.Put(types.Internship{ID: uuid.New(), Role: "c", Location: "Bangalore",
		RequiredSkills: []string{" SQL "}})
	return s
}

func TestOptionCache_ScalarFieldDistinctValues(t *testing.T) {
	cache := NewOptionCache(optionStore())

	values, err := cache.DistinctValues(context.Background(), types.CollectionInternships, "location")
	require.NoError(t, err)

	// Case-insensitive dedupe keeps the first display form seen.
	assert.Equal(t, []string{"Bangalore", "Remote"}, values)
}

func TestOptionCache_ListFieldContributesElements(t *testing.T) {
	cache := NewOptionCache(optionStore())

	values, err := cache.DistinctValues(context.Background(), types.CollectionInternships, "required_skills")
	require.NoError(t, err)

	assert.Equal(t, []string{"Go", "Python", "SQL"}, values)
}

func TestOptionCache_MissingFieldYieldsNoOptions(t *testing.T) {
	cache := NewOptionCache(optionStore())

	values, err := cache.DistinctValues(context.Background(), types.CollectionInternships, "no_such_field")
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestOptionCache_StoreErrorSurfaced(t *testing.T) {
	cache := NewOptionCache(NewMemStore())

	_, err := cache.DistinctValues(context.Background(), "no_such_collection", "location")
	assert.Error(t, err)
}
