package search

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/placement-engine/internal/query"
	"github.com/jonathan/placement-engine/internal/store"
	"github.com/jonathan/placement-engine/internal/types"
)

func seededStore() *store.MemStore {
	mem := store.NewMemStore()
	mem.Put(types.Internship{ID: uuid.New(), Role: "React Developer", Company: "Acme",
		Location: "Remote", RequiredSkills: []string{"React", "TypeScript"}, Seats: 2})
	mem.Put(types.Internship{ID: uuid.New(), Role: "Data Analyst", Company: "Numera",
		Location: "Bangalore", RequiredSkills: []string{"Python", "SQL"}, Seats: 1})
	mem.Put(types.Student{ID: uuid.New(), Name: "Asha", Department: "CS", Skills: []string{"Go"}})
	return mem
}

func TestService_SearchMatchesAndRanks(t *testing.T) {
	svc := NewService(query.DefaultConfig(), seededStore())
	defer svc.Close()

	rs, err := svc.Search(context.Background(), Request{
		Role: "student", Collection: types.CollectionInternships, Term: "react",
	})
	require.NoError(t, err)

	require.Equal(t, 1, rs.TotalCount)
	role, _ := rs.Items[0].Record.Field("role")
	assert.Equal(t, "React Developer", role)
	assert.NotNil(t, rs.Items[0].Highlights["role"])
	assert.Positive(t, rs.Items[0].Score)
}

func TestService_SearchAppliesFilters(t *testing.T) {
	svc := NewService(query.DefaultConfig(), seededStore())
	defer svc.Close()

	rs, err := svc.Search(context.Background(), Request{
		Role:       "student",
		Collection: types.CollectionInternships,
		Filters:    query.FilterValues{"location": []string{"Bangalore"}},
	})
	require.NoError(t, err)

	require.Equal(t, 1, rs.TotalCount)
	loc, _ := rs.Items[0].Record.Field("location")
	assert.Equal(t, "Bangalore", loc)
}

func TestService_StudentInternshipSearchAttachesSkillMatch(t *testing.T) {
	svc := NewService(query.DefaultConfig(), seededStore())
	defer svc.Close()

	rs, err := svc.Search(context.Background(), Request{
		Role:         "student",
		Collection:   types.CollectionInternships,
		Term:         "data",
		ViewerSkills: []string{"Python"},
	})
	require.NoError(t, err)

	require.Equal(t, 1, rs.TotalCount)
	sm := rs.Items[0].SkillMatch
	require.NotNil(t, sm)
	assert.Equal(t, 50, sm.Percentage)
	assert.Equal(t, []string{"SQL"}, sm.MissingSkills)
}

func TestService_NonStudentRoleGetsNoSkillMatch(t *testing.T) {
	svc := NewService(query.DefaultConfig(), seededStore())
	defer svc.Close()

	rs, err := svc.Search(context.Background(), Request{
		Role: "admin", Collection: types.CollectionInternships, Term: "data",
		ViewerSkills: []string{"Python"},
	})
	require.NoError(t, err)
	require.Equal(t, 1, rs.TotalCount)
	assert.Nil(t, rs.Items[0].SkillMatch)
}

func TestService_UnknownScopeRejected(t *testing.T) {
	svc := NewService(query.DefaultConfig(), seededStore())
	defer svc.Close()

	// Students may not search the students collection.
	_, err := svc.Search(context.Background(), Request{
		Role: "student", Collection: types.CollectionStudents,
	})

	var scopeErr *ErrUnknownScope
	assert.ErrorAs(t, err, &scopeErr)
}

func TestService_InvalidRequestRejected(t *testing.T) {
	svc := NewService(query.DefaultConfig(), seededStore())
	defer svc.Close()

	_, err := svc.Search(context.Background(), Request{Collection: types.CollectionStudents})
	assert.Error(t, err)
}

type failingStore struct{ err error }

func (f *failingStore) Subscribe(context.Context, string, []query.Constraint, query.Order) (<-chan store.Snapshot, store.CancelFunc, error) {
	return nil, nil, f.err
}

func (f *failingStore) FetchAll(context.Context, string) ([]types.Record, error) {
	return nil, f.err
}

func TestService_StoreFailureDegradesToEmptyResultSet(t *testing.T) {
	cause := errors.New("connection refused")
	svc := NewService(query.DefaultConfig(), &failingStore{err: cause})
	defer svc.Close()

	rs, err := svc.Search(context.Background(), Request{
		Role: "admin", Collection: types.CollectionStudents, Term: "asha",
	})
	require.NoError(t, err)

	assert.Empty(t, rs.Items)
	assert.Zero(t, rs.TotalCount)
	assert.ErrorIs(t, rs.Err, cause)
}

func TestService_SortByOverridesRanking(t *testing.T) {
	svc := NewService(query.DefaultConfig(), seededStore())
	defer svc.Close()

	rs, err := svc.Search(context.Background(), Request{
		Role: "admin", Collection: types.CollectionInternships,
		SortBy: "seats", SortDesc: true,
	})
	require.NoError(t, err)

	require.Equal(t, 2, rs.TotalCount)
	seats, _ := rs.Items[0].Record.Field("seats")
	assert.Equal(t, 2, seats)
}

func TestService_AvailableCollections(t *testing.T) {
	svc := NewService(query.DefaultConfig(), seededStore())
	defer svc.Close()

	options := svc.AvailableCollections("student")
	require.Len(t, options, 2)
	assert.Equal(t, types.CollectionInternships, options[0].Key)

	assert.Empty(t, svc.AvailableCollections("nobody"))
}
