package types

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStudent_FieldLookup(t *testing.T) {
	st := Student{ID: uuid.New(), Name: "Asha", GPA: 3.8, Skills: []string{"Go"}}

	name, ok := st.Field("name")
	require.True(t, ok)
	assert.Equal(t, "Asha", name)

	gpa, ok := st.Field("gpa")
	require.True(t, ok)
	assert.Equal(t, 3.8, gpa)

	_, ok = st.Field("no_such_field")
	assert.False(t, ok)

	assert.Equal(t, CollectionStudents, st.Collection())
	assert.Equal(t, st.ID, st.RecordID())
}

func TestApplication_CreatedAtAliasesAppliedAt(t *testing.T) {
	applied := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	app := Application{ID: uuid.New(), Status: StatusApplied, AppliedAt: applied}

	created, ok := app.Field("created_at")
	require.True(t, ok)
	assert.Equal(t, applied, created)
}

func TestFieldNames_CoverEveryField(t *testing.T) {
	records := []Record{
		Student{ID: uuid.New()},
		Internship{ID: uuid.New()},
		Application{ID: uuid.New()},
	}
	for _, r := range records {
		for _, name := range r.FieldNames() {
			_, ok := r.Field(name)
			assert.True(t, ok, "%s.%s", r.Collection(), name)
		}
	}
}

func TestSuccessStatuses(t *testing.T) {
	assert.True(t, SuccessStatuses[StatusOffered])
	assert.True(t, SuccessStatuses[StatusAccepted])
	assert.False(t, SuccessStatuses[StatusPending])
	assert.False(t, SuccessStatuses[StatusRejected])
}
