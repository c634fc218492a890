package analytics

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/placement-engine/internal/types"
)

func TestComputeStats_PlacementAggregates(t *testing.T) {
	now := time.Now()
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	students := []types.Student{{ID: a, Name: "A"}, {ID: b, Name: "B"}, {ID: c, Name: "C"}}
	applications := []types.Application{
		{ID: uuid.New(), StudentID: a, Status: types.StatusOffered, AppliedAt: now},
		{ID: uuid.New(), StudentID: b, Status: types.StatusPending, AppliedAt: now},
	}

	stats := ComputeStats(students, nil, applications, now)

	assert.Equal(t, 3, stats.TotalStudents)
	assert.Equal(t, 2, stats.TotalApplications)
	assert.Equal(t, 1, stats.OfferCount)
	assert.Equal(t, 1, stats.PlacedStudents)
	assert.Equal(t, 2, stats.UnplacedStudents)
	assert.InDelta(t, 33.33, stats.PlacementRate, 0.01)
}

func TestComputeStats_AcceptedCountsAsPlaced(t *testing.T) {
	now := time.Now()
	a := uuid.New()
	students := []types.Student{{ID: a, Name: "A"}}
	applications := []types.Application{
		{ID: uuid.New(), StudentID: a, Status: types.StatusAccepted, AppliedAt: now},
	}

	stats := ComputeStats(students, nil, applications, now)

	assert.Equal(t, 1, stats.PlacedStudents)
	assert.Equal(t, 100.0, stats.PlacementRate)
}

func TestComputeStats_MultipleOffersOneStudent(t *testing.T) {
	now := time.Now()
	a := uuid.New()
	students := []types.Student{{ID: a, Name: "A"}}
	applications := []types.Application{
		{ID: uuid.New(), StudentID: a, Status: types.StatusOffered, AppliedAt: now},
		{ID: uuid.New(), StudentID: a, Status: types.StatusAccepted, AppliedAt: now},
	}

	stats := ComputeStats(students, nil, applications, now)

	assert.Equal(t, 2, stats.OfferCount)
	assert.Equal(t, 1, stats.PlacedStudents)
	assert.Zero(t, stats.UnplacedStudents)
}

func TestComputeStats_OfferToUnknownStudent(t *testing.T) {
	now := time.Now()
	students := []types.Student{{ID: uuid.New(), Name: "A"}}
	applications := []types.Application{
		{ID: uuid.New(), StudentID: uuid.New(), Status: types.StatusOffered, AppliedAt: now},
	}

	stats := ComputeStats(students, nil, applications, now)

	// The offer is counted but placement is join-dependent.
	assert.Equal(t, 1, stats.OfferCount)
	assert.Zero(t, stats.PlacedStudents)
	assert.Equal(t, 1, stats.UnplacedStudents)
}

func TestComputeStats_EmptySnapshots(t *testing.T) {
	stats := ComputeStats(nil, nil, nil, time.Now())

	assert.Zero(t, stats.TotalStudents)
	assert.Zero(t, stats.PlacementRate)
	assert.Len(t, stats.ApplicationTrend, 30)
	assert.Len(t, stats.ProfileCompleteness, 4)
	assert.Empty(t, stats.Departments)
}

func TestApplicationTrend_ZeroFilledOldestFirst(t *testing.T) {
	now := time.Now()
	applications := []types.Application{
		{ID: uuid.New(), AppliedAt: now},
		{ID: uuid.New(), AppliedAt: now},
		{ID: uuid.New(), AppliedAt: now.AddDate(0, 0, -3)},
		{ID: uuid.New(), AppliedAt: now.AddDate(0, 0, -40)}, // outside the window
	}

	trend := applicationTrend(applications, now)

	require.Len(t, trend, 30)
	assert.Equal(t, now.AddDate(0, 0, -29).Local().Format("2006-01-02"), trend[0].Label)
	assert.Equal(t, now.Local().Format("2006-01-02"), trend[29].Label)
	assert.Equal(t, 2, trend[29].Value)
	assert.Equal(t, 1, trend[26].Value)
	assert.Zero(t, trend[0].Value)

	total := 0
	for _, b := range trend {
		total += b.Value
	}
	assert.Equal(t, 3, total)
}

func TestCompletenessDistribution_Quartiles(t *testing.T) {
	full := types.Student{
		ID: uuid.New(), Name: "Full", Email: "f@u.edu", Phone: "1", University: "U",
		Major: "CS", GraduationYear: 2026, Skills: []string{"Go"}, ResumeURL: "r",
		Bio: "b", GPA: 3.5,
	}
	half := types.Student{
		ID: uuid.New(), Name: "Half", Email: "h@u.edu", Phone: "2", University: "U", Major: "CS",
	}
	empty := types.Student{ID: uuid.New()}

	buckets := completenessDistribution([]types.Student{full, half, empty})

	require.Len(t, buckets, 4)
	assert.Equal(t, "0-25%", buckets[0].Label)
	assert.Equal(t, 1, buckets[0].Value) // empty
	assert.Equal(t, 1, buckets[1].Value) // half: 5 of 10
	assert.Zero(t, buckets[2].Value)
	assert.Equal(t, 1, buckets[3].Value) // full
}

func TestDepartmentRollups_JoinsAndUnknownFallback(t *testing.T) {
	now := time.Now()
	cs, none := uuid.New(), uuid.New()
	students := []types.Student{
		{ID: cs, Name: "A", Department: "CS"},
		{ID: none, Name: "B", Department: "XYZ"}, // unmapped code
	}
	applications := []types.Application{
		{ID: uuid.New(), StudentID: cs, Status: types.StatusOffered, AppliedAt: now},
		{ID: uuid.New(), StudentID: cs, Status: types.StatusPending, AppliedAt: now},
		{ID: uuid.New(), StudentID: uuid.New(), Status: types.StatusApplied, AppliedAt: now}, // unresolved join
	}

	departments := departmentRollups(students, applications)

	require.Len(t, departments, 2)

	assert.Equal(t, "CS", departments[0].Code)
	assert.Equal(t, "Computer Science", departments[0].Label)
	assert.Equal(t, 1, departments[0].Students)
	assert.Equal(t, 2, departments[0].Applications)
	assert.Equal(t, 1, departments[0].Offers)

	assert.Equal(t, "Unknown", departments[1].Code)
	assert.Equal(t, 1, departments[1].Students)
	assert.Equal(t, 1, departments[1].Applications)
}
