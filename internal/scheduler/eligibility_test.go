package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-scheduler-api/internal/models"
)

func TestEligibleCount(t *testing.T) {
	students := []models.Student{
		{ID: "s1", GradeLevel: 10},
		{ID: "s2", GradeLevel: 10},
		{ID: "s3", GradeLevel: 11},
		{ID: "s4", GradeLevel: 12},
		{ID: "s5", GradeLevel: 9},
	}
	histories := []models.StudentCourseHistory{
		{StudentID: "s1", CourseID: "algebra", Status: "PASSED"},
		{StudentID: "s2", CourseID: "algebra", Status: models.HistoryFailed},
		{StudentID: "s3", CourseID: "algebra", Status: models.HistoryPassed},
		{StudentID: "s3", CourseID: "geometry", Status: models.HistoryPassed},
		{StudentID: "s4", CourseID: "algebra", Status: models.HistoryPassed},
	}
	estimator := NewEligibilityEstimator(students, histories)

	geometry := models.Course{ID: "geometry", PrerequisiteID: strPtr("algebra"), GradeLevelMin: 10, GradeLevelMax: 12}
	// s1 passed (case-insensitive), s3 already passed geometry, s4 qualifies.
	assert.Equal(t, 2, estimator.EligibleCount(geometry))

	algebra := models.Course{ID: "algebra", GradeLevelMin: 9, GradeLevelMax: 10}
	// s2 failed and may retake, s5 never took it.
	assert.Equal(t, 2, estimator.EligibleCount(algebra))

	assert.Equal(t, 0, estimator.EligibleCount(models.Course{ID: "x", GradeLevelMin: 13, GradeLevelMax: 13}))
}

func TestWeeksInTerm(t *testing.T) {
	start := time.Date(2025, time.January, 6, 8, 30, 0, 0, time.UTC)
	cases := []struct {
		days  int
		weeks int
	}{
		{days: 42, weeks: 6},
		{days: 40, weeks: 6},
		{days: 43, weeks: 7},
		{days: 0, weeks: 0},
	}
	for _, tc := range cases {
		end := start.AddDate(0, 0, tc.days)
		weeks, err := WeeksInTerm(models.Semester{StartDate: &start, EndDate: &end})
		require.NoError(t, err)
		assert.Equal(t, tc.weeks, weeks, "days=%d", tc.days)
	}

	_, err := WeeksInTerm(models.Semester{StartDate: &start})
	assert.ErrorIs(t, err, ErrMissingTermDates)
}

func TestSectionsNeeded(t *testing.T) {
	assert.Equal(t, 1, SectionsNeeded(25, 10, 6))
	assert.Equal(t, 1, SectionsNeeded(0, 10, 6))
	assert.Equal(t, 2, SectionsNeeded(61, 10, 6))
	assert.Equal(t, 3, SectionsNeeded(25, 10, 0))
}
