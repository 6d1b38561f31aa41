package scheduler

import (
	"math"
	"time"

	"github.com/samber/lo"

	"github.com/noah-isme/course-scheduler-api/internal/models"
)

// EligibilityEstimator counts the students who could take a course this term.
type EligibilityEstimator struct {
	students []models.Student
	passed   map[string]map[string]bool
}

// NewEligibilityEstimator indexes passed courses per student.
func NewEligibilityEstimator(students []models.Student, histories []models.StudentCourseHistory) *EligibilityEstimator {
	passed := make(map[string]map[string]bool)
	for _, record := range histories {
		if !record.Passed() {
			continue
		}
		if passed[record.StudentID] == nil {
			passed[record.StudentID] = make(map[string]bool)
		}
		passed[record.StudentID][record.CourseID] = true
	}
	return &EligibilityEstimator{students: students, passed: passed}
}

// EligibleCount returns how many students are in the grade range, have passed the
// prerequisite (if any) and have not passed the course itself.
func (e *EligibilityEstimator) EligibleCount(course models.Course) int {
	return lo.CountBy(e.students, func(student models.Student) bool {
		if student.GradeLevel < course.GradeLevelMin || student.GradeLevel > course.GradeLevelMax {
			return false
		}
		if course.PrerequisiteID != nil && !e.hasPassed(student.ID, *course.PrerequisiteID) {
			return false
		}
		return !e.hasPassed(student.ID, course.ID)
	})
}

func (e *EligibilityEstimator) hasPassed(studentID, courseID string) bool {
	return e.passed[studentID][courseID]
}

// WeeksInTerm is the number of started weeks between the semester dates.
func WeeksInTerm(semester models.Semester) (int, error) {
	if semester.StartDate == nil || semester.EndDate == nil {
		return 0, ErrMissingTermDates
	}
	start := truncateDate(*semester.StartDate)
	end := truncateDate(*semester.EndDate)
	days := int(math.Round(end.Sub(start).Hours() / 24))
	return int(math.Ceil(float64(days) / 7.0)), nil
}

// SectionsNeeded sizes the minimum parallel sections for the eligible headcount.
// It never returns less than one; a zero-week term counts as one week.
func SectionsNeeded(eligible, roomCapacity, weeks int) int {
	if weeks < 1 {
		weeks = 1
	}
	if roomCapacity < 1 {
		roomCapacity = 1
	}
	needed := int(math.Ceil(float64(eligible) / float64(roomCapacity*weeks)))
	return lo.Max([]int{1, needed})
}

func truncateDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
