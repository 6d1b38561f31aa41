package scheduler

import (
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-scheduler-api/internal/models"
)

func assertHardConstraints(t *testing.T, policy Policy, sessions []Session) {
	t.Helper()

	for i := range sessions {
		s := sessions[i]
		assert.Contains(t, []int{1, 2}, s.Duration, "duration of %+v", s)
		assert.Contains(t, policy.Slots, s.StartHour)
		assert.Contains(t, policy.Weekdays, s.Day)
		if s.Duration == 2 {
			assert.True(t, policy.CanExtend(s.StartHour), "two-hour block at %d crosses a break", s.StartHour)
		}
		for j := i + 1; j < len(sessions); j++ {
			o := sessions[j]
			if s.TeacherID != o.TeacherID && s.RoomID != o.RoomID {
				continue
			}
			assert.False(t, Overlaps(s.Block(), o.Block()), "double booking: %+v and %+v", s, o)
		}
	}

	hours := make(map[string]map[time.Weekday][]int)
	for _, s := range sessions {
		if hours[s.TeacherID] == nil {
			hours[s.TeacherID] = make(map[time.Weekday][]int)
		}
		for h := s.StartHour; h < s.EndHour(); h++ {
			hours[s.TeacherID][s.Day] = append(hours[s.TeacherID][s.Day], h)
		}
	}
	for teacher, days := range hours {
		for day, list := range days {
			assert.LessOrEqual(t, len(list), policy.MaxDailyHours, "daily cap for %s on %s", teacher, day)
			sort.Ints(list)
			assert.LessOrEqual(t, longestRun(list), policy.MaxConsecutiveHours, "consecutive cap for %s on %s", teacher, day)
		}
	}
}

func TestGenerateRespectsHardConstraints(t *testing.T) {
	f := newFixture().
		specialization("math", "lecture").teachers("math", 2).rooms("lecture", 2).courses("math", 6, 5).
		specialization("bio", "lab").teachers("bio", 1).rooms("lab", 1).courses("bio", 3, 4)

	for seed := int64(1); seed <= 20; seed++ {
		engine := NewEngine(WithSeed(seed))
		result, err := engine.Generate(f.input)
		require.NoError(t, err)
		require.NotEmpty(t, result.Sessions)
		assertHardConstraints(t, engine.Policy(), result.Sessions)
	}
}

func TestGenerateSingleTeacherHitsDailyCapWithoutViolatingIt(t *testing.T) {
	f := newFixture().specialization("art", "studio").teachers("art", 1).rooms("studio", 3).courses("art", 10, 4)

	engine := NewEngine(WithSeed(7))
	result, err := engine.Generate(f.input)
	require.NoError(t, err)

	assertHardConstraints(t, engine.Policy(), result.Sessions)
	total := 0
	for _, s := range result.Sessions {
		total += s.Duration
	}
	assert.LessOrEqual(t, total, 20)
	assert.Greater(t, result.UnscheduledHours(), 0)
	require.NotEmpty(t, result.Warnings)
	for _, w := range result.Warnings {
		assert.Equal(t, WarningUnfulfilledHours, w.Code)
	}
}

func TestGenerateFullySchedulesSimpleCourse(t *testing.T) {
	f := newFixture().specialization("math", "lecture").teachers("math", 1).rooms("lecture", 1).courses("math", 1, 3)

	result, err := NewEngine(WithSeed(3)).Generate(f.input)
	require.NoError(t, err)

	require.Len(t, result.Courses, 1)
	assert.Equal(t, CourseFullyScheduled, result.Courses[0].Status)
	assert.Equal(t, 3, result.Courses[0].Scheduled)
	assert.Empty(t, result.Warnings)
	for _, s := range result.Sessions {
		assert.Equal(t, "sem-1", s.SemesterID)
	}

	credited := 0
	for _, entry := range result.Ledger {
		credited += entry.Hours
	}
	assert.Equal(t, 3, credited)
	assert.Len(t, result.Ledger, 35)
}

func TestGenerateWithoutActiveTerm(t *testing.T) {
	f := newFixture().specialization("math", "lecture").teachers("math", 1).rooms("lecture", 1).courses("math", 1, 2)
	f.input.Semester = nil

	result, err := NewEngine().Generate(f.input)
	assert.ErrorIs(t, err, ErrNoActiveTerm)
	assert.Nil(t, result)
}

func TestGenerateWithoutTermDates(t *testing.T) {
	f := newFixture().specialization("math", "lecture").teachers("math", 1).rooms("lecture", 1).courses("math", 1, 2)
	f.input.Semester.EndDate = nil

	_, err := NewEngine().Generate(f.input)
	assert.ErrorIs(t, err, ErrMissingTermDates)
}

func TestGenerateFailsWhenHoursBelowSections(t *testing.T) {
	f := newFixture().
		specialization("math", "lecture").teachers("math", 1).rooms("lecture", 1).
		courses("math", 1, 3)
	f.input.Courses = append(f.input.Courses, models.Course{
		ID: "physics", Name: "Physics", HoursPerWeek: 1, SpecializationID: strPtr("math"),
		GradeLevelMin: 10, GradeLevelMax: 10,
	})
	for i := 0; i < 61; i++ {
		f.input.Students = append(f.input.Students, models.Student{ID: fmt.Sprintf("student-%d", i), GradeLevel: 10})
	}

	result, err := NewEngine(WithSeed(1)).Generate(f.input)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.Is(err, ErrInsufficientWeeklyHours))

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "physics", cfgErr.CourseID)
	assert.Equal(t, 2, cfgErr.Required)
	assert.Equal(t, 1, cfgErr.Have)
	assert.Contains(t, err.Error(), "Physics")
}

func TestGenerateSkipsCourseWithoutTeachers(t *testing.T) {
	f := newFixture().
		specialization("math", "lecture").teachers("math", 1).rooms("lecture", 1).courses("math", 1, 2).
		specialization("music", "lecture").courses("music", 1, 2)
	f.input.Courses = append(f.input.Courses, models.Course{ID: "free", Name: "Free study", HoursPerWeek: 1, GradeLevelMin: 9, GradeLevelMax: 12})

	result, err := NewEngine(WithSeed(11)).Generate(f.input)
	require.NoError(t, err)

	for _, s := range result.Sessions {
		assert.Equal(t, "math-course-0", s.CourseID)
	}
	assert.NotEmpty(t, result.Sessions)

	require.Len(t, result.Courses, 3)
	assert.Equal(t, CourseFullyScheduled, result.Courses[0].Status)
	assert.Equal(t, CourseSkipped, result.Courses[1].Status)
	assert.Equal(t, CourseSkipped, result.Courses[2].Status)

	codes := map[string]WarningCode{}
	for _, w := range result.Warnings {
		codes[w.CourseID] = w.Code
	}
	assert.Equal(t, WarningNoResourcePool, codes["music-course-0"])
	assert.Equal(t, WarningNoSpecialization, codes["free"])
}

func TestGenerateWithNoCourses(t *testing.T) {
	result, err := NewEngine().Generate(Input{Semester: semesterFixture(42)})
	require.NoError(t, err)
	assert.Empty(t, result.Sessions)
	assert.Empty(t, result.Courses)
	assert.Equal(t, 6, result.WeeksInTerm)
}

func TestGenerateIsDeterministicForSeed(t *testing.T) {
	f := newFixture().specialization("math", "lecture").teachers("math", 3).rooms("lecture", 2).courses("math", 5, 4)

	first, err := NewEngine(WithSeed(99)).Generate(f.input)
	require.NoError(t, err)
	second, err := NewEngine(WithSeed(99)).Generate(f.input)
	require.NoError(t, err)

	assert.Equal(t, first.Sessions, second.Sessions)
	assert.Equal(t, int64(99), first.Seed)
}

func TestPlaceNextAlwaysUsesLeastLoadedCell(t *testing.T) {
	f := newFixture().specialization("math", "lecture").teachers("math", 4).rooms("lecture", 3).courses("math", 8, 4)

	engine := NewEngine(WithSeed(5))
	state := NewAllocationState(engine.Policy())
	pools := NewResourcePool(f.input.Teachers, f.input.Rooms)
	specs := map[string]models.Specialization{"math": f.input.Specializations[0]}
	rng := newTestRand(5)

	for _, course := range f.input.Courses {
		pool, _, ok := pools.ForCourse(course, specs)
		require.True(t, ok)

		remaining := course.HoursPerWeek
		for remaining > 0 {
			minLoad := state.Ledger.Load(state.Ledger.LeastLoaded()[0])
			session, placed := engine.placeNext(state, rng, course, pool, remaining)
			if !placed {
				break
			}
			assert.Equal(t, minLoad, state.Ledger.Load(Cell{Day: session.Day, Hour: session.StartHour}))
			state.record(session)
			remaining -= session.Duration
		}
	}
	assertHardConstraints(t, engine.Policy(), state.Sessions())
}

func TestBlockLengthRules(t *testing.T) {
	engine := NewEngine()
	state := NewAllocationState(engine.Policy())

	length, ok := engine.blockLength(state, "t1", "r1", Cell{Day: time.Monday, Hour: 9}, 3)
	assert.True(t, ok)
	assert.Equal(t, 2, length)

	length, ok = engine.blockLength(state, "t1", "r1", Cell{Day: time.Monday, Hour: 11}, 3)
	assert.True(t, ok)
	assert.Equal(t, 1, length, "no block across lunch")

	length, ok = engine.blockLength(state, "t1", "r1", Cell{Day: time.Monday, Hour: 16}, 3)
	assert.True(t, ok)
	assert.Equal(t, 1, length, "no block past the last slot")

	length, ok = engine.blockLength(state, "t1", "r1", Cell{Day: time.Monday, Hour: 9}, 1)
	assert.True(t, ok)
	assert.Equal(t, 1, length)

	state.Tracker.MarkPlaced("t1", "r2", time.Monday, 14)
	state.Tracker.MarkPlaced("t1", "r2", time.Monday, 15)
	_, ok = engine.blockLength(state, "t1", "r1", Cell{Day: time.Monday, Hour: 13}, 2)
	assert.False(t, ok, "13:00 would make three consecutive hours")

	state.Tracker.MarkPlaced("t2", "r3", time.Tuesday, 9)
	state.Tracker.MarkPlaced("t2", "r3", time.Tuesday, 13)
	state.Tracker.MarkPlaced("t2", "r3", time.Tuesday, 16)
	length, ok = engine.blockLength(state, "t2", "r1", Cell{Day: time.Tuesday, Hour: 11}, 2)
	assert.True(t, ok)
	assert.Equal(t, 1, length)
	length, _ = engine.blockLength(state, "t2", "r1", Cell{Day: time.Tuesday, Hour: 14}, 2)
	assert.Equal(t, 1, length, "two more hours would pass the daily cap")
}
