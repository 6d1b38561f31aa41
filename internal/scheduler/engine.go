package scheduler

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/noah-isme/course-scheduler-api/internal/models"
)

// CourseStatus tracks how far a course got during a run.
type CourseStatus string

const (
	CoursePending            CourseStatus = "PENDING"
	CoursePartiallyScheduled CourseStatus = "PARTIALLY_SCHEDULED"
	CourseFullyScheduled     CourseStatus = "FULLY_SCHEDULED"
	CourseSkipped            CourseStatus = "SKIPPED"
)

// WarningCode classifies a per-course shortfall.
type WarningCode string

const (
	WarningNoSpecialization WarningCode = "NO_SPECIALIZATION"
	WarningNoResourcePool   WarningCode = "NO_RESOURCE_POOL"
	WarningUnfulfilledHours WarningCode = "UNFULFILLED_HOURS"
)

// Warning is a soft failure. The run still completes.
type Warning struct {
	CourseID string      `json:"course_id"`
	Code     WarningCode `json:"code"`
	Message  string      `json:"message"`
}

// CourseOutcome summarises one course's placement.
type CourseOutcome struct {
	CourseID  string       `json:"course_id"`
	Eligible  int          `json:"eligible_students"`
	Sections  int          `json:"sections_needed"`
	Required  int          `json:"required_hours"`
	Scheduled int          `json:"scheduled_hours"`
	Status    CourseStatus `json:"status"`
}

// Input is the read-only snapshot a run works from.
type Input struct {
	Semester        *models.Semester
	Courses         []models.Course
	Specializations []models.Specialization
	Teachers        []models.Teacher
	Rooms           []models.Classroom
	Students        []models.Student
	Histories       []models.StudentCourseHistory
}

// Result is everything a run produced.
type Result struct {
	Sessions    []Session
	Warnings    []Warning
	Ledger      []CellLoad
	Courses     []CourseOutcome
	WeeksInTerm int
	Seed        int64
}

// UnscheduledHours sums the hours that could not be placed.
func (r *Result) UnscheduledHours() int {
	return lo.SumBy(r.Courses, func(c CourseOutcome) int { return c.Required - c.Scheduled })
}

// Randomizer is the tie-break source. *rand.Rand satisfies it.
type Randomizer interface {
	Intn(n int) int
	Shuffle(n int, swap func(i, j int))
}

// Option customises an Engine.
type Option func(*Engine)

// WithSeed fixes the tie-break seed so runs are reproducible.
func WithSeed(seed int64) Option {
	return func(e *Engine) {
		e.seed = seed
		e.seeded = true
	}
}

// WithLogger sets the logger warnings are reported to.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithPolicy replaces the default allocation policy.
func WithPolicy(policy Policy) Option {
	return func(e *Engine) {
		e.policy = policy
	}
}

// Engine runs greedy, load-balanced timetable generation. It is safe for concurrent
// use: every Generate call builds its own AllocationState and Randomizer.
type Engine struct {
	policy Policy
	logger *zap.Logger
	seed   int64
	seeded bool
}

// NewEngine constructs an Engine with the default policy and a nop logger, then
// applies opts. Without WithSeed each run draws its own seed.
func NewEngine(opts ...Option) *Engine {
	engine := &Engine{policy: DefaultPolicy(), logger: zap.NewNop()}
	for _, opt := range opts {
		opt(engine)
	}
	return engine
}

// Policy returns the policy runs are constrained by.
func (e *Engine) Policy() Policy {
	return e.policy
}

// Generate allocates sessions for every course of the input. It fails before any
// placement when the term is missing or a course's weekly hours cannot cover its
// section minimum. Per-course shortfalls are returned as warnings.
func (e *Engine) Generate(in Input) (*Result, error) {
	if err := e.policy.Validate(); err != nil {
		return nil, fmt.Errorf("scheduling policy: %w", err)
	}
	if in.Semester == nil {
		return nil, ErrNoActiveTerm
	}
	weeks, err := WeeksInTerm(*in.Semester)
	if err != nil {
		return nil, err
	}

	estimator := NewEligibilityEstimator(in.Students, in.Histories)
	outcomes := make([]CourseOutcome, len(in.Courses))
	for i, course := range in.Courses {
		eligible := estimator.EligibleCount(course)
		sections := SectionsNeeded(eligible, e.policy.RoomCapacity, weeks)
		if course.HoursPerWeek < sections {
			return nil, &ConfigurationError{
				CourseID:   course.ID,
				CourseName: course.Name,
				Required:   sections,
				Have:       course.HoursPerWeek,
			}
		}
		outcomes[i] = CourseOutcome{
			CourseID: course.ID,
			Eligible: eligible,
			Sections: sections,
			Required: course.HoursPerWeek,
			Status:   CoursePending,
		}
	}

	seed := e.seed
	if !e.seeded {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	pools := NewResourcePool(in.Teachers, in.Rooms)
	specs := lo.KeyBy(in.Specializations, func(s models.Specialization) string { return s.ID })
	state := NewAllocationState(e.policy)

	result := &Result{WeeksInTerm: weeks, Seed: seed}
	for i, course := range in.Courses {
		pool, code, ok := pools.ForCourse(course, specs)
		if !ok {
			outcomes[i].Status = CourseSkipped
			result.Warnings = append(result.Warnings, e.warn(course, code, "no compatible teacher or room pool"))
			continue
		}

		scheduled := e.scheduleCourse(state, rng, in.Semester.ID, course, pool)
		outcomes[i].Scheduled = scheduled
		outcomes[i].Status = statusFor(scheduled, course.HoursPerWeek)
		if scheduled < course.HoursPerWeek {
			result.Warnings = append(result.Warnings, e.warn(course, WarningUnfulfilledHours,
				fmt.Sprintf("could not schedule all hours: %d of %d placed", scheduled, course.HoursPerWeek)))
		}
	}

	result.Sessions = state.Sessions()
	result.Ledger = state.Ledger.Snapshot()
	result.Courses = outcomes

	e.logger.Info("timetable generated",
		zap.String("semester_id", in.Semester.ID),
		zap.Int("courses", len(in.Courses)),
		zap.Int("sessions", len(result.Sessions)),
		zap.Int("hours", state.Ledger.Total()),
		zap.Int("warnings", len(result.Warnings)),
		zap.Int64("seed", seed),
	)
	return result, nil
}

func (e *Engine) scheduleCourse(state *AllocationState, rng Randomizer, semesterID string, course models.Course, pool CoursePool) int {
	remaining := course.HoursPerWeek
	for remaining > 0 {
		session, ok := e.placeNext(state, rng, course, pool, remaining)
		if !ok {
			break
		}
		session.SemesterID = semesterID
		state.record(session)
		remaining -= session.Duration
	}
	return course.HoursPerWeek - remaining
}

// placeNext scans the least-loaded cells in random order and returns the first
// placement that satisfies every availability rule. It does not mutate state.
func (e *Engine) placeNext(state *AllocationState, rng Randomizer, course models.Course, pool CoursePool, remaining int) (Session, bool) {
	candidates := state.Ledger.LeastLoaded()
	rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	for _, cell := range candidates {
		teacher, ok := e.pickTeacher(state, rng, pool.Teachers, cell)
		if !ok {
			continue
		}
		room, ok := pickRoom(state, rng, pool.Rooms, cell)
		if !ok {
			continue
		}
		duration, ok := e.blockLength(state, teacher.ID, room.ID, cell, remaining)
		if !ok {
			continue
		}
		return Session{
			CourseID:  course.ID,
			TeacherID: teacher.ID,
			RoomID:    room.ID,
			Day:       cell.Day,
			StartHour: cell.Hour,
			Duration:  duration,
		}, true
	}
	return Session{}, false
}

func (e *Engine) pickTeacher(state *AllocationState, rng Randomizer, teachers []models.Teacher, cell Cell) (models.Teacher, bool) {
	tracker := state.Tracker
	available := lo.Filter(teachers, func(t models.Teacher, _ int) bool {
		return tracker.DailyHours(t.ID, cell.Day) < e.policy.MaxDailyHours &&
			!tracker.IsTeacherBusy(t.ID, cell.Day, cell.Hour) &&
			!tracker.WouldExceedConsecutive(t.ID, cell.Day, cell.Hour, 1)
	})
	return pickLeast(rng, available, func(t models.Teacher) int { return tracker.WeeklyHours(t.ID) })
}

func pickRoom(state *AllocationState, rng Randomizer, rooms []models.Classroom, cell Cell) (models.Classroom, bool) {
	available := lo.Filter(rooms, func(r models.Classroom, _ int) bool {
		return !state.Tracker.IsRoomBusy(r.ID, cell.Day, cell.Hour)
	})
	return pickLeast(rng, available, func(r models.Classroom) int { return state.RoomUsage(r.ID) })
}

// pickLeast returns a random element among those with the lowest score.
func pickLeast[T any](rng Randomizer, items []T, score func(T) int) (T, bool) {
	var zero T
	if len(items) == 0 {
		return zero, false
	}
	best := score(lo.MinBy(items, func(a, b T) bool { return score(a) < score(b) }))
	tied := lo.Filter(items, func(item T, _ int) bool { return score(item) == best })
	return tied[rng.Intn(len(tied))], true
}

// blockLength prefers a two-hour block and falls back to one hour. ok is false
// when even one hour would break the consecutive cap.
func (e *Engine) blockLength(state *AllocationState, teacherID, roomID string, cell Cell, remaining int) (int, bool) {
	tracker := state.Tracker
	next := cell.Hour + 1
	if remaining >= 2 &&
		e.policy.CanExtend(cell.Hour) &&
		tracker.DailyHours(teacherID, cell.Day)+2 <= e.policy.MaxDailyHours &&
		!tracker.IsTeacherBusy(teacherID, cell.Day, next) &&
		!tracker.IsRoomBusy(roomID, cell.Day, next) &&
		!tracker.WouldExceedConsecutive(teacherID, cell.Day, cell.Hour, 2) {
		return 2, true
	}
	if tracker.WouldExceedConsecutive(teacherID, cell.Day, cell.Hour, 1) {
		return 0, false
	}
	return 1, true
}

func (e *Engine) warn(course models.Course, code WarningCode, message string) Warning {
	e.logger.Warn("course not fully scheduled",
		zap.String("course_id", course.ID),
		zap.String("course", course.Name),
		zap.String("code", string(code)),
		zap.String("reason", message),
	)
	return Warning{CourseID: course.ID, Code: code, Message: message}
}

func statusFor(scheduled, required int) CourseStatus {
	switch {
	case scheduled >= required:
		return CourseFullyScheduled
	case scheduled > 0:
		return CoursePartiallyScheduled
	default:
		return CoursePending
	}
}
