package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/noah-isme/course-scheduler-api/internal/models"
	"github.com/noah-isme/course-scheduler-api/internal/scheduler"
	appErrors "github.com/noah-isme/course-scheduler-api/pkg/errors"
	"github.com/noah-isme/course-scheduler-api/pkg/jobs"
)

const (
	roomMaxDailyHours = 8
	emptyUsageLabel   = "-"
)

// utilizationLimits are the weekly hour ceilings percentages are measured against.
type utilizationLimits struct {
	teacher float64
	room    float64
}

func limitsFor(policy scheduler.Policy) utilizationLimits {
	if len(policy.Weekdays) == 0 || policy.MaxDailyHours <= 0 {
		policy = scheduler.DefaultPolicy()
	}
	days := float64(len(policy.Weekdays))
	return utilizationLimits{
		teacher: float64(policy.MaxDailyHours) * days,
		room:    roomMaxDailyHours * days,
	}
}

type activeSemesterReader interface {
	FindActive(ctx context.Context) (*models.Semester, error)
}

type sectionDetailReader interface {
	ListDetailsBySemester(ctx context.Context, semesterID string) ([]models.CourseSectionDetail, error)
}

// UtilizationCacheKey names the cached report of a semester.
func UtilizationCacheKey(semesterID string) string {
	return "utilization:" + semesterID
}

// UtilizationService reports how the generated timetable loads teachers, rooms, days and slots.
type UtilizationService struct {
	semesters activeSemesterReader
	sections  sectionDetailReader
	cache     *CacheService
	ttl       time.Duration
	limits    utilizationLimits
	logger    *zap.Logger
	now       func() time.Time
}

// NewUtilizationService constructs a UtilizationService. cache may be nil. Teacher
// and room ceilings follow policy's working days and daily cap; a zero policy means the default one.
func NewUtilizationService(semesters activeSemesterReader, sections sectionDetailReader, cache *CacheService, ttl time.Duration, policy scheduler.Policy, logger *zap.Logger) *UtilizationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UtilizationService{
		semesters: semesters,
		sections:  sections,
		cache:     cache,
		ttl:       ttl,
		limits:    limitsFor(policy),
		logger:    logger,
		now:       time.Now,
	}
}

// Calculate returns the utilization report of the active semester, served from cache when possible.
func (s *UtilizationService) Calculate(ctx context.Context) (*models.Utilization, error) {
	semester, err := s.semesters.FindActive(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return s.emptyReport(), nil
		}
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to load active semester")
	}

	key := UtilizationCacheKey(semester.ID)
	var cached models.Utilization
	if hit, cacheErr := s.cache.Get(ctx, key, &cached); cacheErr == nil && hit {
		return &cached, nil
	}

	report, err := s.build(ctx, semester.ID)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, key, report, s.ttl)
	return report, nil
}

// Refresh recomputes and stores the report of a semester.
func (s *UtilizationService) Refresh(ctx context.Context, semesterID string) error {
	report, err := s.build(ctx, semesterID)
	if err != nil {
		return err
	}
	if err := s.cache.Set(ctx, UtilizationCacheKey(semesterID), report, s.ttl); err != nil {
		return fmt.Errorf("store utilization: %w", err)
	}
	s.logger.Info("utilization refreshed",
		zap.String("semester_id", semesterID),
		zap.Int("teachers", len(report.TeacherUsage)),
		zap.Int("rooms", len(report.RoomUsage)),
	)
	return nil
}

// HandleRefreshJob runs Refresh for a queued job whose payload is the semester id.
func (s *UtilizationService) HandleRefreshJob(ctx context.Context, job jobs.Job) error {
	semesterID, ok := job.Payload.(string)
	if !ok || semesterID == "" {
		return fmt.Errorf("job %s: semester id payload required", job.ID)
	}
	return s.Refresh(ctx, semesterID)
}

func (s *UtilizationService) build(ctx context.Context, semesterID string) (*models.Utilization, error) {
	sections, err := s.sections.ListDetailsBySemester(ctx, semesterID)
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to load course sections")
	}
	if len(sections) == 0 {
		return s.emptyReport(), nil
	}

	hours := make(map[string]float64, len(sections))
	for _, section := range sections {
		hours[section.ID] = sectionHours(section.CourseSection)
	}

	teacherUsage := resourceUsage(sections, hours, s.limits.teacher,
		func(d models.CourseSectionDetail) (string, string) { return d.TeacherID, d.TeacherName() })
	roomUsage := resourceUsage(sections, hours, s.limits.room,
		func(d models.CourseSectionDetail) (string, string) { return d.ClassroomID, d.RoomName })
	dayUsage := buildDayUsage(sections, hours, s.limits.room)
	slotUsage := buildSlotUsage(sections, hours, s.limits.room)

	return &models.Utilization{
		Summary:       buildSummary(teacherUsage, roomUsage, dayUsage, slotUsage),
		TeacherUsage:  teacherUsage,
		RoomUsage:     roomUsage,
		DayUsage:      dayUsage,
		TimeSlotUsage: slotUsage,
		GeneratedAt:   s.now().UTC(),
	}, nil
}

func (s *UtilizationService) emptyReport() *models.Utilization {
	return &models.Utilization{
		Summary: models.UtilizationSummary{
			MostLoadedDay:   emptyUsageLabel,
			LeastLoadedDay:  emptyUsageLabel,
			MostLoadedSlot:  emptyUsageLabel,
			LeastLoadedSlot: emptyUsageLabel,
		},
		TeacherUsage:  []models.ResourceUsage{},
		RoomUsage:     []models.ResourceUsage{},
		DayUsage:      []models.DayUsage{},
		TimeSlotUsage: []models.TimeSlotUsage{},
		GeneratedAt:   s.now().UTC(),
	}
}

func sectionHours(section models.CourseSection) float64 {
	block, err := scheduler.ParseBlock(section.DayOfWeek, section.StartTime, section.EndTime)
	if err != nil {
		return 0
	}
	return float64(block.End-block.Start) / 60
}

func resourceUsage(sections []models.CourseSectionDetail, hours map[string]float64, max float64, key func(models.CourseSectionDetail) (string, string)) []models.ResourceUsage {
	used := make(map[string]float64)
	names := make(map[string]string)
	for _, section := range sections {
		id, name := key(section)
		used[id] += hours[section.ID]
		names[id] = name
	}
	usage := make([]models.ResourceUsage, 0, len(used))
	for id, total := range used {
		usage = append(usage, models.ResourceUsage{ID: id, Name: names[id], Used: total, Max: max, Percent: percent(total, max)})
	}
	sort.SliceStable(usage, func(i, j int) bool {
		if usage[i].Percent != usage[j].Percent {
			return usage[i].Percent > usage[j].Percent
		}
		return usage[i].Name < usage[j].Name
	})
	return usage
}

func buildDayUsage(sections []models.CourseSectionDetail, hours map[string]float64, max float64) []models.DayUsage {
	byDay := lo.GroupBy(sections, func(d models.CourseSectionDetail) string { return d.DayOfWeek })
	usage := make([]models.DayUsage, 0, len(byDay))
	for day, items := range byDay {
		total := lo.SumBy(items, func(d models.CourseSectionDetail) float64 { return hours[d.ID] })
		usage = append(usage, models.DayUsage{Day: day, Used: total, Percent: percent(total, max)})
	}
	sort.Slice(usage, func(i, j int) bool {
		return dayRank(usage[i].Day) < dayRank(usage[j].Day)
	})
	return usage
}

func buildSlotUsage(sections []models.CourseSectionDetail, hours map[string]float64, max float64) []models.TimeSlotUsage {
	bySlot := lo.GroupBy(sections, func(d models.CourseSectionDetail) string { return d.StartTime })
	usage := make([]models.TimeSlotUsage, 0, len(bySlot))
	for slot, items := range bySlot {
		total := lo.SumBy(items, func(d models.CourseSectionDetail) float64 { return hours[d.ID] })
		usage = append(usage, models.TimeSlotUsage{Slot: slot, Used: total, Percent: percent(total, max)})
	}
	sort.Slice(usage, func(i, j int) bool { return usage[i].Slot < usage[j].Slot })
	return usage
}

func buildSummary(teachers, rooms []models.ResourceUsage, days []models.DayUsage, slots []models.TimeSlotUsage) models.UtilizationSummary {
	resourcePercent := func(u models.ResourceUsage) float64 { return u.Percent }
	dayPercent := func(u models.DayUsage) float64 { return u.Percent }
	slotPercent := func(u models.TimeSlotUsage) float64 { return u.Percent }

	summary := models.UtilizationSummary{
		AvgTeacherUtil:  average(teachers, resourcePercent),
		AvgRoomUtil:     average(rooms, resourcePercent),
		AvgDayLoad:      average(days, dayPercent),
		AvgSlotLoad:     average(slots, slotPercent),
		MostLoadedDay:   emptyUsageLabel,
		LeastLoadedDay:  emptyUsageLabel,
		MostLoadedSlot:  emptyUsageLabel,
		LeastLoadedSlot: emptyUsageLabel,
	}
	if len(days) > 0 {
		summary.MostLoadedDay = lo.MaxBy(days, func(a, b models.DayUsage) bool { return a.Percent > b.Percent }).Day
		summary.LeastLoadedDay = lo.MinBy(days, func(a, b models.DayUsage) bool { return a.Percent < b.Percent }).Day
	}
	if len(slots) > 0 {
		summary.MostLoadedSlot = lo.MaxBy(slots, func(a, b models.TimeSlotUsage) bool { return a.Percent > b.Percent }).Slot
		summary.LeastLoadedSlot = lo.MinBy(slots, func(a, b models.TimeSlotUsage) bool { return a.Percent < b.Percent }).Slot
	}
	return summary
}

func average[T any](items []T, value func(T) float64) float64 {
	if len(items) == 0 {
		return 0
	}
	return lo.SumBy(items, value) / float64(len(items))
}

func percent(used, max float64) float64 {
	return used / max * 100
}

func dayRank(day string) int {
	weekday, ok := scheduler.ParseWeekday(day)
	if !ok {
		return 8
	}
	if weekday == time.Sunday {
		return 7
	}
	return int(weekday)
}
