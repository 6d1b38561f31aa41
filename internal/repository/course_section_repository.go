package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-scheduler-api/internal/models"
)

const sectionColumns = `cs.id, cs.course_id, cs.teacher_id, cs.classroom_id, cs.semester_id, cs.day_of_week,
       to_char(cs.start_time, 'HH24:MI') AS start_time, to_char(cs.end_time, 'HH24:MI') AS end_time, cs.created_at`

const sectionDetailQuery = `
SELECT ` + sectionColumns + `,
       c.code AS course_code, c.name AS course_name, c.course_type, c.credits,
       c.grade_level_min, c.grade_level_max, c.prerequisite_id,
       t.first_name AS teacher_first_name, t.last_name AS teacher_last_name,
       r.name AS room_name, r.capacity AS room_capacity
FROM course_sections cs
JOIN courses c ON c.id = cs.course_id
JOIN teachers t ON t.id = cs.teacher_id
JOIN classrooms r ON r.id = cs.classroom_id`

const sectionOrder = `
ORDER BY CASE cs.day_of_week
    WHEN 'MONDAY' THEN 1 WHEN 'TUESDAY' THEN 2 WHEN 'WEDNESDAY' THEN 3
    WHEN 'THURSDAY' THEN 4 WHEN 'FRIDAY' THEN 5 WHEN 'SATURDAY' THEN 6 ELSE 7 END,
    cs.start_time, c.code`

// CourseSectionRepository persists generated timetable sections.
type CourseSectionRepository struct {
	db *sqlx.DB
}

// NewCourseSectionRepository constructs a CourseSectionRepository.
func NewCourseSectionRepository(db *sqlx.DB) *CourseSectionRepository {
	return &CourseSectionRepository{db: db}
}

func (r *CourseSectionRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// DeleteBySemester removes every section of the semester.
func (r *CourseSectionRepository) DeleteBySemester(ctx context.Context, exec sqlx.ExtContext, semesterID string) (int64, error) {
	result, err := r.exec(exec).ExecContext(ctx, `DELETE FROM course_sections WHERE semester_id = $1`, semesterID)
	if err != nil {
		return 0, fmt.Errorf("delete course sections: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete course sections rows: %w", err)
	}
	return affected, nil
}

// BulkCreate inserts sections, assigning ids and timestamps where missing.
func (r *CourseSectionRepository) BulkCreate(ctx context.Context, exec sqlx.ExtContext, sections []models.CourseSection) error {
	if len(sections) == 0 {
		return nil
	}
	target := r.exec(exec)
	now := time.Now().UTC()

	const query = `
INSERT INTO course_sections (id, course_id, teacher_id, classroom_id, semester_id, day_of_week, start_time, end_time, created_at)
VALUES (:id, :course_id, :teacher_id, :classroom_id, :semester_id, :day_of_week, :start_time, :end_time, :created_at)`

	for i := range sections {
		section := &sections[i]
		if section.ID == "" {
			section.ID = uuid.NewString()
		}
		if section.CreatedAt.IsZero() {
			section.CreatedAt = now
		}
		if _, err := sqlx.NamedExecContext(ctx, target, query, section); err != nil {
			return fmt.Errorf("insert course section: %w", err)
		}
	}
	return nil
}

// ListDetailsBySemester returns sections joined with course, teacher and room data.
func (r *CourseSectionRepository) ListDetailsBySemester(ctx context.Context, semesterID string) ([]models.CourseSectionDetail, error) {
	query := sectionDetailQuery + ` WHERE cs.semester_id = $1` + sectionOrder
	var details []models.CourseSectionDetail
	if err := r.db.SelectContext(ctx, &details, query, semesterID); err != nil {
		return nil, fmt.Errorf("list course section details: %w", err)
	}
	return details, nil
}

// FindDetailByID fetches one section with its joined data.
func (r *CourseSectionRepository) FindDetailByID(ctx context.Context, id string) (*models.CourseSectionDetail, error) {
	query := sectionDetailQuery + ` WHERE cs.id = $1`
	var detail models.CourseSectionDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}
