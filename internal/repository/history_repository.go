package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-scheduler-api/internal/models"
)

// HistoryRepository reads student course outcomes.
type HistoryRepository struct {
	db *sqlx.DB
}

// NewHistoryRepository constructs a HistoryRepository.
func NewHistoryRepository(db *sqlx.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// List returns every history record.
func (r *HistoryRepository) List(ctx context.Context) ([]models.StudentCourseHistory, error) {
	const query = `SELECT id, student_id, course_id, semester_id, status FROM student_course_history ORDER BY student_id`
	var records []models.StudentCourseHistory
	if err := r.db.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("list course history: %w", err)
	}
	return records, nil
}

// ListByStudent returns one student's history records.
func (r *HistoryRepository) ListByStudent(ctx context.Context, studentID string) ([]models.StudentCourseHistory, error) {
	const query = `SELECT id, student_id, course_id, semester_id, status FROM student_course_history WHERE student_id = $1`
	var records []models.StudentCourseHistory
	if err := r.db.SelectContext(ctx, &records, query, studentID); err != nil {
		return nil, fmt.Errorf("list student history: %w", err)
	}
	return records, nil
}

// ListAcademicHistory joins a student's records with course and semester details.
func (r *HistoryRepository) ListAcademicHistory(ctx context.Context, studentID string) ([]models.AcademicHistoryEntry, error) {
	const query = `
SELECT s.name AS semester_name, s.start_date AS semester_start, c.name AS course_name,
       c.course_type, c.credits, h.status
FROM student_course_history h
JOIN courses c ON c.id = h.course_id
JOIN semesters s ON s.id = h.semester_id
WHERE h.student_id = $1
ORDER BY s.start_date ASC NULLS LAST, c.name`
	var entries []models.AcademicHistoryEntry
	if err := r.db.SelectContext(ctx, &entries, query, studentID); err != nil {
		return nil, fmt.Errorf("list academic history: %w", err)
	}
	return entries, nil
}
