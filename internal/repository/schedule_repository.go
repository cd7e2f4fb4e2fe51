package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ColegioIDS/ids-attendance-api/internal/models"
)

// ScheduleRepository persists schedules and course assignments.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository constructs the repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// ListActiveForDay returns the teacher's active schedules in the section for
// the given day of week, backed by active course assignments.
func (r *ScheduleRepository) ListActiveForDay(ctx context.Context, teacherID, sectionID string, dayOfWeek int) ([]models.Schedule, error) {
	const query = `SELECT s.id, s.section_id, s.course_assignment_id, s.teacher_id, s.day_of_week, s.start_time, s.end_time, s.is_active, s.created_at
FROM schedules s
JOIN course_assignments ca ON ca.id = s.course_assignment_id
WHERE s.teacher_id = $1 AND s.section_id = $2 AND s.day_of_week = $3
  AND s.is_active = TRUE AND ca.is_active = TRUE
ORDER BY s.start_time ASC`
	var schedules []models.Schedule
	if err := r.db.SelectContext(ctx, &schedules, query, teacherID, sectionID, dayOfWeek); err != nil {
		return nil, fmt.Errorf("list schedules for day: %w", err)
	}
	return schedules, nil
}

// HasActiveAssignment reports whether the teacher holds any active course
// assignment in the section. Used by the "own" attendance scope.
func (r *ScheduleRepository) HasActiveAssignment(ctx context.Context, teacherID, sectionID string) (bool, error) {
	const query = `SELECT 1 FROM course_assignments
WHERE teacher_id = $1 AND section_id = $2 AND is_active = TRUE LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, teacherID, sectionID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check course assignment: %w", err)
	}
	return true, nil
}
