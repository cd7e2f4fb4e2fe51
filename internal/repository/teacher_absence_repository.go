package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ColegioIDS/ids-attendance-api/internal/models"
)

// TeacherAbsenceRepository persists teacher leave periods.
type TeacherAbsenceRepository struct {
	db *sqlx.DB
}

// NewTeacherAbsenceRepository constructs the repository.
func NewTeacherAbsenceRepository(db *sqlx.DB) *TeacherAbsenceRepository {
	return &TeacherAbsenceRepository{db: db}
}

// ExistsOverlapping reports whether the teacher has an approved or active
// absence covering the date.
func (r *TeacherAbsenceRepository) ExistsOverlapping(ctx context.Context, teacherID string, date time.Time) (bool, error) {
	const query = `SELECT 1 FROM teacher_absences
WHERE teacher_id = $1 AND start_date <= $2 AND end_date >= $2 AND status IN ($3, $4)
LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, teacherID, date, models.TeacherAbsenceApproved, models.TeacherAbsenceActive); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check teacher absence: %w", err)
	}
	return true, nil
}
