package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ColegioIDS/ids-attendance-api/internal/models"
)

// EnrollmentRepository persists student enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// ListEligible returns the section's ACTIVE enrollments for the cycle whose
// enrollment date is on or before the attendance date.
func (r *EnrollmentRepository) ListEligible(ctx context.Context, sectionID, cycleID string, asOf time.Time) ([]models.EnrollmentDetail, error) {
	const query = `SELECT e.id, e.student_id, e.section_id, e.cycle_id, e.status, e.date_enrolled, st.full_name AS student_name
FROM enrollments e
JOIN students st ON st.id = e.student_id
WHERE e.section_id = $1 AND e.cycle_id = $2 AND e.status = $3 AND e.date_enrolled <= $4
ORDER BY st.full_name ASC`
	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, sectionID, cycleID, models.EnrollmentStatusActive, asOf); err != nil {
		return nil, fmt.Errorf("list eligible enrollments: %w", err)
	}
	return enrollments, nil
}

// FindByID loads an enrollment by id.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	const query = `SELECT id, student_id, section_id, cycle_id, status, date_enrolled
FROM enrollments WHERE id = $1`
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, id); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// ListIDsBySection returns all enrollment ids in a section for a cycle,
// regardless of eligibility date. Used by section-wide recalculation.
func (r *EnrollmentRepository) ListIDsBySection(ctx context.Context, sectionID, cycleID string) ([]string, error) {
	const query = `SELECT id FROM enrollments WHERE section_id = $1 AND cycle_id = $2 AND status = $3`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, sectionID, cycleID, models.EnrollmentStatusActive); err != nil {
		return nil, fmt.Errorf("list enrollment ids: %w", err)
	}
	return ids, nil
}
