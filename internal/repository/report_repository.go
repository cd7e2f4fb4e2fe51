package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/ColegioIDS/ids-attendance-api/internal/models"
)

// ReportRepository reads consolidated attendance reports. Writes go through
// the registration transaction (see AttendanceTx.UpsertReport).
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository constructs the repository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// FindByEnrollment loads the report for one enrollment.
func (r *ReportRepository) FindByEnrollment(ctx context.Context, enrollmentID string) (*models.AttendanceReport, error) {
	const query = `SELECT id, enrollment_id, cycle_id, bimester_id, present_count, absent_count, justified_count,
temporal_count, tardy_count, attendance_percentage, absence_percentage, is_at_risk, consecutive_absences, last_recalculated_at
FROM student_attendance_reports WHERE enrollment_id = $1`
	var report models.AttendanceReport
	if err := r.db.GetContext(ctx, &report, query, enrollmentID); err != nil {
		return nil, err
	}
	return &report, nil
}
