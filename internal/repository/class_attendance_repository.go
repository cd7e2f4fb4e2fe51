package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ColegioIDS/ids-attendance-api/internal/models"
)

// AttendanceTx exposes the write-phase operations available inside one bulk
// registration transaction. Registration and report recalculation share the
// same transaction so the whole submission commits or rolls back together.
type AttendanceTx interface {
	ExistsForDate(ctx context.Context, enrollmentID string, date time.Time) (bool, error)
	InsertClassAttendance(ctx context.Context, record *models.ClassAttendance) error
	ListRowsForEnrollment(ctx context.Context, enrollmentID string, from, to *time.Time) ([]models.ClassAttendanceRow, error)
	UpsertReport(ctx context.Context, report *models.AttendanceReport) (created bool, err error)
}

// ClassAttendanceRepository persists per-class attendance facts and owns the
// bulk registration transaction boundary.
type ClassAttendanceRepository struct {
	db *sqlx.DB
}

// NewClassAttendanceRepository constructs the repository.
func NewClassAttendanceRepository(db *sqlx.DB) *ClassAttendanceRepository {
	return &ClassAttendanceRepository{db: db}
}

// RunInTx executes fn inside a transaction bounded by timeout. Any error from
// fn rolls the transaction back.
func (r *ClassAttendanceRepository) RunInTx(ctx context.Context, timeout time.Duration, fn func(tx AttendanceTx) error) error {
	txCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	tx, err := r.db.BeginTxx(txCtx, nil)
	if err != nil {
		return fmt.Errorf("begin attendance transaction: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			tx.Rollback() //nolint:errcheck
		}
	}()

	if err := fn(&attendanceTx{tx: tx, ctx: txCtx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit attendance transaction: %w", err)
	}
	commit = true
	return nil
}

// ListForSectionDate returns all records in a section on one date, with the
// student name, for attendance sheet exports.
func (r *ClassAttendanceRepository) ListForSectionDate(ctx context.Context, sectionID string, date time.Time) ([]models.SectionAttendanceRow, error) {
	const query = `SELECT ca.enrollment_id, st.full_name AS student_name, ca.status_code, ca.arrival_time, ca.notes, ca.recorded_at
FROM student_class_attendance ca
JOIN enrollments e ON e.id = ca.enrollment_id
JOIN students st ON st.id = e.student_id
WHERE e.section_id = $1 AND ca.date = $2
ORDER BY st.full_name ASC, ca.recorded_at ASC`
	var rows []models.SectionAttendanceRow
	if err := r.db.SelectContext(ctx, &rows, query, sectionID, date); err != nil {
		return nil, fmt.Errorf("list section attendance: %w", err)
	}
	return rows, nil
}

type attendanceTx struct {
	tx  *sqlx.Tx
	ctx context.Context
}

func (t *attendanceTx) ExistsForDate(ctx context.Context, enrollmentID string, date time.Time) (bool, error) {
	const query = `SELECT 1 FROM student_class_attendance WHERE enrollment_id = $1 AND date = $2 LIMIT 1`
	var exists int
	if err := t.tx.GetContext(ctx, &exists, query, enrollmentID, date); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check existing attendance: %w", err)
	}
	return true, nil
}

func (t *attendanceTx) InsertClassAttendance(ctx context.Context, record *models.ClassAttendance) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.RecordedAt.IsZero() {
		record.RecordedAt = time.Now().UTC()
	}
	const query = `INSERT INTO student_class_attendance
(id, enrollment_id, date, schedule_id, course_assignment_id, attendance_status_id, status_code, arrival_time, departure_time, notes, recorded_by, recorded_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	if _, err := t.tx.ExecContext(ctx, query,
		record.ID, record.EnrollmentID, record.Date, record.ScheduleID, record.CourseAssignmentID,
		record.AttendanceStatusID, record.StatusCode, record.ArrivalTime, record.DepartureTime, record.Notes,
		record.RecordedBy, record.RecordedAt,
	); err != nil {
		return fmt.Errorf("insert class attendance: %w", err)
	}
	return nil
}

func (t *attendanceTx) ListRowsForEnrollment(ctx context.Context, enrollmentID string, from, to *time.Time) ([]models.ClassAttendanceRow, error) {
	return listRowsForEnrollment(ctx, t.tx, enrollmentID, from, to)
}

func (t *attendanceTx) UpsertReport(ctx context.Context, report *models.AttendanceReport) (bool, error) {
	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	const query = `INSERT INTO student_attendance_reports
(id, enrollment_id, cycle_id, bimester_id, present_count, absent_count, justified_count, temporal_count, tardy_count,
 attendance_percentage, absence_percentage, is_at_risk, consecutive_absences, last_recalculated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
ON CONFLICT (enrollment_id)
DO UPDATE SET cycle_id = EXCLUDED.cycle_id, bimester_id = EXCLUDED.bimester_id,
	present_count = EXCLUDED.present_count, absent_count = EXCLUDED.absent_count,
	justified_count = EXCLUDED.justified_count, temporal_count = EXCLUDED.temporal_count,
	tardy_count = EXCLUDED.tardy_count, attendance_percentage = EXCLUDED.attendance_percentage,
	absence_percentage = EXCLUDED.absence_percentage, is_at_risk = EXCLUDED.is_at_risk,
	consecutive_absences = EXCLUDED.consecutive_absences, last_recalculated_at = EXCLUDED.last_recalculated_at
RETURNING (xmax = 0) AS created`
	var created bool
	if err := t.tx.GetContext(ctx, &created, query,
		report.ID, report.EnrollmentID, report.CycleID, report.BimesterID,
		report.PresentCount, report.AbsentCount, report.JustifiedCount, report.TemporalCount, report.TardyCount,
		report.AttendancePercentage, report.AbsencePercentage, report.IsAtRisk,
		report.ConsecutiveAbsences, report.LastRecalculatedAt,
	); err != nil {
		return false, fmt.Errorf("upsert attendance report: %w", err)
	}
	return created, nil
}

func listRowsForEnrollment(ctx context.Context, q sqlx.QueryerContext, enrollmentID string, from, to *time.Time) ([]models.ClassAttendanceRow, error) {
	query := `SELECT ca.id, ca.enrollment_id, ca.date, ca.status_code, s.is_negative, s.is_excused, s.is_temporal
FROM student_class_attendance ca
JOIN attendance_statuses s ON s.id = ca.attendance_status_id
WHERE ca.enrollment_id = $1`
	args := []interface{}{enrollmentID}
	if from != nil {
		args = append(args, *from)
		query += fmt.Sprintf(" AND ca.date >= $%d", len(args))
	}
	if to != nil {
		args = append(args, *to)
		query += fmt.Sprintf(" AND ca.date <= $%d", len(args))
	}
	query += " ORDER BY ca.date ASC"

	var rows []models.ClassAttendanceRow
	if err := sqlx.SelectContext(ctx, q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list attendance rows: %w", err)
	}
	return rows, nil
}
