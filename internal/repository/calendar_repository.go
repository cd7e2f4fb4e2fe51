package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ColegioIDS/ids-attendance-api/internal/models"
)

// CalendarRepository resolves the academic calendar: school cycles,
// bimesters, holidays and academic weeks.
type CalendarRepository struct {
	db *sqlx.DB
}

// NewCalendarRepository constructs the repository.
func NewCalendarRepository(db *sqlx.DB) *CalendarRepository {
	return &CalendarRepository{db: db}
}

// FindCycleCovering returns the active, non-archived cycle whose date range
// contains the given date.
func (r *CalendarRepository) FindCycleCovering(ctx context.Context, date time.Time) (*models.SchoolCycle, error) {
	const query = `SELECT id, name, start_date, end_date, is_active, is_archived, created_at, updated_at
FROM school_cycles
WHERE is_active = TRUE AND is_archived = FALSE AND start_date <= $1 AND end_date >= $1`
	var cycle models.SchoolCycle
	if err := r.db.GetContext(ctx, &cycle, query, date); err != nil {
		return nil, err
	}
	return &cycle, nil
}

// FindBimesterCovering returns the active bimester of the cycle containing
// the date.
func (r *CalendarRepository) FindBimesterCovering(ctx context.Context, cycleID string, date time.Time) (*models.Bimester, error) {
	const query = `SELECT id, cycle_id, number, name, start_date, end_date, is_active
FROM bimesters
WHERE cycle_id = $1 AND is_active = TRUE AND start_date <= $2 AND end_date >= $2`
	var bimester models.Bimester
	if err := r.db.GetContext(ctx, &bimester, query, cycleID, date); err != nil {
		return nil, err
	}
	return &bimester, nil
}

// FindActiveBimester returns the cycle's currently active bimester.
func (r *CalendarRepository) FindActiveBimester(ctx context.Context, cycleID string) (*models.Bimester, error) {
	const query = `SELECT id, cycle_id, number, name, start_date, end_date, is_active
FROM bimesters WHERE cycle_id = $1 AND is_active = TRUE
ORDER BY number ASC LIMIT 1`
	var bimester models.Bimester
	if err := r.db.GetContext(ctx, &bimester, query, cycleID); err != nil {
		return nil, err
	}
	return &bimester, nil
}

// FindBimesterByID loads a bimester by id.
func (r *CalendarRepository) FindBimesterByID(ctx context.Context, id string) (*models.Bimester, error) {
	const query = `SELECT id, cycle_id, number, name, start_date, end_date, is_active
FROM bimesters WHERE id = $1`
	var bimester models.Bimester
	if err := r.db.GetContext(ctx, &bimester, query, id); err != nil {
		return nil, err
	}
	return &bimester, nil
}

// FindHolidayOnDate returns the holiday registered on the date within the
// bimester, or nil when the date is a regular school day.
func (r *CalendarRepository) FindHolidayOnDate(ctx context.Context, bimesterID string, date time.Time) (*models.Holiday, error) {
	const query = `SELECT id, bimester_id, date, name, is_recovered
FROM holidays WHERE bimester_id = $1 AND date = $2`
	var holiday models.Holiday
	if err := r.db.GetContext(ctx, &holiday, query, bimesterID, date); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &holiday, nil
}

// FindWeekCovering returns the academic week containing the date, or nil when
// no week has been configured for it.
func (r *CalendarRepository) FindWeekCovering(ctx context.Context, bimesterID string, date time.Time) (*models.AcademicWeek, error) {
	const query = `SELECT id, bimester_id, start_date, end_date, week_type
FROM academic_weeks WHERE bimester_id = $1 AND start_date <= $2 AND end_date >= $2`
	var week models.AcademicWeek
	if err := r.db.GetContext(ctx, &week, query, bimesterID, date); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &week, nil
}
