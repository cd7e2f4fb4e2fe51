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

// AttendanceConfigRepository persists the attendance configuration singleton.
type AttendanceConfigRepository struct {
	db *sqlx.DB
}

// NewAttendanceConfigRepository constructs the repository.
func NewAttendanceConfigRepository(db *sqlx.DB) *AttendanceConfigRepository {
	return &AttendanceConfigRepository{db: db}
}

// FindActive returns the active configuration, or sql.ErrNoRows when none
// has been created yet.
func (r *AttendanceConfigRepository) FindActive(ctx context.Context) (*models.AttendanceConfig, error) {
	const query = `SELECT id, risk_threshold_percentage, late_threshold_time, mark_as_tardy_after_minutes, is_active, created_at, updated_at
FROM attendance_config WHERE is_active = TRUE`
	var cfg models.AttendanceConfig
	if err := r.db.GetContext(ctx, &cfg, query); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// EnsureActive returns the active configuration, materializing the default
// when none exists. The insert is guarded by the partial unique index on
// is_active so concurrent first-time callers converge on a single row.
func (r *AttendanceConfigRepository) EnsureActive(ctx context.Context) (*models.AttendanceConfig, error) {
	cfg, err := r.FindActive(ctx)
	if err == nil {
		return cfg, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("find active attendance config: %w", err)
	}

	def := models.DefaultAttendanceConfig()
	def.ID = uuid.NewString()
	now := time.Now().UTC()
	const insert = `INSERT INTO attendance_config (id, risk_threshold_percentage, late_threshold_time, mark_as_tardy_after_minutes, is_active, created_at, updated_at)
VALUES ($1, $2, $3, $4, TRUE, $5, $5)
ON CONFLICT (is_active) WHERE is_active DO NOTHING`
	if _, err := r.db.ExecContext(ctx, insert, def.ID, def.RiskThresholdPercentage, def.LateThresholdTime, def.MarkAsTardyAfterMinutes, now); err != nil {
		return nil, fmt.Errorf("materialize default attendance config: %w", err)
	}

	cfg, err = r.FindActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("reload attendance config: %w", err)
	}
	return cfg, nil
}
