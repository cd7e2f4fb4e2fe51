package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ColegioIDS/ids-attendance-api/internal/models"
)

// AttendanceStatusRepository persists status codes and role permissions on
// them.
type AttendanceStatusRepository struct {
	db *sqlx.DB
}

// NewAttendanceStatusRepository constructs the repository.
func NewAttendanceStatusRepository(db *sqlx.DB) *AttendanceStatusRepository {
	return &AttendanceStatusRepository{db: db}
}

// FindByID loads a status by id.
func (r *AttendanceStatusRepository) FindByID(ctx context.Context, id string) (*models.AttendanceStatus, error) {
	const query = `SELECT id, code, name, is_negative, is_excused, is_temporal, is_active
FROM attendance_statuses WHERE id = $1`
	var status models.AttendanceStatus
	if err := r.db.GetContext(ctx, &status, query, id); err != nil {
		return nil, err
	}
	return &status, nil
}

// FindPermission returns the role's permission row for a status, or nil when
// the role has no permission configured for it.
func (r *AttendanceStatusRepository) FindPermission(ctx context.Context, roleID, statusID string) (*models.RoleAttendancePermission, error) {
	const query = `SELECT role_id, attendance_status_id, can_create, can_modify
FROM role_attendance_permissions WHERE role_id = $1 AND attendance_status_id = $2`
	var permission models.RoleAttendancePermission
	if err := r.db.GetContext(ctx, &permission, query, roleID, statusID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find attendance permission: %w", err)
	}
	return &permission, nil
}
