package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ColegioIDS/ids-attendance-api/internal/models"
)

// UserRepository persists users, teacher profiles and role assignments.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository constructs the repository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID loads a user by id.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	const query = `SELECT id, email, password_hash, full_name, is_active, last_login, created_at, updated_at
FROM users WHERE id = $1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail loads a user by email for authentication.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	const query = `SELECT id, email, password_hash, full_name, is_active, last_login, created_at, updated_at
FROM users WHERE LOWER(email) = LOWER($1)`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindTeacherByUserID returns the teacher profile attached to a user account.
func (r *UserRepository) FindTeacherByUserID(ctx context.Context, userID string) (*models.Teacher, error) {
	const query = `SELECT id, user_id, full_name, is_active FROM teachers WHERE user_id = $1`
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, query, userID); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// FindActiveRole returns the role when the user holds an active assignment of
// it and the role itself is active.
func (r *UserRepository) FindActiveRole(ctx context.Context, userID, roleID string) (*models.Role, error) {
	const query = `SELECT ro.id, ro.name, ro.attendance_scope, ro.is_active
FROM roles ro
JOIN user_roles ur ON ur.role_id = ro.id
WHERE ur.user_id = $1 AND ro.id = $2 AND ur.is_active = TRUE AND ro.is_active = TRUE`
	var role models.Role
	if err := r.db.GetContext(ctx, &role, query, userID, roleID); err != nil {
		return nil, err
	}
	return &role, nil
}

// FindDefaultRole returns the active role assignment of a user flagged as
// default, used by login when no explicit role is requested. Users without a
// flagged assignment fall back to any active one.
func (r *UserRepository) FindDefaultRole(ctx context.Context, userID string) (*models.Role, error) {
	const query = `SELECT ro.id, ro.name, ro.attendance_scope, ro.is_active
FROM roles ro
JOIN user_roles ur ON ur.role_id = ro.id
WHERE ur.user_id = $1 AND ur.is_active = TRUE AND ro.is_active = TRUE
ORDER BY ur.is_default DESC LIMIT 1`
	var role models.Role
	if err := r.db.GetContext(ctx, &role, query, userID); err != nil {
		return nil, err
	}
	return &role, nil
}

// UpdateLastLogin stamps the last successful login time.
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	const query = `UPDATE users SET last_login = $2, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, ts); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}
