package models

import "time"

// AttendanceScope limits which sections a role may record attendance for.
type AttendanceScope string

const (
	ScopeAll     AttendanceScope = "all"
	ScopeGrade   AttendanceScope = "grade"
	ScopeSection AttendanceScope = "section"
	ScopeOwn     AttendanceScope = "own"
)

// Valid reports whether the scope is a supported value.
func (s AttendanceScope) Valid() bool {
	switch s {
	case ScopeAll, ScopeGrade, ScopeSection, ScopeOwn:
		return true
	default:
		return false
	}
}

// User represents an application user stored in the users table.
type User struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FullName     string     `db:"full_name" json:"full_name"`
	IsActive     bool       `db:"is_active" json:"is_active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// Teacher is the staff profile attached to a user account.
type Teacher struct {
	ID       string `db:"id" json:"id"`
	UserID   string `db:"user_id" json:"user_id"`
	FullName string `db:"full_name" json:"full_name"`
	IsActive bool   `db:"is_active" json:"is_active"`
}

// Role groups permissions and carries the attendance-create scope.
type Role struct {
	ID              string          `db:"id" json:"id"`
	Name            string          `db:"name" json:"name"`
	AttendanceScope AttendanceScope `db:"attendance_scope" json:"attendance_scope"`
	IsActive        bool            `db:"is_active" json:"is_active"`
}

// RoleAttendancePermission governs which roles may use which status codes.
// Teachers may only create records, never modify them.
type RoleAttendancePermission struct {
	RoleID             string `db:"role_id" json:"role_id"`
	AttendanceStatusID string `db:"attendance_status_id" json:"attendance_status_id"`
	CanCreate          bool   `db:"can_create" json:"can_create"`
	CanModify          bool   `db:"can_modify" json:"can_modify"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
