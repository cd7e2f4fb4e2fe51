package models

import "time"

// AttendanceConfig holds the tunable thresholds for attendance registration.
// Exactly one active instance is expected; when none exists a default is
// materialized on first use.
type AttendanceConfig struct {
	ID                      string    `db:"id" json:"id"`
	RiskThresholdPercentage float64   `db:"risk_threshold_percentage" json:"risk_threshold_percentage"`
	LateThresholdTime       string    `db:"late_threshold_time" json:"late_threshold_time"`
	MarkAsTardyAfterMinutes int       `db:"mark_as_tardy_after_minutes" json:"mark_as_tardy_after_minutes"`
	IsActive                bool      `db:"is_active" json:"is_active"`
	CreatedAt               time.Time `db:"created_at" json:"created_at"`
	UpdatedAt               time.Time `db:"updated_at" json:"updated_at"`
}

// DefaultAttendanceConfig returns the fallback configuration used when no
// active row exists yet.
func DefaultAttendanceConfig() AttendanceConfig {
	return AttendanceConfig{
		RiskThresholdPercentage: 80,
		LateThresholdTime:       "08:00",
		MarkAsTardyAfterMinutes: 10,
		IsActive:                true,
	}
}
