package models

import "time"

// ClassAttendance is the atomic attendance fact: one student, one scheduled
// class, one date. At most one record may exist per (enrollment, schedule,
// date); the storage layer enforces this with a unique index.
type ClassAttendance struct {
	ID                 string     `db:"id" json:"id"`
	EnrollmentID       string     `db:"enrollment_id" json:"enrollment_id"`
	Date               time.Time  `db:"date" json:"date"`
	ScheduleID         string     `db:"schedule_id" json:"schedule_id"`
	CourseAssignmentID string     `db:"course_assignment_id" json:"course_assignment_id"`
	AttendanceStatusID string     `db:"attendance_status_id" json:"attendance_status_id"`
	StatusCode         string     `db:"status_code" json:"status_code"`
	ArrivalTime        *string    `db:"arrival_time" json:"arrival_time,omitempty"`
	DepartureTime      *string    `db:"departure_time" json:"departure_time,omitempty"`
	Notes              *string    `db:"notes" json:"notes,omitempty"`
	RecordedBy         string     `db:"recorded_by" json:"recorded_by"`
	RecordedAt         time.Time  `db:"recorded_at" json:"recorded_at"`
	LastModifiedBy     *string    `db:"last_modified_by" json:"last_modified_by,omitempty"`
	LastModifiedAt     *time.Time `db:"last_modified_at" json:"last_modified_at,omitempty"`
	ModificationReason *string    `db:"modification_reason" json:"modification_reason,omitempty"`
}

// SectionAttendanceRow is one line of a section's daily attendance sheet.
type SectionAttendanceRow struct {
	EnrollmentID string    `db:"enrollment_id" json:"enrollment_id"`
	StudentName  string    `db:"student_name" json:"student_name"`
	StatusCode   string    `db:"status_code" json:"status_code"`
	ArrivalTime  *string   `db:"arrival_time" json:"arrival_time,omitempty"`
	Notes        *string   `db:"notes" json:"notes,omitempty"`
	RecordedAt   time.Time `db:"recorded_at" json:"recorded_at"`
}

// ClassAttendanceRow joins a fact record with its status flags for
// classification during recalculation.
type ClassAttendanceRow struct {
	ID           string    `db:"id" json:"id"`
	EnrollmentID string    `db:"enrollment_id" json:"enrollment_id"`
	Date         time.Time `db:"date" json:"date"`
	StatusCode   string    `db:"status_code" json:"status_code"`
	IsNegative   bool      `db:"is_negative" json:"is_negative"`
	IsExcused    bool      `db:"is_excused" json:"is_excused"`
	IsTemporal   bool      `db:"is_temporal" json:"is_temporal"`
}
