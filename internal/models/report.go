package models

import "time"

// AttendanceReport is the consolidated per-enrollment aggregate. It is a
// projection rebuilt entirely from ClassAttendance rows and is always safe to
// discard and recompute.
type AttendanceReport struct {
	ID                   string    `db:"id" json:"id"`
	EnrollmentID         string    `db:"enrollment_id" json:"enrollment_id"`
	CycleID              string    `db:"cycle_id" json:"cycle_id"`
	BimesterID           *string   `db:"bimester_id" json:"bimester_id,omitempty"`
	PresentCount         int       `db:"present_count" json:"present_count"`
	AbsentCount          int       `db:"absent_count" json:"absent_count"`
	JustifiedCount       int       `db:"justified_count" json:"justified_count"`
	TemporalCount        int       `db:"temporal_count" json:"temporal_count"`
	TardyCount           int       `db:"tardy_count" json:"tardy_count"`
	AttendancePercentage float64   `db:"attendance_percentage" json:"attendance_percentage"`
	AbsencePercentage    float64   `db:"absence_percentage" json:"absence_percentage"`
	IsAtRisk             bool      `db:"is_at_risk" json:"is_at_risk"`
	ConsecutiveAbsences  int       `db:"consecutive_absences" json:"consecutive_absences"`
	LastRecalculatedAt   time.Time `db:"last_recalculated_at" json:"last_recalculated_at"`
}
