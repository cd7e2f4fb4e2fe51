package models

import "time"

// EnrollmentStatus represents the lifecycle of an enrollment.
type EnrollmentStatus string

// Possible enrollment statuses.
const (
	EnrollmentStatusActive    EnrollmentStatus = "ACTIVE"
	EnrollmentStatusWithdrawn EnrollmentStatus = "WITHDRAWN"
	EnrollmentStatusGraduated EnrollmentStatus = "GRADUATED"
)

// Enrollment registers a student to a section within a school cycle. Only
// ACTIVE enrollments dated on or before the attendance date are eligible for
// attendance registration.
type Enrollment struct {
	ID           string           `db:"id" json:"id"`
	StudentID    string           `db:"student_id" json:"student_id"`
	SectionID    string           `db:"section_id" json:"section_id"`
	CycleID      string           `db:"cycle_id" json:"cycle_id"`
	Status       EnrollmentStatus `db:"status" json:"status"`
	DateEnrolled time.Time        `db:"date_enrolled" json:"date_enrolled"`
}

// EnrollmentDetail enriches Enrollment with student info for responses.
type EnrollmentDetail struct {
	Enrollment
	StudentName string `db:"student_name" json:"student_name"`
}
