package models

import "time"

// CourseAssignment binds one teacher to one course within one section. It is
// the unit schedules attach to.
type CourseAssignment struct {
	ID        string `db:"id" json:"id"`
	TeacherID string `db:"teacher_id" json:"teacher_id"`
	CourseID  string `db:"course_id" json:"course_id"`
	SectionID string `db:"section_id" json:"section_id"`
	IsActive  bool   `db:"is_active" json:"is_active"`
}

// Schedule is one recurring class slot for a course assignment. DayOfWeek
// follows time.Weekday numbering (0 = Sunday).
type Schedule struct {
	ID                 string    `db:"id" json:"id"`
	SectionID          string    `db:"section_id" json:"section_id"`
	CourseAssignmentID string    `db:"course_assignment_id" json:"course_assignment_id"`
	TeacherID          string    `db:"teacher_id" json:"teacher_id"`
	DayOfWeek          int       `db:"day_of_week" json:"day_of_week"`
	StartTime          string    `db:"start_time" json:"start_time"`
	EndTime            string    `db:"end_time" json:"end_time"`
	IsActive           bool      `db:"is_active" json:"is_active"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
}
