package models

import "time"

// TeacherAbsenceStatus is the workflow state of a leave request.
type TeacherAbsenceStatus string

const (
	TeacherAbsenceApproved TeacherAbsenceStatus = "approved"
	TeacherAbsenceActive   TeacherAbsenceStatus = "active"
	TeacherAbsencePending  TeacherAbsenceStatus = "pending"
	TeacherAbsenceRejected TeacherAbsenceStatus = "rejected"
)

// TeacherAbsence is an approved or running leave period. Overlap with the
// attendance date blocks registration.
type TeacherAbsence struct {
	ID        string               `db:"id" json:"id"`
	TeacherID string               `db:"teacher_id" json:"teacher_id"`
	StartDate time.Time            `db:"start_date" json:"start_date"`
	EndDate   time.Time            `db:"end_date" json:"end_date"`
	Status    TeacherAbsenceStatus `db:"status" json:"status"`
	Reason    *string              `db:"reason" json:"reason,omitempty"`
}
