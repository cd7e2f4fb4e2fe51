package dto

// BulkAttendanceRequest is the HTTP payload for bulk registration. Identity
// comes from the access token, not the body.
type BulkAttendanceRequest struct {
	Date                string   `json:"date" binding:"required"`
	GradeID             string   `json:"grade_id" binding:"required"`
	SectionID           string   `json:"section_id" binding:"required"`
	AttendanceStatusID  string   `json:"attendance_status_id" binding:"required"`
	ArrivalTime         *string  `json:"arrival_time,omitempty"`
	DepartureTime       *string  `json:"departure_time,omitempty"`
	Notes               *string  `json:"notes,omitempty"`
	CourseAssignmentIDs []string `json:"course_assignment_ids,omitempty"`
}

// RecalcRequest asks for a background section-wide report rebuild.
type RecalcRequest struct {
	SectionID  string  `json:"section_id" binding:"required"`
	CycleID    string  `json:"cycle_id" binding:"required"`
	BimesterID *string `json:"bimester_id,omitempty"`
}

// RecalcResponse acknowledges an enqueued rebuild.
type RecalcResponse struct {
	JobID string `json:"job_id"`
}
