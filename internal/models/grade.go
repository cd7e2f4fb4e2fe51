package models

// Grade is a level within the school (e.g. first grade of secondary).
type Grade struct {
	ID       string `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	Level    int    `db:"level" json:"level"`
	IsActive bool   `db:"is_active" json:"is_active"`
}

// Section is one group of students within a grade. The guide teacher owns the
// section for grade/section scoped attendance.
type Section struct {
	ID             string  `db:"id" json:"id"`
	GradeID        string  `db:"grade_id" json:"grade_id"`
	Name           string  `db:"name" json:"name"`
	GuideTeacherID *string `db:"guide_teacher_id" json:"guide_teacher_id,omitempty"`
	IsActive       bool    `db:"is_active" json:"is_active"`
}
