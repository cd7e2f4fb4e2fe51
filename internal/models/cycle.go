package models

import "time"

// SchoolCycle is the top-level academic year container. Exactly one cycle is
// expected to be active for any given date; archived cycles reject all writes.
type SchoolCycle struct {
	ID         string    `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	StartDate  time.Time `db:"start_date" json:"start_date"`
	EndDate    time.Time `db:"end_date" json:"end_date"`
	IsActive   bool      `db:"is_active" json:"is_active"`
	IsArchived bool      `db:"is_archived" json:"is_archived"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// Bimester is an academic sub-period of a school cycle with its own holidays
// and academic weeks.
type Bimester struct {
	ID        string    `db:"id" json:"id"`
	CycleID   string    `db:"cycle_id" json:"cycle_id"`
	Number    int       `db:"number" json:"number"`
	Name      string    `db:"name" json:"name"`
	StartDate time.Time `db:"start_date" json:"start_date"`
	EndDate   time.Time `db:"end_date" json:"end_date"`
	IsActive  bool      `db:"is_active" json:"is_active"`
}

// Holiday blocks attendance on its date unless the day was recovered
// (rescheduled elsewhere in the calendar).
type Holiday struct {
	ID          string    `db:"id" json:"id"`
	BimesterID  string    `db:"bimester_id" json:"bimester_id"`
	Date        time.Time `db:"date" json:"date"`
	Name        string    `db:"name" json:"name"`
	IsRecovered bool      `db:"is_recovered" json:"is_recovered"`
}

// WeekType distinguishes instructional weeks from breaks.
type WeekType string

const (
	WeekTypeRegular WeekType = "REGULAR"
	WeekTypeBreak   WeekType = "BREAK"
)

// AcademicWeek is a dated week within a bimester. BREAK weeks never accept
// attendance.
type AcademicWeek struct {
	ID         string    `db:"id" json:"id"`
	BimesterID string    `db:"bimester_id" json:"bimester_id"`
	StartDate  time.Time `db:"start_date" json:"start_date"`
	EndDate    time.Time `db:"end_date" json:"end_date"`
	WeekType   WeekType  `db:"week_type" json:"week_type"`
}

// TemporalContext is the resolved calendar state for one attendance date.
type TemporalContext struct {
	Date     time.Time     `json:"date"`
	Cycle    *SchoolCycle  `json:"cycle"`
	Bimester *Bimester     `json:"bimester"`
	Holiday  *Holiday      `json:"holiday,omitempty"`
	Week     *AcademicWeek `json:"week,omitempty"`
}
