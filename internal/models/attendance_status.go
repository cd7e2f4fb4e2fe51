package models

// Well-known attendance status codes. Schools may define additional statuses;
// classification then falls back on the flag combination.
const (
	StatusCodePresent = "P"
	StatusCodeTardy   = "T"
)

// AttendanceStatus is a configurable status code with classification flags.
type AttendanceStatus struct {
	ID         string `db:"id" json:"id"`
	Code       string `db:"code" json:"code"`
	Name       string `db:"name" json:"name"`
	IsNegative bool   `db:"is_negative" json:"is_negative"`
	IsExcused  bool   `db:"is_excused" json:"is_excused"`
	IsTemporal bool   `db:"is_temporal" json:"is_temporal"`
	IsActive   bool   `db:"is_active" json:"is_active"`
}
