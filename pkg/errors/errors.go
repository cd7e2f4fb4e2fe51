package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid email or password")
	ErrInactiveAccount    = New("ACCOUNT_INACTIVE", http.StatusForbidden, "account is inactive")
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrConflict           = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss          = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)

// Attendance registration precondition failures. Each validation layer raises
// exactly one of these so callers always learn the specific failing
// condition.
var (
	ErrFutureDate          = New("FUTURE_DATE", http.StatusBadRequest, "attendance date is in the future")
	ErrNoActiveCycle       = New("NO_ACTIVE_CYCLE", http.StatusBadRequest, "no active school cycle covers the date")
	ErrNoActiveBimester    = New("NO_ACTIVE_BIMESTER", http.StatusBadRequest, "no active bimester covers the date")
	ErrHolidayNotRecovered = New("HOLIDAY_NOT_RECOVERED", http.StatusBadRequest, "attendance date falls on a non-recovered holiday")
	ErrBreakWeek           = New("BREAK_WEEK", http.StatusBadRequest, "attendance date falls in a break week")
	ErrNoSchedules         = New("NO_SCHEDULES_FOR_DAY", http.StatusBadRequest, "teacher has no classes in the section that day")
	ErrNoEligibleStudents  = New("NO_ELIGIBLE_STUDENTS", http.StatusBadRequest, "section has no eligible active enrollments")
	ErrStatusNotAllowed    = New("STATUS_NOT_ALLOWED", http.StatusForbidden, "role may not use this attendance status")
	ErrScopeDenied         = New("SCOPE_DENIED", http.StatusForbidden, "role scope does not reach this section")
	ErrTeacherOnLeave      = New("TEACHER_ON_LEAVE", http.StatusBadRequest, "teacher has an absence covering the date")
	ErrDuplicateRecord     = New("DUPLICATE_ATTENDANCE", http.StatusBadRequest, "attendance already recorded for enrollment on this date")
	ErrSectionMismatch     = New("SECTION_MISMATCH", http.StatusBadRequest, "section does not belong to the grade")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
