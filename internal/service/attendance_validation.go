package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ColegioIDS/ids-attendance-api/internal/models"
	appErrors "github.com/ColegioIDS/ids-attendance-api/pkg/errors"
)

type validationScheduleRepository interface {
	ListActiveForDay(ctx context.Context, teacherID, sectionID string, dayOfWeek int) ([]models.Schedule, error)
}

type validationEnrollmentRepository interface {
	ListEligible(ctx context.Context, sectionID, cycleID string, asOf time.Time) ([]models.EnrollmentDetail, error)
}

type validationStatusRepository interface {
	FindByID(ctx context.Context, id string) (*models.AttendanceStatus, error)
	FindPermission(ctx context.Context, roleID, statusID string) (*models.RoleAttendancePermission, error)
}

type validationConfigRepository interface {
	EnsureActive(ctx context.Context) (*models.AttendanceConfig, error)
}

type validationAbsenceRepository interface {
	ExistsOverlapping(ctx context.Context, teacherID string, date time.Time) (bool, error)
}

type validationGradeRepository interface {
	FindGradeByID(ctx context.Context, id string) (*models.Grade, error)
	FindSectionByID(ctx context.Context, id string) (*models.Section, error)
}

// BulkSubmission is the shape-validated input for one bulk registration:
// one teacher, one date, one section.
type BulkSubmission struct {
	UserID              string   `json:"-" validate:"required"`
	RoleID              string   `json:"-" validate:"required"`
	Date                string   `json:"date" validate:"required"`
	GradeID             string   `json:"grade_id" validate:"required"`
	SectionID           string   `json:"section_id" validate:"required"`
	AttendanceStatusID  string   `json:"attendance_status_id" validate:"required"`
	ArrivalTime         *string  `json:"arrival_time,omitempty"`
	DepartureTime       *string  `json:"departure_time,omitempty"`
	Notes               *string  `json:"notes,omitempty"`
	CourseAssignmentIDs []string `json:"course_assignment_ids,omitempty"`
}

// ValidatedContext is everything the registrar needs after a submission
// passed every validation layer.
type ValidatedContext struct {
	Submission  BulkSubmission
	Date        time.Time
	Identity    *AuthorizedTeacher
	Temporal    *models.TemporalContext
	Grade       *models.Grade
	Section     *models.Section
	Schedules   []models.Schedule
	Enrollments []models.EnrollmentDetail
	Status      *models.AttendanceStatus
	Config      *models.AttendanceConfig
}

// AttendanceValidator runs the legality checks for a bulk submission in
// strict order, stopping at the first failure. The per-enrollment duplicate
// check deliberately runs later, inside the registrar's transaction.
type AttendanceValidator struct {
	scope       *ScopeService
	calendar    *CalendarService
	schedules   validationScheduleRepository
	enrollments validationEnrollmentRepository
	statuses    validationStatusRepository
	configs     validationConfigRepository
	absences    validationAbsenceRepository
	grades      validationGradeRepository
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// NewAttendanceValidator constructs the validation pipeline.
func NewAttendanceValidator(
	scope *ScopeService,
	calendar *CalendarService,
	schedules validationScheduleRepository,
	enrollments validationEnrollmentRepository,
	statuses validationStatusRepository,
	configs validationConfigRepository,
	absences validationAbsenceRepository,
	grades validationGradeRepository,
	validate *validator.Validate,
	logger *zap.Logger,
) *AttendanceValidator {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceValidator{
		scope:       scope,
		calendar:    calendar,
		schedules:   schedules,
		enrollments: enrollments,
		statuses:    statuses,
		configs:     configs,
		absences:    absences,
		grades:      grades,
		validator:   validate,
		logger:      logger,
		now:         time.Now,
	}
}

// Validate executes the check cascade and returns the validated context on
// success, or the first failing layer's error. No aggregation of failures.
func (v *AttendanceValidator) Validate(ctx context.Context, submission BulkSubmission) (*ValidatedContext, error) {
	if err := v.validator.Struct(submission); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid submission")
	}
	date, err := time.Parse("2006-01-02", submission.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid date format, expected YYYY-MM-DD")
	}

	// Layers 1 and 2: acting identity and role scope.
	identity, err := v.scope.Authorize(ctx, submission.UserID, submission.RoleID)
	if err != nil {
		return nil, err
	}
	if err := v.scope.CheckSectionScope(ctx, identity, submission.SectionID); err != nil {
		return nil, err
	}

	// Layer 3: the date may not be in the future and must fall inside an
	// active, non-archived cycle. Layer 4 (bimester) resolves with it.
	today := v.now().UTC().Truncate(24 * time.Hour)
	if date.After(today) {
		return nil, appErrors.ErrFutureDate
	}
	temporal, err := v.calendar.Resolve(ctx, date)
	if err != nil {
		return nil, err
	}

	// Layer 5: unrecovered holidays block attendance.
	if temporal.Holiday != nil && !temporal.Holiday.IsRecovered {
		return nil, appErrors.ErrHolidayNotRecovered
	}

	// Layer 6: break weeks never accept attendance.
	if temporal.Week != nil && temporal.Week.WeekType == models.WeekTypeBreak {
		return nil, appErrors.ErrBreakWeek
	}

	// Layer 7: the teacher must have classes in the section that day.
	schedules, err := v.schedules.ListActiveForDay(ctx, identity.Teacher.ID, submission.SectionID, int(date.Weekday()))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedules")
	}
	if len(schedules) == 0 {
		return nil, appErrors.ErrNoSchedules
	}

	// Layer 8: at least one eligible enrollment.
	enrollments, err := v.enrollments.ListEligible(ctx, submission.SectionID, temporal.Cycle.ID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	if len(enrollments) == 0 {
		return nil, appErrors.ErrNoEligibleStudents
	}

	// Layer 9: status exists, is active, and the role may create with it.
	status, err := v.statuses.FindByID(ctx, submission.AttendanceStatusID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "attendance status not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance status")
	}
	if !status.IsActive {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "attendance status is inactive")
	}
	permission, err := v.statuses.FindPermission(ctx, identity.Role.ID, status.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load status permission")
	}
	if permission == nil || !permission.CanCreate {
		return nil, appErrors.ErrStatusNotAllowed
	}

	// Layer 10: resolve the active configuration, materializing the default
	// when none exists. This layer always succeeds.
	cfg, err := v.configs.EnsureActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve attendance config")
	}

	// Layer 11: the teacher must not be on leave.
	onLeave, err := v.absences.ExistsOverlapping(ctx, identity.Teacher.ID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check teacher absence")
	}
	if onLeave {
		return nil, appErrors.ErrTeacherOnLeave
	}

	// Layer 12: grade and section exist, are active, and belong together.
	grade, err := v.grades.FindGradeByID(ctx, submission.GradeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grade not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade")
	}
	if !grade.IsActive {
		return nil, appErrors.Clone(appErrors.ErrValidation, "grade is inactive")
	}
	section, err := v.grades.FindSectionByID(ctx, submission.SectionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "section not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section")
	}
	if !section.IsActive {
		return nil, appErrors.Clone(appErrors.ErrValidation, "section is inactive")
	}
	if section.GradeID != grade.ID {
		return nil, appErrors.ErrSectionMismatch
	}

	return &ValidatedContext{
		Submission:  submission,
		Date:        date,
		Identity:    identity,
		Temporal:    temporal,
		Grade:       grade,
		Section:     section,
		Schedules:   schedules,
		Enrollments: enrollments,
		Status:      status,
		Config:      cfg,
	}, nil
}
